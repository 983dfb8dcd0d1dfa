package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/justintemps/ilostat-simple-summarizer/server/data"
	"github.com/justintemps/ilostat-simple-summarizer/server/httpresponse"
	"github.com/justintemps/ilostat-simple-summarizer/server/service"
)

type QueryAPI struct {
	Router       fiber.Router
	QueryService *service.QueryService
}

// queryRequest is the body of a data query: the dataflow, a sparse
// dimension selection, and optional time-range bounds. The area, when
// given, pins the REF_AREA dimension
type queryRequest struct {
	Dataflow    string            `json:"dataflow"`
	Area        string            `json:"area"`
	Dimensions  map[string]string `json:"dimensions"`
	StartPeriod string            `json:"startPeriod"`
	EndPeriod   string            `json:"endPeriod"`
}

func (api *QueryAPI) Register() {
	api.Router.Post(
		"/data", func(c *fiber.Ctx) error {
			ctx := c.UserContext()

			var req queryRequest
			if err := c.BodyParser(&req); err != nil {
				return httpresponse.ApplyBadRequestToResponse(c, "Invalid request body")
			}
			if req.Dataflow == "" {
				return httpresponse.ApplyBadRequestToResponse(c, "Dataflow parameter is required")
			}

			selection := data.DimensionSelection{}
			for key, value := range req.Dimensions {
				selection[key] = value
			}
			if req.Area != "" {
				selection[data.RefAreaDimension] = req.Area
			}

			params := data.QueryParams{
				StartPeriod: req.StartPeriod,
				EndPeriod:   req.EndPeriod,
			}

			result, err := api.QueryService.Execute(ctx, req.Dataflow, selection, params)
			if err != nil {
				// No data is an answer, not a failure
				if errors.Is(err, data.ErrEmptyResult) {
					return httpresponse.ApplySuccessToResponse(c, &data.QueryResult{Rows: []data.QueryRow{}})
				}

				var invalidKey *data.InvalidDimensionKeyError
				if errors.As(err, &invalidKey) {
					return httpresponse.ApplyBadRequestToResponse(c, invalidKey.Error())
				}

				return applyResolveError(c, err)
			}

			return httpresponse.ApplySuccessToResponse(c, result)
		},
	)
}
