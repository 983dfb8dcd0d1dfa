package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/justintemps/ilostat-simple-summarizer/server/data"
	"github.com/justintemps/ilostat-simple-summarizer/server/httpresponse"
	"github.com/justintemps/ilostat-simple-summarizer/server/service"
)

type DataflowAPI struct {
	Router          fiber.Router
	DataflowService *service.DataflowService
}

func (api *DataflowAPI) Register() {
	// All region codes the crawler has indexed
	api.Router.Get(
		"/regions", func(c *fiber.Ctx) error {
			ctx := c.UserContext()

			regions, err := api.DataflowService.GetRegions(ctx)
			if err != nil {
				return httpresponse.ApplyErrorToResponse(c, "Unexpected error", err)
			}

			return httpresponse.ApplySuccessToResponse(c, regions)
		},
	)

	// Dataflows available for an area, served from the region index
	api.Router.Get(
		"/dataflows", func(c *fiber.Ctx) error {
			ctx := c.UserContext()

			area := c.Query("area")
			if area == "" {
				return httpresponse.ApplyBadRequestToResponse(c, "Area parameter is required")
			}

			dataflows, err := api.DataflowService.GetDataflows(ctx, area)
			if err != nil {
				return httpresponse.ApplyErrorToResponse(c, "Unexpected error", err)
			}

			return httpresponse.ApplySuccessToResponse(c, dataflows)
		},
	)

	// Description of a single dataflow
	api.Router.Get(
		"/dataflows/:id/description", func(c *fiber.Ctx) error {
			ctx := c.UserContext()
			dataflowID := c.Params("id")

			description, err := api.DataflowService.GetDataflowDescription(ctx, dataflowID)
			if err != nil {
				return applyResolveError(c, err)
			}

			return httpresponse.ApplySuccessToResponse(c, description)
		},
	)

	// Dimensions a caller can constrain for a dataflow in an area
	api.Router.Get(
		"/dataflows/:id/dimensions", func(c *fiber.Ctx) error {
			ctx := c.UserContext()
			dataflowID := c.Params("id")
			area := c.Query("area")

			dimensions, err := api.DataflowService.GetAreaDimensions(ctx, area, dataflowID)
			if err != nil {
				return applyResolveError(c, err)
			}

			return httpresponse.ApplySuccessToResponse(c, dimensions)
		},
	)
}

// applyResolveError maps structure-resolution failures onto HTTP statuses
func applyResolveError(c *fiber.Ctx, err error) error {
	var notFound *data.StructureNotFoundError
	if errors.As(err, &notFound) {
		return httpresponse.ApplyNotFoundToResponse(c, notFound.Error())
	}

	var unavailable *data.RemoteUnavailableError
	if errors.As(err, &unavailable) {
		return httpresponse.ApplyUnavailableToResponse(c, "Remote catalog unavailable")
	}

	return httpresponse.ApplyErrorToResponse(c, "Unexpected error", err)
}
