package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/justintemps/ilostat-simple-summarizer/server/httpresponse"
	"github.com/justintemps/ilostat-simple-summarizer/server/service"
)

type CrawlAPI struct {
	Router       fiber.Router
	CrawlService *service.CrawlService
}

func (api *CrawlAPI) Register() {
	// Admin endpoint to rebuild the region index from the remote catalog.
	// The crawl is idempotent; rerunning it never duplicates index rows
	api.Router.Post(
		"/crawl/regions", func(c *fiber.Ctx) error {
			ctx := c.UserContext()

			summary, err := api.CrawlService.Crawl(ctx)
			if err != nil {
				return httpresponse.ApplyErrorToResponse(c, "Unexpected error", err)
			}

			return httpresponse.ApplySuccessToResponse(c, summary)
		},
	)
}
