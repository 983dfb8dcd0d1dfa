package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	_ "github.com/mattn/go-sqlite3"

	"github.com/justintemps/ilostat-simple-summarizer/server/api"
	"github.com/justintemps/ilostat-simple-summarizer/server/dao"
	"github.com/justintemps/ilostat-simple-summarizer/server/httpclient"
	"github.com/justintemps/ilostat-simple-summarizer/server/service"
)

func main() {
	dbPath := envOr("ILO_PRISM_DB", "ilo-prism-cache.db")
	addr := envOr("ILO_PRISM_ADDR", ":8080")

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		log.Fatal("Failed to open region index store: ", err)
	}
	defer db.Close()

	ctx := context.Background()

	regionDAO := &dao.RegionDataflowDAO{Db: db}
	crawlRunDAO := &dao.CrawlRunDAO{Db: db}
	if err := regionDAO.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema: ", err)
	}
	if err := crawlRunDAO.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema: ", err)
	}

	client := httpclient.NewSDMXClient(os.Getenv("SDMX_BASE_URL"), os.Getenv("SDMX_AGENCY"))

	structures := service.NewStructureService(client)
	queries := &service.QueryService{Structures: structures, Client: client}
	dataflows := &service.DataflowService{Structures: structures, RegionDAO: regionDAO}
	crawler := &service.CrawlService{
		Client:      client,
		Structures:  structures,
		RegionDAO:   regionDAO,
		CrawlRunDAO: crawlRunDAO,
		Concurrency: 4,
	}

	app := fiber.New()

	dataflowAPI := &api.DataflowAPI{Router: app.Group("/api"), DataflowService: dataflows}
	dataflowAPI.Register()

	queryAPI := &api.QueryAPI{Router: app.Group("/api"), QueryService: queries}
	queryAPI.Register()

	crawlAPI := &api.CrawlAPI{Router: app.Group("/admin"), CrawlService: crawler}
	crawlAPI.Register()

	if err := app.Listen(addr); err != nil {
		log.Fatal("Server stopped: ", err)
	}
}

func envOr(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
