package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/pflag"

	"github.com/justintemps/ilostat-simple-summarizer/server/dao"
	"github.com/justintemps/ilostat-simple-summarizer/server/httpclient"
	"github.com/justintemps/ilostat-simple-summarizer/server/service"
)

// The crawler is a standalone batch job: it walks every dataflow's
// constraints and rebuilds the local region index. Safe to rerun; the
// index's uniqueness constraint makes rebuilds idempotent
func main() {
	var (
		concurrency = pflag.Int("concurrency", 1, "dataflows crawled in parallel")
		maxRetries  = pflag.Uint64("max-retries", 3, "retry attempts for transient remote failures")
		backoffBase = pflag.Duration("backoff-base", 500*time.Millisecond, "initial retry backoff interval")
		storePath   = pflag.String("store", "ilo-prism-cache.db", "path of the sqlite region index")
		baseURL     = pflag.String("base-url", "", "SDMX REST endpoint (defaults to the ILO endpoint)")
		agency      = pflag.String("agency", "", "SDMX agency id (defaults to ILO)")
	)
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("sqlite3", *storePath)
	if err != nil {
		log.Fatal("Failed to open region index store: ", err)
	}
	defer db.Close()

	regionDAO := &dao.RegionDataflowDAO{Db: db}
	crawlRunDAO := &dao.CrawlRunDAO{Db: db}
	if err := regionDAO.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema: ", err)
	}
	if err := crawlRunDAO.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema: ", err)
	}

	client := httpclient.NewSDMXClient(*baseURL, *agency)
	client.MaxRetries = *maxRetries
	client.BackoffBase = *backoffBase

	crawler := &service.CrawlService{
		Client:      client,
		Structures:  service.NewStructureService(client),
		RegionDAO:   regionDAO,
		CrawlRunDAO: crawlRunDAO,
		Concurrency: *concurrency,
	}

	summary, err := crawler.Crawl(ctx)
	if err != nil {
		log.Fatal("Crawl failed: ", err)
	}

	log.Infof(
		"Crawl %s finished: %d entries inserted, %d of %d dataflows failed, %d skipped",
		summary.RunID,
		summary.EntriesInserted,
		summary.DataflowsFailed,
		summary.DataflowsTotal,
		summary.DataflowsSkipped,
	)
}
