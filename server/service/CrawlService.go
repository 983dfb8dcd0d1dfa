package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gofiber/fiber/v2/log"

	"github.com/justintemps/ilostat-simple-summarizer/server/concurrent"
	"github.com/justintemps/ilostat-simple-summarizer/server/dao"
	"github.com/justintemps/ilostat-simple-summarizer/server/data"
)

// CrawlService walks every dataflow's constraints and builds the local
// region index: one (region, dataflow) pair per permitted REF_AREA code.
// The crawl is a batch job; per-dataflow failures are logged and isolated,
// never escalated to abort the run
type CrawlService struct {
	Client      CatalogClient
	Structures  *StructureService
	RegionDAO   *dao.RegionDataflowDAO
	CrawlRunDAO *dao.CrawlRunDAO
	Concurrency int // dataflows crawled in parallel; <= 0 means sequential
}

// CrawlSummary reports the outcome of one crawl run
type CrawlSummary struct {
	RunID            string `json:"runId"`
	DataflowsTotal   int    `json:"dataflowsTotal"`
	DataflowsFailed  int    `json:"dataflowsFailed"`
	DataflowsSkipped int    `json:"dataflowsSkipped"`
	EntriesInserted  int    `json:"entriesInserted"`
}

type dataflowCrawl struct {
	Dataflow string
	Inserted int
}

// Crawl enumerates the full dataflow catalog and indexes each dataflow's
// permitted regions. Each dataflow's entries are written as one batch
// transaction, so cancellation between dataflows leaves the store valid
func (s *CrawlService) Crawl(ctx context.Context) (*CrawlSummary, error) {
	s.logInfo("Start")

	dataflowIDs, err := s.Client.ListDataflows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dataflows: %w", err)
	}

	// Run bookkeeping must survive cancellation so an aborted run still
	// leaves a record
	bookCtx := context.WithoutCancel(ctx)

	runID, err := s.CrawlRunDAO.Start(bookCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to record crawl run: %w", err)
	}

	total := len(dataflowIDs)
	s.logInfo(fmt.Sprintf("Crawling %d dataflows", total))

	var processed atomic.Int64

	runner := concurrent.NewRunner[string, dataflowCrawl](concurrent.RunnerConfig{
		MaxConcurrency: s.Concurrency,
		LogPrefix:      "Region Crawl",
	})

	result := runner.Run(ctx, dataflowIDs, func(
		ctx context.Context,
		dataflowID string,
		messages chan<- string,
		results chan<- dataflowCrawl,
		errors chan<- error,
	) {
		inserted, err := s.crawlDataflow(ctx, dataflowID, messages)
		done := processed.Add(1)
		if err != nil {
			messages <- fmt.Sprintf("Failed: %s - %v (%d of %d dataflows)", dataflowID, err, done, total)
			errors <- fmt.Errorf("dataflow %s: %w", dataflowID, err)
			return
		}

		messages <- fmt.Sprintf("Added %d entries for %s (%d of %d dataflows)", inserted, dataflowID, done, total)
		results <- dataflowCrawl{Dataflow: dataflowID, Inserted: inserted}
	})

	entriesInserted := 0
	for _, crawled := range result.Results {
		entriesInserted += crawled.Inserted
	}

	if len(result.Errors) > 0 {
		s.logInfo(fmt.Sprintf("Completed with %d errors", len(result.Errors)))
		for _, err := range result.Errors {
			s.logInfo(fmt.Sprintf("Error: %v", err))
		}
	} else {
		s.logInfo(fmt.Sprintf("Successfully crawled %d dataflows", len(result.Results)))
	}
	if result.Skipped > 0 {
		s.logInfo(fmt.Sprintf("Cancelled with %d dataflows not attempted", result.Skipped))
	}

	if err := s.CrawlRunDAO.Finish(bookCtx, runID, total, len(result.Errors), entriesInserted); err != nil {
		s.logWarn(fmt.Sprintf("Failed to record crawl run outcome: %v", err))
	}

	s.logInfo("Complete")
	return &CrawlSummary{
		RunID:            runID,
		DataflowsTotal:   total,
		DataflowsFailed:  len(result.Errors),
		DataflowsSkipped: result.Skipped,
		EntriesInserted:  entriesInserted,
	}, nil
}

// crawlDataflow extracts one dataflow's region entries and writes them as
// a single batch
func (s *CrawlService) crawlDataflow(
	ctx context.Context,
	dataflowID string,
	messages chan<- string,
) (int, error) {
	constraints, err := s.Structures.Constraints(ctx, dataflowID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch constraints: %w", err)
	}

	entries := collectRegionEntries(dataflowID, constraints, messages)
	if len(entries) == 0 {
		return 0, nil
	}

	inserted, err := s.RegionDAO.InsertBatch(ctx, entries)
	if err != nil {
		return 0, fmt.Errorf("failed to store region entries: %w", err)
	}

	return inserted, nil
}

// collectRegionEntries walks a dataflow's constraints and emits one entry
// per permitted region code. A constraint without a REF_AREA member set is
// skipped, never fatal
func collectRegionEntries(
	dataflowID string,
	constraints []data.Constraint,
	messages chan<- string,
) []data.RegionDataflow {
	var entries []data.RegionDataflow

	for _, constraint := range constraints {
		region := primaryContentRegion(constraint)
		if region == nil {
			messages <- fmt.Sprintf("Constraint %s on %s has no included content region; skipping", constraint.ID, dataflowID)
			continue
		}
		if len(constraint.ContentRegions) > 1 {
			messages <- fmt.Sprintf(
				"Constraint %s on %s declares %d content regions; only the first was consulted",
				constraint.ID, dataflowID, len(constraint.ContentRegions),
			)
		}

		refAreas, ok := region.Members[data.RefAreaDimension]
		if !ok {
			messages <- fmt.Sprintf("Constraint %s on %s has no %s member set; skipping", constraint.ID, dataflowID, data.RefAreaDimension)
			continue
		}

		for _, code := range refAreas {
			entries = append(entries, data.RegionDataflow{Region: code, Dataflow: dataflowID})
		}
	}

	return entries
}

// primaryContentRegion is the explicit selection policy for constraints
// that declare several content regions: the first included one wins
func primaryContentRegion(constraint data.Constraint) *data.ContentRegion {
	for i := range constraint.ContentRegions {
		if constraint.ContentRegions[i].Included {
			return &constraint.ContentRegions[i]
		}
	}
	return nil
}

func (s *CrawlService) logInfo(message string) {
	log.Info(fmt.Sprintf("Region Crawl: %v", message))
}

func (s *CrawlService) logWarn(message string) {
	log.Warn(fmt.Sprintf("Region Crawl: %v", message))
}
