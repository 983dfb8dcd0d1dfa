package dao

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/justintemps/ilostat-simple-summarizer/server/data"
)

type CrawlRunDAO struct {
	Db *sql.DB
}

// InitSchema creates the crawl run bookkeeping table if it does not exist
func (d *CrawlRunDAO) InitSchema(ctx context.Context) error {
	_, err := d.Db.ExecContext(
		ctx,
		`CREATE TABLE IF NOT EXISTS crawl_run(
			run_id TEXT PRIMARY KEY,
			started_timestamp TIMESTAMP NOT NULL,
			finished_timestamp TIMESTAMP,
			dataflows_total INTEGER NOT NULL DEFAULT 0,
			dataflows_failed INTEGER NOT NULL DEFAULT 0,
			entries_inserted INTEGER NOT NULL DEFAULT 0
		)`,
	)

	if err != nil {
		return fmt.Errorf("error creating crawl_run table: %w", err)
	}

	return nil
}

// Start records the beginning of a crawl run and returns its id
func (d *CrawlRunDAO) Start(ctx context.Context) (string, error) {
	id := uuid.New().String()

	_, err := d.Db.ExecContext(
		ctx,
		`INSERT INTO crawl_run(run_id, started_timestamp) VALUES (?, ?)`,
		id,
		time.Now().UTC(),
	)

	if err != nil {
		return "", fmt.Errorf("error inserting crawl run: %w", err)
	}

	return id, nil
}

// Finish records the outcome of a crawl run
func (d *CrawlRunDAO) Finish(
	ctx context.Context,
	runID string,
	dataflowsTotal int,
	dataflowsFailed int,
	entriesInserted int,
) error {
	_, err := d.Db.ExecContext(
		ctx,
		`UPDATE crawl_run
		SET finished_timestamp = ?, dataflows_total = ?, dataflows_failed = ?, entries_inserted = ?
		WHERE run_id = ?`,
		time.Now().UTC(),
		dataflowsTotal,
		dataflowsFailed,
		entriesInserted,
		runID,
	)

	if err != nil {
		return fmt.Errorf("error finishing crawl run: %w", err)
	}

	return nil
}

// FindLatest returns the most recently started crawl run, or nil if no
// crawl has ever run
func (d *CrawlRunDAO) FindLatest(ctx context.Context) (*data.CrawlRun, error) {
	var run data.CrawlRun
	var finished sql.NullTime

	err := d.Db.QueryRowContext(
		ctx,
		`SELECT run_id, started_timestamp, finished_timestamp,
			dataflows_total, dataflows_failed, entries_inserted
		FROM crawl_run
		ORDER BY started_timestamp DESC
		LIMIT 1`,
	).Scan(
		&run.ID,
		&run.StartedAt,
		&finished,
		&run.DataflowsTotal,
		&run.DataflowsFailed,
		&run.EntriesInserted,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error finding latest crawl run: %w", err)
	}

	if finished.Valid {
		run.FinishedAt = &finished.Time
	}

	return &run, nil
}
