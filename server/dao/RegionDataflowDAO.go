package dao

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/justintemps/ilostat-simple-summarizer/server/data"
)

type RegionDataflowDAO struct {
	Db *sql.DB
}

// InitSchema creates the region index table if it does not exist. The
// composite uniqueness constraint on (region, dataflow) keeps re-crawls
// idempotent: duplicate pairs are ignored, never duplicated
func (d *RegionDataflowDAO) InitSchema(ctx context.Context) error {
	_, err := d.Db.ExecContext(
		ctx,
		`CREATE TABLE IF NOT EXISTS dataflows(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			region TEXT NOT NULL,
			dataflow TEXT NOT NULL,
			created_timestamp TIMESTAMP NOT NULL,
			UNIQUE(region, dataflow)
		)`,
	)

	if err != nil {
		return fmt.Errorf("error creating dataflows table: %w", err)
	}

	return nil
}

// Insert inserts a single region/dataflow pair. Inserting a pair that
// already exists is a no-op
func (d *RegionDataflowDAO) Insert(
	ctx context.Context,
	entry data.RegionDataflow,
) error {
	_, err := d.Db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO dataflows(region, dataflow, created_timestamp)
		VALUES (?, ?, ?)`,
		entry.Region,
		entry.Dataflow,
		time.Now().UTC(),
	)

	if err != nil {
		return fmt.Errorf("error inserting region dataflow entry: %w", err)
	}

	return nil
}

// InsertBatch inserts a dataflow's entries in a single transaction and
// returns how many rows were actually new. A crash mid-crawl therefore
// loses at most the in-flight dataflow's entries
func (d *RegionDataflowDAO) InsertBatch(
	ctx context.Context,
	entries []data.RegionDataflow,
) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := d.Db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT OR IGNORE INTO dataflows(region, dataflow, created_timestamp)
		VALUES (?, ?, ?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("error preparing statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	now := time.Now().UTC()
	for _, entry := range entries {
		result, err := stmt.ExecContext(ctx, entry.Region, entry.Dataflow, now)
		if err != nil {
			return 0, fmt.Errorf("error inserting region dataflow entry: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("error reading rows affected: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing transaction: %w", err)
	}

	return inserted, nil
}

// FindDataflowsByRegion returns the ids of every dataflow indexed for a
// region code
func (d *RegionDataflowDAO) FindDataflowsByRegion(
	ctx context.Context,
	region string,
) ([]string, error) {
	rows, err := d.Db.QueryContext(
		ctx,
		`SELECT dataflow FROM dataflows WHERE region = ? ORDER BY dataflow`,
		region,
	)
	if err != nil {
		return nil, fmt.Errorf("error finding dataflows by region: %w", err)
	}
	defer rows.Close()

	var dataflows []string
	for rows.Next() {
		var dataflow string
		if err := rows.Scan(&dataflow); err != nil {
			return nil, fmt.Errorf("error scanning dataflow row: %w", err)
		}
		dataflows = append(dataflows, dataflow)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dataflow rows: %w", err)
	}

	return dataflows, nil
}

// FindRegions returns every region code present in the index
func (d *RegionDataflowDAO) FindRegions(ctx context.Context) ([]string, error) {
	rows, err := d.Db.QueryContext(
		ctx,
		`SELECT DISTINCT region FROM dataflows ORDER BY region`,
	)
	if err != nil {
		return nil, fmt.Errorf("error finding regions: %w", err)
	}
	defer rows.Close()

	var regions []string
	for rows.Next() {
		var region string
		if err := rows.Scan(&region); err != nil {
			return nil, fmt.Errorf("error scanning region row: %w", err)
		}
		regions = append(regions, region)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating region rows: %w", err)
	}

	return regions, nil
}

// CountEntries returns the number of (region, dataflow) pairs in the index
func (d *RegionDataflowDAO) CountEntries(ctx context.Context) (int, error) {
	var count int
	err := d.Db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dataflows`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting region dataflow entries: %w", err)
	}
	return count, nil
}
