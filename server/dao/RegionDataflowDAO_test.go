package dao

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justintemps/ilostat-simple-summarizer/server/data"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// The pool must not open a second connection; every in-memory
	// connection is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	return db
}

func newRegionDAO(t *testing.T) *RegionDataflowDAO {
	t.Helper()

	d := &RegionDataflowDAO{Db: newTestDB(t)}
	require.NoError(t, d.InitSchema(context.Background()))
	return d
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	d := newRegionDAO(t)
	assert.NoError(t, d.InitSchema(context.Background()))
}

func TestInsertIgnoresDuplicatePairs(t *testing.T) {
	d := newRegionDAO(t)
	ctx := context.Background()

	entry := data.RegionDataflow{Region: "ITA", Dataflow: "DF_UNE"}
	require.NoError(t, d.Insert(ctx, entry))
	require.NoError(t, d.Insert(ctx, entry))

	count, err := d.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInsertBatchCountsOnlyNewRows(t *testing.T) {
	d := newRegionDAO(t)
	ctx := context.Background()

	require.NoError(t, d.Insert(ctx, data.RegionDataflow{Region: "ITA", Dataflow: "DF_UNE"}))

	inserted, err := d.InsertBatch(ctx, []data.RegionDataflow{
		{Region: "ITA", Dataflow: "DF_UNE"},
		{Region: "FRA", Dataflow: "DF_UNE"},
		{Region: "ITA", Dataflow: "DF_EMP"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	count, err := d.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestInsertBatchEmpty(t *testing.T) {
	d := newRegionDAO(t)

	inserted, err := d.InsertBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestFindDataflowsByRegion(t *testing.T) {
	d := newRegionDAO(t)
	ctx := context.Background()

	_, err := d.InsertBatch(ctx, []data.RegionDataflow{
		{Region: "ITA", Dataflow: "DF_UNE"},
		{Region: "ITA", Dataflow: "DF_EMP"},
		{Region: "FRA", Dataflow: "DF_UNE"},
	})
	require.NoError(t, err)

	dataflows, err := d.FindDataflowsByRegion(ctx, "ITA")
	require.NoError(t, err)
	assert.Equal(t, []string{"DF_EMP", "DF_UNE"}, dataflows)

	dataflows, err = d.FindDataflowsByRegion(ctx, "DEU")
	require.NoError(t, err)
	assert.Empty(t, dataflows)
}

func TestFindRegions(t *testing.T) {
	d := newRegionDAO(t)
	ctx := context.Background()

	_, err := d.InsertBatch(ctx, []data.RegionDataflow{
		{Region: "ITA", Dataflow: "DF_UNE"},
		{Region: "FRA", Dataflow: "DF_UNE"},
		{Region: "ITA", Dataflow: "DF_EMP"},
	})
	require.NoError(t, err)

	regions, err := d.FindRegions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"FRA", "ITA"}, regions)
}
