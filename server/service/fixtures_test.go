package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/justintemps/ilostat-simple-summarizer/server/dao"
	"github.com/justintemps/ilostat-simple-summarizer/server/data"
	"github.com/justintemps/ilostat-simple-summarizer/server/httpclient"
	"github.com/justintemps/ilostat-simple-summarizer/server/sdmxdata"
)

// fakeCatalogClient is an in-memory CatalogClient that records every call
type fakeCatalogClient struct {
	mu         sync.Mutex
	structures map[string]*sdmxdata.StructureMessage
	dataMsg    map[string]*sdmxdata.DataMessage
	getErr     map[string]error

	getCalls   map[string]int
	queryCalls int
	lastKey    string
	lastParams data.QueryParams
}

func newFakeCatalogClient() *fakeCatalogClient {
	return &fakeCatalogClient{
		structures: make(map[string]*sdmxdata.StructureMessage),
		dataMsg:    make(map[string]*sdmxdata.DataMessage),
		getErr:     make(map[string]error),
		getCalls:   make(map[string]int),
	}
}

func (f *fakeCatalogClient) ListDataflows(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, 0, len(f.structures))
	for id := range f.structures {
		ids = append(ids, id)
	}
	for id := range f.getErr {
		if _, ok := f.structures[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeCatalogClient) GetDataflow(
	ctx context.Context,
	dataflowID string,
) (*sdmxdata.StructureMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.getCalls[dataflowID]++
	if err, ok := f.getErr[dataflowID]; ok {
		return nil, err
	}
	if msg, ok := f.structures[dataflowID]; ok {
		return msg, nil
	}
	return nil, httpclient.ErrNotFound
}

func (f *fakeCatalogClient) QueryData(
	ctx context.Context,
	dataflowID string,
	key string,
	params data.QueryParams,
) (*sdmxdata.DataMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queryCalls++
	f.lastKey = key
	f.lastParams = params

	if msg, ok := f.dataMsg[dataflowID]; ok {
		return msg, nil
	}
	return nil, data.ErrEmptyResult
}

type testDim struct {
	key   string
	codes []string
}

// newStructureMessage builds a structure message for one dataflow with the
// given dimensions and one content constraint per member map
func newStructureMessage(
	dataflowID string,
	dims []testDim,
	regions ...map[string][]string,
) *sdmxdata.StructureMessage {
	dsdURN := "urn:sdmx:org.sdmx.infomodel.datastructure.DataStructure=ILO:DSD_" + dataflowID + "(1.0)"

	components := make([]sdmxdata.DimensionComponent, 0, len(dims))
	codelists := make([]sdmxdata.Codelist, 0, len(dims))
	for i, dim := range dims {
		clURN := "urn:sdmx:org.sdmx.infomodel.codelist.Codelist=ILO:CL_" + dim.key + "(1.0)"
		components = append(components, sdmxdata.DimensionComponent{
			ID:                  dim.key,
			Position:            i,
			LocalRepresentation: sdmxdata.LocalRepresentation{Enumeration: clURN},
		})

		codes := make([]sdmxdata.Code, 0, len(dim.codes))
		for _, code := range dim.codes {
			codes = append(codes, sdmxdata.Code{
				ID:   code,
				Name: map[string]string{"en": code + " label"},
			})
		}
		codelists = append(codelists, sdmxdata.Codelist{ID: "CL_" + dim.key, URN: clURN, Codes: codes})
	}

	constraints := make([]sdmxdata.ContentConstraint, 0, len(regions))
	for i, members := range regions {
		keyValues := make([]sdmxdata.KeyValue, 0, len(members))
		keys := make([]string, 0, len(members))
		for key := range members {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			keyValues = append(keyValues, sdmxdata.KeyValue{ID: key, Values: members[key]})
		}
		constraints = append(constraints, sdmxdata.ContentConstraint{
			ID:          "CC_" + dataflowID + "_" + string(rune('A'+i)),
			CubeRegions: []sdmxdata.CubeRegion{{IsIncluded: true, KeyValues: keyValues}},
		})
	}

	return &sdmxdata.StructureMessage{
		Data: sdmxdata.StructurePayload{
			Dataflows: []sdmxdata.DataflowResource{{
				ID:          dataflowID,
				Name:        map[string]string{"en": dataflowID + " name"},
				Description: map[string]string{"en": dataflowID + " description"},
				Structure:   dsdURN,
			}},
			DataStructures: []sdmxdata.DataStructure{{
				ID:  "DSD_" + dataflowID,
				URN: dsdURN,
				DataStructureComponents: sdmxdata.DataStructureComponents{
					DimensionList: sdmxdata.DimensionList{Dimensions: components},
				},
			}},
			Codelists:          codelists,
			ContentConstraints: constraints,
		},
	}
}

func floatPtr(v float64) *float64 { return &v }

// newDataMessage builds a single-series data message with one observation
// per time period
func newDataMessage(
	seriesCodes map[string]string,
	seriesOrder []string,
	periods []string,
	values []*float64,
) *sdmxdata.DataMessage {
	seriesDims := make([]sdmxdata.DimensionValues, 0, len(seriesOrder))
	keyParts := make([]string, 0, len(seriesOrder))
	for _, dim := range seriesOrder {
		seriesDims = append(seriesDims, sdmxdata.DimensionValues{
			ID:     dim,
			Values: []sdmxdata.CodeValue{{ID: seriesCodes[dim]}},
		})
		keyParts = append(keyParts, "0")
	}

	timeValues := make([]sdmxdata.CodeValue, 0, len(periods))
	for _, period := range periods {
		timeValues = append(timeValues, sdmxdata.CodeValue{ID: period})
	}

	observations := make(map[string][]*float64, len(values))
	for i, value := range values {
		observations[intKey(i)] = []*float64{value}
	}

	return &sdmxdata.DataMessage{
		Data: sdmxdata.DataPayload{
			Structure: sdmxdata.DataStructureInfo{
				Dimensions: sdmxdata.DataDimensions{
					Series: seriesDims,
					Observation: []sdmxdata.DimensionValues{
						{ID: "TIME_PERIOD", Values: timeValues},
					},
				},
			},
			DataSets: []sdmxdata.DataSet{{
				Series: map[string]sdmxdata.Series{
					joinKey(keyParts): {Observations: observations},
				},
			}},
		},
	}
}

func intKey(i int) string {
	return string(rune('0' + i))
}

func joinKey(parts []string) string {
	key := ""
	for i, part := range parts {
		if i > 0 {
			key += ":"
		}
		key += part
	}
	return key
}

// newTestStore opens an in-memory region index with initialized schema
func newTestStore(t *testing.T) (*dao.RegionDataflowDAO, *dao.CrawlRunDAO) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// The pool must not open a second connection; every in-memory
	// connection is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	regionDAO := &dao.RegionDataflowDAO{Db: db}
	crawlRunDAO := &dao.CrawlRunDAO{Db: db}
	require.NoError(t, regionDAO.InitSchema(context.Background()))
	require.NoError(t, crawlRunDAO.InitSchema(context.Background()))

	return regionDAO, crawlRunDAO
}
