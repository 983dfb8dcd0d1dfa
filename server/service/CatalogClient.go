package service

import (
	"context"

	"github.com/justintemps/ilostat-simple-summarizer/server/data"
	"github.com/justintemps/ilostat-simple-summarizer/server/sdmxdata"
)

// CatalogClient is the remote catalog surface the services depend on.
// httpclient.SDMXClient implements it; tests substitute fakes
type CatalogClient interface {
	ListDataflows(ctx context.Context) ([]string, error)
	GetDataflow(ctx context.Context, dataflowID string) (*sdmxdata.StructureMessage, error)
	QueryData(ctx context.Context, dataflowID string, key string, params data.QueryParams) (*sdmxdata.DataMessage, error)
}
