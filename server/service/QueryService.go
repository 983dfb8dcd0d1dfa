package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/justintemps/ilostat-simple-summarizer/server/data"
	"github.com/justintemps/ilostat-simple-summarizer/server/parser"
)

// QueryService turns a sparse dimension selection into a valid remote data
// query and shapes the response into a tabular result
type QueryService struct {
	Structures *StructureService
	Client     CatalogClient
}

// Execute runs a data query for one dataflow. Selection keys must be
// declared by the dataflow's structure; keys with empty values and empty
// time-range params are dropped, which the remote API treats as wildcards.
// A well-formed response with no observations yields ErrEmptyResult
func (s *QueryService) Execute(
	ctx context.Context,
	dataflowID string,
	selection data.DimensionSelection,
	params data.QueryParams,
) (*data.QueryResult, error) {
	flow, err := s.Structures.Resolve(ctx, dataflowID)
	if err != nil {
		return nil, err
	}
	structure := flow.Structure

	// Reject undeclared dimension keys before any remote call
	for key := range selection {
		if !structure.HasKey(key) {
			return nil, &data.InvalidDimensionKeyError{Dataflow: dataflowID, Key: key}
		}
	}

	key := buildQueryKey(structure, selection)

	msg, err := s.Client.QueryData(ctx, dataflowID, key, params)
	if err != nil {
		return nil, err
	}

	flattened, err := parser.FlattenDataMessage(msg)
	if err != nil {
		return nil, err
	}

	if flattened.DiscardedDataSets > 0 {
		s.logWarn(fmt.Sprintf(
			"Query for %s returned %d data sets; only the first was consulted",
			dataflowID,
			flattened.DiscardedDataSets+1,
		))
	}

	s.logInfo(fmt.Sprintf("Query for %s returned %d rows", dataflowID, len(flattened.Result.Rows)))
	return flattened.Result, nil
}

// buildQueryKey joins the selected codes in structure order. Dimensions the
// selection does not constrain become empty segments, which the remote API
// matches against all codes
func buildQueryKey(structure *data.DimensionStructure, selection data.DimensionSelection) string {
	segments := make([]string, 0, len(structure.Dimensions))
	for _, dimension := range structure.Dimensions {
		segments = append(segments, selection[dimension.Key])
	}
	return strings.Join(segments, ".")
}

func (s *QueryService) logInfo(message string) {
	log.Info(fmt.Sprintf("Query Executor: %v", message))
}

func (s *QueryService) logWarn(message string) {
	log.Warn(fmt.Sprintf("Query Executor: %v", message))
}
