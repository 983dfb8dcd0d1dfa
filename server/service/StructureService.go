package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/singleflight"

	"github.com/justintemps/ilostat-simple-summarizer/server/data"
	"github.com/justintemps/ilostat-simple-summarizer/server/httpclient"
	"github.com/justintemps/ilostat-simple-summarizer/server/parser"
)

// StructureService resolves and caches dataflow structures. A structure is
// fetched at most once per process: cached entries are served without a
// remote round trip, and concurrent first resolutions of the same id
// collapse into a single remote call
type StructureService struct {
	Client CatalogClient

	mu    sync.RWMutex
	cache map[string]*data.Dataflow
	group singleflight.Group
}

func NewStructureService(client CatalogClient) *StructureService {
	return &StructureService{
		Client: client,
		cache:  make(map[string]*data.Dataflow),
	}
}

// Resolve returns the dataflow with its dimension structure, from cache
// when possible. An unknown id or an uninterpretable structure message
// yields StructureNotFoundError
func (s *StructureService) Resolve(
	ctx context.Context,
	dataflowID string,
) (*data.Dataflow, error) {
	s.mu.RLock()
	flow, ok := s.cache[dataflowID]
	s.mu.RUnlock()
	if ok {
		return flow, nil
	}

	result, err, _ := s.group.Do(dataflowID, func() (interface{}, error) {
		// A concurrent flight may have populated the cache already
		s.mu.RLock()
		flow, ok := s.cache[dataflowID]
		s.mu.RUnlock()
		if ok {
			return flow, nil
		}

		flow, err := s.fetch(ctx, dataflowID)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.cache[dataflowID] = flow
		s.mu.Unlock()

		s.logInfo(fmt.Sprintf("Resolved structure for %s (%d dimensions)", dataflowID, len(flow.Structure.Dimensions)))
		return flow, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*data.Dataflow), nil
}

// Constraints fetches and interprets the content constraints of a dataflow.
// Constraint messages are not cached; the crawler touches each dataflow
// exactly once per run
func (s *StructureService) Constraints(
	ctx context.Context,
	dataflowID string,
) ([]data.Constraint, error) {
	msg, err := s.Client.GetDataflow(ctx, dataflowID)
	if err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return nil, &data.StructureNotFoundError{Dataflow: dataflowID}
		}
		return nil, err
	}

	return parser.ParseConstraints(msg), nil
}

func (s *StructureService) fetch(
	ctx context.Context,
	dataflowID string,
) (*data.Dataflow, error) {
	msg, err := s.Client.GetDataflow(ctx, dataflowID)
	if err != nil {
		if errors.Is(err, httpclient.ErrNotFound) {
			return nil, &data.StructureNotFoundError{Dataflow: dataflowID}
		}
		return nil, err
	}

	flow, err := parser.ParseDataflow(msg, dataflowID)
	if err != nil {
		return nil, &data.StructureNotFoundError{Dataflow: dataflowID, Reason: err.Error()}
	}

	return flow, nil
}

func (s *StructureService) logInfo(message string) {
	log.Info(fmt.Sprintf("Structure Resolver: %v", message))
}
