package service

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/justintemps/ilostat-simple-summarizer/server/dao"
	"github.com/justintemps/ilostat-simple-summarizer/server/data"
)

// DataflowService is the consumer-facing surface over the core: dataflow
// listings served from the locally built region index, labels and
// descriptions from the structure resolver, and dimension listings with
// the REF_AREA axis stripped (the caller pins it to the selected area)
type DataflowService struct {
	Structures *StructureService
	RegionDAO  *dao.RegionDataflowDAO
}

// GetRegions lists every region code present in the index
func (s *DataflowService) GetRegions(ctx context.Context) ([]string, error) {
	return s.RegionDAO.FindRegions(ctx)
}

// GetDataflows lists the dataflows indexed for an area. Labels come from
// the structure resolver's cache; a dataflow whose structure cannot be
// resolved is still listed, by id only
func (s *DataflowService) GetDataflows(
	ctx context.Context,
	area string,
) ([]data.DataflowRef, error) {
	ids, err := s.RegionDAO.FindDataflowsByRegion(ctx, area)
	if err != nil {
		return nil, err
	}

	refs := make([]data.DataflowRef, 0, len(ids))
	for _, id := range ids {
		flow, err := s.Structures.Resolve(ctx, id)
		if err != nil {
			s.logWarn(fmt.Sprintf("Could not resolve label for %s: %v", id, err))
			refs = append(refs, data.DataflowRef{ID: id})
			continue
		}
		refs = append(refs, data.DataflowRef{ID: id, Label: flow.Label})
	}

	return refs, nil
}

// GetDataflowLabel returns the display label of a dataflow
func (s *DataflowService) GetDataflowLabel(ctx context.Context, dataflowID string) (string, error) {
	flow, err := s.Structures.Resolve(ctx, dataflowID)
	if err != nil {
		return "", err
	}
	return flow.Label, nil
}

// GetDataflowDescription returns the description of a dataflow
func (s *DataflowService) GetDataflowDescription(ctx context.Context, dataflowID string) (string, error) {
	flow, err := s.Structures.Resolve(ctx, dataflowID)
	if err != nil {
		return "", err
	}
	return flow.Description, nil
}

// GetAreaDimensions lists the dimensions a caller can constrain for a
// dataflow in an area. REF_AREA is excluded because the caller supplies it
func (s *DataflowService) GetAreaDimensions(
	ctx context.Context,
	area string,
	dataflowID string,
) ([]data.Dimension, error) {
	flow, err := s.Structures.Resolve(ctx, dataflowID)
	if err != nil {
		return nil, err
	}

	dimensions := make([]data.Dimension, 0, len(flow.Structure.Dimensions))
	for _, dimension := range flow.Structure.Dimensions {
		if dimension.Key == data.RefAreaDimension {
			if area != "" && !hasCode(dimension, area) {
				s.logWarn(fmt.Sprintf("Area %s is not a declared %s code of %s", area, data.RefAreaDimension, dataflowID))
			}
			continue
		}
		dimensions = append(dimensions, dimension)
	}

	return dimensions, nil
}

func hasCode(dimension data.Dimension, code string) bool {
	for _, value := range dimension.Values {
		if value.Code == code {
			return true
		}
	}
	return false
}

func (s *DataflowService) logWarn(message string) {
	log.Warn(fmt.Sprintf("Dataflow Service: %v", message))
}
