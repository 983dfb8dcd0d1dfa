package parser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/justintemps/ilostat-simple-summarizer/server/data"
	"github.com/justintemps/ilostat-simple-summarizer/server/sdmxdata"
)

const timePeriodColumn = "TIME_PERIOD"
const valueColumn = "value"

// ParseDataflow interprets a structure message into the domain model of a
// single dataflow: its labels and its ordered dimension structure with the
// permitted codes of each dimension
func ParseDataflow(
	msg *sdmxdata.StructureMessage,
	dataflowID string,
) (*data.Dataflow, error) {
	flow := findDataflow(msg, dataflowID)
	if flow == nil {
		return nil, fmt.Errorf("structure message does not contain dataflow %s", dataflowID)
	}

	dsd := findDataStructure(msg, flow.Structure)
	if dsd == nil {
		return nil, fmt.Errorf("structure message does not contain a data structure for %s", dataflowID)
	}

	components := make([]sdmxdata.DimensionComponent, len(dsd.DataStructureComponents.DimensionList.Dimensions))
	copy(components, dsd.DataStructureComponents.DimensionList.Dimensions)
	sort.SliceStable(components, func(i, j int) bool {
		return components[i].Position < components[j].Position
	})

	dimensions := make([]data.Dimension, 0, len(components))
	for _, component := range components {
		dimension := data.Dimension{Key: component.ID}

		if codelist := findCodelist(msg, component.LocalRepresentation.Enumeration); codelist != nil {
			dimension.Values = make([]data.DimensionValue, 0, len(codelist.Codes))
			for _, code := range codelist.Codes {
				dimension.Values = append(dimension.Values, data.DimensionValue{
					Code:  code.ID,
					Label: sdmxdata.LocalizedString(code.Name),
				})
			}
		}

		dimensions = append(dimensions, dimension)
	}

	if len(dimensions) == 0 {
		return nil, fmt.Errorf("data structure for %s declares no dimensions", dataflowID)
	}

	return &data.Dataflow{
		ID:          flow.ID,
		Label:       sdmxdata.LocalizedString(flow.Name),
		Description: sdmxdata.LocalizedString(flow.Description),
		Structure:   &data.DimensionStructure{Dimensions: dimensions},
	}, nil
}

// ParseConstraints extracts the content constraints of a structure message
// as typed domain constraints
func ParseConstraints(msg *sdmxdata.StructureMessage) []data.Constraint {
	constraints := make([]data.Constraint, 0, len(msg.Data.ContentConstraints))

	for _, constraint := range msg.Data.ContentConstraints {
		regions := make([]data.ContentRegion, 0, len(constraint.CubeRegions))
		for _, region := range constraint.CubeRegions {
			members := make(map[string][]string, len(region.KeyValues))
			for _, keyValue := range region.KeyValues {
				members[keyValue.ID] = keyValue.Values
			}
			regions = append(regions, data.ContentRegion{
				Included: region.IsIncluded,
				Members:  members,
			})
		}
		constraints = append(constraints, data.Constraint{
			ID:             constraint.ID,
			ContentRegions: regions,
		})
	}

	return constraints
}

// FlattenResult is the tabular form of a data message plus a count of the
// data sets the flattening did not consult
type FlattenResult struct {
	Result            *data.QueryResult
	DiscardedDataSets int
}

// FlattenDataMessage shapes a data message into rows. Only the first data
// set is consulted; the caller decides what to do about discarded ones.
// A message with no data sets or no observations yields ErrEmptyResult
func FlattenDataMessage(msg *sdmxdata.DataMessage) (*FlattenResult, error) {
	if msg == nil || len(msg.Data.DataSets) == 0 {
		return nil, data.ErrEmptyResult
	}

	primaryDataSet := msg.Data.DataSets[0]
	discarded := len(msg.Data.DataSets) - 1

	seriesDims := msg.Data.Structure.Dimensions.Series
	timeDim := findObservationDimension(msg, timePeriodColumn)
	if timeDim == nil {
		return nil, fmt.Errorf("data message declares no %s observation dimension", timePeriodColumn)
	}

	columns := make([]string, 0, len(seriesDims)+2)
	for _, dim := range seriesDims {
		columns = append(columns, dim.ID)
	}
	columns = append(columns, timePeriodColumn, valueColumn)

	// Series maps are unordered; sort keys so the row order is stable
	seriesKeys := make([]string, 0, len(primaryDataSet.Series))
	for key := range primaryDataSet.Series {
		seriesKeys = append(seriesKeys, key)
	}
	sort.Strings(seriesKeys)

	var rows []data.QueryRow
	for _, seriesKey := range seriesKeys {
		codes, err := resolveSeriesKey(seriesKey, seriesDims)
		if err != nil {
			return nil, err
		}

		series := primaryDataSet.Series[seriesKey]
		obsKeys := make([]int, 0, len(series.Observations))
		for obsKey := range series.Observations {
			idx, err := strconv.Atoi(obsKey)
			if err != nil {
				return nil, fmt.Errorf("malformed observation key %q in series %s", obsKey, seriesKey)
			}
			obsKeys = append(obsKeys, idx)
		}
		sort.Ints(obsKeys)

		for _, obsIdx := range obsKeys {
			if obsIdx < 0 || obsIdx >= len(timeDim.Values) {
				return nil, fmt.Errorf("observation index %d out of range in series %s", obsIdx, seriesKey)
			}

			observation := series.Observations[strconv.Itoa(obsIdx)]
			var value *float64
			if len(observation) > 0 {
				value = observation[0]
			}

			rows = append(rows, data.QueryRow{
				Dimensions: codes,
				TimePeriod: timeDim.Values[obsIdx].ID,
				Value:      value,
			})
		}
	}

	if len(rows) == 0 {
		return nil, data.ErrEmptyResult
	}

	return &FlattenResult{
		Result:            &data.QueryResult{Columns: columns, Rows: rows},
		DiscardedDataSets: discarded,
	}, nil
}

// resolveSeriesKey maps a colon-joined index key onto dimension codes
func resolveSeriesKey(
	seriesKey string,
	seriesDims []sdmxdata.DimensionValues,
) (map[string]string, error) {
	indexes := strings.Split(seriesKey, ":")
	if len(indexes) != len(seriesDims) {
		return nil, fmt.Errorf(
			"series key %q has %d segments, structure declares %d series dimensions",
			seriesKey, len(indexes), len(seriesDims),
		)
	}

	codes := make(map[string]string, len(seriesDims))
	for i, raw := range indexes {
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("malformed series key %q", seriesKey)
		}
		if idx < 0 || idx >= len(seriesDims[i].Values) {
			return nil, fmt.Errorf(
				"series key %q index %d out of range for dimension %s",
				seriesKey, idx, seriesDims[i].ID,
			)
		}
		codes[seriesDims[i].ID] = seriesDims[i].Values[idx].ID
	}

	return codes, nil
}

func findDataflow(msg *sdmxdata.StructureMessage, dataflowID string) *sdmxdata.DataflowResource {
	for i := range msg.Data.Dataflows {
		if msg.Data.Dataflows[i].ID == dataflowID {
			return &msg.Data.Dataflows[i]
		}
	}
	return nil
}

// findDataStructure matches the dataflow's structure reference against the
// declared DSDs, by URN first and by embedded id as a fallback
func findDataStructure(msg *sdmxdata.StructureMessage, structureRef string) *sdmxdata.DataStructure {
	structures := msg.Data.DataStructures
	for i := range structures {
		if structures[i].URN != "" && structures[i].URN == structureRef {
			return &structures[i]
		}
	}
	for i := range structures {
		if structures[i].ID != "" && strings.Contains(structureRef, structures[i].ID) {
			return &structures[i]
		}
	}
	if len(structures) == 1 {
		return &structures[0]
	}
	return nil
}

func findCodelist(msg *sdmxdata.StructureMessage, enumeration string) *sdmxdata.Codelist {
	if enumeration == "" {
		return nil
	}
	codelists := msg.Data.Codelists
	for i := range codelists {
		if codelists[i].URN != "" && codelists[i].URN == enumeration {
			return &codelists[i]
		}
	}
	for i := range codelists {
		if codelists[i].ID != "" && strings.Contains(enumeration, codelists[i].ID) {
			return &codelists[i]
		}
	}
	return nil
}

func findObservationDimension(msg *sdmxdata.DataMessage, id string) *sdmxdata.DimensionValues {
	observation := msg.Data.Structure.Dimensions.Observation
	for i := range observation {
		if observation[i].ID == id {
			return &observation[i]
		}
	}
	return nil
}
