package data

// Dataflow represents a remote dataset definition from the SDMX catalog
// Immutable once fetched; cached by id for the process lifetime
type Dataflow struct {
	ID          string              `json:"id"`
	Label       string              `json:"label"`
	Description string              `json:"description"`
	Structure   *DimensionStructure `json:"structure"`
}

// DataflowRef is the listing form of a dataflow: its id and display label
type DataflowRef struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// DimensionValue is one permitted (code, label) pair for a dimension
type DimensionValue struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Dimension is a named axis of a dataflow with its permitted values
// Values keep the order declared by the remote codelist
type Dimension struct {
	Key    string           `json:"key"`
	Values []DimensionValue `json:"values"`
}

// DimensionStructure is the ordered set of dimensions declared for a dataflow
// Order matches the remote query key ordering and must not be re-sorted
type DimensionStructure struct {
	Dimensions []Dimension `json:"dimensions"`
}

// Keys returns the dimension keys in declaration order
func (s *DimensionStructure) Keys() []string {
	keys := make([]string, 0, len(s.Dimensions))
	for _, dim := range s.Dimensions {
		keys = append(keys, dim.Key)
	}
	return keys
}

// HasKey reports whether the structure declares the given dimension key
func (s *DimensionStructure) HasKey(key string) bool {
	for _, dim := range s.Dimensions {
		if dim.Key == key {
			return true
		}
	}
	return false
}
