package sdmxdata

// StructureMessage is the SDMX-JSON structure message returned by the
// /dataflow endpoint. With references=all it carries the dataflow itself,
// its data structure definition, the codelists the dimensions enumerate,
// and the content constraints declared for the flow
type StructureMessage struct {
	Data StructurePayload `json:"data"`
}

type StructurePayload struct {
	Dataflows          []DataflowResource  `json:"dataflows"`
	DataStructures     []DataStructure     `json:"dataStructures"`
	Codelists          []Codelist          `json:"codelists"`
	ContentConstraints []ContentConstraint `json:"contentConstraints"`
}

// DataflowResource is one dataflow entry of a structure message
// Name and Description are localized string maps keyed by language tag
type DataflowResource struct {
	ID          string            `json:"id"`
	Name        map[string]string `json:"name"`
	Description map[string]string `json:"description"`
	Structure   string            `json:"structure"`
}

type DataStructure struct {
	ID                      string                  `json:"id"`
	URN                     string                  `json:"urn"`
	DataStructureComponents DataStructureComponents `json:"dataStructureComponents"`
}

type DataStructureComponents struct {
	DimensionList DimensionList `json:"dimensionList"`
}

type DimensionList struct {
	Dimensions []DimensionComponent `json:"dimensions"`
}

// DimensionComponent declares one dimension of a DSD. Position fixes the
// dimension's place in the query key; the local representation references
// the codelist that enumerates the permitted codes
type DimensionComponent struct {
	ID                  string              `json:"id"`
	Position            int                 `json:"position"`
	LocalRepresentation LocalRepresentation `json:"localRepresentation"`
}

type LocalRepresentation struct {
	Enumeration string `json:"enumeration"`
}

type Codelist struct {
	ID    string `json:"id"`
	URN   string `json:"urn"`
	Codes []Code `json:"codes"`
}

type Code struct {
	ID   string            `json:"id"`
	Name map[string]string `json:"name"`
}

// ContentConstraint restricts which code combinations have data
type ContentConstraint struct {
	ID          string       `json:"id"`
	CubeRegions []CubeRegion `json:"cubeRegions"`
}

// CubeRegion is one content region of a constraint: permitted values per
// dimension, keyed by dimension id
type CubeRegion struct {
	IsIncluded bool       `json:"isIncluded"`
	KeyValues  []KeyValue `json:"keyValues"`
}

type KeyValue struct {
	ID     string   `json:"id"`
	Values []string `json:"values"`
}

// LocalizedString picks the English entry of a localized string map,
// falling back to any available language
func LocalizedString(values map[string]string) string {
	if v, ok := values["en"]; ok {
		return v
	}
	for _, v := range values {
		return v
	}
	return ""
}
