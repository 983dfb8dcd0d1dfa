package sdmxdata

// DataMessage is the SDMX-JSON data message returned by the /data endpoint.
// Series are keyed by colon-joined value indexes into the series dimensions
// ("0:2:1"), observations by the index into the observation dimension
// (TIME_PERIOD)
type DataMessage struct {
	Data DataPayload `json:"data"`
}

type DataPayload struct {
	Structure DataStructureInfo `json:"structure"`
	DataSets  []DataSet         `json:"dataSets"`
}

type DataStructureInfo struct {
	Dimensions DataDimensions `json:"dimensions"`
}

type DataDimensions struct {
	Series      []DimensionValues `json:"series"`
	Observation []DimensionValues `json:"observation"`
}

// DimensionValues lists the values a dimension takes in this message,
// in the order the series/observation indexes refer to
type DimensionValues struct {
	ID     string      `json:"id"`
	Values []CodeValue `json:"values"`
}

type CodeValue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type DataSet struct {
	Action string            `json:"action"`
	Series map[string]Series `json:"series"`
}

// Series carries the observations of one dimension-code combination.
// Observation arrays hold the value first; a null or absent value means
// the observation is missing
type Series struct {
	Observations map[string][]*float64 `json:"observations"`
}
