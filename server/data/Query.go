package data

// DimensionSelection maps a dimension key to a single selected code
// Keys that are absent, or present with an empty value, are treated as
// wildcards by the remote API
type DimensionSelection map[string]string

// QueryParams holds the optional time-range bounds of a data query
// An empty period means "unbounded" on that side
type QueryParams struct {
	StartPeriod string `json:"startPeriod"`
	EndPeriod   string `json:"endPeriod"`
}

// QueryRow is one observation of a query result: the dimension codes the
// series was keyed by, the time period, and the observation value
// Value is nil when the backend supplied an empty or missing observation
type QueryRow struct {
	Dimensions map[string]string `json:"dimensions"`
	TimePeriod string            `json:"timePeriod"`
	Value      *float64          `json:"value"`
}

// QueryResult is the tabular shape of a remote data response
// Columns lists the series dimension keys in structure order followed by
// TIME_PERIOD and value; the column set is dataflow-dependent
type QueryResult struct {
	Columns []string   `json:"columns"`
	Rows    []QueryRow `json:"rows"`
}
