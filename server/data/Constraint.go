package data

import "time"

// RefAreaDimension is the constraint member key that carries region codes
const RefAreaDimension = "REF_AREA"

// ContentRegion is one set of permitted values per dimension within a
// constraint, keyed by dimension key
type ContentRegion struct {
	Included bool                `json:"included"`
	Members  map[string][]string `json:"members"`
}

// Constraint is a remote-declared restriction on which dimension code
// combinations actually have data for a dataflow
type Constraint struct {
	ID             string          `json:"id"`
	ContentRegions []ContentRegion `json:"contentRegions"`
}

// RegionDataflow is one (region code, dataflow id) pair of the local
// region index. The store enforces uniqueness of the pair
type RegionDataflow struct {
	Region   string `json:"region"`
	Dataflow string `json:"dataflow"`
}

// CrawlRun records one execution of the region-index crawler
type CrawlRun struct {
	ID              string     `json:"id"`
	StartedAt       time.Time  `json:"startedAt"`
	FinishedAt      *time.Time `json:"finishedAt"`
	DataflowsTotal  int        `json:"dataflowsTotal"`
	DataflowsFailed int        `json:"dataflowsFailed"`
	EntriesInserted int        `json:"entriesInserted"`
}
