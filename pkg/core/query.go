package core

import "time"

// Direction selects which way a lineage traversal expands.
type Direction string

// Traversal directions.
const (
	DirectionUpstream   Direction = "upstream"
	DirectionDownstream Direction = "downstream"
	DirectionBoth       Direction = "both"
)

// Valid reports whether d is a recognized traversal direction.
func (d Direction) Valid() bool {
	switch d {
	case DirectionUpstream, DirectionDownstream, DirectionBoth:
		return true
	}
	return false
}

// QueryRequest describes a bounded-depth lineage traversal. DatasetName
// and JobName are case-insensitive substring patterns; every matching
// node becomes a start node.
type QueryRequest struct {
	DatasetName   string    `json:"dataset_name,omitempty"`
	JobName       string    `json:"job_name,omitempty"`
	Direction     Direction `json:"direction"`
	Depth         int       `json:"depth"`
	IncludeSchema bool      `json:"include_schema"`
}

// Relationship is one directed edge of a result graph.
type Relationship struct {
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	Type      string    `json:"type"`
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Graph is a self-contained projection of the lineage graph: the datasets
// and jobs of a connected node set, the edges between them, and the runs
// of the included jobs. It is an immutable snapshot; mutating it has no
// effect on the store it was extracted from.
type Graph struct {
	Datasets      map[string]*Dataset `json:"datasets"`
	Jobs          map[string]*Job     `json:"jobs"`
	Runs          []*Run              `json:"runs"`
	Relationships []Relationship      `json:"relationships"`
}

// NewGraph returns an empty result graph with initialized containers.
func NewGraph() *Graph {
	return &Graph{
		Datasets:      make(map[string]*Dataset),
		Jobs:          make(map[string]*Job),
		Runs:          []*Run{},
		Relationships: []Relationship{},
	}
}

// QueryResponse is the result of a lineage query.
type QueryResponse struct {
	Query           QueryRequest `json:"query"`
	Graph           *Graph       `json:"graph"`
	TotalDatasets   int          `json:"total_datasets"`
	TotalJobs       int          `json:"total_jobs"`
	ExecutionTimeMS int64        `json:"execution_time_ms"`
}

// RiskLevel grades the blast radius of a dataset change.
type RiskLevel string

// Risk levels, keyed off the affected-dataset count.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ImpactReport is the downstream-closure analysis for a dataset.
type ImpactReport struct {
	Dataset            string    `json:"dataset"`
	AffectedDatasets   int       `json:"affected_datasets"`
	AffectedJobs       int       `json:"affected_jobs"`
	DownstreamDatasets []string  `json:"downstream_datasets"`
	DownstreamJobs     []string  `json:"downstream_jobs"`
	RiskLevel          RiskLevel `json:"risk_level"`
}

// Metrics are aggregate statistics over the store, computed fresh on
// every call. ActiveJobs counts runs (not distinct jobs) currently in
// START status; FailedRuns counts FAIL runs started within the last 24h.
type Metrics struct {
	TotalDatasets    int       `json:"total_datasets"`
	TotalJobs        int       `json:"total_jobs"`
	TotalRuns        int       `json:"total_runs"`
	ActiveJobs       int       `json:"active_jobs"`
	FailedRuns       int       `json:"failed_runs"`
	AvgExecutionTime float64   `json:"avg_execution_time"`
	LastUpdated      time.Time `json:"last_updated"`
}

// ExportFormat selects a serialization of the full lineage graph.
type ExportFormat string

// Supported export formats.
const (
	ExportJSON    ExportFormat = "json"
	ExportGraphML ExportFormat = "graphml"
	ExportDOT     ExportFormat = "dot"
)
