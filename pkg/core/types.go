package core

import (
	"time"

	"github.com/google/uuid"
)

// DatasetType classifies the physical shape of a dataset.
type DatasetType string

// Dataset type constants.
const (
	DatasetTable  DatasetType = "table"
	DatasetFile   DatasetType = "file"
	DatasetStream DatasetType = "stream"
	DatasetView   DatasetType = "view"
	DatasetAPI    DatasetType = "api"
)

// JobType classifies the kind of process a job performs.
type JobType string

// Job type constants.
const (
	JobETL       JobType = "etl"
	JobQuery     JobType = "query"
	JobTransform JobType = "transform"
	JobCopy      JobType = "copy"
	JobSync      JobType = "sync"
	JobPipeline  JobType = "pipeline"
)

// RunStatus is the OpenLineage-style event status of a run.
type RunStatus string

// Run status constants.
const (
	RunStart    RunStatus = "START"
	RunComplete RunStatus = "COMPLETE"
	RunFail     RunStatus = "FAIL"
	RunAbort    RunStatus = "ABORT"
	RunOther    RunStatus = "OTHER"
)

// QualifiedName builds the unique identity key for a namespaced entity.
// Callers must avoid "." inside the namespace or name components; the
// scheme does not escape reserved characters.
func QualifiedName(namespace, name string) string {
	return namespace + "." + name
}

// SchemaField describes a single column of a dataset schema.
type SchemaField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Dataset is a named, namespaced data artifact.
type Dataset struct {
	Namespace    string         `json:"namespace"`
	Name         string         `json:"name"`
	Type         DatasetType    `json:"type"`
	SchemaFields []SchemaField  `json:"schema_fields,omitempty"`
	Properties   map[string]any `json:"properties,omitempty"`
}

// QualifiedName returns the dataset identity key (namespace.name).
func (d *Dataset) QualifiedName() string {
	return QualifiedName(d.Namespace, d.Name)
}

// WithoutSchema returns a copy of the dataset with schema fields stripped.
// The receiver is not mutated.
func (d *Dataset) WithoutSchema() *Dataset {
	copied := *d
	copied.SchemaFields = nil
	return &copied
}

// Job is a named, namespaced process that consumes and/or produces datasets.
type Job struct {
	Namespace   string         `json:"namespace"`
	Name        string         `json:"name"`
	Type        JobType        `json:"type"`
	Description string         `json:"description,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
}

// QualifiedName returns the job identity key (namespace.name).
func (j *Job) QualifiedName() string {
	return QualifiedName(j.Namespace, j.Name)
}

// Run is one execution instance of a job. Runs are append-only: a status
// change is recorded by registering a new run, never by mutating an
// existing one. Datasets and the job are referenced by qualified name and
// must already be registered.
type Run struct {
	ID         uuid.UUID      `json:"run_id"`
	Job        string         `json:"job"`
	Status     RunStatus      `json:"status"`
	StartedAt  time.Time      `json:"started_at"`
	EndedAt    *time.Time     `json:"ended_at,omitempty"`
	Inputs     []string       `json:"input_datasets"`
	Outputs    []string       `json:"output_datasets"`
	Properties map[string]any `json:"properties,omitempty"`
}

// ColumnLineage is a fine-grained source-column-to-target-column mapping.
// It is tracked independently of the table-level graph and carries no
// referential-integrity requirement against it.
type ColumnLineage struct {
	SourceDataset  string `json:"source_dataset"`
	SourceColumn   string `json:"source_column"`
	TargetDataset  string `json:"target_dataset"`
	TargetColumn   string `json:"target_column"`
	Transformation string `json:"transformation,omitempty"`
	JobName        string `json:"job_name"`
}
