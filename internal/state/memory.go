package state

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leaplineage/internal/dag"
	"github.com/leapstack-labs/leaplineage/pkg/core"
)

// MemoryStore keeps all state in process memory. Writes take the single
// writer lock and publish a cloned, extended graph; snapshot reads copy
// the record maps under the read lock and share the immutable graph.
type MemoryStore struct {
	mu       sync.RWMutex
	datasets map[string]*core.Dataset
	jobs     map[string]*core.Job
	runs     []*core.Run
	columns  []core.ColumnLineage
	graph    *dag.Graph
	logger   *slog.Logger
}

// NewMemoryStore creates an empty in-memory store. A nil logger discards.
func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MemoryStore{
		datasets: make(map[string]*core.Dataset),
		jobs:     make(map[string]*core.Job),
		graph:    dag.NewGraph(),
		logger:   logger,
	}
}

// AddDataset upserts a dataset by qualified name.
func (s *MemoryStore) AddDataset(ds *core.Dataset) error {
	if ds == nil || ds.Namespace == "" || ds.Name == "" {
		return core.Validationf("dataset requires namespace and name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	qn := ds.QualifiedName()
	s.datasets[qn] = ds

	g := s.graph.Clone()
	g.AddNode(dag.DatasetRef(qn), ds)
	s.graph = g

	s.logger.Debug("dataset registered", "qualified_name", qn, "type", ds.Type, "total_datasets", len(s.datasets))
	return nil
}

// AddJob upserts a job by qualified name.
func (s *MemoryStore) AddJob(job *core.Job) error {
	if job == nil || job.Namespace == "" || job.Name == "" {
		return core.Validationf("job requires namespace and name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	qn := job.QualifiedName()
	s.jobs[qn] = job

	g := s.graph.Clone()
	g.AddNode(dag.JobRef(qn), job)
	s.graph = g

	s.logger.Debug("job registered", "qualified_name", qn, "type", job.Type, "total_jobs", len(s.jobs))
	return nil
}

// AddRun appends a run and extends the graph with its input and output
// edges. References to unregistered datasets or jobs are rejected rather
// than materialized as bare nodes.
func (s *MemoryStore) AddRun(run *core.Run) error {
	if run == nil || run.Job == "" {
		return core.Validationf("run requires a job reference")
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[run.Job]; !ok {
		return core.Validationf("run %s references unregistered job %q", run.ID, run.Job)
	}
	for _, qn := range run.Inputs {
		if _, ok := s.datasets[qn]; !ok {
			return core.Validationf("run %s references unregistered input dataset %q", run.ID, qn)
		}
	}
	for _, qn := range run.Outputs {
		if _, ok := s.datasets[qn]; !ok {
			return core.Validationf("run %s references unregistered output dataset %q", run.ID, qn)
		}
	}

	g := s.graph.Clone()
	if err := appendRunEdges(g, run); err != nil {
		return err
	}

	s.runs = append(s.runs, run)
	s.graph = g

	s.logger.Debug("run recorded",
		"run_id", run.ID,
		"job", run.Job,
		"status", run.Status,
		"graph_nodes", g.NodeCount(),
		"graph_edges", g.EdgeCount(),
	)
	return nil
}

// AddColumnLineage appends a column lineage record.
func (s *MemoryStore) AddColumnLineage(cl core.ColumnLineage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns = append(s.columns, cl)
	return nil
}

// Snapshot returns a consistent view. Record pointers are shared; records
// are never mutated after registration, only replaced.
func (s *MemoryStore) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	datasets := make(map[string]*core.Dataset, len(s.datasets))
	for qn, ds := range s.datasets {
		datasets[qn] = ds
	}
	jobs := make(map[string]*core.Job, len(s.jobs))
	for qn, job := range s.jobs {
		jobs[qn] = job
	}
	runs := make([]*core.Run, len(s.runs))
	copy(runs, s.runs)
	columns := make([]core.ColumnLineage, len(s.columns))
	copy(columns, s.columns)

	return &Snapshot{
		Datasets: datasets,
		Jobs:     jobs,
		Runs:     runs,
		Columns:  columns,
		Graph:    s.graph,
	}
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStore) Close() error {
	return nil
}

// appendRunEdges adds the input and output edges derived from one run.
func appendRunEdges(g *dag.Graph, run *core.Run) error {
	jobRef := dag.JobRef(run.Job)
	for _, qn := range run.Inputs {
		e := dag.Edge{
			Source:    dag.DatasetRef(qn),
			Target:    jobRef,
			Type:      dag.EdgeInput,
			RunID:     run.ID.String(),
			Timestamp: run.StartedAt,
		}
		if err := g.AddEdge(e); err != nil {
			return err
		}
	}
	for _, qn := range run.Outputs {
		e := dag.Edge{
			Source:    jobRef,
			Target:    dag.DatasetRef(qn),
			Type:      dag.EdgeOutput,
			RunID:     run.ID.String(),
			Timestamp: run.StartedAt,
		}
		if err := g.AddEdge(e); err != nil {
			return err
		}
	}
	return nil
}
