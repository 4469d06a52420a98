// Package state provides storage backends for the lineage engine: an
// in-memory store and a SQLite-backed store that persists through to the
// same in-memory index. Both expose immutable snapshot reads so that
// traversal, export, and metrics can run concurrently with writes.
package state

import (
	"github.com/leapstack-labs/leaplineage/internal/dag"
	"github.com/leapstack-labs/leaplineage/pkg/core"
)

// Store is the storage interface the engine is constructed with. All
// write operations are upserts or appends; nothing is mutated in place.
type Store interface {
	// AddDataset upserts a dataset by qualified name.
	AddDataset(ds *core.Dataset) error
	// AddJob upserts a job by qualified name.
	AddJob(job *core.Job) error
	// AddRun appends a run and extends the graph with its edges. The run's
	// job and every referenced dataset must already be registered.
	AddRun(run *core.Run) error
	// AddColumnLineage appends a column lineage record. No referential
	// check is made against the graph.
	AddColumnLineage(cl core.ColumnLineage) error

	// Snapshot returns a consistent, immutable view of the store.
	Snapshot() *Snapshot

	Close() error
}

// Snapshot is a point-in-time view of the store. The maps and slices are
// copies owned by the caller; the graph pointer is immutable once
// published and safe for lock-free reads.
type Snapshot struct {
	Datasets map[string]*core.Dataset
	Jobs     map[string]*core.Job
	Runs     []*core.Run
	Columns  []core.ColumnLineage
	Graph    *dag.Graph
}
