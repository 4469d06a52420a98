package lineage

import (
	"log/slog"

	"github.com/leapstack-labs/leaplineage/internal/export"
	"github.com/leapstack-labs/leaplineage/internal/state"
	"github.com/leapstack-labs/leaplineage/pkg/core"
)

// Engine is the lineage graph engine. It is a thin orchestration layer
// over an injected Store; all graph state lives in the store, and every
// read operates on an immutable snapshot.
type Engine struct {
	store  state.Store
	logger *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Store is the storage backend (required).
	Store state.Store
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates a new engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, core.Validationf("engine requires a store")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{store: cfg.Store, logger: logger}, nil
}

// AddDataset registers a dataset. Re-registering the same qualified name
// overwrites the prior record.
func (e *Engine) AddDataset(ds *core.Dataset) error {
	return e.store.AddDataset(ds)
}

// AddJob registers a job. Re-registering the same qualified name
// overwrites the prior record.
func (e *Engine) AddJob(job *core.Job) error {
	return e.store.AddJob(job)
}

// AddRun records a job execution and extends the graph with its edges.
func (e *Engine) AddRun(run *core.Run) error {
	return e.store.AddRun(run)
}

// AddColumnLineage records a column-to-column mapping.
func (e *Engine) AddColumnLineage(cl core.ColumnLineage) error {
	return e.store.AddColumnLineage(cl)
}

// ColumnLineage returns every record where the dataset appears as source
// or target, further filtered by column equality on either side when
// columnName is non-empty.
func (e *Engine) ColumnLineage(datasetName, columnName string) []core.ColumnLineage {
	snap := e.store.Snapshot()

	result := []core.ColumnLineage{}
	for _, cl := range snap.Columns {
		if cl.SourceDataset != datasetName && cl.TargetDataset != datasetName {
			continue
		}
		if columnName != "" && cl.SourceColumn != columnName && cl.TargetColumn != columnName {
			continue
		}
		result = append(result, cl)
	}
	return result
}

// Export serializes the entire graph in the given format.
func (e *Engine) Export(format core.ExportFormat) (string, error) {
	return export.Export(e.store.Snapshot(), format)
}

// Snapshot exposes the current store view for callers that need raw
// access, such as the HTTP listing endpoints.
func (e *Engine) Snapshot() *state.Snapshot {
	return e.store.Snapshot()
}
