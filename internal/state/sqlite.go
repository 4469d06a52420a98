package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/leapstack-labs/leaplineage/pkg/core"
)

// timeFormat is the canonical timestamp encoding in the database.
const timeFormat = time.RFC3339Nano

// SQLiteStore is a durable Store backend. Writes go through the embedded
// in-memory store first (validation, graph maintenance) and are then
// persisted; reads are always served from the in-memory index, which is
// replayed from disk on Open.
type SQLiteStore struct {
	db     *sql.DB
	mem    *MemoryStore
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store instance. A nil logger
// discards.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{
		mem:    NewMemoryStore(logger),
		logger: logger,
	}
}

// Open opens the database, runs migrations, and replays persisted state
// into the in-memory index. Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path

	if err := s.Migrate(); err != nil {
		db.Close()
		return err
	}
	if err := s.load(); err != nil {
		db.Close()
		return fmt.Errorf("failed to load lineage state: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// AddDataset upserts a dataset by qualified name.
func (s *SQLiteStore) AddDataset(ds *core.Dataset) error {
	if err := s.mem.AddDataset(ds); err != nil {
		return err
	}

	schemaJSON, err := marshalNullable(ds.SchemaFields)
	if err != nil {
		return fmt.Errorf("failed to encode schema fields: %w", err)
	}
	propsJSON, err := marshalNullable(ds.Properties)
	if err != nil {
		return fmt.Errorf("failed to encode properties: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO datasets (qualified_name, namespace, name, type, schema_fields, properties)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(qualified_name) DO UPDATE SET
			namespace = excluded.namespace,
			name = excluded.name,
			type = excluded.type,
			schema_fields = excluded.schema_fields,
			properties = excluded.properties`,
		ds.QualifiedName(), ds.Namespace, ds.Name, string(ds.Type), schemaJSON, propsJSON)
	if err != nil {
		return fmt.Errorf("failed to persist dataset %s: %w", ds.QualifiedName(), err)
	}
	return nil
}

// AddJob upserts a job by qualified name.
func (s *SQLiteStore) AddJob(job *core.Job) error {
	if err := s.mem.AddJob(job); err != nil {
		return err
	}

	propsJSON, err := marshalNullable(job.Properties)
	if err != nil {
		return fmt.Errorf("failed to encode properties: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO jobs (qualified_name, namespace, name, type, description, properties)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(qualified_name) DO UPDATE SET
			namespace = excluded.namespace,
			name = excluded.name,
			type = excluded.type,
			description = excluded.description,
			properties = excluded.properties`,
		job.QualifiedName(), job.Namespace, job.Name, string(job.Type), job.Description, propsJSON)
	if err != nil {
		return fmt.Errorf("failed to persist job %s: %w", job.QualifiedName(), err)
	}
	return nil
}

// AddRun appends a run.
func (s *SQLiteStore) AddRun(run *core.Run) error {
	if err := s.mem.AddRun(run); err != nil {
		return err
	}

	inputsJSON, err := json.Marshal(refsOrEmpty(run.Inputs))
	if err != nil {
		return fmt.Errorf("failed to encode inputs: %w", err)
	}
	outputsJSON, err := json.Marshal(refsOrEmpty(run.Outputs))
	if err != nil {
		return fmt.Errorf("failed to encode outputs: %w", err)
	}
	propsJSON, err := marshalNullable(run.Properties)
	if err != nil {
		return fmt.Errorf("failed to encode properties: %w", err)
	}

	var endedAt *string
	if run.EndedAt != nil {
		v := run.EndedAt.UTC().Format(timeFormat)
		endedAt = &v
	}

	_, err = s.db.Exec(`
		INSERT INTO runs (id, job_name, status, started_at, ended_at, inputs, outputs, properties)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Job, string(run.Status),
		run.StartedAt.UTC().Format(timeFormat), endedAt,
		string(inputsJSON), string(outputsJSON), propsJSON)
	if err != nil {
		return fmt.Errorf("failed to persist run %s: %w", run.ID, err)
	}
	return nil
}

// AddColumnLineage appends a column lineage record.
func (s *SQLiteStore) AddColumnLineage(cl core.ColumnLineage) error {
	if err := s.mem.AddColumnLineage(cl); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		INSERT INTO column_lineage (source_dataset, source_column, target_dataset, target_column, transformation, job_name)
		VALUES (?, ?, ?, ?, ?, ?)`,
		cl.SourceDataset, cl.SourceColumn, cl.TargetDataset, cl.TargetColumn, cl.Transformation, cl.JobName)
	if err != nil {
		return fmt.Errorf("failed to persist column lineage: %w", err)
	}
	return nil
}

// Snapshot returns a consistent view served from the in-memory index.
func (s *SQLiteStore) Snapshot() *Snapshot {
	return s.mem.Snapshot()
}

// load replays persisted records into the in-memory index. Datasets and
// jobs replay before runs so that run references always resolve.
func (s *SQLiteStore) load() error {
	if err := s.loadDatasets(); err != nil {
		return err
	}
	if err := s.loadJobs(); err != nil {
		return err
	}
	if err := s.loadRuns(); err != nil {
		return err
	}
	if err := s.loadColumnLineage(); err != nil {
		return err
	}

	snap := s.mem.Snapshot()
	if found, path := snap.Graph.FindCycle(); found {
		s.logger.Warn("persisted lineage graph contains a cycle", "path", fmt.Sprint(path))
	}
	s.logger.Info("lineage state loaded",
		"datasets", len(snap.Datasets),
		"jobs", len(snap.Jobs),
		"runs", len(snap.Runs),
	)
	return nil
}

func (s *SQLiteStore) loadDatasets() error {
	rows, err := s.db.Query(`SELECT namespace, name, type, schema_fields, properties FROM datasets`)
	if err != nil {
		return fmt.Errorf("failed to query datasets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ds core.Dataset
		var typ string
		var schemaJSON, propsJSON sql.NullString
		if err := rows.Scan(&ds.Namespace, &ds.Name, &typ, &schemaJSON, &propsJSON); err != nil {
			return fmt.Errorf("failed to scan dataset: %w", err)
		}
		ds.Type = core.DatasetType(typ)
		if err := unmarshalNullable(schemaJSON, &ds.SchemaFields); err != nil {
			return fmt.Errorf("failed to decode schema fields for %s: %w", ds.QualifiedName(), err)
		}
		if err := unmarshalNullable(propsJSON, &ds.Properties); err != nil {
			return fmt.Errorf("failed to decode properties for %s: %w", ds.QualifiedName(), err)
		}
		if err := s.mem.AddDataset(&ds); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) loadJobs() error {
	rows, err := s.db.Query(`SELECT namespace, name, type, description, properties FROM jobs`)
	if err != nil {
		return fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var job core.Job
		var typ string
		var propsJSON sql.NullString
		if err := rows.Scan(&job.Namespace, &job.Name, &typ, &job.Description, &propsJSON); err != nil {
			return fmt.Errorf("failed to scan job: %w", err)
		}
		job.Type = core.JobType(typ)
		if err := unmarshalNullable(propsJSON, &job.Properties); err != nil {
			return fmt.Errorf("failed to decode properties for %s: %w", job.QualifiedName(), err)
		}
		if err := s.mem.AddJob(&job); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) loadRuns() error {
	rows, err := s.db.Query(`SELECT id, job_name, status, started_at, ended_at, inputs, outputs, properties FROM runs ORDER BY started_at`)
	if err != nil {
		return fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var run core.Run
		var id, status, startedAt string
		var endedAt sql.NullString
		var inputsJSON, outputsJSON string
		var propsJSON sql.NullString
		if err := rows.Scan(&id, &run.Job, &status, &startedAt, &endedAt, &inputsJSON, &outputsJSON, &propsJSON); err != nil {
			return fmt.Errorf("failed to scan run: %w", err)
		}

		run.ID, err = uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", id, err)
		}
		run.Status = core.RunStatus(status)
		run.StartedAt, err = time.Parse(timeFormat, startedAt)
		if err != nil {
			return fmt.Errorf("invalid started_at for run %s: %w", id, err)
		}
		if endedAt.Valid {
			t, err := time.Parse(timeFormat, endedAt.String)
			if err != nil {
				return fmt.Errorf("invalid ended_at for run %s: %w", id, err)
			}
			run.EndedAt = &t
		}
		if err := json.Unmarshal([]byte(inputsJSON), &run.Inputs); err != nil {
			return fmt.Errorf("failed to decode inputs for run %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(outputsJSON), &run.Outputs); err != nil {
			return fmt.Errorf("failed to decode outputs for run %s: %w", id, err)
		}
		if err := unmarshalNullable(propsJSON, &run.Properties); err != nil {
			return fmt.Errorf("failed to decode properties for run %s: %w", id, err)
		}

		if err := s.mem.AddRun(&run); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) loadColumnLineage() error {
	rows, err := s.db.Query(`SELECT source_dataset, source_column, target_dataset, target_column, transformation, job_name FROM column_lineage ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to query column lineage: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cl core.ColumnLineage
		if err := rows.Scan(&cl.SourceDataset, &cl.SourceColumn, &cl.TargetDataset, &cl.TargetColumn, &cl.Transformation, &cl.JobName); err != nil {
			return fmt.Errorf("failed to scan column lineage: %w", err)
		}
		if err := s.mem.AddColumnLineage(cl); err != nil {
			return err
		}
	}
	return rows.Err()
}

// marshalNullable encodes v as JSON, returning nil for empty values so
// the column stores NULL instead of "null".
func marshalNullable(v any) (*string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if len(t) == 0 {
			return nil, nil
		}
	case []core.SchemaField:
		if len(t) == 0 {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// unmarshalNullable decodes a nullable JSON column into dst, leaving dst
// untouched for NULL.
func unmarshalNullable(col sql.NullString, dst any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}

// refsOrEmpty normalizes a nil reference list to an empty slice so the
// stored JSON is always an array.
func refsOrEmpty(refs []string) []string {
	if refs == nil {
		return []string{}
	}
	return refs
}
