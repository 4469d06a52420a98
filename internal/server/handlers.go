package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/leaplineage/internal/state"
	"github.com/leapstack-labs/leaplineage/pkg/core"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleQuery runs a lineage query from URL parameters. Defaults:
// direction both, depth 3, schema included.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	req := core.QueryRequest{
		DatasetName:   r.URL.Query().Get("dataset_name"),
		JobName:       r.URL.Query().Get("job_name"),
		Direction:     core.Direction(r.URL.Query().Get("direction")),
		Depth:         3,
		IncludeSchema: true,
	}
	if raw := r.URL.Query().Get("depth"); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, core.Validationf("invalid depth %q", raw))
			return
		}
		req.Depth = depth
	}
	if raw := r.URL.Query().Get("include_schema"); raw != "" {
		req.IncludeSchema = raw == "true" || raw == "1"
	}

	resp, err := s.engine.QueryLineage(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQueryPost(w http.ResponseWriter, r *http.Request) {
	var req core.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, core.Validationf("invalid request body: %v", err))
		return
	}
	if req.Depth == 0 {
		req.Depth = 3
	}

	resp, err := s.engine.QueryLineage(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	names := make([]string, 0, len(snap.Datasets))
	for name := range snap.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)

	datasets := make([]*core.Dataset, 0, len(names))
	for _, name := range names {
		datasets = append(datasets, snap.Datasets[name])
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"datasets": datasets, "total": len(datasets)})
}

func (s *Server) handleAddDataset(w http.ResponseWriter, r *http.Request) {
	var ds core.Dataset
	if err := json.NewDecoder(r.Body).Decode(&ds); err != nil {
		s.writeError(w, core.Validationf("invalid request body: %v", err))
		return
	}
	if err := s.engine.AddDataset(&ds); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"qualified_name": ds.QualifiedName()})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	names := make([]string, 0, len(snap.Jobs))
	for name := range snap.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)

	jobs := make([]*core.Job, 0, len(names))
	for _, name := range names {
		jobs = append(jobs, snap.Jobs[name])
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs, "total": len(jobs)})
}

func (s *Server) handleAddJob(w http.ResponseWriter, r *http.Request) {
	var job core.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		s.writeError(w, core.Validationf("invalid request body: %v", err))
		return
	}
	if err := s.engine.AddJob(&job); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"qualified_name": job.QualifiedName()})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	runs := snap.Runs
	if job := r.URL.Query().Get("job"); job != "" {
		filtered := make([]*core.Run, 0, len(runs))
		for _, run := range runs {
			if run.Job == job {
				filtered = append(filtered, run)
			}
		}
		runs = filtered
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "total": len(runs)})
}

func (s *Server) handleAddRun(w http.ResponseWriter, r *http.Request) {
	var run core.Run
	if err := json.NewDecoder(r.Body).Decode(&run); err != nil {
		s.writeError(w, core.Validationf("invalid request body: %v", err))
		return
	}
	if err := s.engine.AddRun(&run); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"run_id": run.ID.String()})
}

func (s *Server) handleAddColumnLineage(w http.ResponseWriter, r *http.Request) {
	var cl core.ColumnLineage
	if err := json.NewDecoder(r.Body).Decode(&cl); err != nil {
		s.writeError(w, core.Validationf("invalid request body: %v", err))
		return
	}
	if err := s.engine.AddColumnLineage(cl); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleColumnLineage(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")
	column := r.URL.Query().Get("column")

	mappings := s.engine.ColumnLineage(dataset, column)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"dataset":  dataset,
		"column":   column,
		"mappings": mappings,
		"total":    len(mappings),
	})
}

func (s *Server) handleImpact(w http.ResponseWriter, r *http.Request) {
	qualifiedName := core.QualifiedName(chi.URLParam(r, "namespace"), chi.URLParam(r, "dataset"))

	report, err := s.engine.ImpactAnalysis(qualifiedName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Metrics())
}

// exportContentTypes maps formats to response headers.
var exportContentTypes = map[core.ExportFormat]string{
	core.ExportJSON:    "application/json",
	core.ExportGraphML: "application/xml",
	core.ExportDOT:     "text/vnd.graphviz",
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := core.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = core.ExportJSON
	}

	out, err := s.engine.Export(format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", exportContentTypes[format])
	w.Header().Set("Content-Disposition", `attachment; filename="lineage.`+string(format)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// cytoscape element shapes, consumed by graph frontends.
type vizNode struct {
	Data    map[string]string `json:"data"`
	Classes string            `json:"classes"`
}

type vizEdge struct {
	Data    map[string]string `json:"data"`
	Classes string            `json:"classes"`
}

// handleVisualization serves graph data for frontends. With dataset_name
// the projection is the both-direction depth-3 neighborhood of the
// matched datasets; without it, the whole graph. format selects the raw
// graph shape (json, the default) or cytoscape.js elements.
func (s *Server) handleVisualization(w http.ResponseWriter, r *http.Request) {
	datasetName := r.URL.Query().Get("dataset_name")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	req := core.QueryRequest{
		DatasetName: datasetName,
		Direction:   core.DirectionBoth,
		Depth:       3,
	}

	var (
		graph      *core.Graph
		execTimeMS int64
	)
	if datasetName != "" {
		resp, err := s.engine.QueryLineage(req)
		if err != nil {
			s.writeError(w, err)
			return
		}
		graph = resp.Graph
		execTimeMS = resp.ExecutionTimeMS
	} else {
		graph = fullGraphProjection(s.engine.Snapshot())
	}

	stats := map[string]any{
		"total_datasets":    len(graph.Datasets),
		"total_jobs":        len(graph.Jobs),
		"execution_time_ms": execTimeMS,
	}

	switch format {
	case "json":
		s.writeJSON(w, http.StatusOK, map[string]any{
			"graph": graph,
			"query": req,
			"stats": stats,
		})
	case "cytoscape":
		nodes, edges := cytoscapeElements(graph)
		s.writeJSON(w, http.StatusOK, map[string]any{
			"nodes": nodes,
			"edges": edges,
			"query": req,
			"stats": stats,
		})
	default:
		s.writeError(w, core.Validationf("unsupported visualization format %q, expected json or cytoscape", format))
	}
}

// fullGraphProjection renders the entire store as a result graph, with
// schemas stripped as in a default query.
func fullGraphProjection(snap *state.Snapshot) *core.Graph {
	graph := core.NewGraph()
	for name, ds := range snap.Datasets {
		graph.Datasets[name] = ds.WithoutSchema()
	}
	for name, job := range snap.Jobs {
		graph.Jobs[name] = job
	}
	for _, edge := range snap.Graph.Edges() {
		graph.Relationships = append(graph.Relationships, core.Relationship{
			Source:    edge.Source.Name,
			Target:    edge.Target.Name,
			Type:      string(edge.Type),
			RunID:     edge.RunID,
			Timestamp: edge.Timestamp,
		})
	}
	return graph
}

// cytoscapeElements converts a result graph into cytoscape.js nodes and
// edges.
func cytoscapeElements(graph *core.Graph) ([]vizNode, []vizEdge) {
	nodes := make([]vizNode, 0, len(graph.Datasets)+len(graph.Jobs))
	for name, ds := range graph.Datasets {
		nodes = append(nodes, vizNode{
			Data: map[string]string{
				"id":           name,
				"label":        ds.Name,
				"type":         "dataset",
				"dataset_type": string(ds.Type),
				"namespace":    ds.Namespace,
			},
			Classes: "dataset " + string(ds.Type),
		})
	}
	for name, job := range graph.Jobs {
		nodes = append(nodes, vizNode{
			Data: map[string]string{
				"id":          name,
				"label":       job.Name,
				"type":        "job",
				"job_type":    string(job.Type),
				"namespace":   job.Namespace,
				"description": job.Description,
			},
			Classes: "job " + string(job.Type),
		})
	}

	edges := make([]vizEdge, 0, len(graph.Relationships))
	for _, rel := range graph.Relationships {
		edges = append(edges, vizEdge{
			Data: map[string]string{
				"id":     rel.Source + "-" + rel.Target,
				"source": rel.Source,
				"target": rel.Target,
				"type":   rel.Type,
				"run_id": rel.RunID,
			},
			Classes: rel.Type,
		})
	}
	return nodes, edges
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain errors to HTTP statuses: validation failures
// are 400, missing entities 404, everything else 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *core.ValidationError
	var nferr *core.NotFoundError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case errors.As(err, &nferr):
		status = http.StatusNotFound
	default:
		s.logger.Error("request failed", "error", err)
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
