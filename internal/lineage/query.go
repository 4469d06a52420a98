package lineage

import (
	"strings"
	"time"

	"github.com/leapstack-labs/leaplineage/internal/dag"
	"github.com/leapstack-labs/leaplineage/internal/state"
	"github.com/leapstack-labs/leaplineage/pkg/core"
)

// QueryLineage answers a bounded-depth traversal query. A query whose
// patterns match no node is not an error: it returns an empty graph with
// zero totals.
func (e *Engine) QueryLineage(req core.QueryRequest) (*core.QueryResponse, error) {
	if req.Direction == "" {
		req.Direction = core.DirectionBoth
	}
	if !req.Direction.Valid() {
		return nil, core.Validationf("invalid direction %q: use upstream, downstream, or both", req.Direction)
	}
	if req.Depth < 1 {
		return nil, core.Validationf("depth must be at least 1, got %d", req.Depth)
	}

	started := time.Now()
	snap := e.store.Snapshot()

	startNodes := resolveStartNodes(snap, req)
	if len(startNodes) == 0 {
		e.logger.Warn("no starting nodes found for lineage query",
			"dataset_name", req.DatasetName, "job_name", req.JobName)
		return &core.QueryResponse{
			Query:           req,
			Graph:           core.NewGraph(),
			ExecutionTimeMS: time.Since(started).Milliseconds(),
		}, nil
	}

	connected := traverse(snap.Graph, startNodes, req.Direction, req.Depth)
	graph := buildSubgraph(snap, connected, req.IncludeSchema)

	resp := &core.QueryResponse{
		Query:           req,
		Graph:           graph,
		TotalDatasets:   len(graph.Datasets),
		TotalJobs:       len(graph.Jobs),
		ExecutionTimeMS: time.Since(started).Milliseconds(),
	}

	e.logger.Info("lineage query completed",
		"dataset_name", req.DatasetName,
		"job_name", req.JobName,
		"direction", req.Direction,
		"depth", req.Depth,
		"start_nodes", len(startNodes),
		"connected_nodes", len(connected),
		"total_datasets", resp.TotalDatasets,
		"total_jobs", resp.TotalJobs,
	)
	return resp, nil
}

// resolveStartNodes matches the request patterns against registered
// entities: case-insensitive substring over dataset qualified names for
// DatasetName, over job qualified names for JobName. Multiple nodes may
// qualify.
func resolveStartNodes(snap *state.Snapshot, req core.QueryRequest) map[dag.NodeRef]bool {
	start := make(map[dag.NodeRef]bool)

	if req.DatasetName != "" {
		pattern := strings.ToLower(req.DatasetName)
		for qn := range snap.Datasets {
			if strings.Contains(strings.ToLower(qn), pattern) {
				start[dag.DatasetRef(qn)] = true
			}
		}
	}
	if req.JobName != "" {
		pattern := strings.ToLower(req.JobName)
		for qn := range snap.Jobs {
			if strings.Contains(strings.ToLower(qn), pattern) {
				start[dag.JobRef(qn)] = true
			}
		}
	}
	return start
}

// traverse runs a bounded breadth-first expansion from every start node
// and unions the results. Node membership is a set: a node reached via
// several paths or several start nodes counts once and never extends the
// depth budget.
func traverse(g *dag.Graph, start map[dag.NodeRef]bool, direction core.Direction, depth int) map[dag.NodeRef]bool {
	connected := make(map[dag.NodeRef]bool, len(start))
	for ref := range start {
		connected[ref] = true
	}

	for ref := range start {
		if direction == core.DirectionUpstream || direction == core.DirectionBoth {
			expand(ref, depth, g.Predecessors, connected)
		}
		if direction == core.DirectionDownstream || direction == core.DirectionBoth {
			expand(ref, depth, g.Successors, connected)
		}
	}
	return connected
}

// expand walks up to depth hops from start. Each level's frontier is the
// neighbor set of the previous level's frontier only; the walk stops
// early once a frontier comes up empty.
func expand(start dag.NodeRef, depth int, neighbors func(dag.NodeRef) []dag.NodeRef, connected map[dag.NodeRef]bool) {
	seen := map[dag.NodeRef]bool{start: true}
	frontier := []dag.NodeRef{start}

	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []dag.NodeRef
		for _, ref := range frontier {
			for _, nb := range neighbors(ref) {
				if seen[nb] {
					continue
				}
				seen[nb] = true
				connected[nb] = true
				next = append(next, nb)
			}
		}
		frontier = next
	}
}

// buildSubgraph projects the connected node set into a self-contained
// result graph. The store is never mutated: datasets are copied when the
// schema is stripped, and every container is freshly allocated.
func buildSubgraph(snap *state.Snapshot, connected map[dag.NodeRef]bool, includeSchema bool) *core.Graph {
	graph := core.NewGraph()

	for ref := range connected {
		switch ref.Kind {
		case dag.KindDataset:
			ds, ok := snap.Datasets[ref.Name]
			if !ok {
				continue
			}
			if !includeSchema {
				ds = ds.WithoutSchema()
			}
			graph.Datasets[ref.Name] = ds
		case dag.KindJob:
			if job, ok := snap.Jobs[ref.Name]; ok {
				graph.Jobs[ref.Name] = job
			}
		}
	}

	for _, edge := range snap.Graph.Edges() {
		if connected[edge.Source] && connected[edge.Target] {
			graph.Relationships = append(graph.Relationships, core.Relationship{
				Source:    edge.Source.Name,
				Target:    edge.Target.Name,
				Type:      string(edge.Type),
				RunID:     edge.RunID,
				Timestamp: edge.Timestamp,
			})
		}
	}

	// Runs are filtered by job membership only; datasets do not pull in
	// the runs that touched them.
	for _, run := range snap.Runs {
		if connected[dag.JobRef(run.Job)] {
			graph.Runs = append(graph.Runs, run)
		}
	}

	return graph
}
