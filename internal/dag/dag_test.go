package dag

import (
	"testing"
	"time"
)

func edge(src, tgt NodeRef, typ EdgeType, runID string) Edge {
	return Edge{Source: src, Target: tgt, Type: typ, RunID: runID, Timestamp: time.Now()}
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := NewGraph()

	customers := DatasetRef("production.customers")
	orders := DatasetRef("production.orders")
	pipeline := JobRef("analytics.pipeline")

	g.AddNode(customers, "customers record")
	g.AddNode(orders, "orders record")
	g.AddNode(pipeline, "pipeline record")

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}

	if err := g.AddEdge(edge(customers, pipeline, EdgeInput, "r1")); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}
	if err := g.AddEdge(edge(orders, pipeline, EdgeInput, "r1")); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}

	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
}

func TestGraph_KindTaggedKeys(t *testing.T) {
	g := NewGraph()

	// A dataset and a job may share the same qualified name without colliding.
	g.AddNode(DatasetRef("analytics.report"), nil)
	g.AddNode(JobRef("analytics.report"), nil)

	if g.NodeCount() != 2 {
		t.Errorf("expected 2 distinct nodes, got %d", g.NodeCount())
	}
}

func TestGraph_AddNode_Upsert(t *testing.T) {
	g := NewGraph()

	ref := DatasetRef("production.customers")
	g.AddNode(ref, "v1")
	g.AddNode(ref, "v2")

	if g.NodeCount() != 1 {
		t.Errorf("expected upsert to keep 1 node, got %d", g.NodeCount())
	}
	node, _ := g.Node(ref)
	if node.Data != "v2" {
		t.Errorf("expected latest data, got %v", node.Data)
	}
}

func TestGraph_AddEdge_MissingNodes(t *testing.T) {
	g := NewGraph()
	a := DatasetRef("a.a")
	g.AddNode(a, nil)

	if err := g.AddEdge(edge(a, JobRef("ghost.job"), EdgeInput, "r1")); err == nil {
		t.Error("expected error for missing target node")
	}
	if err := g.AddEdge(edge(DatasetRef("ghost.ds"), a, EdgeOutput, "r1")); err == nil {
		t.Error("expected error for missing source node")
	}
}

func TestGraph_AddEdge_SelfLoop(t *testing.T) {
	g := NewGraph()
	a := DatasetRef("a.a")
	g.AddNode(a, nil)

	if err := g.AddEdge(edge(a, a, EdgeInput, "r1")); err == nil {
		t.Error("expected error for self-loop")
	}
}

func TestGraph_EdgeReplacement(t *testing.T) {
	g := NewGraph()
	ds := DatasetRef("production.customers")
	job := JobRef("etl.sync")
	g.AddNode(ds, nil)
	g.AddNode(job, nil)

	g.AddEdge(edge(ds, job, EdgeInput, "r1"))
	g.AddEdge(edge(ds, job, EdgeInput, "r2"))

	if g.EdgeCount() != 1 {
		t.Fatalf("expected 1 edge after replacement, got %d", g.EdgeCount())
	}
	if got := g.Edges()[0].RunID; got != "r2" {
		t.Errorf("expected latest run id r2, got %s", got)
	}
}

func TestGraph_PredecessorsAndSuccessors(t *testing.T) {
	g := NewGraph()
	customers := DatasetRef("production.customers")
	orders := DatasetRef("production.orders")
	pipeline := JobRef("analytics.pipeline")
	report := DatasetRef("analytics.report")

	for _, ref := range []NodeRef{customers, orders, pipeline, report} {
		g.AddNode(ref, nil)
	}
	g.AddEdge(edge(customers, pipeline, EdgeInput, "r1"))
	g.AddEdge(edge(orders, pipeline, EdgeInput, "r1"))
	g.AddEdge(edge(pipeline, report, EdgeOutput, "r1"))

	preds := g.Predecessors(pipeline)
	if len(preds) != 2 {
		t.Errorf("expected pipeline to have 2 predecessors, got %d", len(preds))
	}
	if preds[0] != customers || preds[1] != orders {
		t.Errorf("expected sorted predecessors, got %v", preds)
	}

	succs := g.Successors(pipeline)
	if len(succs) != 1 || succs[0] != report {
		t.Errorf("expected pipeline successor %v, got %v", report, succs)
	}
}

func TestGraph_RootsAndLeaves(t *testing.T) {
	g := NewGraph()
	a := DatasetRef("p.a")
	j := JobRef("p.j")
	b := DatasetRef("p.b")
	for _, ref := range []NodeRef{a, j, b} {
		g.AddNode(ref, nil)
	}
	g.AddEdge(edge(a, j, EdgeInput, "r1"))
	g.AddEdge(edge(j, b, EdgeOutput, "r1"))

	roots := g.Roots()
	if len(roots) != 1 || roots[0] != a {
		t.Errorf("expected roots [a], got %v", roots)
	}
	leaves := g.Leaves()
	if len(leaves) != 1 || leaves[0] != b {
		t.Errorf("expected leaves [b], got %v", leaves)
	}
}

func TestGraph_Subgraph(t *testing.T) {
	g := NewGraph()
	a := DatasetRef("p.a")
	j := JobRef("p.j")
	b := DatasetRef("p.b")
	for _, ref := range []NodeRef{a, j, b} {
		g.AddNode(ref, nil)
	}
	g.AddEdge(edge(a, j, EdgeInput, "r1"))
	g.AddEdge(edge(j, b, EdgeOutput, "r1"))

	sub := g.Subgraph(map[NodeRef]bool{a: true, j: true})
	if sub.NodeCount() != 2 {
		t.Errorf("expected 2 nodes in subgraph, got %d", sub.NodeCount())
	}
	// Only the a->j edge survives; j->b is cut because b is excluded.
	if sub.EdgeCount() != 1 {
		t.Errorf("expected 1 edge in subgraph, got %d", sub.EdgeCount())
	}
}

func TestGraph_Clone_Isolation(t *testing.T) {
	g := NewGraph()
	a := DatasetRef("p.a")
	j := JobRef("p.j")
	g.AddNode(a, nil)
	g.AddNode(j, nil)
	g.AddEdge(edge(a, j, EdgeInput, "r1"))

	c := g.Clone()
	b := DatasetRef("p.b")
	c.AddNode(b, nil)
	c.AddEdge(edge(j, b, EdgeOutput, "r2"))

	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("original mutated by clone edits: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	if c.NodeCount() != 3 || c.EdgeCount() != 2 {
		t.Errorf("clone missing edits: %d nodes, %d edges", c.NodeCount(), c.EdgeCount())
	}
}

func TestGraph_FindCycle(t *testing.T) {
	g := NewGraph()
	a := DatasetRef("p.a")
	j := JobRef("p.j")
	b := DatasetRef("p.b")
	j2 := JobRef("p.j2")
	for _, ref := range []NodeRef{a, j, b, j2} {
		g.AddNode(ref, nil)
	}
	g.AddEdge(edge(a, j, EdgeInput, "r1"))
	g.AddEdge(edge(j, b, EdgeOutput, "r1"))

	if found, _ := g.FindCycle(); found {
		t.Error("expected no cycle in a chain")
	}

	// b feeds j2 which writes a: a -> j -> b -> j2 -> a
	g.AddEdge(edge(b, j2, EdgeInput, "r2"))
	g.AddEdge(edge(j2, a, EdgeOutput, "r2"))

	found, path := g.FindCycle()
	if !found {
		t.Fatal("expected cycle to be detected")
	}
	if len(path) < 3 {
		t.Errorf("expected cycle path, got %v", path)
	}
}
