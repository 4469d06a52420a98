// Package dag provides the directed graph underlying the lineage engine.
// Nodes are keyed by kind-tagged references so dataset and job names can
// never collide, and edges carry the run metadata they were derived from.
// Graphs are built copy-on-write: writers clone, extend, and publish a new
// graph, so a published graph is safe for concurrent lock-free reads.
package dag

import (
	"fmt"
	"sort"
	"time"
)

// NodeKind tags a node as a dataset or a job.
type NodeKind string

// Node kinds.
const (
	KindDataset NodeKind = "dataset"
	KindJob     NodeKind = "job"
)

// NodeRef is the kind-tagged key of a graph node.
type NodeRef struct {
	Kind NodeKind
	Name string
}

// DatasetRef builds a dataset node reference.
func DatasetRef(qualifiedName string) NodeRef {
	return NodeRef{Kind: KindDataset, Name: qualifiedName}
}

// JobRef builds a job node reference.
func JobRef(qualifiedName string) NodeRef {
	return NodeRef{Kind: KindJob, Name: qualifiedName}
}

// String renders the reference as kind:name, used as the export node id.
func (r NodeRef) String() string {
	return string(r.Kind) + ":" + r.Name
}

// less orders references by kind then name for deterministic output.
func (r NodeRef) less(other NodeRef) bool {
	if r.Kind != other.Kind {
		return r.Kind < other.Kind
	}
	return r.Name < other.Name
}

// EdgeType distinguishes input edges (dataset feeds job) from output
// edges (job produces dataset).
type EdgeType string

// Edge types.
const (
	EdgeInput  EdgeType = "input"
	EdgeOutput EdgeType = "output"
)

// Edge is a directed edge derived from one run. At most one edge is kept
// per (source, target) pair; a later run between the same pair replaces
// the earlier edge's metadata.
type Edge struct {
	Source    NodeRef
	Target    NodeRef
	Type      EdgeType
	RunID     string
	Timestamp time.Time
}

// Node is a graph node. Data holds the dataset or job record the node was
// registered with; it is nil for nodes that only exist structurally.
type Node struct {
	Ref  NodeRef
	Data any
}

// Graph is a directed graph with kind-tagged nodes.
type Graph struct {
	nodes map[NodeRef]*Node
	out   map[NodeRef]map[NodeRef]Edge // source -> target -> edge
	in    map[NodeRef]map[NodeRef]Edge // target -> source -> edge
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[NodeRef]*Node),
		out:   make(map[NodeRef]map[NodeRef]Edge),
		in:    make(map[NodeRef]map[NodeRef]Edge),
	}
}

// Clone returns a deep copy of the graph structure. Node data values are
// shared; they are treated as immutable records.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes: make(map[NodeRef]*Node, len(g.nodes)),
		out:   make(map[NodeRef]map[NodeRef]Edge, len(g.out)),
		in:    make(map[NodeRef]map[NodeRef]Edge, len(g.in)),
	}
	for ref, node := range g.nodes {
		c.nodes[ref] = &Node{Ref: node.Ref, Data: node.Data}
	}
	for src, targets := range g.out {
		m := make(map[NodeRef]Edge, len(targets))
		for tgt, e := range targets {
			m[tgt] = e
		}
		c.out[src] = m
	}
	for tgt, sources := range g.in {
		m := make(map[NodeRef]Edge, len(sources))
		for src, e := range sources {
			m[src] = e
		}
		c.in[tgt] = m
	}
	return c
}

// AddNode adds or updates a node. Re-adding an existing reference
// replaces its data (upsert).
func (g *Graph) AddNode(ref NodeRef, data any) {
	if node, exists := g.nodes[ref]; exists {
		node.Data = data
		return
	}
	g.nodes[ref] = &Node{Ref: ref, Data: data}
	g.out[ref] = make(map[NodeRef]Edge)
	g.in[ref] = make(map[NodeRef]Edge)
}

// AddEdge adds a directed edge. Both endpoints must already exist; edges
// never materialize nodes implicitly.
func (g *Graph) AddEdge(e Edge) error {
	if _, exists := g.nodes[e.Source]; !exists {
		return fmt.Errorf("source node %q does not exist", e.Source)
	}
	if _, exists := g.nodes[e.Target]; !exists {
		return fmt.Errorf("target node %q does not exist", e.Target)
	}
	if e.Source == e.Target {
		return fmt.Errorf("self-loop detected: %s", e.Source)
	}
	g.out[e.Source][e.Target] = e
	g.in[e.Target][e.Source] = e
	return nil
}

// Node returns a node by reference.
func (g *Graph) Node(ref NodeRef) (*Node, bool) {
	node, exists := g.nodes[ref]
	return node, exists
}

// HasNode reports whether the reference exists in the graph.
func (g *Graph) HasNode(ref NodeRef) bool {
	_, exists := g.nodes[ref]
	return exists
}

// Predecessors returns the direct upstream neighbors of a node, sorted.
func (g *Graph) Predecessors(ref NodeRef) []NodeRef {
	return sortedKeys(g.in[ref])
}

// Successors returns the direct downstream neighbors of a node, sorted.
func (g *Graph) Successors(ref NodeRef) []NodeRef {
	return sortedKeys(g.out[ref])
}

// Nodes returns all nodes sorted by reference.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Ref.less(nodes[j].Ref)
	})
	return nodes
}

// Edges returns all edges sorted by (source, target).
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, targets := range g.out {
		for _, e := range targets {
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source.less(edges[j].Source)
		}
		return edges[i].Target.less(edges[j].Target)
	})
	return edges
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, targets := range g.out {
		count += len(targets)
	}
	return count
}

// Roots returns nodes with no incoming edges, sorted.
func (g *Graph) Roots() []NodeRef {
	var roots []NodeRef
	for ref := range g.nodes {
		if len(g.in[ref]) == 0 {
			roots = append(roots, ref)
		}
	}
	sortRefs(roots)
	return roots
}

// Leaves returns nodes with no outgoing edges, sorted.
func (g *Graph) Leaves() []NodeRef {
	var leaves []NodeRef
	for ref := range g.nodes {
		if len(g.out[ref]) == 0 {
			leaves = append(leaves, ref)
		}
	}
	sortRefs(leaves)
	return leaves
}

// Subgraph returns a new graph containing only the given nodes and the
// edges whose both endpoints are included.
func (g *Graph) Subgraph(refs map[NodeRef]bool) *Graph {
	sub := NewGraph()
	for ref := range refs {
		if node, exists := g.nodes[ref]; exists {
			sub.AddNode(ref, node.Data)
		}
	}
	for ref := range refs {
		for tgt, e := range g.out[ref] {
			if refs[tgt] {
				_ = sub.AddEdge(e)
			}
		}
	}
	return sub
}

// FindCycle returns a cycle path if the graph contains one. Lineage
// graphs are usually acyclic but nothing prevents a job chain from
// feeding a dataset back into itself; callers use this as a diagnostic.
func (g *Graph) FindCycle() (bool, []NodeRef) {
	visited := make(map[NodeRef]bool)
	recStack := make(map[NodeRef]bool)
	path := make(map[NodeRef]NodeRef)

	var cyclePath []NodeRef

	var dfs func(ref NodeRef) bool
	dfs = func(ref NodeRef) bool {
		visited[ref] = true
		recStack[ref] = true

		for tgt := range g.out[ref] {
			if !visited[tgt] {
				path[tgt] = ref
				if dfs(tgt) {
					return true
				}
			} else if recStack[tgt] {
				// Found cycle, reconstruct path
				cyclePath = []NodeRef{tgt}
				for curr := ref; curr != tgt; curr = path[curr] {
					cyclePath = append([]NodeRef{curr}, cyclePath...)
				}
				cyclePath = append([]NodeRef{tgt}, cyclePath...)
				return true
			}
		}

		recStack[ref] = false
		return false
	}

	for ref := range g.nodes {
		if !visited[ref] {
			if dfs(ref) {
				return true, cyclePath
			}
		}
	}

	return false, nil
}

func sortedKeys(m map[NodeRef]Edge) []NodeRef {
	refs := make([]NodeRef, 0, len(m))
	for ref := range m {
		refs = append(refs, ref)
	}
	sortRefs(refs)
	return refs
}

func sortRefs(refs []NodeRef) {
	sort.Slice(refs, func(i, j int) bool {
		return refs[i].less(refs[j])
	})
}
