// Package export serializes a full lineage snapshot into interchange
// formats: a JSON dump, GraphML for graph tooling, and Graphviz DOT.
package export

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/leapstack-labs/leaplineage/internal/dag"
	"github.com/leapstack-labs/leaplineage/internal/state"
	"github.com/leapstack-labs/leaplineage/pkg/core"
)

// Export renders the snapshot in the requested format. An unknown
// format is a validation error.
func Export(snap *state.Snapshot, format core.ExportFormat) (string, error) {
	switch format {
	case core.ExportJSON:
		return exportJSON(snap)
	case core.ExportGraphML:
		return exportGraphML(snap)
	case core.ExportDOT:
		return exportDOT(snap), nil
	default:
		return "", core.Validationf("unsupported export format %q, expected json, graphml or dot", format)
	}
}

type jsonDump struct {
	ExportedAt time.Time            `json:"exported_at"`
	Datasets   []*core.Dataset      `json:"datasets"`
	Jobs       []*core.Job          `json:"jobs"`
	Runs       []*core.Run          `json:"runs"`
	Columns    []core.ColumnLineage `json:"column_lineage"`
	Edges      []core.Relationship  `json:"relationships"`
}

func exportJSON(snap *state.Snapshot) (string, error) {
	dump := jsonDump{
		ExportedAt: time.Now().UTC(),
		Datasets:   make([]*core.Dataset, 0, len(snap.Datasets)),
		Jobs:       make([]*core.Job, 0, len(snap.Jobs)),
		Runs:       snap.Runs,
		Columns:    snap.Columns,
		Edges:      make([]core.Relationship, 0, snap.Graph.EdgeCount()),
	}
	for _, name := range sortedKeys(snap.Datasets) {
		dump.Datasets = append(dump.Datasets, snap.Datasets[name])
	}
	for _, name := range sortedKeys(snap.Jobs) {
		dump.Jobs = append(dump.Jobs, snap.Jobs[name])
	}
	if dump.Runs == nil {
		dump.Runs = []*core.Run{}
	}
	if dump.Columns == nil {
		dump.Columns = []core.ColumnLineage{}
	}
	for _, edge := range snap.Graph.Edges() {
		dump.Edges = append(dump.Edges, core.Relationship{
			Source:    edge.Source.Name,
			Target:    edge.Target.Name,
			Type:      string(edge.Type),
			RunID:     edge.RunID,
			Timestamp: edge.Timestamp,
		})
	}

	out, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal lineage dump: %w", err)
	}
	return string(out), nil
}

// GraphML document model. Key declarations mirror the node and edge
// attributes we attach, so standard tools can read typed properties.
type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	XMLNS   string       `xml:"xmlns,attr"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	ID          string        `xml:"id,attr"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

func exportGraphML(snap *state.Snapshot) (string, error) {
	doc := graphmlDoc{
		XMLNS: "http://graphml.graphdrawing.org/xmlns",
		Keys: []graphmlKey{
			{ID: "kind", For: "node", AttrName: "kind", AttrType: "string"},
			{ID: "namespace", For: "node", AttrName: "namespace", AttrType: "string"},
			{ID: "type", For: "node", AttrName: "type", AttrType: "string"},
			{ID: "description", For: "node", AttrName: "description", AttrType: "string"},
			{ID: "edge_type", For: "edge", AttrName: "edge_type", AttrType: "string"},
			{ID: "run_id", For: "edge", AttrName: "run_id", AttrType: "string"},
			{ID: "timestamp", For: "edge", AttrName: "timestamp", AttrType: "string"},
		},
		Graph: graphmlGraph{ID: "lineage", EdgeDefault: "directed"},
	}

	for _, node := range snap.Graph.Nodes() {
		gn := graphmlNode{
			ID:   node.Ref.String(),
			Data: []graphmlData{{Key: "kind", Value: string(node.Ref.Kind)}},
		}
		switch node.Ref.Kind {
		case dag.KindDataset:
			if ds, ok := snap.Datasets[node.Ref.Name]; ok {
				gn.Data = append(gn.Data,
					graphmlData{Key: "namespace", Value: ds.Namespace},
					graphmlData{Key: "type", Value: string(ds.Type)},
				)
			}
		case dag.KindJob:
			if job, ok := snap.Jobs[node.Ref.Name]; ok {
				gn.Data = append(gn.Data,
					graphmlData{Key: "namespace", Value: job.Namespace},
					graphmlData{Key: "type", Value: string(job.Type)},
				)
				if job.Description != "" {
					gn.Data = append(gn.Data, graphmlData{Key: "description", Value: job.Description})
				}
			}
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, gn)
	}

	for _, edge := range snap.Graph.Edges() {
		doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
			Source: edge.Source.String(),
			Target: edge.Target.String(),
			Data: []graphmlData{
				{Key: "edge_type", Value: string(edge.Type)},
				{Key: "run_id", Value: edge.RunID},
				{Key: "timestamp", Value: edge.Timestamp.UTC().Format(time.RFC3339)},
			},
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal graphml: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}

func exportDOT(snap *state.Snapshot) string {
	var b strings.Builder
	b.WriteString("digraph lineage {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [fontname=\"Helvetica\"];\n\n")

	for _, node := range snap.Graph.Nodes() {
		shape := "ellipse"
		if node.Ref.Kind == dag.KindDataset {
			shape = "box"
		}
		fmt.Fprintf(&b, "  %q [label=%q, shape=%s];\n", node.Ref.String(), node.Ref.Name, shape)
	}
	b.WriteString("\n")
	for _, edge := range snap.Graph.Edges() {
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", edge.Source.String(), edge.Target.String(), edge.Type)
	}
	b.WriteString("}\n")
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
