package export

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leapstack-labs/leaplineage/internal/state"
	"github.com/leapstack-labs/leaplineage/pkg/core"
)

func populatedSnapshot(t *testing.T) *state.Snapshot {
	t.Helper()
	store := state.NewMemoryStore(nil)
	if err := store.AddDataset(&core.Dataset{Namespace: "raw", Name: "events", Type: core.DatasetTable}); err != nil {
		t.Fatal(err)
	}
	if err := store.AddDataset(&core.Dataset{Namespace: "mart", Name: "sessions", Type: core.DatasetTable}); err != nil {
		t.Fatal(err)
	}
	if err := store.AddJob(&core.Job{Namespace: "etl", Name: "sessionize", Type: core.JobTransform}); err != nil {
		t.Fatal(err)
	}
	run := &core.Run{
		Job:       "etl.sessionize",
		Status:    core.RunComplete,
		StartedAt: time.Now().Add(-10 * time.Minute),
		Inputs:    []string{"raw.events"},
		Outputs:   []string{"mart.sessions"},
	}
	if err := store.AddRun(run); err != nil {
		t.Fatal(err)
	}
	return store.Snapshot()
}

func emptySnapshot() *state.Snapshot {
	return state.NewMemoryStore(nil).Snapshot()
}

func TestExportJSON(t *testing.T) {
	out, err := Export(populatedSnapshot(t), core.ExportJSON)
	if err != nil {
		t.Fatalf("export json: %v", err)
	}

	var dump map[string]any
	if err := json.Unmarshal([]byte(out), &dump); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	for _, key := range []string{"exported_at", "datasets", "jobs", "runs", "column_lineage", "relationships"} {
		if _, ok := dump[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}
	rels, ok := dump["relationships"].([]any)
	if !ok || len(rels) != 2 {
		t.Fatalf("expected 2 relationships, got %v", dump["relationships"])
	}
}

func TestExportGraphML(t *testing.T) {
	out, err := Export(populatedSnapshot(t), core.ExportGraphML)
	if err != nil {
		t.Fatalf("export graphml: %v", err)
	}

	var doc struct {
		XMLName xml.Name `xml:"graphml"`
		Graph   struct {
			Nodes []struct {
				ID string `xml:"id,attr"`
			} `xml:"node"`
			Edges []struct {
				Source string `xml:"source,attr"`
				Target string `xml:"target,attr"`
			} `xml:"edge"`
		} `xml:"graph"`
	}
	if err := xml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid XML: %v", err)
	}
	if len(doc.Graph.Nodes) != 3 {
		t.Errorf("expected 3 nodes, got %d", len(doc.Graph.Nodes))
	}
	if len(doc.Graph.Edges) != 2 {
		t.Errorf("expected 2 edges, got %d", len(doc.Graph.Edges))
	}
	if !strings.Contains(out, "dataset:raw.events") {
		t.Error("expected kind-prefixed node id for raw.events")
	}
}

func TestExportDOT(t *testing.T) {
	out, err := Export(populatedSnapshot(t), core.ExportDOT)
	if err != nil {
		t.Fatalf("export dot: %v", err)
	}
	if !strings.HasPrefix(out, "digraph lineage {") {
		t.Errorf("unexpected preamble: %q", out[:min(len(out), 40)])
	}
	if !strings.Contains(out, `"dataset:raw.events" -> "job:etl.sessionize"`) {
		t.Error("missing input edge in dot output")
	}
	if !strings.Contains(out, "shape=box") || !strings.Contains(out, "shape=ellipse") {
		t.Error("expected box datasets and ellipse jobs")
	}
}

func TestExportEmptyGraph(t *testing.T) {
	for _, format := range []core.ExportFormat{core.ExportJSON, core.ExportGraphML, core.ExportDOT} {
		out, err := Export(emptySnapshot(), format)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if out == "" {
			t.Errorf("%s: empty output", format)
		}
	}

	out, _ := Export(emptySnapshot(), core.ExportJSON)
	var dump struct {
		Datasets []any `json:"datasets"`
		Runs     []any `json:"runs"`
	}
	if err := json.Unmarshal([]byte(out), &dump); err != nil {
		t.Fatalf("empty dump is not valid JSON: %v", err)
	}
	if dump.Datasets == nil || dump.Runs == nil {
		t.Error("empty dump must serialize empty arrays, not null")
	}
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := Export(emptySnapshot(), core.ExportFormat("csv"))
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
