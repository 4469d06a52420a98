package lineage

import (
	"errors"
	"testing"

	"github.com/leapstack-labs/leaplineage/internal/state"
	"github.com/leapstack-labs/leaplineage/pkg/core"
)

// newDemoEngine builds an in-memory engine loaded with the demo scenario:
// production.customers and production.orders feeding
// analytics.customer_analytics through two jobs.
func newDemoEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Config{Store: state.NewMemoryStore(nil)})
	if err != nil {
		t.Fatal(err)
	}
	if err := SeedDemo(e); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestQueryUpstream(t *testing.T) {
	e := newDemoEngine(t)

	resp, err := e.QueryLineage(core.QueryRequest{
		DatasetName:   "customer_analytics",
		Direction:     core.DirectionUpstream,
		Depth:         2,
		IncludeSchema: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Two hops upstream of the analytics table: its producing job, then
	// both source tables.
	if resp.TotalDatasets != 3 {
		t.Errorf("total_datasets = %d, want 3", resp.TotalDatasets)
	}
	if resp.TotalJobs != 1 {
		t.Errorf("total_jobs = %d, want 1", resp.TotalJobs)
	}
	for _, name := range []string{"analytics.customer_analytics", "production.customers", "production.orders"} {
		if _, ok := resp.Graph.Datasets[name]; !ok {
			t.Errorf("missing dataset %s", name)
		}
	}
	if _, ok := resp.Graph.Jobs["analytics.customer_analytics_pipeline"]; !ok {
		t.Error("missing job analytics.customer_analytics_pipeline")
	}
	ds := resp.Graph.Datasets["production.customers"]
	if len(ds.SchemaFields) != 4 {
		t.Errorf("expected schema fields to be included, got %d", len(ds.SchemaFields))
	}
}

func TestQueryNoMatch(t *testing.T) {
	e := newDemoEngine(t)

	resp, err := e.QueryLineage(core.QueryRequest{
		DatasetName: "ghost_dataset",
		Direction:   core.DirectionBoth,
		Depth:       3,
	})
	if err != nil {
		t.Fatalf("a query matching nothing must not fail: %v", err)
	}
	if resp.TotalDatasets != 0 || resp.TotalJobs != 0 {
		t.Errorf("expected empty result, got %d datasets, %d jobs", resp.TotalDatasets, resp.TotalJobs)
	}
	if resp.Graph == nil || resp.Graph.Datasets == nil || resp.Graph.Relationships == nil {
		t.Error("empty result must still carry initialized containers")
	}
}

func TestQueryValidation(t *testing.T) {
	e := newDemoEngine(t)

	cases := []struct {
		name string
		req  core.QueryRequest
	}{
		{"bad direction", core.QueryRequest{DatasetName: "customers", Direction: "sideways", Depth: 2}},
		{"zero depth", core.QueryRequest{DatasetName: "customers", Direction: core.DirectionBoth, Depth: 0}},
		{"negative depth", core.QueryRequest{DatasetName: "customers", Direction: core.DirectionBoth, Depth: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.QueryLineage(tc.req)
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestQueryDefaultsToBoth(t *testing.T) {
	e := newDemoEngine(t)

	resp, err := e.QueryLineage(core.QueryRequest{DatasetName: "production.customers", Depth: 3})
	if err != nil {
		t.Fatal(err)
	}
	// Both directions from customers reach the sync job upstream and the
	// analytics table downstream.
	if _, ok := resp.Graph.Jobs["etl.customer_data_sync"]; !ok {
		t.Error("expected upstream job in default-direction query")
	}
	if _, ok := resp.Graph.Datasets["analytics.customer_analytics"]; !ok {
		t.Error("expected downstream dataset in default-direction query")
	}
}

func TestQueryPatternScopedByKind(t *testing.T) {
	e := newDemoEngine(t)

	// "customer" is a substring of job names too; a dataset pattern must
	// only seed dataset nodes.
	resp, err := e.QueryLineage(core.QueryRequest{
		DatasetName: "customer_analytics",
		Direction:   core.DirectionDownstream,
		Depth:       1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.TotalDatasets != 1 || resp.TotalJobs != 0 {
		t.Errorf("expected only the matched dataset, got %d datasets, %d jobs",
			resp.TotalDatasets, resp.TotalJobs)
	}

	resp, err = e.QueryLineage(core.QueryRequest{
		JobName:   "pipeline",
		Direction: core.DirectionUpstream,
		Depth:     1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := resp.Graph.Jobs["analytics.customer_analytics_pipeline"]; !ok {
		t.Error("job pattern did not match the pipeline job")
	}
	if resp.TotalDatasets != 2 {
		t.Errorf("one hop upstream of the pipeline should reach 2 datasets, got %d", resp.TotalDatasets)
	}
}

func TestQueryDepthBound(t *testing.T) {
	e := newDemoEngine(t)

	// One hop downstream of orders reaches the pipeline job but not yet
	// the analytics table.
	resp, err := e.QueryLineage(core.QueryRequest{
		DatasetName: "production.orders",
		Direction:   core.DirectionDownstream,
		Depth:       1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.TotalDatasets != 1 || resp.TotalJobs != 1 {
		t.Errorf("depth 1: got %d datasets, %d jobs, want 1 and 1", resp.TotalDatasets, resp.TotalJobs)
	}

	resp, err = e.QueryLineage(core.QueryRequest{
		DatasetName: "production.orders",
		Direction:   core.DirectionDownstream,
		Depth:       2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := resp.Graph.Datasets["analytics.customer_analytics"]; !ok {
		t.Error("depth 2 should reach the analytics table")
	}

	// Increasing depth past the graph diameter changes nothing.
	deep, err := e.QueryLineage(core.QueryRequest{
		DatasetName: "production.orders",
		Direction:   core.DirectionDownstream,
		Depth:       50,
	})
	if err != nil {
		t.Fatal(err)
	}
	if deep.TotalDatasets != resp.TotalDatasets || deep.TotalJobs != resp.TotalJobs {
		t.Error("exhausted traversal should be stable under larger depths")
	}
}

func TestQuerySelfContained(t *testing.T) {
	e := newDemoEngine(t)

	resp, err := e.QueryLineage(core.QueryRequest{
		DatasetName: "customers",
		Direction:   core.DirectionBoth,
		Depth:       5,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Every relationship endpoint must itself be part of the result.
	for _, rel := range resp.Graph.Relationships {
		for _, endpoint := range []string{rel.Source, rel.Target} {
			_, isDataset := resp.Graph.Datasets[endpoint]
			_, isJob := resp.Graph.Jobs[endpoint]
			if !isDataset && !isJob {
				t.Errorf("relationship endpoint %s missing from result graph", endpoint)
			}
		}
		if rel.RunID == "" {
			t.Errorf("relationship %s -> %s missing run id", rel.Source, rel.Target)
		}
	}

	// Runs are included for every job in the result.
	jobsWithRuns := make(map[string]bool)
	for _, run := range resp.Graph.Runs {
		jobsWithRuns[run.Job] = true
	}
	for name := range resp.Graph.Jobs {
		if !jobsWithRuns[name] {
			t.Errorf("job %s has no runs in result graph", name)
		}
	}
}

func TestQueryStripsSchemaByDefault(t *testing.T) {
	e := newDemoEngine(t)

	resp, err := e.QueryLineage(core.QueryRequest{
		DatasetName: "production.customers",
		Direction:   core.DirectionBoth,
		Depth:       1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Graph.Datasets["production.customers"].SchemaFields; len(got) != 0 {
		t.Errorf("schema fields should be stripped, got %d", len(got))
	}

	// Stripping operates on a copy; the store keeps the schema.
	snap := e.Snapshot()
	if len(snap.Datasets["production.customers"].SchemaFields) != 4 {
		t.Error("query result projection mutated the store")
	}
}

func TestQueryEmptyStore(t *testing.T) {
	e, err := New(Config{Store: state.NewMemoryStore(nil)})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := e.QueryLineage(core.QueryRequest{
		DatasetName: "anything",
		Direction:   core.DirectionBoth,
		Depth:       3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.TotalDatasets != 0 || resp.TotalJobs != 0 {
		t.Error("expected empty result on empty store")
	}
	if resp.ExecutionTimeMS < 0 {
		t.Error("execution time must be non-negative")
	}
}

func TestQueryMultipleStartNodes(t *testing.T) {
	e := newDemoEngine(t)

	// "production" matches both source tables; the union of their
	// downstream closures covers the whole demo graph except nothing.
	resp, err := e.QueryLineage(core.QueryRequest{
		DatasetName: "production",
		Direction:   core.DirectionDownstream,
		Depth:       2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.TotalDatasets != 3 {
		t.Errorf("total_datasets = %d, want 3", resp.TotalDatasets)
	}
	if resp.TotalJobs != 1 {
		t.Errorf("total_jobs = %d, want 1", resp.TotalJobs)
	}
	if got := len(resp.Graph.Relationships); got != 3 {
		t.Errorf("relationships = %d, want 3", got)
	}
}
