package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leaplineage/pkg/core"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// renderQueryResponse prints a lineage query result as tables: one for
// nodes, one for relationships.
func renderQueryResponse(w io.Writer, resp *core.QueryResponse) {
	if resp.TotalDatasets == 0 && resp.TotalJobs == 0 {
		_, _ = fmt.Fprintln(w, "No matching nodes found.")
		return
	}

	nodes := newTable(w)
	nodes.AppendHeader(table.Row{"Kind", "Qualified Name", "Type"})

	datasetNames := make([]string, 0, len(resp.Graph.Datasets))
	for name := range resp.Graph.Datasets {
		datasetNames = append(datasetNames, name)
	}
	sort.Strings(datasetNames)
	for _, name := range datasetNames {
		nodes.AppendRow(table.Row{"dataset", name, string(resp.Graph.Datasets[name].Type)})
	}

	jobNames := make([]string, 0, len(resp.Graph.Jobs))
	for name := range resp.Graph.Jobs {
		jobNames = append(jobNames, name)
	}
	sort.Strings(jobNames)
	for _, name := range jobNames {
		nodes.AppendRow(table.Row{"job", name, string(resp.Graph.Jobs[name].Type)})
	}
	nodes.Render()

	if len(resp.Graph.Relationships) > 0 {
		_, _ = fmt.Fprintln(w)
		edges := newTable(w)
		edges.AppendHeader(table.Row{"Source", "Target", "Type", "Run"})
		for _, rel := range resp.Graph.Relationships {
			edges.AppendRow(table.Row{rel.Source, rel.Target, rel.Type, shortID(rel.RunID)})
		}
		edges.Render()
	}

	_, _ = fmt.Fprintf(w, "\n%d datasets, %d jobs (%dms)\n",
		resp.TotalDatasets, resp.TotalJobs, resp.ExecutionTimeMS)
}

// renderImpactReport prints an impact report with its downstream lists.
func renderImpactReport(w io.Writer, report *core.ImpactReport) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Dataset", "Affected Datasets", "Affected Jobs", "Risk"})
	t.AppendRow(table.Row{report.Dataset, report.AffectedDatasets, report.AffectedJobs, string(report.RiskLevel)})
	t.Render()

	if len(report.DownstreamDatasets) > 0 {
		_, _ = fmt.Fprintf(w, "\nDownstream datasets:\n  %s\n",
			strings.Join(report.DownstreamDatasets, "\n  "))
	}
	if len(report.DownstreamJobs) > 0 {
		_, _ = fmt.Fprintf(w, "\nDownstream jobs:\n  %s\n",
			strings.Join(report.DownstreamJobs, "\n  "))
	}
}

// renderMetrics prints store metrics as a two-column table.
func renderMetrics(w io.Writer, m *core.Metrics) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"Total datasets", m.TotalDatasets})
	t.AppendRow(table.Row{"Total jobs", m.TotalJobs})
	t.AppendRow(table.Row{"Total runs", m.TotalRuns})
	t.AppendRow(table.Row{"Active jobs", m.ActiveJobs})
	t.AppendRow(table.Row{"Failed runs (24h)", m.FailedRuns})
	t.AppendRow(table.Row{"Avg execution time", fmt.Sprintf("%.1fs", m.AvgExecutionTime)})
	t.Render()
}

// shortID truncates a run UUID for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
