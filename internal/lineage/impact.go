package lineage

import (
	"sort"

	"github.com/leapstack-labs/leaplineage/pkg/core"
)

// impactDepth is the traversal ceiling for impact analysis. This is a
// fixed approximation, not a true transitive closure: chains deeper than
// ten hops are cut off.
const impactDepth = 10

// ImpactAnalysis estimates the blast radius of a change to a dataset by
// walking its downstream closure. The dataset must exist under exactly
// this qualified name.
func (e *Engine) ImpactAnalysis(datasetName string) (*core.ImpactReport, error) {
	snap := e.store.Snapshot()
	if _, ok := snap.Datasets[datasetName]; !ok {
		return nil, &core.NotFoundError{Kind: "dataset", Name: datasetName}
	}

	resp, err := e.QueryLineage(core.QueryRequest{
		DatasetName:   datasetName,
		Direction:     core.DirectionDownstream,
		Depth:         impactDepth,
		IncludeSchema: false,
	})
	if err != nil {
		return nil, err
	}

	// The source dataset is always part of its own connected set; exclude
	// it from the affected count.
	affectedDatasets := len(resp.Graph.Datasets) - 1
	affectedJobs := len(resp.Graph.Jobs)

	downstream := make([]string, 0, affectedDatasets)
	for _, name := range sortedKeys(resp.Graph.Datasets) {
		if name != datasetName {
			downstream = append(downstream, name)
		}
	}

	report := &core.ImpactReport{
		Dataset:            datasetName,
		AffectedDatasets:   affectedDatasets,
		AffectedJobs:       affectedJobs,
		DownstreamDatasets: downstream,
		DownstreamJobs:     sortedJobKeys(resp.Graph.Jobs),
		RiskLevel:          classifyRisk(affectedDatasets),
	}

	e.logger.Info("impact analysis completed",
		"dataset", datasetName,
		"affected_datasets", report.AffectedDatasets,
		"affected_jobs", report.AffectedJobs,
		"risk_level", report.RiskLevel,
	)
	return report, nil
}

// classifyRisk grades a change by the number of downstream datasets.
func classifyRisk(affectedDatasets int) core.RiskLevel {
	switch {
	case affectedDatasets > 5:
		return core.RiskHigh
	case affectedDatasets > 2:
		return core.RiskMedium
	default:
		return core.RiskLow
	}
}

func sortedKeys(m map[string]*core.Dataset) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedJobKeys(m map[string]*core.Job) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
