package lineage

import (
	"time"

	"github.com/leapstack-labs/leaplineage/pkg/core"
)

// Metrics computes aggregate statistics over the store. Nothing is
// cached; every call reflects the store at the moment of the snapshot.
func (e *Engine) Metrics() *core.Metrics {
	snap := e.store.Snapshot()

	now := time.Now()
	cutoff := now.Add(-24 * time.Hour)

	var activeJobs, failedRuns int
	var completedRuns int
	var totalExecution time.Duration

	for _, run := range snap.Runs {
		switch run.Status {
		case core.RunStart:
			// Counted per run: a job with two concurrently started runs
			// contributes twice.
			activeJobs++
		case core.RunFail:
			if !run.StartedAt.Before(cutoff) {
				failedRuns++
			}
		case core.RunComplete:
			if run.EndedAt != nil {
				completedRuns++
				totalExecution += run.EndedAt.Sub(run.StartedAt)
			}
		}
	}

	var avgExecution float64
	if completedRuns > 0 {
		avgExecution = totalExecution.Seconds() / float64(completedRuns)
	}

	return &core.Metrics{
		TotalDatasets:    len(snap.Datasets),
		TotalJobs:        len(snap.Jobs),
		TotalRuns:        len(snap.Runs),
		ActiveJobs:       activeJobs,
		FailedRuns:       failedRuns,
		AvgExecutionTime: avgExecution,
		LastUpdated:      now,
	}
}
