package lineage

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/leaplineage/pkg/core"
)

// SeedDemo loads a small customer-analytics scenario: two operational
// tables feeding an analytics table through a sync job and a transform
// pipeline. Used by the seed command and the demo server mode.
func SeedDemo(e *Engine) error {
	datasets := []*core.Dataset{
		{
			Namespace: "production",
			Name:      "customers",
			Type:      core.DatasetTable,
			SchemaFields: []core.SchemaField{
				{Name: "customer_id", Type: "INTEGER"},
				{Name: "email", Type: "VARCHAR(255)"},
				{Name: "first_name", Type: "VARCHAR(100)"},
				{Name: "last_name", Type: "VARCHAR(100)"},
			},
			Properties: map[string]any{"source": "postgresql", "location": "customers_table"},
		},
		{
			Namespace: "production",
			Name:      "orders",
			Type:      core.DatasetTable,
			SchemaFields: []core.SchemaField{
				{Name: "order_id", Type: "INTEGER"},
				{Name: "customer_id", Type: "INTEGER"},
				{Name: "order_total", Type: "DECIMAL(10,2)"},
				{Name: "order_date", Type: "DATE"},
			},
			Properties: map[string]any{"source": "postgresql", "location": "orders_table"},
		},
		{
			Namespace: "analytics",
			Name:      "customer_analytics",
			Type:      core.DatasetTable,
			SchemaFields: []core.SchemaField{
				{Name: "customer_id", Type: "INTEGER"},
				{Name: "total_orders", Type: "INTEGER"},
				{Name: "total_spent", Type: "DECIMAL(12,2)"},
				{Name: "last_order_date", Type: "DATE"},
			},
			Properties: map[string]any{"source": "data_warehouse", "location": "customer_analytics_view"},
		},
	}
	for _, ds := range datasets {
		if err := e.AddDataset(ds); err != nil {
			return fmt.Errorf("failed to seed dataset %s: %w", ds.QualifiedName(), err)
		}
	}

	jobs := []*core.Job{
		{
			Namespace:   "etl",
			Name:        "customer_data_sync",
			Type:        core.JobETL,
			Description: "Sync customer data from operational database",
			Properties:  map[string]any{"schedule": "hourly", "owner": "data-team"},
		},
		{
			Namespace:   "analytics",
			Name:        "customer_analytics_pipeline",
			Type:        core.JobTransform,
			Description: "Generate customer analytics from raw data",
			Properties:  map[string]any{"schedule": "daily", "owner": "analytics-team"},
		},
	}
	for _, job := range jobs {
		if err := e.AddJob(job); err != nil {
			return fmt.Errorf("failed to seed job %s: %w", job.QualifiedName(), err)
		}
	}

	now := time.Now()
	syncEnded := now.Add(-55 * time.Minute)
	pipelineEnded := now.Add(-20 * time.Minute)
	runs := []*core.Run{
		{
			Job:       "etl.customer_data_sync",
			Status:    core.RunComplete,
			StartedAt: now.Add(-1 * time.Hour),
			EndedAt:   &syncEnded,
			Outputs:   []string{"production.customers"},
			Properties: map[string]any{
				"records_processed": 10000,
				"execution_time":    300,
			},
		},
		{
			Job:       "analytics.customer_analytics_pipeline",
			Status:    core.RunComplete,
			StartedAt: now.Add(-30 * time.Minute),
			EndedAt:   &pipelineEnded,
			Inputs:    []string{"production.customers", "production.orders"},
			Outputs:   []string{"analytics.customer_analytics"},
			Properties: map[string]any{
				"records_processed": 5000,
				"execution_time":    600,
			},
		},
	}
	for _, run := range runs {
		if err := e.AddRun(run); err != nil {
			return fmt.Errorf("failed to seed run for %s: %w", run.Job, err)
		}
	}

	columns := []core.ColumnLineage{
		{
			SourceDataset:  "production.customers",
			SourceColumn:   "customer_id",
			TargetDataset:  "analytics.customer_analytics",
			TargetColumn:   "customer_id",
			Transformation: "direct_copy",
			JobName:        "analytics.customer_analytics_pipeline",
		},
		{
			SourceDataset:  "production.orders",
			SourceColumn:   "order_total",
			TargetDataset:  "analytics.customer_analytics",
			TargetColumn:   "total_spent",
			Transformation: "sum(order_total) group by customer_id",
			JobName:        "analytics.customer_analytics_pipeline",
		},
		{
			SourceDataset:  "production.orders",
			SourceColumn:   "order_date",
			TargetDataset:  "analytics.customer_analytics",
			TargetColumn:   "last_order_date",
			Transformation: "max(order_date) group by customer_id",
			JobName:        "analytics.customer_analytics_pipeline",
		},
	}
	for _, cl := range columns {
		if err := e.AddColumnLineage(cl); err != nil {
			return fmt.Errorf("failed to seed column lineage: %w", err)
		}
	}

	return nil
}
