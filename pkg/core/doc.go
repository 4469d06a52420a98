// Package core defines the shared language of the lineage engine.
//
// This package contains:
//   - Domain entities (Dataset, Job, Run, ColumnLineage)
//   - Query request/response shapes (QueryRequest, QueryResponse, Graph)
//   - Aggregate reports (Metrics, ImpactReport)
//   - Typed errors (NotFoundError, ValidationError)
//
// The Golden Rule: pkg/core imports only stdlib and the uuid package.
// All other packages depend on core, not the reverse.
package core
