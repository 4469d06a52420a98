// Package lineage implements the data lineage engine.
//
// The engine models datasets, jobs, and their execution runs as a
// directed graph and answers bounded-depth traversal queries over it.
//
// # Features
//
//   - Ingestion: upsert datasets and jobs, append runs (fail-fast on
//     references to unregistered entities)
//   - Traversal: direction-aware, depth-bounded reachability from
//     substring-matched start nodes
//   - Impact analysis: downstream-closure risk scoring
//   - Column lineage: flat column-to-column records, independent of the
//     table-level graph
//   - Export: JSON, GraphML, and DOT serializations of the full graph
//   - Metrics: aggregate statistics computed fresh per call
//
// # Basic Usage
//
//	store := state.NewMemoryStore(logger)
//	eng, err := lineage.New(lineage.Config{Store: store, Logger: logger})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := eng.QueryLineage(core.QueryRequest{
//	    DatasetName: "customer_analytics",
//	    Direction:   core.DirectionUpstream,
//	    Depth:       2,
//	})
package lineage
