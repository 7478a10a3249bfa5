// Package graph provides the serialization format for narrative results.
//
// This package defines the canonical wire format for computed results, used
// for result files, API responses and the result cache.
//
// # Architecture
//
// The package sits at the serialization boundary between the engine's
// internal representation and external formats:
//
//   - [Result], [Layout]: Serialization types (this package)
//   - narrative.Result: Internal result (similarity set, DAG, threads, tree)
//   - tree.Layout: Internal canvas positions
//
// Use [FromResult]/[ToResult] and [FromLayout] to convert between them.
//
// # Result Serialization
//
// Results use a flat, id-based JSON format:
//
//	{
//	  "id": "5f0c…",
//	  "anchor": 2,
//	  "set": [{"id": 0, "score": 0.41}, {"id": 2, "score": 1}],
//	  "nodes": [0, 2],
//	  "edges": [{"from": 0, "to": 2, "weight": 0.41}],
//	  "threads": [[0, 2]],
//	  "tree": {"anchor": {"id": 2, "parents": [0], "children": []}, …}
//	}
//
// Common operations:
//
//	r, _ := graph.ReadResultFile("result.json")   // File → narrative.Result
//	graph.WriteResultFile(r, "result.json")       // narrative.Result → File
//	data, _ := graph.MarshalResult(r)             // narrative.Result → []byte
//	r, _ = graph.UnmarshalResult(data)            // []byte → narrative.Result
//
// Decoding rebuilds and validates the DAG, so a decoded result answers edge
// queries exactly like the one that was encoded.
package graph
