// Package dag compiles the time-respecting graph of a similarity set and
// extracts narrative threads from it.
//
// # Overview
//
// A narrative thread is a chain of items that plausibly tell one story. The
// graph built here connects every pair of similarity-set members whose
// pairwise score reaches an edge threshold, always pointing from the
// earlier item to the later one. Equal timestamps are ordered by id, which
// makes the graph acyclic by construction.
//
// # Basic Usage
//
//	set := scorer.BuildSet(anchor, 0.1, 0.3)
//	g := dag.Build(set, scorer, 0.1, 0.25)
//	threads := g.LongestPaths(anchor)
//
// Graphs can also be assembled by hand with [New], [DAG.AddVertex] and
// [DAG.AddEdge]; [DAG.Validate] checks the time order against a corpus.
//
// # Longest Paths
//
// [DAG.BellmanFordLongest] runs Bellman–Ford with a cost of -1 per edge, so
// the longest path is the one with the most hops. The stored edge weights do
// not influence it. [DAG.LongestPaths] runs it once per source vertex and
// keeps the paths that pass through the anchor, which makes it
// O(V·(V+E)) per call.
//
// # Concurrency
//
// A DAG is not safe for concurrent modification. Once built it is only
// read, and concurrent readers need no synchronization.
package dag
