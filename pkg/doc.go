// Package pkg provides the libraries behind the narrative engine.
//
// # Overview
//
// Given a time-ordered stream of short posts and one anchor post, the
// engine gathers the posts similar to the anchor, links them into a graph
// whose edges only run forward in time, extracts the longest chains
// ("threads") through the anchor and folds them into a two-sided tree
// that an interactive client can browse.
//
// # Architecture
//
// The typical data flow:
//
//	source (JSON file or URL, SQLite, MongoDB)
//	         ↓
//	    [item] corpus + [textsim] TF-IDF dissimilarity
//	         ↓
//	    [similarity] set around the anchor
//	         ↓
//	    [dag] forward-in-time graph + longest paths
//	         ↓
//	    [tree] before/after columns + edge queries
//	         ↓
//	    [graph] JSON, [render/nodelink] DOT/SVG
//
// [narrative] ties these steps together; [pipeline] adds the result cache
// shared by the CLI and the HTTP server.
//
// # Quick Start
//
//	corpus, _ := source.LoadCorpus(ctx, source.File{Path: "posts.json"})
//	engine, _ := narrative.New(corpus, narrative.Options{})
//	res, _ := engine.SetAnchor(ctx, 12)
//	threads, _ := res.ThreadsThrough(tree.EdgeKey{From: 12, To: 17})
//
// # Main Packages
//
// [item] - Items, records, hashtag and mention extraction, the corpus.
//
// [similarity] - Scoring of item pairs and the similarity set.
//
// [dag] - Directed acyclic graph over the set, topological order and
// longest paths.
//
// [tree] - The tree of threads around the anchor, edge keys, the lossless
// edge query and layout.
//
// [narrative] - The engine and its options.
//
// [cache], [pipeline] - Result caching (null, file, Redis) and the cached
// compute/query flow.
//
// [source], [io], [httputil] - Record sources, JSON import/export, and
// the retry and download cache behind remote sources.
//
// [errors], [observability], [buildinfo] - Ambient support.
package pkg
