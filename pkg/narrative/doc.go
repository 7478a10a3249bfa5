// Package narrative composes the thread extraction stages into an engine.
//
// # Overview
//
// Given a corpus of short items and an anchor chosen by a user, the
// [Engine] derives narrative threads: time-ordered chains of related items
// passing through the anchor. One call to [Engine.SetAnchor] runs the whole
// flow and returns an immutable [Result]:
//
//  1. score every item against the anchor and keep the similar ones
//  2. connect similar pairs into a time-respecting graph
//  3. extract the longest path from every source that reaches the anchor
//  4. merge those paths into a tree around the anchor
//
// The result answers edge queries through [Result.ThreadsThrough] and can be
// laid out on a canvas with [Result.Layout].
//
// # Usage
//
//	oracle, _ := textsim.NewTFIDF(item.Texts(items), textsim.DefaultStopWords...)
//	engine, err := narrative.New(item.NewCorpus(items, oracle), narrative.Options{})
//	if err != nil {
//	    return err
//	}
//	r, err := engine.SetAnchor(ctx, 42)
//	through, err := r.ThreadsThrough(tree.EdgeKey{From: 17, To: 42})
//
// # Configuration
//
// [Options] carries the three thresholds. They can be read from the
// [engine] table of a TOML file with [LoadOptions].
package narrative
