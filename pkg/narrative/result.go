package narrative

import (
	"time"

	"github.com/matzehuels/narrative/pkg/dag"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/similarity"
	"github.com/matzehuels/narrative/pkg/tree"
)

// Result is everything computed for one anchor. It is never modified after
// it is returned and can be shared between goroutines.
type Result struct {
	// ID identifies this result, e.g. for later edge queries over HTTP.
	ID string

	// Anchor is the item the threads were built around.
	Anchor item.ID

	// Options holds the thresholds the result was computed with.
	Options Options

	Set     similarity.Set
	DAG     *dag.DAG
	Threads []dag.Thread
	Tree    *tree.Tree

	Stats Stats
}

// Stats contains sizes and stage timings of a computation.
type Stats struct {
	SetSize     int
	VertexCount int
	EdgeCount   int
	ThreadCount int

	SetTime   time.Duration
	GraphTime time.Duration
	PathTime  time.Duration
	TreeTime  time.Duration
}

// Total returns the summed stage durations.
func (s Stats) Total() time.Duration {
	return s.SetTime + s.GraphTime + s.PathTime + s.TreeTime
}

// ThreadsThrough returns the threads that use edge, in thread order.
// See [tree.BuildThreadList].
func (r *Result) ThreadsThrough(edge tree.EdgeKey) ([]dag.Thread, error) {
	return tree.BuildThreadList(r.Tree, r.DAG, r.Threads, edge)
}

// Edges lists the links of the result's tree.
func (r *Result) Edges() []tree.EdgeKey { return r.Tree.Edges() }

// Layout positions the result's tree on a w x h canvas.
func (r *Result) Layout(w, h float64) (tree.Layout, bool) { return r.Tree.Layout(w, h) }

// Empty reports whether no thread passes through the anchor.
func (r *Result) Empty() bool { return len(r.Threads) == 0 }
