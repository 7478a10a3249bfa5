package graph

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/matzehuels/narrative/pkg/dag"
	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/narrative"
	"github.com/matzehuels/narrative/pkg/similarity"
	"github.com/matzehuels/narrative/pkg/tree"
)

// =============================================================================
// Result - Narrative Result Serialization
// =============================================================================

// Result is the canonical serialization format for a computed result.
// Ids are plain integers so that clients in any language can use them.
type Result struct {
	ID      string            `json:"id" bson:"id"`
	Anchor  int               `json:"anchor" bson:"anchor"`
	Options narrative.Options `json:"options" bson:"options"`
	Set     []Member          `json:"set" bson:"set"`
	Nodes   []int             `json:"nodes" bson:"nodes"`
	Edges   []Edge            `json:"edges" bson:"edges"`
	Threads [][]int           `json:"threads" bson:"threads"`
	Tree    Tree              `json:"tree" bson:"tree"`
	Stats   Stats             `json:"stats" bson:"stats"`
}

// Member is one entry of the similarity set.
type Member struct {
	ID    int     `json:"id" bson:"id"`
	Score float64 `json:"score" bson:"score"`
}

// Edge is a directed, weighted DAG edge from the older item to the newer.
type Edge struct {
	From   int     `json:"from" bson:"from"`
	To     int     `json:"to" bson:"to"`
	Weight float64 `json:"weight" bson:"weight"`
}

// Tree is the serialized thread tree. Columns are ordered nearest to the
// anchor first and their nodes by id. Width and Height are informational
// and ignored when decoding.
type Tree struct {
	Anchor Node     `json:"anchor" bson:"anchor"`
	Before [][]Node `json:"before" bson:"before"`
	After  [][]Node `json:"after" bson:"after"`
	Width  int      `json:"width" bson:"width"`
	Height int      `json:"height" bson:"height"`
}

// Node is a tree node with its links to the adjacent columns.
type Node struct {
	ID       int   `json:"id" bson:"id"`
	Parents  []int `json:"parents" bson:"parents"`
	Children []int `json:"children" bson:"children"`
	Row      int   `json:"row" bson:"row"`
}

// Stats carries sizes and stage timings in milliseconds.
type Stats struct {
	SetSize     int     `json:"set_size" bson:"set_size"`
	VertexCount int     `json:"vertex_count" bson:"vertex_count"`
	EdgeCount   int     `json:"edge_count" bson:"edge_count"`
	ThreadCount int     `json:"thread_count" bson:"thread_count"`
	SetMS       float64 `json:"set_ms" bson:"set_ms"`
	GraphMS     float64 `json:"graph_ms" bson:"graph_ms"`
	PathMS      float64 `json:"path_ms" bson:"path_ms"`
	TreeMS      float64 `json:"tree_ms" bson:"tree_ms"`
}

// =============================================================================
// narrative.Result ↔ Result Conversion
// =============================================================================

// FromResult converts a result to its serialization format.
// Set members, nodes and edges are sorted by id for deterministic output.
func FromResult(r *narrative.Result) Result {
	out := Result{
		ID:      r.ID,
		Anchor:  int(r.Anchor),
		Options: r.Options,
		Set:     make([]Member, 0, len(r.Set)),
		Nodes:   []int{},
		Edges:   []Edge{},
		Threads: make([][]int, len(r.Threads)),
		Tree:    fromTree(r.Tree),
		Stats:   fromStats(r.Stats),
	}
	out.Options.Logger = nil

	for _, id := range r.Set.IDs() {
		out.Set = append(out.Set, Member{ID: int(id), Score: r.Set[id]})
	}
	if r.DAG != nil {
		for _, v := range r.DAG.Vertices() {
			out.Nodes = append(out.Nodes, int(v))
			for _, e := range r.DAG.Edges(v) {
				out.Edges = append(out.Edges, Edge{From: int(v), To: int(e.To), Weight: e.Weight})
			}
		}
	}
	for i, th := range r.Threads {
		out.Threads[i] = ints(th)
	}
	return out
}

// ToResult converts a serialized result back. It returns an error if the
// edges do not form a valid DAG over the listed nodes, if a thread leaves
// the DAG, or if the tree is not the one the threads compact into.
func ToResult(rj Result) (*narrative.Result, error) {
	r := &narrative.Result{
		ID:      rj.ID,
		Anchor:  item.ID(rj.Anchor),
		Options: rj.Options,
		Set:     make(similarity.Set, len(rj.Set)),
		DAG:     dag.New(),
		Threads: make([]dag.Thread, len(rj.Threads)),
		Tree:    toTree(rj.Tree),
		Stats:   toStats(rj.Stats),
	}
	for _, m := range rj.Set {
		r.Set[item.ID(m.ID)] = m.Score
	}
	for _, v := range rj.Nodes {
		if err := r.DAG.AddVertex(item.ID(v)); err != nil {
			return nil, fmt.Errorf("add vertex %d: %w", v, err)
		}
	}
	for _, e := range rj.Edges {
		if err := r.DAG.AddEdge(item.ID(e.From), item.ID(e.To), e.Weight); err != nil {
			return nil, fmt.Errorf("add edge %d→%d: %w", e.From, e.To, err)
		}
	}
	if err := r.DAG.CheckAcyclic(); err != nil {
		return nil, err
	}
	for i, th := range rj.Threads {
		r.Threads[i] = ids(th)
		for j := 1; j < len(th); j++ {
			if !r.DAG.HasEdge(item.ID(th[j-1]), item.ID(th[j])) {
				return nil, fmt.Errorf("thread %d uses missing edge %d→%d", i, th[j-1], th[j])
			}
		}
	}
	want := tree.Build(r.Threads, r.Anchor)
	if pos, id, ok := diffTree(r.Tree, want); !ok {
		return nil, errs.New(errs.ErrCodeInvalidFormat,
			"tree node %d at position %d does not match threads through anchor %d", id, pos, r.Anchor)
	}
	return r, nil
}

// diffTree reports the first position and id at which got and want differ.
// Position 0 is the anchor, negative positions lie before it.
func diffTree(got, want *tree.Tree) (int, item.ID, bool) {
	if got.Anchor.ID != want.Anchor.ID ||
		!slices.Equal(got.Anchor.Parents, want.Anchor.Parents) ||
		!slices.Equal(got.Anchor.Children, want.Anchor.Children) {
		return 0, got.Anchor.ID, false
	}
	for _, dir := range []tree.Direction{tree.Backward, tree.Forward} {
		sign := 1
		if dir == tree.Backward {
			sign = -1
		}
		g, w := got.Side(dir), want.Side(dir)
		for i := range max(len(g), len(w)) {
			pos := sign * (i + 1)
			if i >= len(g) || i >= len(w) || len(g[i]) != len(w[i]) {
				return pos, got.Anchor.ID, false
			}
			for id, n := range g[i] {
				m, ok := w[i][id]
				if !ok || n.Row != m.Row ||
					!slices.Equal(n.Parents, m.Parents) ||
					!slices.Equal(n.Children, m.Children) {
					return pos, id, false
				}
			}
		}
	}
	return 0, 0, true
}

func fromTree(t *tree.Tree) Tree {
	if t == nil {
		return Tree{Before: [][]Node{}, After: [][]Node{}}
	}
	out := Tree{
		Anchor: Node{
			ID:       int(t.Anchor.ID),
			Parents:  ints(t.Anchor.Parents),
			Children: ints(t.Anchor.Children),
			Row:      t.Anchor.Row,
		},
		Before: fromColumns(t.Before),
		After:  fromColumns(t.After),
		Width:  t.Width(),
		Height: t.Height(),
	}
	return out
}

func fromColumns(cols []tree.Column) [][]Node {
	out := make([][]Node, len(cols))
	for i, col := range cols {
		out[i] = make([]Node, 0, len(col))
		for _, id := range col.IDs() {
			n := col[id]
			out[i] = append(out[i], Node{
				ID:       int(n.ID),
				Parents:  ints(n.Parents),
				Children: ints(n.Children),
				Row:      n.Row,
			})
		}
	}
	return out
}

func toTree(tj Tree) *tree.Tree {
	return &tree.Tree{
		Anchor: tree.Anchor{
			ID:       item.ID(tj.Anchor.ID),
			Parents:  ids(tj.Anchor.Parents),
			Children: ids(tj.Anchor.Children),
			Row:      tj.Anchor.Row,
		},
		Before: toColumns(tj.Before),
		After:  toColumns(tj.After),
	}
}

func toColumns(cols [][]Node) []tree.Column {
	out := make([]tree.Column, len(cols))
	for i, col := range cols {
		out[i] = make(tree.Column, len(col))
		for _, n := range col {
			out[i][item.ID(n.ID)] = &tree.Node{
				ID:       item.ID(n.ID),
				Parents:  ids(n.Parents),
				Children: ids(n.Children),
				Row:      n.Row,
			}
		}
	}
	return out
}

func fromStats(s narrative.Stats) Stats {
	return Stats{
		SetSize:     s.SetSize,
		VertexCount: s.VertexCount,
		EdgeCount:   s.EdgeCount,
		ThreadCount: s.ThreadCount,
		SetMS:       ms(s.SetTime),
		GraphMS:     ms(s.GraphTime),
		PathMS:      ms(s.PathTime),
		TreeMS:      ms(s.TreeTime),
	}
}

func toStats(s Stats) narrative.Stats {
	return narrative.Stats{
		SetSize:     s.SetSize,
		VertexCount: s.VertexCount,
		EdgeCount:   s.EdgeCount,
		ThreadCount: s.ThreadCount,
		SetTime:     fromMS(s.SetMS),
		GraphTime:   fromMS(s.GraphMS),
		PathTime:    fromMS(s.PathMS),
		TreeTime:    fromMS(s.TreeMS),
	}
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

func fromMS(v float64) time.Duration { return time.Duration(math.Round(v * float64(time.Millisecond))) }

// ints never returns nil so that empty lists encode as [].
func ints(in []item.ID) []int {
	out := make([]int, len(in))
	for i, id := range in {
		out[i] = int(id)
	}
	return out
}

func ids(in []int) []item.ID {
	out := make([]item.ID, len(in))
	for i, v := range in {
		out[i] = item.ID(v)
	}
	return out
}
