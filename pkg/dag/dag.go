package dag

import (
	"errors"
	"maps"
	"slices"

	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/similarity"
)

var (
	// ErrDuplicateVertex is returned by [DAG.AddVertex] when the vertex
	// already exists.
	ErrDuplicateVertex = errors.New("duplicate vertex")

	// ErrUnknownSourceVertex is returned by [DAG.AddEdge] when the From
	// vertex does not exist.
	ErrUnknownSourceVertex = errors.New("unknown source vertex")

	// ErrUnknownTargetVertex is returned by [DAG.AddEdge] when the To
	// vertex does not exist.
	ErrUnknownTargetVertex = errors.New("unknown target vertex")

	// ErrSelfLoop is returned by [DAG.AddEdge] when From equals To.
	ErrSelfLoop = errors.New("self loop")

	// ErrDuplicateEdge is returned by [DAG.AddEdge] when the edge exists.
	ErrDuplicateEdge = errors.New("duplicate edge")

	// ErrEdgeAgainstTime is returned by [DAG.Validate] when an edge runs
	// from a later item to an earlier one.
	ErrEdgeAgainstTime = errors.New("edge runs against time order")

	// ErrUnknownItem is returned by [DAG.Validate] when a vertex does not
	// address an item of the corpus.
	ErrUnknownItem = errors.New("vertex is not a corpus item")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Edge is an outgoing connection. Weight is the similarity score of the
// pair; it is stored for display and export but never used for path length.
type Edge struct {
	To     item.ID
	Weight float64
}

// DAG is a directed acyclic graph over the members of a similarity set.
// Every edge runs from the earlier item to the later one, so the graph is
// acyclic by construction when built with [Build].
//
// Vertices with no outgoing edges still exist with an empty edge sequence.
// The zero value is not usable - use [New] or [Build].
// A DAG is safe for concurrent reads once construction is finished.
type DAG struct {
	vertices []item.ID // ascending
	outgoing map[item.ID][]Edge
	inDegree map[item.ID]int
	edges    int
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{
		outgoing: make(map[item.ID][]Edge),
		inDegree: make(map[item.ID]int),
	}
}

// Build compiles the DAG of a similarity set. Every unordered pair of
// members, taken in ascending id order, is scored with textThreshold; pairs
// scoring at least edgeThreshold become an edge from the earlier item to
// the later one (ties on timestamp go from the lower id). Outgoing edges of
// each vertex end up in ascending target order.
func Build(set similarity.Set, s *similarity.Scorer, textThreshold, edgeThreshold float64) *DAG {
	ids := set.IDs()
	c := s.Corpus()
	g := New()
	for _, id := range ids {
		_ = g.AddVertex(id)
	}

	for i, a := range ids {
		for _, b := range ids[i+1:] {
			score := s.Score(a, b, textThreshold)
			if score < edgeThreshold {
				continue
			}
			from, to := a, b
			if item.Before(c.MustItem(b), c.MustItem(a)) {
				from, to = b, a
			}
			g.addEdge(from, to, score)
		}
	}
	for id := range g.outgoing {
		slices.SortStableFunc(g.outgoing[id], func(x, y Edge) int { return int(x.To - y.To) })
	}
	return g
}

// AddVertex adds an isolated vertex.
func (d *DAG) AddVertex(id item.ID) error {
	if d.HasVertex(id) {
		return ErrDuplicateVertex
	}
	pos, _ := slices.BinarySearch(d.vertices, id)
	d.vertices = slices.Insert(d.vertices, pos, id)
	d.outgoing[id] = []Edge{}
	d.inDegree[id] = 0
	return nil
}

// AddEdge appends an edge to the outgoing sequence of from. Both endpoints
// must exist. AddEdge does not check time order; use [DAG.Validate].
func (d *DAG) AddEdge(from, to item.ID, weight float64) error {
	switch {
	case !d.HasVertex(from):
		return ErrUnknownSourceVertex
	case !d.HasVertex(to):
		return ErrUnknownTargetVertex
	case from == to:
		return ErrSelfLoop
	case d.HasEdge(from, to):
		return ErrDuplicateEdge
	}
	d.addEdge(from, to, weight)
	return nil
}

func (d *DAG) addEdge(from, to item.ID, weight float64) {
	d.outgoing[from] = append(d.outgoing[from], Edge{To: to, Weight: weight})
	d.inDegree[to]++
	d.edges++
}

// Vertices returns all vertices in ascending id order.
func (d *DAG) Vertices() []item.ID { return slices.Clone(d.vertices) }

// VertexCount returns the number of vertices.
func (d *DAG) VertexCount() int { return len(d.vertices) }

// EdgeCount returns the number of edges.
func (d *DAG) EdgeCount() int { return d.edges }

// HasVertex reports whether id is a vertex.
func (d *DAG) HasVertex(id item.ID) bool {
	_, ok := d.outgoing[id]
	return ok
}

// HasEdge reports whether the edge from -> to exists.
func (d *DAG) HasEdge(from, to item.ID) bool {
	_, ok := d.Weight(from, to)
	return ok
}

// Weight returns the stored weight of the edge from -> to.
func (d *DAG) Weight(from, to item.ID) (float64, bool) {
	for _, e := range d.outgoing[from] {
		if e.To == to {
			return e.Weight, true
		}
	}
	return 0, false
}

// Edges returns the outgoing edges of id in insertion order.
// The slice must not be modified.
func (d *DAG) Edges(id item.ID) []Edge { return d.outgoing[id] }

// Children returns the targets of the outgoing edges of id in edge order.
func (d *DAG) Children(id item.ID) []item.ID {
	edges := d.outgoing[id]
	out := make([]item.ID, len(edges))
	for i, e := range edges {
		out[i] = e.To
	}
	return out
}

// InDegree returns the number of incoming edges of id.
func (d *DAG) InDegree(id item.ID) int { return d.inDegree[id] }

// OutDegree returns the number of outgoing edges of id.
func (d *DAG) OutDegree(id item.ID) int { return len(d.outgoing[id]) }

// Sources returns the vertices without incoming edges in ascending order.
func (d *DAG) Sources() []item.ID {
	var out []item.ID
	for _, id := range d.vertices {
		if d.inDegree[id] == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Sinks returns the vertices without outgoing edges in ascending order.
func (d *DAG) Sinks() []item.ID {
	var out []item.ID
	for _, id := range d.vertices {
		if len(d.outgoing[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Validate checks that every vertex is an item of c, that every edge runs
// forward in narrative time (see [item.Before]) and that the graph has no
// cycle. It returns ErrUnknownItem, ErrEdgeAgainstTime or ErrGraphHasCycle.
func (d *DAG) Validate(c *item.Corpus) error {
	for _, from := range d.vertices {
		if !c.Contains(from) {
			return ErrUnknownItem
		}
		for _, e := range d.outgoing[from] {
			if !c.Contains(e.To) {
				return ErrUnknownItem
			}
			if item.Before(c.MustItem(e.To), c.MustItem(from)) {
				return ErrEdgeAgainstTime
			}
		}
	}
	return d.detectCycles()
}

// CheckAcyclic returns ErrGraphHasCycle if the graph has a cycle. Unlike
// [DAG.Validate] it needs no corpus, so it suits graphs read from a file.
func (d *DAG) CheckAcyclic() error { return d.detectCycles() }

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[item.ID]int, len(d.vertices))
	type frame struct {
		id   item.ID
		next int
	}

	for _, root := range d.vertices {
		if color[root] != white {
			continue
		}
		color[root] = gray
		stack := []frame{{id: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := d.outgoing[top.id]
			if top.next == len(edges) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			to := edges[top.next].To
			top.next++
			switch color[to] {
			case white:
				color[to] = gray
				stack = append(stack, frame{id: to})
			case gray:
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the graph.
func (d *DAG) Clone() *DAG {
	c := &DAG{
		vertices: slices.Clone(d.vertices),
		outgoing: make(map[item.ID][]Edge, len(d.outgoing)),
		inDegree: maps.Clone(d.inDegree),
		edges:    d.edges,
	}
	for id, edges := range d.outgoing {
		c.outgoing[id] = slices.Clone(edges)
	}
	return c
}
