package dag

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/narrative/pkg/item"
)

// Thread is a time-ordered path through the DAG, oldest item first.
type Thread []item.ID

// Index returns the position of id in the thread, or -1.
func (t Thread) Index(id item.ID) int { return slices.Index(t, id) }

// Contains reports whether id is on the thread.
func (t Thread) Contains(id item.ID) bool { return slices.Contains(t, id) }

// ContainsEdge reports whether from is immediately followed by to.
func (t Thread) ContainsEdge(from, to item.ID) bool {
	for i := 0; i+1 < len(t); i++ {
		if t[i] == from && t[i+1] == to {
			return true
		}
	}
	return false
}

// Equal reports whether both threads visit the same ids in the same order.
func (t Thread) Equal(o Thread) bool { return slices.Equal(t, o) }

// Key returns a canonical string form such as "0>3>7".
func (t Thread) Key() string {
	var b strings.Builder
	for i, id := range t {
		if i > 0 {
			b.WriteByte('>')
		}
		b.WriteString(strconv.Itoa(int(id)))
	}
	return b.String()
}

// TopologicalSort returns every vertex such that each edge's source
// precedes its target. It is a depth-first post-order traversal run with
// an explicit stack: roots are visited in ascending id order, targets in
// edge order, and each finished vertex is prepended to the result.
//
// TopologicalSort assumes the graph is acyclic.
func (d *DAG) TopologicalSort() []item.ID {
	type frame struct {
		id   item.ID
		next int
	}

	visited := make(map[item.ID]bool, len(d.vertices))
	order := make([]item.ID, 0, len(d.vertices))

	for _, root := range d.vertices {
		if visited[root] {
			continue
		}
		visited[root] = true
		stack := []frame{{id: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := d.outgoing[top.id]
			if top.next < len(edges) {
				to := edges[top.next].To
				top.next++
				if !visited[to] {
					visited[to] = true
					stack = append(stack, frame{id: to})
				}
				continue
			}
			order = append(order, top.id)
			stack = stack[:len(stack)-1]
		}
	}

	slices.Reverse(order)
	return order
}

// BellmanFordLongest returns the path with the most edges starting at
// source. Every edge costs -1 regardless of its weight; the distance of
// source is 0 and |V| stands for unreachable. After |V|-1 relaxation
// passes, the predecessor chain is walked back from the vertex with the
// smallest distance, the lowest id winning ties.
//
// It returns nil when source is not a vertex, and [source] when source has
// no outgoing edges.
func (d *DAG) BellmanFordLongest(source item.ID) Thread {
	if !d.HasVertex(source) {
		return nil
	}

	inf := len(d.vertices)
	dist := make(map[item.ID]int, len(d.vertices))
	pred := make(map[item.ID]item.ID, len(d.vertices))
	for _, id := range d.vertices {
		dist[id] = inf
	}
	dist[source] = 0

	for pass := 0; pass < len(d.vertices)-1; pass++ {
		changed := false
		for _, u := range d.vertices {
			if dist[u] == inf {
				continue
			}
			for _, e := range d.outgoing[u] {
				if dist[u]-1 < dist[e.To] {
					dist[e.To] = dist[u] - 1
					pred[e.To] = u
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	end := source
	for _, id := range d.vertices {
		if dist[id] < dist[end] || (dist[id] == dist[end] && id < end) {
			end = id
		}
	}

	path := Thread{end}
	for v := end; v != source; {
		v = pred[v]
		path = append(path, v)
	}
	slices.Reverse(path)
	return path
}

// LongestPaths returns the narrative threads through anchor: for every
// source vertex, in topological order, the longest path starting there is
// kept when it contains anchor. Paths without a single edge are not
// threads and are dropped, so an isolated anchor has none.
func (d *DAG) LongestPaths(anchor item.ID) []Thread {
	var threads []Thread
	for _, v := range d.TopologicalSort() {
		if d.inDegree[v] != 0 {
			continue
		}
		p := d.BellmanFordLongest(v)
		if len(p) < 2 || !p.Contains(anchor) {
			continue
		}
		threads = append(threads, p)
	}
	return threads
}
