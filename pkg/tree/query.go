package tree

import (
	"fmt"

	"github.com/matzehuels/narrative/pkg/dag"
	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/item"
)

// Walk tells walkTree whether to head for the anchor or for the leaves.
type Walk int

const (
	// Toward stops at the anchor.
	Toward Walk = iota
	// Away continues until a node has no further neighbour.
	Away
)

// Splice tells where a walk adds the next item to a partial path.
type Splice int

const (
	// PrependAtStart is used when walking back in time.
	PrependAtStart Splice = iota
	// AppendAtEnd is used when walking forward in time.
	AppendAtEnd
)

// A position addresses a column of the spliced before/anchor/after
// sequence: 0 is the anchor, -(k+1) is Before[k] and k+1 is After[k].

func (t *Tree) links(pos int, id item.ID) (parents, children []item.ID, ok bool) {
	switch {
	case pos == 0:
		if id != t.Anchor.ID {
			return nil, nil, false
		}
		return t.Anchor.Parents, t.Anchor.Children, true
	case pos < 0 && -pos <= len(t.Before):
		n, ok := t.Before[-pos-1][id]
		if !ok {
			return nil, nil, false
		}
		return n.Parents, n.Children, true
	case pos > 0 && pos <= len(t.After):
		n, ok := t.After[pos-1][id]
		if !ok {
			return nil, nil, false
		}
		return n.Parents, n.Children, true
	}
	return nil, nil, false
}

// locate returns every position p where edge.From sits at p and links to
// edge.To at p+1.
func (t *Tree) locate(edge EdgeKey) []int {
	var found []int
	for p := -len(t.Before); p < len(t.After); p++ {
		_, children, ok := t.links(p, edge.From)
		if !ok {
			continue
		}
		for _, c := range children {
			if c == edge.To {
				found = append(found, p)
				break
			}
		}
	}
	return found
}

// partial is a path under construction whose growing end sits at pos.
type partial struct {
	path dag.Thread
	pos  int
	id   item.ID
}

func extend(path dag.Thread, id item.ID, splice Splice) dag.Thread {
	out := make(dag.Thread, 0, len(path)+1)
	if splice == PrependAtStart {
		out = append(out, id)
		return append(out, path...)
	}
	out = append(out, path...)
	return append(out, id)
}

// walkTree expands every branch starting at (pos, id) on the given side of
// the anchor. Each branching yields its own path; paths stay in time order.
func (t *Tree) walkTree(pos int, id item.ID, side Direction, walk Walk) []dag.Thread {
	forwardInTime := (side == Backward) == (walk == Toward)
	step, splice := -1, PrependAtStart
	if forwardInTime {
		step, splice = 1, AppendAtEnd
	}

	var done []dag.Thread
	frontier := []partial{{path: dag.Thread{id}, pos: pos, id: id}}
	for len(frontier) > 0 {
		next := make([]partial, 0, len(frontier))
		for _, p := range frontier {
			if walk == Toward && p.pos == 0 {
				done = append(done, p.path)
				continue
			}
			parents, children, ok := t.links(p.pos, p.id)
			if !ok {
				panic(fmt.Sprintf("tree: no node %d at position %d", p.id, p.pos))
			}
			neighbours := parents
			if forwardInTime {
				neighbours = children
			}
			if len(neighbours) == 0 {
				done = append(done, p.path)
				continue
			}
			for _, n := range neighbours {
				if _, _, ok := t.links(p.pos+step, n); !ok {
					panic(fmt.Sprintf("tree: node %d links %d which is missing at position %d", p.id, n, p.pos+step))
				}
				next = append(next, partial{path: extend(p.path, n, splice), pos: p.pos + step, id: n})
			}
		}
		frontier = next
	}
	return done
}

// splicePairs joins every partial path running from the edge to the anchor
// with every partial path running from the edge to the leaves.
func splicePairs(side Direction, toward, away []dag.Thread) []dag.Thread {
	out := make([]dag.Thread, 0, len(toward)*len(away))
	for _, tw := range toward {
		for _, aw := range away {
			joined := make(dag.Thread, 0, len(tw)+len(aw))
			if side == Backward {
				joined = append(append(joined, aw...), tw...)
			} else {
				joined = append(append(joined, tw...), aw...)
			}
			out = append(out, joined)
		}
	}
	return out
}

// spliceOpposite extends anchor-terminated paths across the other side of
// the anchor, one path per branch found there.
func (t *Tree) spliceOpposite(side Direction, paths []dag.Thread) []dag.Thread {
	opposite, start, neighbours := Forward, 1, t.Anchor.Children
	if side == Forward {
		opposite, start, neighbours = Backward, -1, t.Anchor.Parents
	}
	if len(neighbours) == 0 {
		return paths
	}

	var exts []dag.Thread
	for _, n := range neighbours {
		exts = append(exts, t.walkTree(start, n, opposite, Away)...)
	}

	out := make([]dag.Thread, 0, len(paths)*len(exts))
	for _, p := range paths {
		for _, e := range exts {
			joined := make(dag.Thread, 0, len(p)+len(e))
			if opposite == Forward {
				joined = append(append(joined, p...), e...)
			} else {
				joined = append(append(joined, e...), p...)
			}
			out = append(out, joined)
		}
	}
	return out
}

// BuildThreadList returns the threads that contain edge.From immediately
// followed by edge.To, in the order they appear in threads. t must have
// been built from threads and g must be the graph they were extracted from.
//
// The tree merges parallel threads, so the branches around the edge are
// expanded into every candidate path and the candidates are matched back
// against threads. An edge absent from the tree yields an EDGE_NOT_FOUND
// error. A candidate path using a link missing from g means the tree was
// not built from g and causes a panic.
func BuildThreadList(t *Tree, g *dag.DAG, threads []dag.Thread, edge EdgeKey) ([]dag.Thread, error) {
	positions := t.locate(edge)
	if len(positions) == 0 {
		return nil, errs.New(errs.ErrCodeEdgeNotFound, "edge %s is not part of the tree around %d", edge, t.Anchor.ID)
	}

	candidates := make(map[string]bool)
	for _, p := range positions {
		var toward, away []dag.Thread
		side := Forward
		if p+1 <= 0 {
			side = Backward
			toward = t.walkTree(p+1, edge.To, Backward, Toward)
			away = t.walkTree(p, edge.From, Backward, Away)
		} else {
			toward = t.walkTree(p, edge.From, Forward, Toward)
			away = t.walkTree(p+1, edge.To, Forward, Away)
		}

		for _, path := range t.spliceOpposite(side, splicePairs(side, toward, away)) {
			mustFollowGraph(g, path)
			candidates[path.Key()] = true
		}
	}

	out := make([]dag.Thread, 0, len(candidates))
	for _, th := range threads {
		if candidates[th.Key()] {
			out = append(out, th)
		}
	}
	return out, nil
}

func mustFollowGraph(g *dag.DAG, path dag.Thread) {
	for i := 0; i+1 < len(path); i++ {
		if !g.HasEdge(path[i], path[i+1]) {
			panic(fmt.Sprintf("tree: path %s uses %d->%d which is not a graph edge", path.Key(), path[i], path[i+1]))
		}
	}
}
