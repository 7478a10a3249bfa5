package tree

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/narrative/pkg/dag"
	"github.com/matzehuels/narrative/pkg/item"
)

// Direction selects a side of the anchor.
type Direction int

const (
	// Backward is the side of items older than the anchor.
	Backward Direction = iota
	// Forward is the side of items newer than the anchor.
	Forward
)

func (d Direction) String() string {
	switch d {
	case Backward:
		return "backward"
	case Forward:
		return "forward"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Node is an item at a fixed hop distance from the anchor. Parents are the
// time-earlier neighbours, Children the time-later ones; both are kept in
// ascending id order without duplicates. Row is relative to the anchor's
// row 0, positive rows above it.
type Node struct {
	ID       item.ID
	Parents  []item.ID
	Children []item.ID
	Row      int
}

// Column holds the nodes at one hop distance on one side of the anchor.
type Column map[item.ID]*Node

// IDs returns the ids of the column in ascending order.
func (c Column) IDs() []item.ID { return slices.Sorted(maps.Keys(c)) }

// Rows returns the smallest and largest row in the column.
func (c Column) Rows() (lo, hi int) {
	for _, n := range c {
		lo, hi = min(lo, n.Row), max(hi, n.Row)
	}
	return lo, hi
}

// Anchor is the root of the tree. Its parents are the nodes of the first
// backward column and its children those of the first forward column.
type Anchor struct {
	ID       item.ID
	Parents  []item.ID
	Children []item.ID
	Row      int
}

// Tree compacts a set of threads around their common anchor. Before and
// After are ordered nearest to the anchor first: Before[0] holds the items
// one hop older than the anchor, After[0] those one hop newer.
type Tree struct {
	Anchor Anchor
	Before []Column
	After  []Column
}

// Build compacts threads into a tree around anchor.
func Build(threads []dag.Thread, anchor item.ID) *Tree {
	before := BuildColumns(threads, anchor, Backward)
	after := BuildColumns(threads, anchor, Forward)
	return &Tree{
		Anchor: BuildAnchor(anchor, before, after),
		Before: before,
		After:  after,
	}
}

// BuildAnchor returns the anchor node linking the first column of each side.
func BuildAnchor(id item.ID, before, after []Column) Anchor {
	a := Anchor{ID: id, Parents: []item.ID{}, Children: []item.ID{}}
	if len(before) > 0 {
		a.Parents = before[0].IDs()
	}
	if len(after) > 0 {
		a.Children = after[0].IDs()
	}
	return a
}

// rowCounter tracks how many rows a column has handed out above and below
// the anchor's row.
type rowCounter struct {
	pos, neg int
}

// assignRow places a new node next to a predecessor at row pred. Nodes
// continue on their predecessor's side; successors of the anchor row go to
// whichever side holds fewer nodes, the positive side on ties.
func assignRow(c *rowCounter, pred int) int {
	switch {
	case pred > 0:
		c.pos++
		return c.pos
	case pred < 0:
		c.neg++
		return -c.neg
	case c.neg < c.pos:
		c.neg++
		return -c.neg
	default:
		c.pos++
		return c.pos
	}
}

// BuildColumns walks every thread outward from the anchor in direction dir
// and merges the items met at equal hop distance into shared nodes.
// Threads without the anchor, or with the anchor already at the end facing
// dir, contribute nothing.
func BuildColumns(threads []dag.Thread, anchor item.ID, dir Direction) []Column {
	step := -1
	if dir == Forward {
		step = 1
	}

	var (
		columns  []Column
		counters []rowCounter
	)
	for _, th := range threads {
		at := th.Index(anchor)
		if at < 0 {
			continue
		}

		var prev *Node // nil while the predecessor is the anchor
		for hop, i := 0, at+step; i >= 0 && i < len(th); hop, i = hop+1, i+step {
			if hop == len(columns) {
				columns = append(columns, Column{})
				counters = append(counters, rowCounter{})
			}

			id := th[i]
			n, ok := columns[hop][id]
			if !ok {
				predRow := 0
				if prev != nil {
					predRow = prev.Row
				}
				n = &Node{ID: id, Parents: []item.ID{}, Children: []item.ID{}, Row: assignRow(&counters[hop], predRow)}
				columns[hop][id] = n
			}

			nearer := anchor
			if prev != nil {
				nearer = prev.ID
			}
			if dir == Backward {
				n.Children = insertSorted(n.Children, nearer)
				if prev != nil {
					prev.Parents = insertSorted(prev.Parents, id)
				}
			} else {
				n.Parents = insertSorted(n.Parents, nearer)
				if prev != nil {
					prev.Children = insertSorted(prev.Children, id)
				}
			}
			prev = n
		}
	}
	return columns
}

func insertSorted(ids []item.ID, id item.ID) []item.ID {
	pos, found := slices.BinarySearch(ids, id)
	if found {
		return ids
	}
	return slices.Insert(ids, pos, id)
}

// Side returns the columns of one side.
func (t *Tree) Side(dir Direction) []Column {
	if dir == Forward {
		return t.After
	}
	return t.Before
}

// Width returns the number of columns including the anchor's.
func (t *Tree) Width() int {
	return len(t.Before) + len(t.After) + 1
}

// Height returns the number of rows spanned by the anchor and all nodes.
func (t *Tree) Height() int {
	lo, hi := t.rowRange()
	return hi - lo + 1
}

func (t *Tree) rowRange() (lo, hi int) {
	lo, hi = t.Anchor.Row, t.Anchor.Row
	for _, side := range [][]Column{t.Before, t.After} {
		for _, c := range side {
			clo, chi := c.Rows()
			lo, hi = min(lo, clo), max(hi, chi)
		}
	}
	return lo, hi
}

// NodeCount returns the number of nodes, the anchor included.
func (t *Tree) NodeCount() int {
	n := 1
	for _, side := range [][]Column{t.Before, t.After} {
		for _, c := range side {
			n += len(c)
		}
	}
	return n
}

// Edges lists every link of the tree in time order: backward columns from
// the farthest in, then the anchor, then forward columns outward. The same
// pair of items can occur at several hop distances but is listed once.
func (t *Tree) Edges() []EdgeKey {
	seen := make(map[EdgeKey]bool)
	var out []EdgeKey
	add := func(from item.ID, children []item.ID) {
		for _, to := range children {
			k := EdgeKey{From: from, To: to}
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	for k := len(t.Before) - 1; k >= 0; k-- {
		for _, id := range t.Before[k].IDs() {
			add(id, t.Before[k][id].Children)
		}
	}
	add(t.Anchor.ID, t.Anchor.Children)
	for _, c := range t.After {
		for _, id := range c.IDs() {
			add(id, c[id].Children)
		}
	}
	return out
}
