package tree

import "github.com/matzehuels/narrative/pkg/item"

// Point is an absolute canvas position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout holds the canvas positions of a tree. It is computed from a tree
// and never changes it.
type Layout struct {
	Width  float64 // canvas width
	Height float64 // canvas height
	HGap   float64 // horizontal distance between columns
	VGap   float64 // vertical distance between rows

	Anchor Point
	Before []map[item.ID]Point
	After  []map[item.ID]Point
}

// Position returns the position of id in the column hop steps away from the
// anchor on side dir. hop is ignored for the anchor.
func (l Layout) Position(dir Direction, hop int, id item.ID) (Point, bool) {
	side := l.Before
	if dir == Forward {
		side = l.After
	}
	if hop < 0 || hop >= len(side) {
		return Point{}, false
	}
	p, ok := side[hop][id]
	return p, ok
}

// Layout spreads the tree over a canvas of size w x h. Columns are evenly
// spaced with the anchor between the two sides, older items to the left;
// rows are evenly spaced with positive rows on top.
//
// It returns false when the canvas has no area yet.
func (t *Tree) Layout(w, h float64) (Layout, bool) {
	if w <= 0 || h <= 0 {
		return Layout{}, false
	}

	_, maxRow := t.rowRange()
	nb := len(t.Before)
	hGap := w / float64(t.Width()+1)
	vGap := h / float64(t.Height()+1)
	y := func(row int) float64 { return float64(maxRow-row+1) * vGap }

	l := Layout{
		Width:  w,
		Height: h,
		HGap:   hGap,
		VGap:   vGap,
		Anchor: Point{X: float64(nb+1) * hGap, Y: y(t.Anchor.Row)},
		Before: make([]map[item.ID]Point, len(t.Before)),
		After:  make([]map[item.ID]Point, len(t.After)),
	}
	for k, c := range t.Before {
		x := float64(nb-k) * hGap
		l.Before[k] = make(map[item.ID]Point, len(c))
		for id, n := range c {
			l.Before[k][id] = Point{X: x, Y: y(n.Row)}
		}
	}
	for k, c := range t.After {
		x := float64(nb+2+k) * hGap
		l.After[k] = make(map[item.ID]Point, len(c))
		for id, n := range c {
			l.After[k][id] = Point{X: x, Y: y(n.Row)}
		}
	}
	return l, true
}
