package graph

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/tree"
)

// =============================================================================
// Layout - Tree Canvas Positions
// =============================================================================

// Layout is the serialization format for a positioned thread tree.
//
// Before and After hold one entry per column, nearest to the anchor first;
// Edges lists the tree links so that clients can draw them without the
// tree itself.
type Layout struct {
	ResultID string  `json:"result_id,omitempty" bson:"result_id,omitempty"`
	Width    float64 `json:"width" bson:"width"`
	Height   float64 `json:"height" bson:"height"`
	HGap     float64 `json:"h_gap" bson:"h_gap"`
	VGap     float64 `json:"v_gap" bson:"v_gap"`

	Anchor Position     `json:"anchor" bson:"anchor"`
	Before [][]Position `json:"before" bson:"before"`
	After  [][]Position `json:"after" bson:"after"`
	Edges  []string     `json:"edges" bson:"edges"`
}

// Position places one tree node on the canvas.
type Position struct {
	ID int     `json:"id" bson:"id"`
	X  float64 `json:"x" bson:"x"`
	Y  float64 `json:"y" bson:"y"`
}

// FromLayout converts the layout of t. Nodes within a column are sorted by
// id.
func FromLayout(t *tree.Tree, l tree.Layout) Layout {
	out := Layout{
		Width:  l.Width,
		Height: l.Height,
		HGap:   l.HGap,
		VGap:   l.VGap,
		Anchor: Position{ID: int(t.Anchor.ID), X: l.Anchor.X, Y: l.Anchor.Y},
		Before: positions(t.Before, l.Before),
		After:  positions(t.After, l.After),
		Edges:  []string{},
	}
	for _, e := range t.Edges() {
		out.Edges = append(out.Edges, e.String())
	}
	return out
}

func positions(cols []tree.Column, pts []map[item.ID]tree.Point) [][]Position {
	out := make([][]Position, len(cols))
	for i, col := range cols {
		out[i] = make([]Position, 0, len(col))
		for _, id := range col.IDs() {
			p := pts[i][id]
			out[i] = append(out[i], Position{ID: int(id), X: p.X, Y: p.Y})
		}
	}
	return out
}

// MarshalLayout serializes a Layout to indented JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Width <= 0 || l.Height <= 0 {
		return Layout{}, fmt.Errorf("layout must have a positive canvas size")
	}
	return l, nil
}
