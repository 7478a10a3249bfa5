package tree

import (
	"slices"
	"testing"

	"github.com/matzehuels/narrative/pkg/dag"
	"github.com/matzehuels/narrative/pkg/item"
)

const (
	A item.ID = iota
	B
	C
	D
	E
)

func graphOf(t *testing.T, n int, threads ...dag.Thread) *dag.DAG {
	t.Helper()
	g := dag.New()
	for id := item.ID(0); id < item.ID(n); id++ {
		_ = g.AddVertex(id)
	}
	for _, th := range threads {
		for i := 0; i+1 < len(th); i++ {
			if !g.HasEdge(th[i], th[i+1]) {
				if err := g.AddEdge(th[i], th[i+1], 0.5); err != nil {
					t.Fatalf("AddEdge(%d, %d): %v", th[i], th[i+1], err)
				}
			}
		}
	}
	return g
}

// checkConsistency verifies that links between adjacent columns, and
// between the anchor and the first columns, are mutual.
func checkConsistency(t *testing.T, tr *Tree) {
	t.Helper()
	check := func(name string, got []item.ID, want []item.ID) {
		t.Helper()
		slices.Sort(want)
		if !slices.Equal(got, want) && !(len(got) == 0 && len(want) == 0) {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}

	// Backward side: children point toward the anchor.
	for k, col := range tr.Before {
		for _, id := range col.IDs() {
			n := col[id]
			var wantChildren []item.ID
			if k == 0 {
				wantChildren = []item.ID{tr.Anchor.ID}
			} else {
				for _, m := range tr.Before[k-1] {
					if slices.Contains(m.Parents, id) {
						wantChildren = append(wantChildren, m.ID)
					}
				}
			}
			check("children of backward node", n.Children, wantChildren)

			var wantParents []item.ID
			if k+1 < len(tr.Before) {
				for _, m := range tr.Before[k+1] {
					if slices.Contains(m.Children, id) {
						wantParents = append(wantParents, m.ID)
					}
				}
			}
			check("parents of backward node", n.Parents, wantParents)
		}
	}

	for k, col := range tr.After {
		for _, id := range col.IDs() {
			n := col[id]
			var wantParents []item.ID
			if k == 0 {
				wantParents = []item.ID{tr.Anchor.ID}
			} else {
				for _, m := range tr.After[k-1] {
					if slices.Contains(m.Children, id) {
						wantParents = append(wantParents, m.ID)
					}
				}
			}
			check("parents of forward node", n.Parents, wantParents)

			var wantChildren []item.ID
			if k+1 < len(tr.After) {
				for _, m := range tr.After[k+1] {
					if slices.Contains(m.Parents, id) {
						wantChildren = append(wantChildren, m.ID)
					}
				}
			}
			check("children of forward node", n.Children, wantChildren)
		}
	}

	var first []item.ID
	if len(tr.Before) > 0 {
		first = tr.Before[0].IDs()
	}
	check("anchor parents", tr.Anchor.Parents, first)
	first = nil
	if len(tr.After) > 0 {
		first = tr.After[0].IDs()
	}
	check("anchor children", tr.Anchor.Children, first)
}

func TestBuildScenario(t *testing.T) {
	threads := []dag.Thread{{A, C, D}, {B, C, E}}
	tr := Build(threads, C)

	if len(tr.Before) != 1 || len(tr.After) != 1 {
		t.Fatalf("got %d backward and %d forward columns, want 1 and 1", len(tr.Before), len(tr.After))
	}
	if got := tr.Before[0].IDs(); !slices.Equal(got, []item.ID{A, B}) {
		t.Errorf("backward column 0 = %v, want [A B]", got)
	}
	if got := tr.After[0].IDs(); !slices.Equal(got, []item.ID{D, E}) {
		t.Errorf("forward column 0 = %v, want [D E]", got)
	}
	if !slices.Equal(tr.Anchor.Parents, []item.ID{A, B}) {
		t.Errorf("anchor parents = %v, want [A B]", tr.Anchor.Parents)
	}
	if !slices.Equal(tr.Anchor.Children, []item.ID{D, E}) {
		t.Errorf("anchor children = %v, want [D E]", tr.Anchor.Children)
	}
	if tr.Anchor.Row != 0 {
		t.Errorf("anchor row = %d, want 0", tr.Anchor.Row)
	}
	if tr.Before[0][A].Row != 1 || tr.Before[0][B].Row != -1 {
		t.Errorf("rows = A:%d B:%d, want A:1 B:-1", tr.Before[0][A].Row, tr.Before[0][B].Row)
	}
	if tr.Width() != 3 || tr.Height() != 3 {
		t.Errorf("Width() = %d, Height() = %d; want 3, 3", tr.Width(), tr.Height())
	}
	checkConsistency(t, tr)
}

func TestBuildFromLongestPaths(t *testing.T) {
	g := dag.New()
	for id := A; id <= E; id++ {
		_ = g.AddVertex(id)
	}
	_ = g.AddEdge(A, C, 1)
	_ = g.AddEdge(B, C, 1)
	_ = g.AddEdge(C, D, 1)
	_ = g.AddEdge(C, E, 1)

	threads := g.LongestPaths(C)
	tr := Build(threads, C)
	if got := tr.Before[0].IDs(); !slices.Equal(got, []item.ID{A, B}) {
		t.Errorf("backward column 0 = %v, want [A B]", got)
	}
	if !slices.Equal(tr.Anchor.Parents, []item.ID{A, B}) {
		t.Errorf("anchor parents = %v, want [A B]", tr.Anchor.Parents)
	}
	if got := tr.After[0].IDs(); !slices.Equal(got, []item.ID{D}) {
		t.Errorf("forward column 0 = %v, want [D]", got)
	}
	if !slices.Equal(tr.Anchor.Children, []item.ID{D}) {
		t.Errorf("anchor children = %v, want [D]", tr.Anchor.Children)
	}
	checkConsistency(t, tr)
}

func TestBuildEmpty(t *testing.T) {
	tr := Build(nil, 7)
	if tr.Width() != 1 || tr.Height() != 1 {
		t.Errorf("Width() = %d, Height() = %d; want 1, 1", tr.Width(), tr.Height())
	}
	if len(tr.Anchor.Parents) != 0 || len(tr.Anchor.Children) != 0 {
		t.Errorf("anchor = %+v, want no links", tr.Anchor)
	}
	if tr.NodeCount() != 1 || len(tr.Edges()) != 0 {
		t.Errorf("NodeCount() = %d, Edges() = %v", tr.NodeCount(), tr.Edges())
	}
}

func TestBuildColumnsSkipsThreadsEndingAtAnchor(t *testing.T) {
	threads := []dag.Thread{{A, B, C}, {C, D}, {E, D}}
	if got := BuildColumns(threads, C, Forward); len(got) != 1 || len(got[0]) != 1 {
		t.Errorf("forward columns = %v, want only D", got)
	}
	if got := BuildColumns(threads, C, Backward); len(got) != 2 {
		t.Errorf("backward columns = %d, want 2", len(got))
	}
}

func TestAssignRow(t *testing.T) {
	tests := []struct {
		name    string
		counter rowCounter
		pred    int
		want    int
		after   rowCounter
	}{
		{"first anchor neighbour goes up", rowCounter{}, 0, 1, rowCounter{pos: 1}},
		{"second anchor neighbour goes down", rowCounter{pos: 1}, 0, -1, rowCounter{pos: 1, neg: 1}},
		{"balanced tie goes up", rowCounter{pos: 2, neg: 2}, 0, 3, rowCounter{pos: 3, neg: 2}},
		{"follows positive predecessor", rowCounter{pos: 1, neg: 4}, 2, 2, rowCounter{pos: 2, neg: 4}},
		{"follows negative predecessor", rowCounter{pos: 3}, -1, -1, rowCounter{pos: 3, neg: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.counter
			if got := assignRow(&c, tt.pred); got != tt.want {
				t.Errorf("assignRow() = %d, want %d", got, tt.want)
			}
			if c != tt.after {
				t.Errorf("counter = %+v, want %+v", c, tt.after)
			}
		})
	}
}

func TestRowsFollowBranches(t *testing.T) {
	// Two backward branches two hops deep keep their side.
	threads := []dag.Thread{{0, 1, 4}, {2, 3, 4}}
	tr := Build(threads, 4)
	if tr.Before[0][1].Row != 1 || tr.Before[1][0].Row != 1 {
		t.Errorf("first branch rows = %d, %d; want 1, 1", tr.Before[0][1].Row, tr.Before[1][0].Row)
	}
	if tr.Before[0][3].Row != -1 || tr.Before[1][2].Row != -1 {
		t.Errorf("second branch rows = %d, %d; want -1, -1", tr.Before[0][3].Row, tr.Before[1][2].Row)
	}
	checkConsistency(t, tr)
}

func TestEdges(t *testing.T) {
	tr := Build([]dag.Thread{{A, C, D}, {B, C, E}}, C)
	want := []EdgeKey{{A, C}, {B, C}, {C, D}, {C, E}}
	if got := tr.Edges(); !slices.Equal(got, want) {
		t.Errorf("Edges() = %v, want %v", got, want)
	}
}
