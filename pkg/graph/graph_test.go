package graph

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/narrative/pkg/dag"
	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/narrative"
	"github.com/matzehuels/narrative/pkg/tree"
)

// scenarioResult computes threads around item 2 of a corpus where item 2
// is textually close to 0, 1, 3 and 4, giving the graph 0->2, 1->2, 2->3,
// 2->4.
func scenarioResult(t *testing.T) *narrative.Result {
	t.Helper()
	start := time.Date(2011, 8, 22, 9, 0, 0, 0, time.UTC)
	items := make([]item.Item, 5)
	for i := range items {
		items[i] = item.Item{Timestamp: start.Add(time.Duration(i) * time.Hour), Text: "post"}
	}
	oracle := item.DissimilarityFunc(func(i, j item.ID) float64 {
		switch {
		case i == j:
			return 0
		case i == 2 || j == 2:
			return 0.2
		}
		return 1
	})
	e, err := narrative.New(item.NewCorpus(items, oracle), narrative.Options{})
	if err != nil {
		t.Fatal(err)
	}
	r, err := e.SetAnchor(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestFromResult(t *testing.T) {
	r := scenarioResult(t)
	out := FromResult(r)

	if out.ID != r.ID || out.Anchor != 2 {
		t.Errorf("id/anchor = %s/%d", out.ID, out.Anchor)
	}
	if len(out.Set) != 5 || out.Set[2].Score != 1 {
		t.Errorf("set = %+v", out.Set)
	}
	if !reflect.DeepEqual(out.Nodes, []int{0, 1, 2, 3, 4}) {
		t.Errorf("nodes = %v", out.Nodes)
	}
	wantEdges := [][2]int{{0, 2}, {1, 2}, {2, 3}, {2, 4}}
	if len(out.Edges) != len(wantEdges) {
		t.Fatalf("edges = %+v", out.Edges)
	}
	for i, e := range out.Edges {
		if e.From != wantEdges[i][0] || e.To != wantEdges[i][1] {
			t.Errorf("edge %d = %d->%d, want %v", i, e.From, e.To, wantEdges[i])
		}
	}
	if len(out.Threads) != len(r.Threads) {
		t.Errorf("threads = %v", out.Threads)
	}
	if !reflect.DeepEqual(out.Tree.Anchor.Parents, []int{0, 1}) {
		t.Errorf("anchor parents = %v", out.Tree.Anchor.Parents)
	}
	if out.Tree.Width != r.Tree.Width() || out.Tree.Height != r.Tree.Height() {
		t.Errorf("tree size = %dx%d", out.Tree.Width, out.Tree.Height)
	}
	if out.Options.DAGEdgeThreshold != narrative.DefaultDAGEdgeThreshold {
		t.Errorf("options = %+v", out.Options)
	}
}

func TestResultRoundTrip(t *testing.T) {
	r := scenarioResult(t)

	data, err := MarshalResult(r)
	if err != nil {
		t.Fatalf("MarshalResult() error: %v", err)
	}
	back, err := UnmarshalResult(data)
	if err != nil {
		t.Fatalf("UnmarshalResult() error: %v", err)
	}
	again, err := MarshalResult(back)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, again) {
		t.Errorf("round trip changed the encoding:\n%s\n---\n%s", data, again)
	}

	if back.ID != r.ID || back.Anchor != r.Anchor || back.Options != r.Options {
		t.Errorf("header = %s/%d/%+v", back.ID, back.Anchor, back.Options)
	}
	if !reflect.DeepEqual(back.Set, r.Set) {
		t.Errorf("set = %v, want %v", back.Set, r.Set)
	}
	if !reflect.DeepEqual(back.Threads, r.Threads) {
		t.Errorf("threads = %v, want %v", back.Threads, r.Threads)
	}

	for _, e := range r.Edges() {
		want, err := r.ThreadsThrough(e)
		if err != nil {
			t.Fatal(err)
		}
		got, err := back.ThreadsThrough(e)
		if err != nil {
			t.Fatalf("decoded ThreadsThrough(%s) error: %v", e, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("ThreadsThrough(%s) = %v, want %v", e, got, want)
		}
	}
}

func TestResultFileRoundTrip(t *testing.T) {
	r := scenarioResult(t)
	path := filepath.Join(t.TempDir(), "result.json")
	if err := WriteResultFile(r, path); err != nil {
		t.Fatalf("WriteResultFile() error: %v", err)
	}
	back, err := ReadResultFile(path)
	if err != nil {
		t.Fatalf("ReadResultFile() error: %v", err)
	}
	if !reflect.DeepEqual(back.Threads, r.Threads) {
		t.Errorf("threads = %v, want %v", back.Threads, r.Threads)
	}
	if _, err := ReadResultFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadResultFile() on a missing file should fail")
	}
}

func TestToResultRejects(t *testing.T) {
	tests := []struct {
		name string
		in   Result
		want error
	}{
		{
			name: "duplicate node",
			in:   Result{Nodes: []int{1, 1}},
			want: dag.ErrDuplicateVertex,
		},
		{
			name: "unknown endpoint",
			in:   Result{Nodes: []int{1}, Edges: []Edge{{From: 1, To: 2}}},
			want: dag.ErrUnknownTargetVertex,
		},
		{
			name: "cycle",
			in:   Result{Nodes: []int{1, 2}, Edges: []Edge{{From: 1, To: 2}, {From: 2, To: 1}}},
			want: dag.ErrGraphHasCycle,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToResult(tt.in)
			if err == nil || !strings.Contains(err.Error(), tt.want.Error()) {
				t.Errorf("ToResult() error = %v, want %v", err, tt.want)
			}
		})
	}

	in := Result{Nodes: []int{1, 2, 3}, Edges: []Edge{{From: 1, To: 2}}, Threads: [][]int{{1, 3}}}
	if _, err := ToResult(in); err == nil {
		t.Error("ToResult() accepted a thread over a missing edge")
	}
}

func TestUnmarshalResultMalformed(t *testing.T) {
	if _, err := UnmarshalResult([]byte("{")); err == nil {
		t.Error("UnmarshalResult() accepted malformed JSON")
	}
}

func TestUnmarshalResultTree(t *testing.T) {
	const doc = `{
		"id": "r1", "anchor": 2, "nodes": [2, 3],
		"edges": [{"from": 2, "to": 3, "weight": 0.5}],
		"threads": [[2, 3]],
		"tree": {
			"anchor": {"id": 2, "parents": [], "children": [3], "row": 0},
			"before": [],
			"after": [[{"id": 3, "parents": [2], "children": %s, "row": %d}]]
		}
	}`
	tests := []struct {
		name     string
		children string
		row      int
		wantErr  bool
	}{
		{name: "consistent", children: "[]", row: 1},
		{name: "link to missing node", children: "[9]", row: 1, wantErr: true},
		{name: "moved row", children: "[]", row: -1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := UnmarshalResult([]byte(fmt.Sprintf(doc, tt.children, tt.row)))
			if tt.wantErr {
				if !errs.Is(err, errs.ErrCodeInvalidFormat) {
					t.Fatalf("UnmarshalResult() error = %v, want INVALID_FORMAT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalResult() error = %v", err)
			}
			got, err := r.ThreadsThrough(tree.EdgeKey{From: 2, To: 3})
			if err != nil {
				t.Fatalf("ThreadsThrough() error = %v", err)
			}
			if want := []dag.Thread{{2, 3}}; !reflect.DeepEqual(got, want) {
				t.Errorf("ThreadsThrough() = %v, want %v", got, want)
			}
		})
	}
}

func TestFromLayout(t *testing.T) {
	r := scenarioResult(t)
	tl, ok := r.Layout(400, 300)
	if !ok {
		t.Fatal("Layout() reported no area")
	}
	l := FromLayout(r.Tree, tl)

	if l.Anchor.ID != 2 || l.Anchor.X != tl.Anchor.X || l.Anchor.Y != tl.Anchor.Y {
		t.Errorf("anchor = %+v", l.Anchor)
	}
	if len(l.Before) != 1 || len(l.Before[0]) != 2 {
		t.Fatalf("before = %+v", l.Before)
	}
	for _, p := range l.Before[0] {
		want, _ := tl.Position(tree.Backward, 0, item.ID(p.ID))
		if p.X != want.X || p.Y != want.Y {
			t.Errorf("position of %d = %+v, want %+v", p.ID, p, want)
		}
	}
	if len(l.Edges) != len(r.Edges()) {
		t.Errorf("edges = %v", l.Edges)
	}

	data, err := MarshalLayout(l)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalLayout(data)
	if err != nil {
		t.Fatalf("UnmarshalLayout() error: %v", err)
	}
	if !reflect.DeepEqual(back, l) {
		t.Errorf("layout round trip = %+v, want %+v", back, l)
	}
	if _, err := UnmarshalLayout([]byte(`{"width":0,"height":1}`)); err == nil {
		t.Error("UnmarshalLayout() accepted an empty canvas")
	}
}
