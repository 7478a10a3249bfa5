package narrative

import (
	"context"
	"reflect"
	"slices"
	"sync"
	"testing"
	"time"

	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/observability"
	"github.com/matzehuels/narrative/pkg/tree"
)

var t0 = time.Date(2011, 8, 22, 9, 0, 0, 0, time.UTC)

const (
	A item.ID = iota
	B
	C
	D
	E
	F // unrelated to everything
)

// scenarioCorpus links C textually to every other item of A..E and nothing
// else, giving the graph A->C, B->C, C->D, C->E.
func scenarioCorpus() *item.Corpus {
	items := make([]item.Item, 6)
	for i := range items {
		items[i] = item.Item{Timestamp: t0.Add(time.Duration(i) * time.Hour), Text: "post"}
	}
	oracle := item.DissimilarityFunc(func(i, j item.ID) float64 {
		if i == j {
			return 0
		}
		if i == F || j == F {
			return 1
		}
		if i == C || j == C {
			return 0.2
		}
		return 1
	})
	return item.NewCorpus(items, oracle)
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(scenarioCorpus(), Options{})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return e
}

func TestSetAnchorScenario(t *testing.T) {
	e := newEngine(t)
	r, err := e.SetAnchor(context.Background(), C)
	if err != nil {
		t.Fatalf("SetAnchor() error: %v", err)
	}

	if got := r.Set.IDs(); !slices.Equal(got, []item.ID{A, B, C, D, E}) {
		t.Errorf("similarity set = %v, want A..E", got)
	}
	if r.Set[C] != 1.0 {
		t.Errorf("anchor score = %v, want 1.0", r.Set[C])
	}
	for _, edge := range [][2]item.ID{{A, C}, {B, C}, {C, D}, {C, E}} {
		if !r.DAG.HasEdge(edge[0], edge[1]) {
			t.Errorf("missing edge %d->%d", edge[0], edge[1])
		}
	}
	if r.DAG.EdgeCount() != 4 {
		t.Errorf("EdgeCount() = %d, want 4", r.DAG.EdgeCount())
	}

	if len(r.Threads) != 2 {
		t.Fatalf("threads = %v, want two", r.Threads)
	}
	for _, th := range r.Threads {
		if len(th) != 3 || th[1] != C || (th[0] != A && th[0] != B) || (th[2] != D && th[2] != E) {
			t.Errorf("thread %v is not of the form [A|B, C, D|E]", th)
		}
	}

	if got := r.Tree.Before[0].IDs(); !slices.Equal(got, []item.ID{A, B}) {
		t.Errorf("backward column 0 = %v, want [A B]", got)
	}
	if !slices.Equal(r.Tree.Anchor.Parents, []item.ID{A, B}) {
		t.Errorf("anchor parents = %v, want [A B]", r.Tree.Anchor.Parents)
	}
	// Both sources keep their lowest-id longest path, so E is never reached.
	if got := r.Tree.After[0].IDs(); !slices.Equal(got, []item.ID{D}) {
		t.Errorf("forward column 0 = %v, want [D]", got)
	}
	if !slices.Equal(r.Tree.Anchor.Children, []item.ID{D}) {
		t.Errorf("anchor children = %v, want [D]", r.Tree.Anchor.Children)
	}

	through, err := r.ThreadsThrough(tree.EdgeKey{From: C, To: D})
	if err != nil {
		t.Fatalf("ThreadsThrough(C->D) error: %v", err)
	}
	for _, th := range through {
		if !th.ContainsEdge(C, D) {
			t.Errorf("thread %v does not use C->D", th)
		}
	}
	if len(through) != len(r.Threads) {
		t.Errorf("ThreadsThrough(C->D) = %v, want every thread ending in D", through)
	}

	if r.ID == "" {
		t.Error("result has no ID")
	}
	if r.Stats.ThreadCount != 2 || r.Stats.SetSize != 5 || r.Stats.EdgeCount != 4 {
		t.Errorf("Stats = %+v", r.Stats)
	}
}

func TestThreadsAreTimeOrdered(t *testing.T) {
	e := newEngine(t)
	c := e.Corpus()
	for anchor := item.ID(0); anchor < item.ID(c.Len()); anchor++ {
		threads, err := e.NarrativeThreads(context.Background(), anchor)
		if err != nil {
			t.Fatalf("NarrativeThreads(%d) error: %v", anchor, err)
		}
		for _, th := range threads {
			if !th.Contains(anchor) {
				t.Errorf("thread %v misses anchor %d", th, anchor)
			}
			for i := 0; i+1 < len(th); i++ {
				if c.MustItem(th[i+1]).Timestamp.Before(c.MustItem(th[i]).Timestamp) {
					t.Errorf("thread %v goes back in time at %d", th, i)
				}
			}
		}
	}
}

func TestSetAnchorIdempotent(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	r1, err1 := e.SetAnchor(ctx, C)
	r2, err2 := e.SetAnchor(ctx, C)
	if err1 != nil || err2 != nil {
		t.Fatalf("SetAnchor() errors: %v, %v", err1, err2)
	}

	if !reflect.DeepEqual(r1.Set, r2.Set) {
		t.Error("similarity sets differ")
	}
	if !reflect.DeepEqual(r1.DAG, r2.DAG) {
		t.Error("graphs differ")
	}
	if !reflect.DeepEqual(r1.Threads, r2.Threads) {
		t.Error("threads differ")
	}
	if !reflect.DeepEqual(r1.Tree, r2.Tree) {
		t.Error("trees differ")
	}
	if r1.ID == r2.ID {
		t.Error("distinct computations share an ID")
	}
}

func TestSetAnchorSingleton(t *testing.T) {
	e := newEngine(t)
	r, err := e.SetAnchor(context.Background(), F)
	if err != nil {
		t.Fatalf("SetAnchor() error: %v", err)
	}
	if len(r.Set) != 1 || len(r.Threads) != 0 || !r.Empty() {
		t.Errorf("set = %v, threads = %v; want only the anchor and no threads", r.Set, r.Threads)
	}
	if r.Tree.Width() != 1 || r.Tree.Height() != 1 {
		t.Errorf("tree %dx%d, want 1x1", r.Tree.Width(), r.Tree.Height())
	}
}

func TestSetAnchorInvalid(t *testing.T) {
	e := newEngine(t)
	for _, anchor := range []item.ID{-1, 6, 1000} {
		r, err := e.SetAnchor(context.Background(), anchor)
		if !errs.Is(err, errs.ErrCodeInvalidAnchor) {
			t.Errorf("SetAnchor(%d) error = %v, want %s", anchor, err, errs.ErrCodeInvalidAnchor)
		}
		if r == nil {
			t.Fatalf("SetAnchor(%d) returned no result", anchor)
		}
		if len(r.Threads) != 0 || r.Tree.Width() != 1 || r.Tree.Height() != 1 {
			t.Errorf("SetAnchor(%d) = %+v, want a degenerate result", anchor, r)
		}

		threads, err := e.NarrativeThreads(context.Background(), anchor)
		if err == nil || len(threads) != 0 {
			t.Errorf("NarrativeThreads(%d) = %v, %v", anchor, threads, err)
		}
	}
}

func TestSetAnchorCancelled(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.SetAnchor(ctx, C); err != context.Canceled {
		t.Errorf("SetAnchor() error = %v, want %v", err, context.Canceled)
	}
}

func TestSetAnchorConcurrent(t *testing.T) {
	e := newEngine(t)
	want, _ := e.NarrativeThreads(context.Background(), C)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.NarrativeThreads(context.Background(), C)
			if err != nil || !reflect.DeepEqual(got, want) {
				t.Errorf("concurrent NarrativeThreads() = %v, %v", got, err)
			}
		}()
	}
	wg.Wait()
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New(nil, Options{}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("New(nil) error = %v", err)
	}
	if _, err := New(scenarioCorpus(), Options{DAGEdgeThreshold: 1.5}); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("New() with bad threshold error = %v", err)
	}
}

type recordingHooks struct {
	observability.NoopEngineHooks
	mu      sync.Mutex
	started []int
	queries []string
}

func (h *recordingHooks) OnThreadsStart(_ context.Context, anchor, _ int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, anchor)
}

func (h *recordingHooks) OnQuery(_ context.Context, edge string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queries = append(h.queries, edge)
}

func TestEngineHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetEngineHooks(h)
	defer observability.Reset()

	e := newEngine(t)
	ctx := context.Background()
	r, _ := e.SetAnchor(ctx, C)
	if _, err := e.BuildThreadList(ctx, r, tree.EdgeKey{From: A, To: C}); err != nil {
		t.Fatalf("BuildThreadList() error: %v", err)
	}
	if _, err := e.BuildThreadList(ctx, r, tree.EdgeKey{From: A, To: E}); !errs.Is(err, errs.ErrCodeEdgeNotFound) {
		t.Errorf("BuildThreadList(A->E) error = %v", err)
	}

	if !slices.Equal(h.started, []int{int(C)}) {
		t.Errorf("started = %v", h.started)
	}
	if !slices.Equal(h.queries, []string{"0->2", "0->4"}) {
		t.Errorf("queries = %v", h.queries)
	}
}
