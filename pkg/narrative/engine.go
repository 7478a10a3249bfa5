package narrative

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/narrative/pkg/dag"
	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/observability"
	"github.com/matzehuels/narrative/pkg/similarity"
	"github.com/matzehuels/narrative/pkg/tree"
)

// Engine computes narrative threads over a fixed corpus.
//
// An Engine only reads its corpus and options, so concurrent calls are safe
// as long as the corpus' dissimilarity oracle is safe for concurrent use.
type Engine struct {
	corpus *item.Corpus
	scorer *similarity.Scorer
	opts   Options
}

// New creates an engine over c. Zero options take their defaults.
func New(c *item.Corpus, opts Options) (*Engine, error) {
	if c == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "corpus is required")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Engine{
		corpus: c,
		scorer: similarity.NewScorer(c),
		opts:   opts,
	}, nil
}

// Corpus returns the engine's corpus.
func (e *Engine) Corpus() *item.Corpus { return e.corpus }

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Scorer returns the scorer the engine uses.
func (e *Engine) Scorer() *similarity.Scorer { return e.scorer }

// NarrativeThreads returns the threads through anchor.
func (e *Engine) NarrativeThreads(ctx context.Context, anchor item.ID) ([]dag.Thread, error) {
	r, err := e.SetAnchor(ctx, anchor)
	if r == nil {
		return nil, err
	}
	return r.Threads, err
}

// SetAnchor computes the full result for anchor: its similarity set, the
// graph over that set, the threads through the anchor and their tree.
//
// An anchor outside the corpus is logged and answered with a degenerate
// result (no threads, a tree holding only the anchor) together with an
// INVALID_ANCHOR error. The only other error is a cancelled ctx, which is
// checked before any work starts.
func (e *Engine) SetAnchor(ctx context.Context, anchor item.ID) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := e.opts.Logger
	hooks := observability.Engine()
	hooks.OnThreadsStart(ctx, int(anchor), e.corpus.Len())

	if !e.corpus.Contains(anchor) {
		err := errs.New(errs.ErrCodeInvalidAnchor, "anchor %d is outside the corpus of %d items", anchor, e.corpus.Len())
		logger.Warn("anchor out of range", "anchor", anchor, "items", e.corpus.Len())
		hooks.OnThreadsComplete(ctx, int(anchor), 0, 0, err)
		return e.degenerate(anchor), err
	}

	r := &Result{
		ID:      uuid.NewString(),
		Anchor:  anchor,
		Options: e.thresholds(),
	}

	start := time.Now()
	r.Set = e.scorer.BuildSet(anchor, e.opts.TextSimilarityThreshold, e.opts.OverallSimilarityThreshold)
	r.Stats.SetTime = time.Since(start)
	logger.Debug("built similarity set", "anchor", anchor, "size", len(r.Set), "duration", r.Stats.SetTime)

	start = time.Now()
	r.DAG = dag.Build(r.Set, e.scorer, e.opts.TextSimilarityThreshold, e.opts.DAGEdgeThreshold)
	if err := r.DAG.Validate(e.corpus); err != nil {
		panic(fmt.Sprintf("narrative: graph for anchor %d is invalid: %v", anchor, err))
	}
	r.Stats.GraphTime = time.Since(start)
	logger.Debug("built graph", "vertices", r.DAG.VertexCount(), "edges", r.DAG.EdgeCount(), "duration", r.Stats.GraphTime)

	start = time.Now()
	r.Threads = r.DAG.LongestPaths(anchor)
	if r.Threads == nil {
		r.Threads = []dag.Thread{}
	}
	r.Stats.PathTime = time.Since(start)

	start = time.Now()
	r.Tree = tree.Build(r.Threads, anchor)
	r.Stats.TreeTime = time.Since(start)

	r.Stats.SetSize = len(r.Set)
	r.Stats.VertexCount = r.DAG.VertexCount()
	r.Stats.EdgeCount = r.DAG.EdgeCount()
	r.Stats.ThreadCount = len(r.Threads)

	logger.Info("built narrative threads",
		"anchor", anchor,
		"set", r.Stats.SetSize,
		"edges", r.Stats.EdgeCount,
		"threads", r.Stats.ThreadCount,
		"width", r.Tree.Width(),
		"height", r.Tree.Height(),
		"duration", r.Stats.Total())
	hooks.OnThreadsComplete(ctx, int(anchor), len(r.Threads), r.Stats.Total(), nil)
	return r, nil
}

// BuildThreadList answers which threads of r pass through edge.
func (e *Engine) BuildThreadList(ctx context.Context, r *Result, edge tree.EdgeKey) ([]dag.Thread, error) {
	start := time.Now()
	threads, err := r.ThreadsThrough(edge)
	observability.Engine().OnQuery(ctx, edge.String(), len(threads), time.Since(start), err)
	if err != nil {
		e.opts.Logger.Debug("edge query failed", "edge", edge, "error", err)
		return nil, err
	}
	e.opts.Logger.Debug("edge query", "edge", edge, "threads", len(threads))
	return threads, nil
}

// thresholds returns the resolved thresholds alone, as results carry them.
func (e *Engine) thresholds() Options {
	return Options{
		TextSimilarityThreshold:    e.opts.TextSimilarityThreshold,
		OverallSimilarityThreshold: e.opts.OverallSimilarityThreshold,
		DAGEdgeThreshold:           e.opts.DAGEdgeThreshold,
	}
}

func (e *Engine) degenerate(anchor item.ID) *Result {
	return &Result{
		ID:      uuid.NewString(),
		Anchor:  anchor,
		Options: e.thresholds(),
		Set:     similarity.Set{},
		DAG:     dag.New(),
		Threads: []dag.Thread{},
		Tree:    tree.Build(nil, anchor),
	}
}
