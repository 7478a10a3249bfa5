package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/narrative/pkg/cache"
	"github.com/matzehuels/narrative/pkg/dag"
	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/graph"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/narrative"
	"github.com/matzehuels/narrative/pkg/observability"
	"github.com/matzehuels/narrative/pkg/tree"
)

// Runner encapsulates engine execution with caching.
// Both CLI and API use it so that results and their IDs behave the same.
//
// The Runner is stateless except for the cache, the keyer and a memo of
// corpus hashes. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ResultTTL and SnapshotTTL override the cache lifetimes when positive.
	ResultTTL   time.Duration
	SnapshotTTL time.Duration

	hashes sync.Map // *item.Corpus -> string
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute returns the result for opts.Anchor over the engine's corpus,
// reusing a cached result when one exists for the same corpus, anchor and
// thresholds. Every result is stored under its ID for [Runner.Query].
//
// An anchor outside the corpus fails with INVALID_ANCHOR; unlike
// [narrative.Engine.SetAnchor] no degenerate result is returned.
func (r *Runner) Execute(ctx context.Context, e *narrative.Engine, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()

	hash := r.CorpusHash(e.Corpus())
	key := r.Keyer.ResultKey(hash, int(opts.Anchor), ResultKeyOpts(e.Options()))
	out := &Result{CorpusHash: hash, CacheInfo: CacheInfo{Key: key}}

	if !opts.Refresh {
		if res, ok := r.load(ctx, key, cache.KeyTypeResult); ok {
			out.Result = res
			out.CacheInfo.Hit = true
			out.Duration = time.Since(start)
			opts.Logger.Debug("reused cached result", "anchor", opts.Anchor, "id", res.ID)
			return out, nil
		}
	}

	res, err := e.SetAnchor(ctx, opts.Anchor)
	if err != nil {
		return nil, err
	}
	out.Result = res

	data, err := graph.MarshalResult(res)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "serialize result")
	}
	out.CacheInfo.Stored = r.store(ctx, key, cache.KeyTypeResult, data, ttlOr(r.ResultTTL, cache.ResultTTL)) &&
		r.store(ctx, r.Keyer.SnapshotKey(res.ID), cache.KeyTypeSnapshot, data, ttlOr(r.SnapshotTTL, cache.SnapshotTTL))
	out.Duration = time.Since(start)

	opts.Logger.Info("computed result",
		"anchor", opts.Anchor,
		"id", res.ID,
		"threads", len(res.Threads),
		"cached", out.CacheInfo.Stored,
		"duration", out.Duration)
	return out, nil
}

// Fetch loads a stored result by ID. It fails with RESULT_NOT_FOUND when
// the result is unknown or expired.
func (r *Runner) Fetch(ctx context.Context, id string) (*narrative.Result, error) {
	if id == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "result id is required")
	}
	res, ok := r.load(ctx, r.Keyer.SnapshotKey(id), cache.KeyTypeSnapshot)
	if !ok {
		return nil, errs.Wrap(errs.ErrCodeResultNotFound, cache.ErrCacheMiss, "result %s not found", id)
	}
	return res, nil
}

// Query answers which threads of the stored result id pass through edge.
func (r *Runner) Query(ctx context.Context, id string, edge tree.EdgeKey) ([]dag.Thread, error) {
	res, err := r.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	threads, err := res.ThreadsThrough(edge)
	observability.Engine().OnQuery(ctx, edge.String(), len(threads), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("edge query", "result", id, "edge", edge, "threads", len(threads))
	return threads, nil
}

// Layout positions the tree of the stored result id on a w x h canvas.
// Non-positive sizes fall back to the defaults.
func (r *Runner) Layout(ctx context.Context, id string, w, h float64) (graph.Layout, error) {
	res, err := r.Fetch(ctx, id)
	if err != nil {
		return graph.Layout{}, err
	}
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	tl, _ := res.Layout(w, h)
	l := graph.FromLayout(res.Tree, tl)
	l.ResultID = res.ID
	return l, nil
}

// CorpusHash fingerprints the items of c. The hash covers the item records
// only; corpora sharing items but using different dissimilarity oracles
// must use different keyers (see [cache.NewScopedKeyer]).
func (r *Runner) CorpusHash(c *item.Corpus) string {
	if h, ok := r.hashes.Load(c); ok {
		return h.(string)
	}
	data, _ := json.Marshal(item.ToRecords(c.Items()))
	h := cache.Hash(data)
	r.hashes.Store(c, h)
	return h
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// load reads and decodes a cached result. Unreadable entries count as a
// miss and are dropped.
func (r *Runner) load(ctx context.Context, key, keyType string) (*narrative.Result, bool) {
	hooks := observability.Cache()
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key_type", keyType, "error", err)
	}
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, keyType)
		return nil, false
	}
	res, err := graph.UnmarshalResult(data)
	if err != nil {
		r.Logger.Warn("dropping unreadable cache entry", "key_type", keyType, "error", err)
		_ = r.Cache.Delete(ctx, key)
		hooks.OnCacheMiss(ctx, keyType)
		return nil, false
	}
	hooks.OnCacheHit(ctx, keyType)
	return res, true
}

// store writes data and reports whether it succeeded. Cache failures are
// logged but never fail a run.
func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) bool {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		if !errors.Is(err, context.Canceled) {
			r.Logger.Warn("cache write failed", "key_type", keyType, "error", err)
		}
		return false
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
	return true
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func ttlOr(ttl, def time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return def
}
