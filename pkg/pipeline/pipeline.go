// Package pipeline runs the narrative engine behind the result cache.
//
// This package implements the compute → store → query flow shared by the
// CLI and the HTTP server. By centralizing this logic, both entry points
// reuse results the same way and hand out result IDs that later queries
// can resolve.
//
// # Architecture
//
// A computation goes through three steps:
//
//  1. Lookup: a deterministic key over the corpus, the anchor and the
//     thresholds is checked in the cache
//  2. Compute: on a miss the engine builds the result
//  3. Store: the result is stored under the deterministic key and under
//     its own ID
//
// Edge queries then load the result by ID and run the lossless thread
// query on it.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, engine, pipeline.Options{Anchor: 12})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	threads, err := runner.Query(ctx, res.Result.ID, tree.EdgeKey{From: 12, To: 17})
//
// Stored results live for [cache.SnapshotTTL]. They are a convenience for
// a working session; nothing is persisted beyond that.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/narrative/pkg/cache"
	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/narrative"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default canvas width for layouts.
	DefaultWidth = 800.0

	// DefaultHeight is the default canvas height for layouts.
	DefaultHeight = 600.0
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run. It supports JSON for API requests.
type Options struct {
	// Anchor is the item to build threads around.
	Anchor item.ID `json:"anchor"`

	// Refresh skips the cache lookup. The new result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the options and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Anchor < 0 {
		return errs.New(errs.ErrCodeInvalidAnchor, "anchor must not be negative, got %d", o.Anchor)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ResultKeyOpts returns the cache key options for an engine's thresholds.
func ResultKeyOpts(o narrative.Options) cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		TextThreshold:    o.TextSimilarityThreshold,
		OverallThreshold: o.OverallSimilarityThreshold,
		EdgeThreshold:    o.DAGEdgeThreshold,
	}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Result is the computed or cached narrative result.
	Result *narrative.Result

	// CorpusHash fingerprints the corpus the result was computed over.
	CorpusHash string

	// Duration is the wall time of the run, including cache access.
	Duration time.Duration

	// CacheInfo tracks whether the result came from the cache.
	CacheInfo CacheInfo
}

// CacheInfo tracks cache use during a run.
type CacheInfo struct {
	Hit    bool   // Whether the result came from the cache
	Key    string // Deterministic result key
	Stored bool   // Whether the result was written back
}
