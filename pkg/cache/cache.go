// Package cache stores computed narrative results for reuse within a session.
//
// Results are cached twice: under a deterministic key derived from the
// corpus, the anchor and the thresholds, so that recomputation can be
// skipped, and under the result's own ID, so that later edge queries can
// find the exact result a client was shown. Entries carry a TTL; the cache
// is a speed-up, not a store of record.
//
// # Backends
//
//   - [NullCache] stores nothing
//   - [FileCache] keeps entries as files, for the CLI
//   - [RedisCache] shares entries between server replicas
//
// [Open] selects a backend from a [Config].
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored data and whether the key was present.
	// A missing or expired key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default lifetimes of cache entries.
const (
	// ResultTTL bounds how long a computed result is reused.
	ResultTTL = time.Hour

	// SnapshotTTL bounds how long a result can be queried by ID.
	SnapshotTTL = 24 * time.Hour
)

// Key type labels reported to observability hooks.
const (
	KeyTypeResult   = "result"
	KeyTypeSnapshot = "snapshot"
)

// ResultKeyOpts are the computation settings that distinguish results.
type ResultKeyOpts struct {
	TextThreshold    float64 `json:"text"`
	OverallThreshold float64 `json:"overall"`
	EdgeThreshold    float64 `json:"edge"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey identifies the result for an anchor of a given corpus.
	ResultKey(corpusHash string, anchor int, opts ResultKeyOpts) string

	// SnapshotKey identifies a result by its ID.
	SnapshotKey(id string) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey hashes the corpus hash, anchor and thresholds.
func (DefaultKeyer) ResultKey(corpusHash string, anchor int, opts ResultKeyOpts) string {
	return hashKey("result", corpusHash, anchor, opts)
}

// SnapshotKey returns "snapshot:<id>".
func (DefaultKeyer) SnapshotKey(id string) string {
	return "snapshot:" + id
}

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend  string `toml:"backend" json:"backend"`
	Dir      string `toml:"dir" json:"dir,omitempty"`
	RedisURL string `toml:"redis_url" json:"redis_url,omitempty"`
}

// Open creates the backend described by cfg. An empty backend selects
// [NullCache].
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		return NewFileCache(cfg.Dir)
	case BackendRedis:
		return NewRedisCache(ctx, cfg.RedisURL)
	}
	return nil, fmt.Errorf("unknown cache backend %q (want one of: %s, %s, %s)", cfg.Backend, BackendNone, BackendFile, BackendRedis)
}
