package cache

import (
	"errors"
	"time"
)

// Sentinel errors for caching operations.
var (
	// ErrNetwork is returned when a remote backend cannot be reached.
	ErrNetwork = errors.New("network error")

	// ErrCacheMiss is returned by lookups that require an entry, such as
	// fetching a result snapshot by ID.
	ErrCacheMiss = errors.New("cache miss")
)

// Connection checks against remote backends are retried connectAttempts
// times, starting at connectDelay and doubling.
var (
	connectAttempts = 3
	connectDelay    = 200 * time.Millisecond
)
