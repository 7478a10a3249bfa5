package server

import (
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/narrative/pkg/cache"
	errs "github.com/matzehuels/narrative/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":8080"

	// DefaultRequestTimeout bounds the handling of a single request.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultShutdownTimeout bounds the graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// =============================================================================
// Config
// =============================================================================

// Config holds the HTTP API settings. It is read from the [server] table
// of the configuration file:
//
//	[server]
//	addr = ":8080"
//	cache_backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	result_ttl = "1h"
//	snapshot_ttl = "24h"
//	allowed_origins = ["http://localhost:3000"]
type Config struct {
	Addr           string        `toml:"addr" json:"addr"`
	CacheBackend   string        `toml:"cache_backend" json:"cache_backend"`
	CacheDir       string        `toml:"cache_dir" json:"cache_dir,omitempty"`
	RedisURL       string        `toml:"redis_url" json:"redis_url,omitempty"`
	ResultTTL      time.Duration `toml:"result_ttl" json:"result_ttl,omitempty"`
	SnapshotTTL    time.Duration `toml:"snapshot_ttl" json:"snapshot_ttl,omitempty"`
	RequestTimeout time.Duration `toml:"request_timeout" json:"request_timeout,omitempty"`
	AllowedOrigins []string      `toml:"allowed_origins" json:"allowed_origins,omitempty"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.CacheBackend == "" {
		c.CacheBackend = cache.BackendNone
	}
	if c.ResultTTL == 0 {
		c.ResultTTL = cache.ResultTTL
	}
	if c.SnapshotTTL == 0 {
		c.SnapshotTTL = cache.SnapshotTTL
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}

// Validate checks the cache backend and the durations.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case cache.BackendNone, cache.BackendFile:
	case cache.BackendRedis:
		if c.RedisURL == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "redis_url is required for the redis cache backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache_backend %q", c.CacheBackend)
	}
	if c.ResultTTL < 0 || c.SnapshotTTL < 0 || c.RequestTimeout < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "durations must not be negative")
	}
	return nil
}

// CacheConfig returns the cache settings.
func (c Config) CacheConfig() cache.Config {
	return cache.Config{Backend: c.CacheBackend, Dir: c.CacheDir, RedisURL: c.RedisURL}
}

type configFile struct {
	Server Config `toml:"server"`
}

// LoadConfig reads the [server] table of the TOML file at path. Other
// tables are ignored.
func LoadConfig(path string) (Config, error) {
	if err := errs.ValidatePath(path); err != nil {
		return Config{}, err
	}
	var f configFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}
	f.Server.SetDefaults()
	if err := f.Server.Validate(); err != nil {
		return Config{}, err
	}
	return f.Server, nil
}

// ParseConfig is like [LoadConfig] for configuration held in memory.
func ParseConfig(data string) (Config, error) {
	var f configFile
	if _, err := toml.Decode(data, &f); err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse configuration")
	}
	f.Server.SetDefaults()
	if err := f.Server.Validate(); err != nil {
		return Config{}, err
	}
	return f.Server, nil
}
