package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	errs "github.com/matzehuels/narrative/pkg/errors"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v; want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = %v, %v; want a miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte(`{"threads":[[0,1]]}`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get(k) = %v, %v; want a hit", hit, err)
	}
	if string(data) != `{"threads":[[0,1]]}` {
		t.Errorf("Get(k) = %s", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of a missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry was returned")
	}
	if _, err := os.Stat(c.(*FileCache).path("old")); !os.IsNotExist(err) {
		t.Error("expired entry file was not removed")
	}

	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl missed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fc := c.(*FileCache)
	path := fc.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get(corrupt) = %v, %v; want a miss", hit, err)
	}
}

func TestNewFileCacheInvalidPath(t *testing.T) {
	if _, err := NewFileCache(""); !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("NewFileCache(\"\") error = %v", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{"empty", Config{}, "null", false},
		{"none", Config{Backend: BackendNone}, "null", false},
		{"file", Config{Backend: BackendFile, Dir: t.TempDir()}, "file", false},
		{"redis bad scheme", Config{Backend: BackendRedis, RedisURL: "http://localhost"}, "", true},
		{"unknown", Config{Backend: "memcached"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer c.Close()
			switch tt.want {
			case "null":
				if _, ok := c.(NullCache); !ok {
					t.Errorf("Open() = %T, want NullCache", c)
				}
			case "file":
				if _, ok := c.(*FileCache); !ok {
					t.Errorf("Open() = %T, want *FileCache", c)
				}
			}
		})
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	opts := ResultKeyOpts{TextThreshold: 0.1, OverallThreshold: 0.3, EdgeThreshold: 0.25}

	base := k.ResultKey("corpus", 3, opts)
	if !strings.HasPrefix(base, "result:") {
		t.Errorf("ResultKey = %s, want result: prefix", base)
	}
	if base != k.ResultKey("corpus", 3, opts) {
		t.Error("ResultKey should be deterministic")
	}

	other := opts
	other.EdgeThreshold = 0.5
	variants := map[string]string{
		"anchor":    k.ResultKey("corpus", 4, opts),
		"corpus":    k.ResultKey("other", 3, opts),
		"threshold": k.ResultKey("corpus", 3, other),
	}
	for name, key := range variants {
		if key == base {
			t.Errorf("changing %s did not change the key", name)
		}
	}

	if got := k.SnapshotKey("abc"); got != "snapshot:abc" {
		t.Errorf("SnapshotKey = %s", got)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "sqlite:irene:")
	if got := scoped.SnapshotKey("abc"); got != "sqlite:irene:snapshot:abc" {
		t.Errorf("SnapshotKey = %s", got)
	}
	rk := scoped.ResultKey("h", 0, ResultKeyOpts{})
	if !strings.HasPrefix(rk, "sqlite:irene:result:") {
		t.Errorf("ResultKey should be prefixed: %s", rk)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if key := scoped.SnapshotKey("id"); key != "prefix:snapshot:id" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	defer func(n int, d time.Duration) { connectAttempts, connectDelay = n, d }(connectAttempts, connectDelay)
	connectAttempts, connectDelay = 2, time.Millisecond

	// Port 1 is reserved and refuses connections.
	_, err := NewRedisCache(context.Background(), "redis://127.0.0.1:1/0")
	if !errs.Is(err, errs.ErrCodeSourceUnavailable) {
		t.Errorf("NewRedisCache() error = %v, want SOURCE_UNAVAILABLE", err)
	}
}
