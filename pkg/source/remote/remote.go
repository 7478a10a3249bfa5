// Package remote reads item records from a JSON dump served over HTTP.
//
// The body may be a JSON array or JSON Lines, as for local files. Transient
// failures (network errors, 429 and 5xx) are retried with backoff, and
// decoded records can be kept in an [httputil.Cache] so repeated runs over
// the same dump do not download it again.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/httputil"
	nio "github.com/matzehuels/narrative/pkg/io"
	"github.com/matzehuels/narrative/pkg/item"
)

// DefaultTimeout bounds a single download attempt.
const DefaultTimeout = 30 * time.Second

const cachePrefix = "records:"

// Source downloads records from URL.
type Source struct {
	URL     string
	Headers map[string]string

	// Client defaults to an http.Client with DefaultTimeout.
	Client *http.Client
	// Cache is optional. Refresh skips the lookup but still stores the
	// downloaded records.
	Cache   *httputil.Cache
	Refresh bool

	// Attempts and Delay override the retry policy when positive.
	Attempts int
	Delay    time.Duration
}

// New returns a Source for url after checking that it is an http(s) URL.
func New(url string, cache *httputil.Cache) (*Source, error) {
	if err := errs.ValidateURL(url, "http", "https"); err != nil {
		return nil, err
	}
	return &Source{URL: url, Cache: cache}, nil
}

// Load returns the records of the dump, from the cache when possible.
func (s *Source) Load(ctx context.Context) ([]item.Record, error) {
	var cache *httputil.Cache
	if s.Cache != nil {
		cache = s.Cache.Namespace(cachePrefix)
	}

	if cache != nil && !s.Refresh {
		var records []item.Record
		if ok, _ := cache.Get(s.URL, &records); ok {
			return records, nil
		}
	}

	var records []item.Record
	attempts, delay := httputil.DefaultAttempts, httputil.DefaultDelay
	if s.Attempts > 0 {
		attempts = s.Attempts
	}
	if s.Delay > 0 {
		delay = s.Delay
	}
	err := httputil.Retry(ctx, attempts, delay, func() error {
		var err error
		records, err = s.fetch(ctx)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errs.GetCode(err) != "" {
			return nil, err
		}
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "download %s", s.URL)
	}

	if cache != nil {
		_ = cache.Set(s.URL, records)
	}
	return records, nil
}

func (s *Source) fetch(ctx context.Context) ([]item.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "request %s", s.URL)
	}
	req.Header.Set("Accept", "application/json, application/x-ndjson")
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client().Do(req)
	if err != nil {
		return nil, &httputil.RetryableError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, errs.New(errs.ErrCodeNotFound, "%s: not found", s.URL)
	case httputil.RetryableStatus(resp.StatusCode):
		return nil, &httputil.RetryableError{Err: fmt.Errorf("status %d", resp.StatusCode)}
	default:
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return nio.ReadRecords(resp.Body)
}

func (s *Source) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return &http.Client{Timeout: DefaultTimeout}
}
