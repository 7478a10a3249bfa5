// Package httputil provides the HTTP plumbing for remote item sources.
//
// # Caching
//
// [Cache] keeps decoded responses as JSON files below a cache directory
// with a TTL based on file modification time. Remote record dumps rarely
// change, so the CLI keeps them for an hour by default:
//
//	c, err := httputil.NewCache("", time.Hour)
//	var records []item.Record
//	if ok, _ := c.Get(url, &records); !ok {
//	    records = download(url)
//	    c.Set(url, records)
//	}
//
// Use [Cache.Namespace] to keep keys of different sources apart.
//
// # Retry
//
// [Retry] runs an operation again when it fails with a [RetryableError].
// Remote sources and the Redis result cache both use it.
// HTTP callers mark network errors and [RetryableStatus] responses that
// way and return everything else as is:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
package httputil
