package cache

// ScopedKeyer prefixes every key of an inner Keyer. The server scopes keys
// per corpus source so that two corpora loaded into one Redis instance
// never share entries.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "sqlite:irene:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResultKey returns the prefixed result key.
func (k *ScopedKeyer) ResultKey(corpusHash string, anchor int, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(corpusHash, anchor, opts)
}

// SnapshotKey returns the prefixed snapshot key.
func (k *ScopedKeyer) SnapshotKey(id string) string {
	return k.prefix + k.inner.SnapshotKey(id)
}
