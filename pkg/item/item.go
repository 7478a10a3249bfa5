package item

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ID identifies an item by its index in the corpus.
type ID int

// Item is a single short text record (a post, a message, a headline).
// Items are owned by the ingestion layer and are read-only to the engine.
type Item struct {
	ID        ID
	Timestamp time.Time
	Text      string
	Hashtags  []string // lower-cased, without the leading '#'
	Author    string
}

// Dissimilarity reports the normalized textual distance between two items.
// Implementations must be symmetric, return values in [0, 1], and return 0
// when i == j.
type Dissimilarity interface {
	Dissimilarity(i, j ID) float64
}

// DissimilarityFunc adapts a plain function to the Dissimilarity interface.
type DissimilarityFunc func(i, j ID) float64

// Dissimilarity calls f(i, j).
func (f DissimilarityFunc) Dissimilarity(i, j ID) float64 { return f(i, j) }

// MentionIndex maps a lower-cased author name to the set of items whose
// text references that author.
type MentionIndex map[string]map[ID]struct{}

// Add records that item id mentions author.
func (m MentionIndex) Add(author string, id ID) {
	key := normalizeName(author)
	if key == "" {
		return
	}
	set, ok := m[key]
	if !ok {
		set = make(map[ID]struct{})
		m[key] = set
	}
	set[id] = struct{}{}
}

// Mentions reports whether item id references author.
func (m MentionIndex) Mentions(author string, id ID) bool {
	_, ok := m[normalizeName(author)][id]
	return ok
}

// Mentioning returns the ids of items referencing author in ascending order.
func (m MentionIndex) Mentioning(author string) []ID {
	set := m[normalizeName(author)]
	ids := make([]ID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Corpus bundles the read-only inputs of the engine: the item collection,
// the mention index and the dissimilarity oracle.
//
// The zero value is not usable - use NewCorpus.
type Corpus struct {
	items    []Item
	mentions MentionIndex
	oracle   Dissimilarity
}

// NewCorpus re-indexes items so that each ID equals its position, fills in
// hashtags extracted from the text when none were supplied, and builds the
// mention index. The oracle must be indexed the same way as items.
//
// NewCorpus panics if oracle is nil.
func NewCorpus(items []Item, oracle Dissimilarity) *Corpus {
	if oracle == nil {
		panic("item: NewCorpus requires a dissimilarity oracle")
	}
	out := make([]Item, len(items))
	for i, it := range items {
		it.ID = ID(i)
		if len(it.Hashtags) == 0 {
			it.Hashtags = ExtractHashtags(it.Text)
		} else {
			it.Hashtags = normalizeTags(it.Hashtags)
		}
		out[i] = it
	}
	return &Corpus{
		items:    out,
		mentions: BuildMentionIndex(out),
		oracle:   oracle,
	}
}

// NewCorpusWithIndex is like NewCorpus but uses a mention index built
// elsewhere instead of scanning item texts.
func NewCorpusWithIndex(items []Item, mentions MentionIndex, oracle Dissimilarity) *Corpus {
	c := NewCorpus(items, oracle)
	if mentions != nil {
		c.mentions = mentions
	}
	return c
}

// Len returns the number of items.
func (c *Corpus) Len() int { return len(c.items) }

// Contains reports whether id addresses an item of the corpus.
func (c *Corpus) Contains(id ID) bool { return id >= 0 && int(id) < len(c.items) }

// Item returns the item with the given id.
func (c *Corpus) Item(id ID) (Item, bool) {
	if !c.Contains(id) {
		return Item{}, false
	}
	return c.items[id], true
}

// MustItem returns the item with the given id and panics if it does not exist.
// It is meant for callers that already validated id.
func (c *Corpus) MustItem(id ID) Item {
	it, ok := c.Item(id)
	if !ok {
		panic(fmt.Sprintf("item: id %d out of range [0, %d)", id, len(c.items)))
	}
	return it
}

// Items returns the items in id order. The slice must not be modified.
func (c *Corpus) Items() []Item { return c.items }

// Mentions returns the mention index.
func (c *Corpus) Mentions() MentionIndex { return c.mentions }

// Dissimilarity delegates to the corpus oracle.
func (c *Corpus) Dissimilarity(i, j ID) float64 {
	if i == j {
		return 0
	}
	return c.oracle.Dissimilarity(i, j)
}

// Texts returns the item texts in id order.
func (c *Corpus) Texts() []string {
	return Texts(c.items)
}

// Texts returns the texts of items in order.
func Texts(items []Item) []string {
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}
	return texts
}

// Before reports whether item a sorts before item b in narrative time:
// earlier timestamp first, ties broken by ascending ID.
func Before(a, b Item) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.ID < b.ID
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "@"))
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "#"))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
