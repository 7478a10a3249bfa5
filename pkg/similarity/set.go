package similarity

import (
	"maps"
	"slices"

	"github.com/matzehuels/narrative/pkg/item"
)

// Default thresholds used when selecting an anchor's candidate pool.
const (
	DefaultTextThreshold    = 0.1
	DefaultOverallThreshold = 0.3
)

// AnchorScore is the score the anchor always carries in its own set.
const AnchorScore = 1.0

// Set maps the items similar enough to an anchor to their score.
// A Set built by [Scorer.BuildSet] always contains the anchor at 1.0.
type Set map[item.ID]float64

// IDs returns the members in ascending id order.
func (s Set) IDs() []item.ID {
	return slices.Sorted(maps.Keys(s))
}

// Contains reports whether id is a member.
func (s Set) Contains(id item.ID) bool {
	_, ok := s[id]
	return ok
}

// BuildSet scores every other item against anchor and keeps those scoring
// at least simThreshold. The anchor itself is included with score 1.0
// regardless of what the scorer would compute.
func (s *Scorer) BuildSet(anchor item.ID, textThreshold, simThreshold float64) Set {
	set := Set{anchor: AnchorScore}
	for _, it := range s.corpus.Items() {
		if it.ID == anchor {
			continue
		}
		if score := s.Score(anchor, it.ID, textThreshold); score >= simThreshold {
			set[it.ID] = score
		}
	}
	return set
}
