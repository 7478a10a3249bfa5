package similarity

import (
	"strings"
	"time"

	"github.com/matzehuels/narrative/pkg/item"
)

// Component weights of the narrative similarity score. They sum to 1.05,
// so a score can exceed 1.0 when every component fires.
const (
	TextWeight      = 0.50
	TagWeight       = 0.15
	TimeWeight      = 0.10
	MentionWeight   = 0.25
	SameAuthorBonus = 0.05

	// MaxMatchingTags caps the number of shared hashtags that count.
	MaxMatchingTags = 3

	// TimeWindow is the horizon of the temporal component. Items further
	// apart contribute nothing; closer items decay linearly.
	TimeWindow = 24 * time.Hour
)

// Breakdown holds the individual components of a score.
type Breakdown struct {
	Text    float64
	Tags    float64
	Time    float64
	Mention float64
	Author  float64
}

// Total returns the uncapped sum of all components.
func (b Breakdown) Total() float64 {
	return b.Text + b.Tags + b.Time + b.Mention + b.Author
}

// Scorer computes narrative similarity over a corpus.
// It only reads the corpus and is safe for concurrent use when the corpus
// oracle is.
type Scorer struct {
	corpus *item.Corpus
}

// NewScorer returns a scorer over c.
func NewScorer(c *item.Corpus) *Scorer {
	return &Scorer{corpus: c}
}

// Corpus returns the corpus the scorer reads.
func (s *Scorer) Corpus() *item.Corpus { return s.corpus }

// Score returns the narrative similarity of candidate to anchor, or 0 when
// their textual overlap is below textThreshold. Both ids must be valid.
func (s *Scorer) Score(anchor, candidate item.ID, textThreshold float64) float64 {
	b, ok := s.Explain(anchor, candidate, textThreshold)
	if !ok {
		return 0
	}
	return b.Total()
}

// Explain returns the score components. ok is false when the pair was
// rejected by the text threshold, in which case the breakdown is zero.
func (s *Scorer) Explain(anchor, candidate item.ID, textThreshold float64) (b Breakdown, ok bool) {
	overlap := 1 - s.corpus.Dissimilarity(anchor, candidate)
	if overlap < textThreshold {
		return Breakdown{}, false
	}

	a := s.corpus.MustItem(anchor)
	c := s.corpus.MustItem(candidate)

	b.Text = overlap * TextWeight
	b.Tags = float64(min(matchingTags(a.Hashtags, c.Hashtags), MaxMatchingTags)) / MaxMatchingTags * TagWeight
	b.Time = timeComponent(a.Timestamp, c.Timestamp)
	if a.Author != "" && s.corpus.Mentions().Mentions(a.Author, candidate) {
		b.Mention = MentionWeight
	}
	if a.Author != "" && strings.EqualFold(a.Author, c.Author) {
		b.Author = SameAuthorBonus
	}
	return b, true
}

func matchingTags(anchor, candidate []string) int {
	if len(anchor) == 0 || len(candidate) == 0 {
		return 0
	}
	have := make(map[string]bool, len(candidate))
	for _, t := range candidate {
		have[strings.ToLower(t)] = true
	}
	seen := make(map[string]bool, len(anchor))
	n := 0
	for _, t := range anchor {
		t = strings.ToLower(t)
		if have[t] && !seen[t] {
			seen[t] = true
			n++
		}
	}
	return n
}

func timeComponent(a, b time.Time) float64 {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	if diff >= TimeWindow {
		return 0
	}
	window := float64(TimeWindow.Milliseconds())
	return (window - float64(diff.Milliseconds())) / window * TimeWeight
}
