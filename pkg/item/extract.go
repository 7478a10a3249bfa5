package item

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	errs "github.com/matzehuels/narrative/pkg/errors"
)

var (
	hashtagRe = regexp.MustCompile(`#(\w+)`)
	mentionRe = regexp.MustCompile(`@(\w+)`)
)

// ExtractHashtags finds hashtags in text.
// Returns lower-cased tags without the '#' prefix, in order of first use.
func ExtractHashtags(text string) []string {
	return extract(hashtagRe, text)
}

// ExtractMentions finds @-mentions in text.
// Returns lower-cased names without the '@' prefix, in order of first use.
func ExtractMentions(text string) []string {
	return extract(mentionRe, text)
}

func extract(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var result []string
	for _, match := range matches {
		if len(match) > 1 {
			v := strings.ToLower(match[1])
			if !seen[v] {
				seen[v] = true
				result = append(result, v)
			}
		}
	}
	return result
}

// BuildMentionIndex scans item texts for @-mentions.
func BuildMentionIndex(items []Item) MentionIndex {
	idx := make(MentionIndex)
	for _, it := range items {
		for _, name := range ExtractMentions(it.Text) {
			idx.Add(name, it.ID)
		}
	}
	return idx
}

// Record is the raw, serializable form of an item as delivered by a source.
type Record struct {
	Timestamp string   `json:"timestamp" bson:"timestamp"`
	Text      string   `json:"text" bson:"text"`
	Hashtags  []string `json:"hashtags,omitempty" bson:"hashtags,omitempty"`
	Author    string   `json:"author" bson:"author"`
}

// timeLayouts lists the accepted timestamp layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RubyDate, // "Mon Jan 02 15:04:05 -0700 2006", the social feed format
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a record timestamp. Besides the layouts above it
// accepts integer Unix milliseconds.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errs.New(errs.ErrCodeInvalidInput, "empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, errs.New(errs.ErrCodeInvalidInput, "unrecognized timestamp %q", s)
}

// FromRecords converts raw records into items. IDs follow record order.
func FromRecords(records []Record) ([]Item, error) {
	items := make([]Item, len(records))
	for i, r := range records {
		ts, err := ParseTimestamp(r.Timestamp)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "record %d", i)
		}
		items[i] = Item{
			ID:        ID(i),
			Timestamp: ts,
			Text:      r.Text,
			Hashtags:  r.Hashtags,
			Author:    r.Author,
		}
	}
	return items, nil
}

// ToRecords is the inverse of FromRecords. Timestamps are written as RFC 3339.
func ToRecords(items []Item) []Record {
	records := make([]Record, len(items))
	for i, it := range items {
		records[i] = Record{
			Timestamp: it.Timestamp.Format(time.RFC3339Nano),
			Text:      it.Text,
			Hashtags:  it.Hashtags,
			Author:    it.Author,
		}
	}
	return records
}
