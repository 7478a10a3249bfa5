package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/item"
)

type staticSource []item.Record

func (s staticSource) Load(context.Context) ([]item.Record, error) { return s, nil }

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.jsonl")
	data := `{"timestamp":"2011-08-22T09:00:00Z","text":"storm warning #irene","author":"weather"}
{"timestamp":"2011-08-22T10:00:00Z","text":"evacuations ordered","author":"city"}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	records, err := File{Path: path}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(records) != 2 || records[1].Author != "city" {
		t.Errorf("Load() = %+v", records)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (File{Path: path}).Load(ctx); err == nil {
		t.Error("Load() ignored a cancelled context")
	}
}

func TestLoadCorpus(t *testing.T) {
	ctx := context.Background()
	src := staticSource{
		{Timestamp: "2011-08-22T09:00:00Z", Text: "storm warning #irene", Author: "weather"},
		{Timestamp: "2011-08-22T10:00:00Z", Text: "storm surge warning", Author: "city"},
		{Timestamp: "2011-08-22T11:00:00Z", Text: "new phone released", Author: "tech"},
	}
	c, err := LoadCorpus(ctx, src)
	if err != nil {
		t.Fatalf("LoadCorpus() error: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d", c.Len())
	}
	if got := c.MustItem(0).Hashtags; len(got) != 1 || got[0] != "irene" {
		t.Errorf("hashtags = %v", got)
	}
	if c.Dissimilarity(0, 1) >= c.Dissimilarity(0, 2) {
		t.Errorf("d(0,1)=%v should be below d(0,2)=%v", c.Dissimilarity(0, 1), c.Dissimilarity(0, 2))
	}

	tests := []struct {
		name string
		src  Source
		code errs.Code
	}{
		{"empty", staticSource{}, errs.ErrCodeInvalidInput},
		{"bad timestamp", staticSource{{Timestamp: "later", Text: "x"}}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadCorpus(ctx, tt.src); !errs.Is(err, tt.code) {
				t.Errorf("LoadCorpus() error = %v, want %s", err, tt.code)
			}
		})
	}
}
