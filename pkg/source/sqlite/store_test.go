package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/source"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "items.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var records = []item.Record{
	{Timestamp: "2011-08-22T09:00:00Z", Text: "storm warning #irene", Hashtags: []string{"irene"}, Author: "weather"},
	{Timestamp: "Mon Aug 22 10:00:00 +0000 2011", Text: "evacuations ordered @weather", Author: "city"},
	{Timestamp: "2011-08-22T11:00:00Z", Text: "shelters open #irene #nyc", Hashtags: []string{"irene", "nyc"}, Author: "news"},
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	n, err := s.Save(ctx, records)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if n != len(records) {
		t.Errorf("Save() = %d, want %d", n, len(records))
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := make([]item.Record, len(records))
	copy(want, records)
	want[1].Hashtags = []string{}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %+v\nwant %+v", got, want)
	}

	if c, _ := s.Count(ctx); c != 3 {
		t.Errorf("Count() = %d, want 3", c)
	}
}

func TestSaveAppends(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	if _, err := s.Save(ctx, records[:1]); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, records[1:]); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for i := range got {
		if got[i].Text != records[i].Text {
			t.Errorf("record %d = %q, want %q", i, got[i].Text, records[i].Text)
		}
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if c, _ := s.Count(ctx); c != 0 {
		t.Errorf("Count() after Clear = %d", c)
	}
}

func TestSaveRejectsBadTimestamp(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	bad := append([]item.Record{}, records[0], item.Record{Timestamp: "soon", Text: "x"})
	if _, err := s.Save(ctx, bad); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Save() error = %v, want INVALID_INPUT", err)
	}
	if c, _ := s.Count(ctx); c != 0 {
		t.Errorf("partial batch was committed: %d records", c)
	}
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "items.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, records); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if c, _ := s.Count(ctx); c != len(records) {
		t.Errorf("Count() after reopen = %d", c)
	}
}

func TestLoadCorpus(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	if _, err := s.Save(ctx, records); err != nil {
		t.Fatal(err)
	}
	c, err := source.LoadCorpus(ctx, s)
	if err != nil {
		t.Fatalf("LoadCorpus() error: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d", c.Len())
	}
	if !c.Mentions().Mentions("weather", 1) {
		t.Error("mention of @weather not indexed")
	}
	if c.Dissimilarity(0, 2) >= c.Dissimilarity(0, 1) {
		t.Errorf("items sharing #irene should be closer: d(0,2)=%v d(0,1)=%v", c.Dissimilarity(0, 2), c.Dissimilarity(0, 1))
	}
}

func TestOpenInvalidPath(t *testing.T) {
	if _, err := Open(""); !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("Open(\"\") error = %v", err)
	}
}
