// Package source loads item records from where they are kept.
//
// A [Source] yields raw records; [LoadCorpus] turns them into a corpus with
// a TF-IDF dissimilarity oracle, ready for the engine. Implementations:
//
//   - [File]: a JSON or JSON Lines dump (see package io)
//   - remote.Source: the same dump served over HTTP
//   - sqlite.Store: an embedded SQLite database
//   - mongo.Source: a MongoDB collection
//
// Record order matters: the n-th record becomes item n, so sources return
// records in a stable order.
package source

import (
	"context"

	errs "github.com/matzehuels/narrative/pkg/errors"
	nio "github.com/matzehuels/narrative/pkg/io"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/textsim"
)

// Source yields item records.
type Source interface {
	Load(ctx context.Context) ([]item.Record, error)
}

// File reads records from a JSON file.
type File struct {
	Path string
}

// Load reads the file.
func (f File) Load(ctx context.Context) ([]item.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nio.ImportRecords(f.Path)
}

// LoadCorpus loads src and builds a corpus whose dissimilarity oracle is
// the TF-IDF cosine distance between item texts. stopWords are ignored
// when vectorising.
func LoadCorpus(ctx context.Context, src Source, stopWords ...string) (*item.Corpus, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	items, err := item.FromRecords(records)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "source has no items")
	}
	oracle, err := textsim.NewTFIDF(item.Texts(items), stopWords...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "vectorise item texts")
	}
	return item.NewCorpus(items, oracle), nil
}
