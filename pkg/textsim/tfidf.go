// Package textsim provides text dissimilarity oracles for the narrative engine.
//
// [TFIDF] vectorises the whole corpus once (term counts weighted by inverse
// document frequency) and reports the cosine distance between two items'
// vectors. It satisfies [item.Dissimilarity].
//
// [item.Dissimilarity]: github.com/matzehuels/narrative/pkg/item
package textsim

import (
	"fmt"
	"math"
	"sync"

	"github.com/james-bowman/nlp"
	"github.com/james-bowman/nlp/measures/pairwise"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/narrative/pkg/item"
)

// DefaultStopWords is a small English stop list applied by the CLI.
var DefaultStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "from",
	"has", "have", "in", "is", "it", "its", "of", "on", "or", "rt", "that",
	"the", "this", "to", "via", "was", "were", "will", "with",
}

// TFIDF is a cosine-distance oracle over TF-IDF document vectors.
// It is safe for concurrent use.
type TFIDF struct {
	vectors []*mat.VecDense // nil for documents without any known term

	mu   sync.Mutex
	memo map[[2]item.ID]float64
}

// NewTFIDF fits a TF-IDF model over texts. Document i of the model is the
// item with ID i, so texts must be in corpus order.
func NewTFIDF(texts []string, stopWords ...string) (*TFIDF, error) {
	t := &TFIDF{
		vectors: make([]*mat.VecDense, len(texts)),
		memo:    make(map[[2]item.ID]float64),
	}
	if len(texts) == 0 {
		return t, nil
	}

	pipeline := nlp.NewPipeline(nlp.NewCountVectoriser(stopWords...), nlp.NewTfidfTransformer())
	m, err := pipeline.FitTransform(texts...)
	if err != nil {
		return nil, fmt.Errorf("fit tf-idf: %w", err)
	}

	terms, docs := m.Dims()
	if terms == 0 {
		return t, nil
	}
	for j := 0; j < docs && j < len(texts); j++ {
		v := mat.NewVecDense(terms, mat.Col(nil, j, m))
		if mat.Norm(v, 2) == 0 {
			continue
		}
		t.vectors[j] = v
	}
	return t, nil
}

// Dissimilarity returns 1 - cosine similarity of the two documents, clamped
// to [0, 1]. Unknown ids and empty documents are fully dissimilar.
func (t *TFIDF) Dissimilarity(i, j item.ID) float64 {
	if i == j {
		return 0
	}
	if i > j {
		i, j = j, i
	}
	key := [2]item.ID{i, j}

	t.mu.Lock()
	defer t.mu.Unlock()
	if d, ok := t.memo[key]; ok {
		return d
	}
	d := t.compute(i, j)
	t.memo[key] = d
	return d
}

func (t *TFIDF) compute(i, j item.ID) float64 {
	if i < 0 || int(j) >= len(t.vectors) {
		return 1
	}
	a, b := t.vectors[i], t.vectors[j]
	if a == nil || b == nil {
		return 1
	}
	sim := pairwise.CosineSimilarity(a, b)
	if math.IsNaN(sim) {
		return 1
	}
	return clamp01(1 - sim)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

var _ item.Dissimilarity = (*TFIDF)(nil)
