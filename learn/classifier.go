package learn

import (
	"context"
	"math"
	"sync"
)

// Embedder produces a vector representation of a text. Implementations are
// typically clients of an external embedding service; tests use a
// deterministic in-process embedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CosineSimilarity computes cosine similarity between two vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Classifier scores a heading against a section's keyword corpus.
type Classifier interface {
	Score(ctx context.Context, heading, corpus string) (float64, error)
}

// EmbeddingClassifier scores headings by embedding cosine similarity.
// Corpus vectors are cached, since section corpora rarely change within a
// run while headings are always new.
type EmbeddingClassifier struct {
	embedder Embedder

	mu    sync.Mutex
	cache map[string][]float32
}

// NewEmbeddingClassifier creates a classifier over the given embedder.
func NewEmbeddingClassifier(embedder Embedder) *EmbeddingClassifier {
	return &EmbeddingClassifier{
		embedder: embedder,
		cache:    make(map[string][]float32),
	}
}

// Score returns the cosine similarity between the heading and the corpus.
func (c *EmbeddingClassifier) Score(ctx context.Context, heading, corpus string) (float64, error) {
	hv, err := c.embedder.Embed(ctx, heading)
	if err != nil {
		return 0, err
	}
	cv, err := c.corpusVector(ctx, corpus)
	if err != nil {
		return 0, err
	}
	return CosineSimilarity(hv, cv), nil
}

func (c *EmbeddingClassifier) corpusVector(ctx context.Context, corpus string) ([]float32, error) {
	c.mu.Lock()
	if v, ok := c.cache[corpus]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := c.embedder.Embed(ctx, corpus)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[corpus] = v
	c.mu.Unlock()
	return v, nil
}
