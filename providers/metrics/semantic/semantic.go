package semantic

import (
	"context"
	"fmt"
	"math"
)

// Embedder turns a batch of texts into one vector per text. All returned
// vectors must have the same dimensionality.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Scorer computes per-pair cosine similarity over embeddings.
type Scorer struct {
	embedder Embedder
	name     string
}

// New creates a similarity scorer around an embedder.
func New(embedder Embedder) *Scorer {
	return &Scorer{embedder: embedder, name: "BERTScore"}
}

// Name identifies the scorer in report output.
func (s *Scorer) Name() string {
	return s.name
}

// Score returns the cosine similarity of every prediction/reference pair.
// Both sides are embedded in a single call so the vectors share one space
// regardless of the embedder implementation. The two slices must be the
// same length.
func (s *Scorer) Score(ctx context.Context, predictions, references []string) ([]float64, error) {
	if len(predictions) != len(references) {
		return nil, fmt.Errorf("got %d predictions for %d references", len(predictions), len(references))
	}
	if len(predictions) == 0 {
		return nil, nil
	}

	texts := make([]string, 0, 2*len(predictions))
	texts = append(texts, predictions...)
	texts = append(texts, references...)
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}

	scores := make([]float64, len(predictions))
	for i := range scores {
		scores[i] = cosine(vectors[i], vectors[i+len(predictions)])
	}
	return scores, nil
}

// cosine returns the cosine similarity of two vectors. Zero vectors (for
// example an empty padded prediction) score 0.
func cosine(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
