package semantic

import (
	"context"
	"strings"
	"unicode"
)

// TFEmbedder embeds texts as term-frequency vectors over the vocabulary of
// the batch it is given. It needs no network or model and is the default
// embedder for offline runs; scores are lexical cosine similarity rather
// than learned semantics.
type TFEmbedder struct{}

// NewTFEmbedder creates a term-frequency embedder.
func NewTFEmbedder() *TFEmbedder {
	return &TFEmbedder{}
}

// Embed builds one vector per text over the shared vocabulary of all texts
// in the call. It never fails.
func (e *TFEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	vocabulary := make(map[string]int)
	tokenized := make([][]string, len(texts))
	for i, text := range texts {
		tokens := tfTokenize(text)
		tokenized[i] = tokens
		for _, token := range tokens {
			if _, ok := vocabulary[token]; !ok {
				vocabulary[token] = len(vocabulary)
			}
		}
	}

	vectors := make([][]float64, len(texts))
	for i, tokens := range tokenized {
		vector := make([]float64, len(vocabulary))
		for _, token := range tokens {
			vector[vocabulary[token]]++
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func tfTokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
