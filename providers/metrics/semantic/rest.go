package semantic

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/queryopt/qseval/internal/utils"
)

// DefaultEmbeddingsURL is the endpoint used when none is configured.
const DefaultEmbeddingsURL = "https://api.openai.com/v1/embeddings"

// DefaultEmbeddingsTimeout bounds one embeddings request.
const DefaultEmbeddingsTimeout = 60 * time.Second

// RESTEmbedder calls an OpenAI-style embeddings endpoint.
type RESTEmbedder struct {
	url    string
	model  string
	apiKey string
	client *http.Client
}

// RESTOption configures a RESTEmbedder.
type RESTOption func(*RESTEmbedder)

// WithURL overrides the embeddings endpoint, e.g. for a local server.
func WithURL(url string) RESTOption {
	return func(e *RESTEmbedder) {
		if url != "" {
			e.url = url
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) RESTOption {
	return func(e *RESTEmbedder) {
		if client != nil {
			e.client = client
		}
	}
}

// NewRESTEmbedder creates an embedder for the given model and API key.
func NewRESTEmbedder(model, apiKey string, opts ...RESTOption) *RESTEmbedder {
	e := &RESTEmbedder{
		url:    DefaultEmbeddingsURL,
		model:  model,
		apiKey: apiKey,
		client: &http.Client{Timeout: DefaultEmbeddingsTimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed requests one embedding per text. The endpoint's empty-input
// restriction is worked around by substituting a single space, which keeps
// padded empty predictions embeddable.
func (e *RESTEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	input := make([]string, len(texts))
	for i, text := range texts {
		if text == "" {
			text = " "
		}
		input[i] = text
	}

	response, err := utils.DoPostSync[embeddingsResponse](ctx, e.client, e.url, e.apiKey, embeddingsRequest{
		Model: e.model,
		Input: input,
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	if len(response.Data) != len(texts) {
		return nil, fmt.Errorf("endpoint returned %d embeddings for %d inputs", len(response.Data), len(texts))
	}

	vectors := make([][]float64, len(texts))
	for _, item := range response.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("endpoint returned out-of-range index %d", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}
