// Package openai adapts an OpenAI-compatible embeddings endpoint serving a
// multimodal (CLIP-style) model. Text and image inputs share one vector
// space, which is what lets a text query rank image-embedded products.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/trendhive/productsearch/internal/domain"
	"github.com/trendhive/productsearch/internal/metrics"
)

// Encoder converts text and image URLs into fixed-length embeddings.
type Encoder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Logger     *zap.Logger
}

// NewEncoder creates an encoder against an OpenAI-compatible endpoint.
func NewEncoder(cfg *Config) *Encoder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Encoder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		logger:     cfg.Logger,
	}
}

// Dimensions returns the provider's output vector length.
func (e *Encoder) Dimensions() int { return e.dimensions }

// EncodeText embeds one query text.
func (e *Encoder) EncodeText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embed(ctx, "text", []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EncodeImages embeds product images by URL and mean-pools them into a
// single representative vector, matching the cosine ranking downstream.
func (e *Encoder) EncodeImages(ctx context.Context, urls []string) ([]float32, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one image is required: %w", domain.ErrEncoding)
	}

	vectors, err := e.embed(ctx, "image", urls)
	if err != nil {
		return nil, err
	}
	return meanPool(vectors), nil
}

func (e *Encoder) embed(ctx context.Context, inputKind string, inputs []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          inputs,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), inputKind, "error").Inc()
		return nil, parseAPIError(err)
	}
	if len(resp.Data) != len(inputs) {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), inputKind, "error").Inc()
		return nil, fmt.Errorf("expected %d embeddings, got %d: %w",
			len(inputs), len(resp.Data), domain.ErrEncoding)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), inputKind, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(string(e.model), inputKind).Observe(duration.Seconds())

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// meanPool averages per-image vectors element-wise.
func meanPool(vectors [][]float32) []float32 {
	if len(vectors) == 1 {
		return vectors[0]
	}

	out := make([]float32, len(vectors[0]))
	for _, v := range vectors {
		for i := range out {
			out[i] += v[i]
		}
	}
	n := float32(len(vectors))
	for i := range out {
		out[i] /= n
	}
	return out
}

// parseAPIError extracts a readable message from the provider response.
// Timeouts surface as retryable unavailability; everything else wraps the
// encoding sentinel.
func parseAPIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: embedding request timed out: %w", domain.ErrStoreUnavailable, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("embedding API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, domain.ErrEncoding)
		}
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), domain.ErrEncoding)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, domain.ErrEncoding)
	}

	return fmt.Errorf("embedding request failed: %w: %w", domain.ErrEncoding, err)
}

// extractDetail pulls the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
