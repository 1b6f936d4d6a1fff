package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/trendhive/productsearch/internal/domain"
	"github.com/trendhive/productsearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

// embeddingResponse mirrors the OpenAI-compatible API embedding response.
type embeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingItem `json:"data"`
	Model  string          `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type embeddingItem struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

func fakeProvider(t *testing.T, vectors ...[]float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		resp := embeddingResponse{Object: "list", Model: "test-model"}
		for i, vec := range vectors {
			resp.Data = append(resp.Data, embeddingItem{
				Object: "embedding", Embedding: vec, Index: i,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestEncoder(baseURL string) *Encoder {
	return NewEncoder(&Config{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		Model:      "test-model",
		Dimensions: 4,
		Logger:     zap.NewNop(),
	})
}

func TestEncodeText(t *testing.T) {
	want := []float32{0.1, 0.2, 0.3, 0.4}
	server := fakeProvider(t, want)
	defer server.Close()

	enc := newTestEncoder(server.URL)

	vec, err := enc.EncodeText(context.Background(), "red dress")
	if err != nil {
		t.Fatalf("EncodeText failed: %v", err)
	}
	if len(vec) != len(want) {
		t.Fatalf("expected %d dimensions, got %d", len(want), len(vec))
	}
	for i, v := range vec {
		if v != want[i] {
			t.Errorf("vec[%d] = %f, expected %f", i, v, want[i])
		}
	}
}

func TestEncodeImages_MeanPools(t *testing.T) {
	server := fakeProvider(t, []float32{0, 1, 2, 3}, []float32{2, 3, 4, 5})
	defer server.Close()

	enc := newTestEncoder(server.URL)

	vec, err := enc.EncodeImages(context.Background(), []string{
		"https://cdn.example.com/1.jpg",
		"https://cdn.example.com/2.jpg",
	})
	if err != nil {
		t.Fatalf("EncodeImages failed: %v", err)
	}

	want := []float32{1, 2, 3, 4}
	for i, v := range vec {
		if v != want[i] {
			t.Errorf("vec[%d] = %f, expected %f", i, v, want[i])
		}
	}
}

func TestEncodeImages_SingleImageNotAveraged(t *testing.T) {
	server := fakeProvider(t, []float32{0.5, 0.6, 0.7, 0.8})
	defer server.Close()

	enc := newTestEncoder(server.URL)

	vec, err := enc.EncodeImages(context.Background(), []string{"https://cdn.example.com/1.jpg"})
	if err != nil {
		t.Fatalf("EncodeImages failed: %v", err)
	}
	if vec[0] != 0.5 || vec[3] != 0.8 {
		t.Errorf("unexpected vector %v", vec)
	}
}

func TestEncodeImages_NoURLs(t *testing.T) {
	enc := newTestEncoder("http://unused")

	_, err := enc.EncodeImages(context.Background(), nil)
	if !errors.Is(err, domain.ErrEncoding) {
		t.Fatalf("expected encoding error, got %v", err)
	}
}

func TestEncodeText_CountMismatch(t *testing.T) {
	server := fakeProvider(t) // zero embeddings back
	defer server.Close()

	enc := newTestEncoder(server.URL)

	_, err := enc.EncodeText(context.Background(), "red dress")
	if !errors.Is(err, domain.ErrEncoding) {
		t.Fatalf("expected encoding error, got %v", err)
	}
}

func TestEncodeImages_ProviderDetailSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{
			"detail": "image could not be downloaded",
		})
	}))
	defer server.Close()

	enc := newTestEncoder(server.URL)

	_, err := enc.EncodeImages(context.Background(), []string{"https://cdn.example.com/gone.jpg"})
	if !errors.Is(err, domain.ErrEncoding) {
		t.Fatalf("expected encoding error, got %v", err)
	}
	if !strings.Contains(err.Error(), "image could not be downloaded") {
		t.Errorf("expected provider detail in error, got %v", err)
	}
}

func TestEncodeText_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer server.Close()

	enc := newTestEncoder(server.URL)

	_, err := enc.EncodeText(context.Background(), "red dress")
	if !errors.Is(err, domain.ErrEncoding) {
		t.Fatalf("expected encoding error for 429, got %v", err)
	}
}

func TestParseAPIError_Timeout(t *testing.T) {
	err := parseAPIError(context.DeadlineExceeded)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected retryable unavailability, got %v", err)
	}
}
