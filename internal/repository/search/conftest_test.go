package search

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/trendhive/productsearch/internal/db"
	"github.com/trendhive/productsearch/internal/domain/product"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchVectorFn func(ctx context.Context, q *db.VectorQuery) (*db.SearchResult, error)
	searchTextFn   func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

func (m *mockStore) SearchVector(ctx context.Context, q *db.VectorQuery) (*db.SearchResult, error) {
	if m.searchVectorFn != nil {
		return m.searchVectorFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchTextFn != nil {
		return m.searchTextFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "products", "", time.Second, zap.NewNop())
	return repo, ms
}

func payloadEntry(t *testing.T, id int64, score float64) db.SearchEntry {
	t.Helper()
	p := product.Product{
		ID:           id,
		Name:         "linen shirt",
		CurrentPrice: 39.5,
		Currency:     "EUR",
		Code:         "SKU-1",
		Link:         "https://shop.example.com/p/1",
		Images:       []string{"https://cdn.example.com/1.jpg"},
	}
	payload, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return db.SearchEntry{
		Key:    "productsearch:products:" + p.UUID().String(),
		Score:  score,
		Fields: map[string]string{"__payload": string(payload)},
	}
}
