package catalog

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/trendhive/productsearch/internal/db"
	"github.com/trendhive/productsearch/internal/domain/product"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	upsertPointsFn       func(ctx context.Context, items []db.PointItem) error
	createIndexFn        func(ctx context.Context, def *db.IndexDefinition) error
	alterIndexAddFieldFn func(ctx context.Context, index string, field db.IndexField) error
	indexExistsFn        func(ctx context.Context, name string) (bool, error)

	upsertCalls [][]db.PointItem
}

func (m *mockStore) UpsertPoints(ctx context.Context, items []db.PointItem) error {
	m.upsertCalls = append(m.upsertCalls, items)
	if m.upsertPointsFn != nil {
		return m.upsertPointsFn(ctx, items)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) AlterIndexAddField(ctx context.Context, index string, field db.IndexField) error {
	if m.alterIndexAddFieldFn != nil {
		return m.alterIndexAddFieldFn(ctx, index, field)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

// mockEncoder implements ImageEncoder for tests.
type mockEncoder struct {
	encodeFn func(ctx context.Context, urls []string) ([]float32, error)
	dim      int
}

func (m *mockEncoder) EncodeImages(ctx context.Context, urls []string) ([]float32, error) {
	if m.encodeFn != nil {
		return m.encodeFn(ctx, urls)
	}
	return []float32{0.1, 0.2, 0.3, 0.4}, nil
}

func (m *mockEncoder) Dimensions() int {
	if m.dim > 0 {
		return m.dim
	}
	return 4
}

func newTestRepo(t *testing.T) (*Repo, *mockStore, *mockEncoder) {
	t.Helper()
	ms := &mockStore{}
	me := &mockEncoder{}
	repo := New(ms, me, Config{
		Collection:    "products",
		EncodeTimeout: time.Second,
		WriteTimeout:  time.Second,
	}, zap.NewNop())
	return repo, ms, me
}

func testProduct(id int64) product.Product {
	return product.Product{
		ID:           id,
		Name:         "linen shirt",
		CurrentPrice: 39.5,
		Currency:     "EUR",
		Code:         "SKU-1",
		Link:         "https://shop.example.com/p/1",
		Images:       []string{"https://cdn.example.com/1.jpg"},
	}
}
