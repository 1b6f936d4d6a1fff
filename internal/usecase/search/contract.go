package search

import (
	"context"

	"github.com/trendhive/productsearch/internal/domain/product"
	"github.com/trendhive/productsearch/internal/domain/query"
)

// Retriever defines the storage contract for retrieval operations.
type Retriever interface {
	ByVector(ctx context.Context, vector []float32, topK int, filters []query.Filter) ([]product.Match, error)
	ByKeyword(ctx context.Context, text string, limit int, filters []query.Filter) ([]product.Match, error)
}

// Encoder vectorizes query text into an embedding.
type Encoder interface {
	EncodeText(ctx context.Context, text string) ([]float32, error)
}
