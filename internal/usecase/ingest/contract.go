package ingest

import (
	"context"

	"github.com/trendhive/productsearch/internal/domain/batch"
	"github.com/trendhive/productsearch/internal/domain/product"
)

// Indexer writes products to the search index with per-item outcomes.
type Indexer interface {
	UpsertBatch(ctx context.Context, products []product.Product, batchSize int) ([]batch.Result, error)
}
