// Package db defines the vector store wire contract: index lifecycle,
// pipelined point writes, KNN search, and filtered text scan.
package db

import (
	"context"
	"time"
)

// Store is the remote vector store facade. Implementations must be safe for
// concurrent use by multiple readers.
type Store interface {
	Pinger
	PointWriter
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PointItem is one point hash: key plus flat field values.
type PointItem struct {
	Key    string
	Fields map[string]string
}

// PointWriter writes point batches.
type PointWriter interface {
	// UpsertPoints writes all items in a single pipelined round-trip.
	UpsertPoints(ctx context.Context, items []PointItem) error
}

// IndexManager owns the FT index lifecycle.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	// AlterIndexAddField adds one field to an existing index schema.
	// Returns ErrFieldExists when the field is already provisioned.
	AlterIndexAddField(ctx context.Context, index string, field IndexField) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher runs read queries against an FT index.
type Searcher interface {
	// SearchVector runs a KNN query; hits come back ordered by decreasing
	// similarity, at most K of them.
	SearchVector(ctx context.Context, q *VectorQuery) (*SearchResult, error)
	// SearchText runs a filtered text-match scan; hits carry no similarity
	// score and their order is store-defined.
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)
}
