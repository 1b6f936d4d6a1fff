// Package search implements the two read primitives retrieval depends on:
// nearest-neighbor lookup and keyword-filtered scan.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trendhive/productsearch/internal/db"
	"github.com/trendhive/productsearch/internal/domain"
	"github.com/trendhive/productsearch/internal/domain/product"
	"github.com/trendhive/productsearch/internal/domain/query"
)

// store is the consumer interface for search operations.
type store interface {
	SearchVector(ctx context.Context, q *db.VectorQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo is the read-side vector store gateway.
type Repo struct {
	store        store
	collection   string
	keywordField string
	timeout      time.Duration
	logger       *zap.Logger
}

// New creates a search repository.
func New(s store, collection, keywordField string, timeout time.Duration, logger *zap.Logger) *Repo {
	if keywordField == "" {
		keywordField = product.FieldName
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Repo{
		store:        s,
		collection:   collection,
		keywordField: keywordField,
		timeout:      timeout,
		logger:       logger,
	}
}

// ByVector runs a nearest-neighbor lookup. Matches come back ordered by
// decreasing similarity, at most topK of them.
func (r *Repo) ByVector(ctx context.Context, vector []float32, topK int, filters []query.Filter) ([]product.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.store.SearchVector(ctx, &db.VectorQuery{
		IndexName:    domain.IndexName(r.collection),
		Vector:       vector,
		K:            topK,
		Filters:      r.conditions(filters),
		ReturnFields: []string{domain.PointPayloadField},
	})
	if err != nil {
		return nil, fmt.Errorf("search %s by vector: %w", r.collection, storeErr(err))
	}

	return r.parseMatches(res, true), nil
}

// ByKeyword runs a text-match scan on the keyword-indexed field, ANDed with
// the caller's filters. Matches carry no similarity score; their order is
// store-defined.
func (r *Repo) ByKeyword(ctx context.Context, text string, topK int, filters []query.Filter) ([]product.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    domain.IndexName(r.collection),
		Field:        domain.TextAttribute(r.keywordField),
		Text:         text,
		Limit:        topK,
		Filters:      r.conditions(filters),
		ReturnFields: []string{domain.PointPayloadField},
	})
	if err != nil {
		return nil, fmt.Errorf("search %s by keyword: %w", r.collection, storeErr(err))
	}

	return r.parseMatches(res, false), nil
}

// parseMatches reconstructs products from point payloads. A hit whose
// payload fails reconstruction is dropped whole, never partially returned.
func (r *Repo) parseMatches(res *db.SearchResult, scored bool) []product.Match {
	if res == nil || len(res.Entries) == 0 {
		return nil
	}

	matches := make([]product.Match, 0, len(res.Entries))
	for _, entry := range res.Entries {
		p, err := product.FromPayload([]byte(entry.Fields[domain.PointPayloadField]))
		if err != nil {
			r.logger.Warn("dropping hit with unreadable payload",
				zap.String("key", entry.Key), zap.Error(err))
			continue
		}
		matches = append(matches, product.Match{
			Product: p,
			Score:   entry.Score,
			Scored:  scored,
		})
	}
	return matches
}

// conditions maps filters onto store pre-filter conditions. Filters on
// fields without a store index cannot be applied and are dropped with a
// warning.
func (r *Repo) conditions(filters []query.Filter) []db.Condition {
	if len(filters) == 0 {
		return nil
	}
	conds := make([]db.Condition, 0, len(filters))
	for _, f := range filters {
		if !product.Indexed(f.Field) {
			r.logger.Warn("dropping filter on unindexed field",
				zap.String("field", f.Field))
			continue
		}
		conds = append(conds, db.Condition{
			Field:   f.Field,
			Value:   f.Value,
			Numeric: f.Numeric,
			Number:  f.Number,
		})
	}
	return conds
}

func storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return err
}
