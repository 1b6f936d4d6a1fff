// Package search runs product retrieval across semantic, keyword, and
// hybrid strategies.
package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trendhive/productsearch/internal/domain"
	"github.com/trendhive/productsearch/internal/domain/product"
	"github.com/trendhive/productsearch/internal/domain/query"
	"github.com/trendhive/productsearch/internal/logger"
	"github.com/trendhive/productsearch/internal/metrics"
)

const defaultEncodeTimeout = 30 * time.Second

// Service handles product search across semantic, keyword, and hybrid
// retrieval types.
type Service struct {
	retriever       Retriever
	encoder         Encoder
	semanticPercent int
	encodeTimeout   time.Duration
}

// Option configures the service.
type Option func(*Service)

// WithEncodeTimeout bounds the query embedding call.
func WithEncodeTimeout(d time.Duration) Option {
	return func(s *Service) { s.encodeTimeout = d }
}

// New creates a search service. semanticPercent sets the share of hybrid
// results reserved for semantic matches, in whole percent.
func New(retriever Retriever, encoder Encoder, semanticPercent int, opts ...Option) *Service {
	s := &Service{
		retriever:       retriever,
		encoder:         encoder,
		semanticPercent: semanticPercent,
		encodeTimeout:   defaultEncodeTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search executes a validated query and returns at most q.Size() matches.
func (s *Service) Search(ctx context.Context, q *query.Query) ([]product.Match, error) {
	var (
		matches []product.Match
		err     error
	)

	switch q.RetrievalType() {
	case query.Semantic:
		matches, err = s.searchSemantic(ctx, q)
	case query.Keyword:
		matches, err = s.searchKeyword(ctx, q)
	case query.Hybrid:
		matches, err = s.searchHybrid(ctx, q)
	default:
		err = fmt.Errorf("retrieval type %q: %w", q.RetrievalType(), domain.ErrUnsupported)
	}

	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(q.RetrievalType()), "error").Inc()
		return nil, err
	}

	metrics.SearchRequestsTotal.WithLabelValues(string(q.RetrievalType()), "success").Inc()
	metrics.SearchResultsReturned.WithLabelValues(string(q.RetrievalType())).Observe(float64(len(matches)))
	return matches, nil
}

// searchSemantic embeds the query text and ranks by cosine similarity.
func (s *Service) searchSemantic(ctx context.Context, q *query.Query) ([]product.Match, error) {
	vector, err := s.encodeQuery(ctx, q.Text())
	if err != nil {
		return nil, err
	}

	matches, err := s.retriever.ByVector(ctx, vector, q.Size(), q.Filters())
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return matches, nil
}

// searchKeyword runs a full-text match on the indexed name field. Result
// order is whatever the store returns; no scores are attached.
func (s *Service) searchKeyword(ctx context.Context, q *query.Query) ([]product.Match, error) {
	matches, err := s.retriever.ByKeyword(ctx, q.Text(), q.Size(), q.Filters())
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	return matches, nil
}

// searchHybrid runs both strategies with the same top-k and merges them
// under the semantic quota.
func (s *Service) searchHybrid(ctx context.Context, q *query.Query) ([]product.Match, error) {
	semantic, err := s.searchSemantic(ctx, q)
	if err != nil {
		return nil, err
	}

	keyword, err := s.searchKeyword(ctx, q)
	if err != nil {
		return nil, err
	}

	merged := mergeHybrid(semantic, keyword, q.Size(), s.semanticPercent)

	logger.FromContext(ctx).Debug("hybrid merge",
		zap.Int("semantic", len(semantic)),
		zap.Int("keyword", len(keyword)),
		zap.Int("merged", len(merged)))

	return merged, nil
}

func (s *Service) encodeQuery(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.encodeTimeout)
	defer cancel()

	vector, err := s.encoder.EncodeText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	return vector, nil
}
