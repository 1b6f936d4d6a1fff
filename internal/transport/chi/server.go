// Package chi exposes the product search HTTP API: query search, dataset
// indexing, and a readiness probe.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/trendhive/productsearch/internal/domain"
	"github.com/trendhive/productsearch/internal/domain/batch"
	"github.com/trendhive/productsearch/internal/domain/product"
	"github.com/trendhive/productsearch/internal/domain/query"
	"github.com/trendhive/productsearch/internal/logger"
	healthuc "github.com/trendhive/productsearch/internal/usecase/health"
)

// Searcher executes validated search queries.
type Searcher interface {
	Search(ctx context.Context, q *query.Query) ([]product.Match, error)
}

// Ingestor runs the dataset indexing pipeline.
type Ingestor interface {
	Run(ctx context.Context, records []json.RawMessage) (batch.Report, error)
}

// ReadyChecker probes service readiness.
type ReadyChecker interface {
	Check(ctx context.Context) (healthuc.Report, error)
}

// RecordSource loads the product records to index.
type RecordSource func() ([]json.RawMessage, error)

// Server handles the HTTP API.
type Server struct {
	search  Searcher
	ingest  Ingestor
	health  ReadyChecker
	records RecordSource
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, ingest Ingestor, health ReadyChecker, records RecordSource, logger *zap.Logger) *Server {
	return &Server{
		search:  search,
		ingest:  ingest,
		health:  health,
		records: records,
		logger:  logger,
	}
}

// Routes registers the API endpoints on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/search", s.handleSearch)
	r.Post("/index", s.handleIndex)
	r.Get("/is_ready", s.handleIsReady)
}

// searchItem is the wire shape of one search result.
type searchItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Currency string   `json:"currency"`
	Link     string   `json:"link"`
	Images   []string `json:"images"`
	Score    *float64 `json:"score,omitempty"`
}

// reserved query parameters; everything else is treated as a field filter.
var reservedParams = map[string]bool{
	"query":          true,
	"retrieval_type": true,
	"size":           true,
}

// handleSearch handles GET /search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	rt, err := query.ParseRetrievalType(params.Get("retrieval_type"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	size := query.DefaultSize
	if raw := params.Get("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil {
			writeValidationErrors(w, []string{"size: must be an integer"})
			return
		}
	}

	filters := make(map[string]string)
	for key := range params {
		if !reservedParams[key] {
			filters[key] = params.Get(key)
		}
	}

	q, err := query.New(params.Get("query"), rt, size, filters)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	matches, err := s.search.Search(r.Context(), &q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]searchItem, 0, len(matches))
	for _, m := range matches {
		item := searchItem{
			ID:       m.Product.UUID().String(),
			Name:     m.Product.Name,
			Price:    m.Product.CurrentPrice,
			Currency: m.Product.Currency,
			Link:     m.Product.Link,
			Images:   m.Product.Images,
		}
		if m.Scored {
			score := m.Score
			item.Score = &score
		}
		items = append(items, item)
	}

	writeJSON(w, http.StatusOK, items)
}

// handleIndex handles POST /index: load the configured dataset and index it.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	records, err := s.records()
	if err != nil {
		logger.FromContext(r.Context()).Error("failed to load dataset", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load dataset")
		return
	}

	report, err := s.ingest.Run(r.Context(), records)
	if err != nil {
		logger.FromContext(r.Context()).Error("ingestion failed",
			zap.Error(err),
			zap.Int("indexed", report.Indexed))
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// handleIsReady handles GET /is_ready.
func (s *Server) handleIsReady(w http.ResponseWriter, r *http.Request) {
	report, err := s.health.Check(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleDomainError maps sentinel errors to HTTP statuses.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs domain.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeValidationErrors(w, verrs.Messages())
	case errors.Is(err, domain.ErrValidation):
		writeValidationErrors(w, []string{err.Error()})
	case errors.Is(err, domain.ErrUnsupported):
		writeError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, domain.ErrEncoding):
		writeError(w, http.StatusBadGateway, "embedding provider error")
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "search store unavailable")
	case errors.Is(err, domain.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "service not ready")
	default:
		logger.FromContext(r.Context()).Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeValidationErrors(w http.ResponseWriter, messages []string) {
	writeJSON(w, http.StatusBadRequest, map[string][]string{"errors": messages})
}
