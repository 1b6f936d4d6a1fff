// Package query defines the validated search request: query text, retrieval
// strategy, result count, and equality filters over product fields.
package query

import (
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/trendhive/productsearch/internal/domain"
	"github.com/trendhive/productsearch/internal/domain/product"
)

// Query parameter limits.
const (
	MaxQueryLength = 255
	DefaultSize    = 5
	MinSize        = 1
	MaxSize        = 255
)

// RetrievalType is the search strategy.
type RetrievalType string

// Retrieval strategies.
const (
	Hybrid   RetrievalType = "hybrid"
	Semantic RetrievalType = "semantic"
	Keyword  RetrievalType = "keyword"
)

// ParseRetrievalType resolves a raw retrieval_type parameter. An empty value
// defaults to hybrid; anything outside the closed set is an unsupported
// operation, distinct from a validation failure.
func ParseRetrievalType(s string) (RetrievalType, error) {
	switch RetrievalType(s) {
	case "":
		return Hybrid, nil
	case Hybrid, Semantic, Keyword:
		return RetrievalType(s), nil
	default:
		return "", fmt.Errorf("retrieval type %q: %w", s, domain.ErrUnsupported)
	}
}

// Filter is one equality predicate on a product field. Numeric
// fields carry the parsed value alongside the raw string.
type Filter struct {
	Field   string
	Value   string
	Numeric bool
	Number  float64
}

// Query is a validated search request.
type Query struct {
	text          string
	retrievalType RetrievalType
	size          int
	filters       []Filter
}

// New validates and normalizes raw request parameters into a Query.
// Filter keys must name product fields; unknown keys fail closed.
func New(text string, rt RetrievalType, size int, rawFilters map[string]string) (Query, error) {
	var errs domain.ValidationErrors

	n := utf8.RuneCountInString(text)
	if n < 1 || n > MaxQueryLength {
		errs = append(errs, domain.NewValidationError("query",
			"must be 1-%d characters", MaxQueryLength))
	}

	if size < MinSize || size > MaxSize {
		errs = append(errs, domain.NewValidationError("size",
			"must be between %d and %d", MinSize, MaxSize))
	}

	filters, ferrs := buildFilters(rawFilters)
	errs = append(errs, ferrs...)

	if len(errs) > 0 {
		return Query{}, errs
	}

	return Query{text: text, retrievalType: rt, size: size, filters: filters}, nil
}

// buildFilters validates filter keys against the product field registry and
// returns predicates in deterministic (sorted) order.
func buildFilters(raw map[string]string) ([]Filter, domain.ValidationErrors) {
	if len(raw) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs domain.ValidationErrors
	filters := make([]Filter, 0, len(keys))

	for _, key := range keys {
		kind, known := product.FieldKind(key)
		if !known {
			errs = append(errs, domain.NewValidationError("filters",
				"filter %s is not valid", key))
			continue
		}

		f := Filter{Field: key, Value: raw[key]}
		if kind == product.KindNumeric {
			num, err := strconv.ParseFloat(raw[key], 64)
			if err != nil {
				errs = append(errs, domain.NewValidationError("filters",
					"field %s requires a numeric value, got %q", key, raw[key]))
				continue
			}
			f.Numeric = true
			f.Number = num
		}
		filters = append(filters, f)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return filters, nil
}

// Text returns the search text.
func (q *Query) Text() string { return q.text }

// RetrievalType returns the dispatch strategy.
func (q *Query) RetrievalType() RetrievalType { return q.retrievalType }

// Size returns the requested result count.
func (q *Query) Size() int { return q.size }

// Filters returns the equality predicates in deterministic order.
func (q *Query) Filters() []Filter { return q.filters }
