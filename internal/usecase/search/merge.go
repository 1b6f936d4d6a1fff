package search

import (
	"github.com/google/uuid"

	"github.com/trendhive/productsearch/internal/domain/product"
)

// mergeHybrid interleaves semantic and keyword matches under a semantic
// quota. The first floor(size*semanticPercent/100) slots go to the top
// semantic matches; keyword matches fill the remainder, then leftover
// semantic matches fill whatever is still free. Duplicates are dropped by
// product identity and positions are never re-sorted, so the same inputs
// always produce the same output.
func mergeHybrid(semantic, keyword []product.Match, size, semanticPercent int) []product.Match {
	quota := size * semanticPercent / 100
	if quota > len(semantic) {
		quota = len(semantic)
	}

	merged := make([]product.Match, 0, size)
	seen := make(map[uuid.UUID]struct{}, size)

	take := func(m product.Match) bool {
		if len(merged) >= size {
			return false
		}
		id := m.Product.UUID()
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
		merged = append(merged, m)
		return true
	}

	for _, m := range semantic[:quota] {
		if !take(m) {
			return merged
		}
	}
	for _, m := range keyword {
		if !take(m) {
			return merged
		}
	}
	for _, m := range semantic[quota:] {
		if !take(m) {
			return merged
		}
	}
	return merged
}
