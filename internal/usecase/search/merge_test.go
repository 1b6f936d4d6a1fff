package search

import (
	"testing"

	"github.com/trendhive/productsearch/internal/domain/product"
)

func match(id int64, score float64) product.Match {
	return product.Match{
		Product: product.Product{ID: id, Name: "product"},
		Score:   score,
		Scored:  score > 0,
	}
}

func matches(ids ...int64) []product.Match {
	out := make([]product.Match, 0, len(ids))
	for i, id := range ids {
		out = append(out, match(id, 1.0-float64(i)*0.01))
	}
	return out
}

func ids(ms []product.Match) []int64 {
	out := make([]int64, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Product.ID)
	}
	return out
}

func assertIDs(t *testing.T, got []product.Match, want ...int64) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, gotIDs)
		}
	}
}

func TestMergeHybrid_QuotaSplit(t *testing.T) {
	// size=10, 50% quota: 5 semantic slots, then keyword fills the rest.
	semantic := matches(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	keyword := matches(11, 12, 13, 14, 15, 16)

	merged := mergeHybrid(semantic, keyword, 10, 50)
	assertIDs(t, merged, 1, 2, 3, 4, 5, 11, 12, 13, 14, 15)
}

func TestMergeHybrid_QuotaFloors(t *testing.T) {
	// size=5, 50%: floor(2.5)=2 semantic slots.
	merged := mergeHybrid(matches(1, 2, 3), matches(4, 5, 6), 5, 50)
	assertIDs(t, merged, 1, 2, 4, 5, 6)
}

func TestMergeHybrid_DuplicatesDropped(t *testing.T) {
	semantic := matches(1, 2, 3, 4)
	keyword := matches(2, 5, 1, 6)

	merged := mergeHybrid(semantic, keyword, 10, 50)
	assertIDs(t, merged, 1, 2, 3, 4, 5, 6)

	seen := make(map[int64]bool)
	for _, id := range ids(merged) {
		if seen[id] {
			t.Fatalf("duplicate id %d in merged results", id)
		}
		seen[id] = true
	}
}

func TestMergeHybrid_ShortKeywordBackfilledBySemantic(t *testing.T) {
	semantic := matches(1, 2, 3, 4, 5, 6)
	keyword := matches(7)

	merged := mergeHybrid(semantic, keyword, 6, 50)
	assertIDs(t, merged, 1, 2, 3, 7, 4, 5)
}

func TestMergeHybrid_ShortSemantic(t *testing.T) {
	merged := mergeHybrid(matches(1), matches(2, 3), 10, 50)
	assertIDs(t, merged, 1, 2, 3)
}

func TestMergeHybrid_BothEmpty(t *testing.T) {
	merged := mergeHybrid(nil, nil, 10, 50)
	if len(merged) != 0 {
		t.Fatalf("expected no results, got %d", len(merged))
	}
}

func TestMergeHybrid_NeverExceedsSize(t *testing.T) {
	semantic := matches(1, 2, 3, 4, 5, 6, 7, 8)
	keyword := matches(9, 10, 11, 12)

	for size := 1; size <= 12; size++ {
		merged := mergeHybrid(semantic, keyword, size, 50)
		if len(merged) > size {
			t.Fatalf("size=%d: got %d results", size, len(merged))
		}
	}
}

func TestMergeHybrid_ZeroPercentIsKeywordFirst(t *testing.T) {
	merged := mergeHybrid(matches(1, 2), matches(3, 4), 4, 0)
	assertIDs(t, merged, 3, 4, 1, 2)
}

func TestMergeHybrid_HundredPercentIsSemanticFirst(t *testing.T) {
	merged := mergeHybrid(matches(1, 2), matches(3, 4), 4, 100)
	assertIDs(t, merged, 1, 2, 3, 4)
}

func TestMergeHybrid_Deterministic(t *testing.T) {
	semantic := matches(1, 2, 3, 4, 5)
	keyword := matches(4, 6, 2, 7)

	first := ids(mergeHybrid(semantic, keyword, 6, 50))
	for i := 0; i < 10; i++ {
		again := ids(mergeHybrid(semantic, keyword, 6, 50))
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("merge order changed between runs: %v vs %v", first, again)
			}
		}
	}
}
