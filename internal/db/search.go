package db

// Condition is one equality pre-filter on an indexed field.
type Condition struct {
	Field   string
	Value   string
	Numeric bool
	Number  float64
}

// VectorQuery is the input for KNN similarity search.
type VectorQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	Filters      []Condition
	ReturnFields []string
}

// TextQuery is the input for a filtered text-match scan.
type TextQuery struct {
	IndexName    string
	Field        string
	Text         string
	Limit        int
	Filters      []Condition
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single point hit.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
