package product

// Match pairs a product with an optional similarity score.
// Ephemeral: built from store hits, returned to the caller, never persisted.
type Match struct {
	Product Product
	Score   float64
	// Scored is false for keyword hits, which carry no similarity score.
	Scored bool
}
