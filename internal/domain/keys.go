package domain

import "fmt"

// KeyPrefix namespaces every key this service writes.
const KeyPrefix = "productsearch:"

// Reserved point hash fields. Everything else in a point hash is a
// store-indexed product field.
const (
	// PointVectorField holds the binary float32 embedding.
	PointVectorField = "__vector"
	// PointPayloadField holds the product JSON for reconstruction.
	PointPayloadField = "__payload"
)

// IndexName returns the FT index name for a collection.
func IndexName(collection string) string {
	return fmt.Sprintf("%s%s:idx", KeyPrefix, collection)
}

// PointPrefix returns the key prefix shared by a collection's points.
func PointPrefix(collection string) string {
	return fmt.Sprintf("%s%s:", KeyPrefix, collection)
}

// PointKey returns the storage key for one point.
func PointKey(collection, id string) string {
	return PointPrefix(collection) + id
}

// TextAttribute returns the index attribute name of the keyword text field
// provisioned on top of a payload field.
func TextAttribute(field string) string {
	return field + "_text"
}
