package product

// Kind classifies how a product field is stored and filtered.
type Kind int

const (
	// KindTag is an exact-match string field (TAG in the store index).
	KindTag Kind = iota
	// KindNumeric is a numeric field (NUMERIC in the store index).
	KindNumeric
	// KindList is a list of exact-match values, stored comma-joined.
	KindList
	// KindText is long free text, carried in the payload but not filterable.
	KindText
	// KindTime is a timestamp, carried in the payload but not filterable.
	KindTime
)

// Field names as they appear in raw records, payloads, and filters.
const (
	FieldID           = "id"
	FieldName         = "name"
	FieldDescription  = "description"
	FieldMaterial     = "material"
	FieldCurrentPrice = "current_price"
	FieldOffPercent   = "off_percent"
	FieldCurrency     = "currency"
	FieldImages       = "images"
	FieldBrandID      = "brand_id"
	FieldBrandName    = "brand_name"
	FieldCode         = "code"
	FieldCategoryID   = "category_id"
	FieldCategoryName = "category_name"
	FieldGenderID     = "gender_id"
	FieldGenderName   = "gender_name"
	FieldShopID       = "shop_id"
	FieldShopName     = "shop_name"
	FieldLink         = "link"
	FieldStatus       = "status"
	FieldColors       = "colors"
	FieldSizes        = "sizes"
	FieldRegion       = "region"
	FieldCreatedAt    = "created_at"
	FieldUpdatedAt    = "updated_at"
)

// fields is the closed registry of product fields. Filter validation, the
// store index schema, and hash serialization are all driven by it.
var fields = map[string]Kind{
	FieldID:           KindNumeric,
	FieldName:         KindTag,
	FieldDescription:  KindText,
	FieldMaterial:     KindTag,
	FieldCurrentPrice: KindNumeric,
	FieldOffPercent:   KindNumeric,
	FieldCurrency:     KindTag,
	FieldImages:       KindList,
	FieldBrandID:      KindNumeric,
	FieldBrandName:    KindTag,
	FieldCode:         KindTag,
	FieldCategoryID:   KindNumeric,
	FieldCategoryName: KindTag,
	FieldGenderID:     KindNumeric,
	FieldGenderName:   KindTag,
	FieldShopID:       KindNumeric,
	FieldShopName:     KindTag,
	FieldLink:         KindTag,
	FieldStatus:       KindTag,
	FieldColors:       KindList,
	FieldSizes:        KindList,
	FieldRegion:       KindTag,
	FieldCreatedAt:    KindTime,
	FieldUpdatedAt:    KindTime,
}

// Long text, image URLs, and timestamps carry no store index. Filters on
// these fields are valid but the store cannot pre-filter on them.
var unindexed = map[string]bool{
	FieldDescription: true,
	FieldImages:      true,
	FieldCreatedAt:   true,
	FieldUpdatedAt:   true,
}

// FieldKind returns the kind of a product field and whether the name is part
// of the registry. Any registry field is a valid filter key.
func FieldKind(name string) (Kind, bool) {
	k, ok := fields[name]
	return k, ok
}

// Indexed reports whether the named field has a store index backing
// equality pre-filters.
func Indexed(name string) bool {
	if _, ok := fields[name]; !ok {
		return false
	}
	return !unindexed[name]
}

// IndexedFields returns the names of all store-indexed fields in no
// particular order.
func IndexedFields() []string {
	out := make([]string, 0, len(fields))
	for name := range fields {
		if !unindexed[name] {
			out = append(out, name)
		}
	}
	return out
}
