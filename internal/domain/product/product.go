// Package product defines the catalog item entity and its construction
// invariants. Products are built from raw untyped records during ingestion
// and reconstructed from store payloads at query time; a record that
// violates any field bound is rejected whole.
package product

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/trendhive/productsearch/internal/domain"
)

const (
	maxShortString = 200
	maxDescription = 100000
	maxListLen     = 200
)

// colorPattern matches a leading "#" followed by at least five uppercase hex
// digits, after case normalization.
var colorPattern = regexp.MustCompile(`^#[0-9A-F]{5}`)

// Product is one catalog item.
type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	Description string `json:"description,omitempty"`
	Material    string `json:"material,omitempty"`

	CurrentPrice float64  `json:"current_price"`
	OffPercent   *float64 `json:"off_percent,omitempty"`
	Currency     string   `json:"currency"`

	Images []string `json:"images"`

	BrandID   *int64 `json:"brand_id,omitempty"`
	BrandName string `json:"brand_name,omitempty"`

	Code string `json:"code"`

	CategoryID   *int64 `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`

	GenderID   *int64 `json:"gender_id,omitempty"`
	GenderName string `json:"gender_name,omitempty"`

	ShopID   *int64 `json:"shop_id,omitempty"`
	ShopName string `json:"shop_name,omitempty"`

	Link string `json:"link"`

	Status string `json:"status,omitempty"`

	Colors []string `json:"colors,omitempty"`
	Sizes  []string `json:"sizes,omitempty"`

	Region string `json:"region,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New builds a validated Product from a raw JSON record. All violated
// constraints are collected; on any violation the record is rejected.
func New(raw []byte) (Product, error) {
	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return Product{}, domain.ValidationErrors{
			domain.NewValidationError("record", "malformed record: %v", err),
		}
	}
	if err := p.normalize(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// FromPayload reconstructs a Product from a stored point payload. Payloads
// were validated at ingestion, but the same invariants are re-checked so a
// corrupted payload never yields a partial entity.
func FromPayload(payload []byte) (Product, error) {
	return New(payload)
}

// normalize applies defaults and case normalization, then validates.
func (p *Product) normalize() error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	for i, c := range p.Colors {
		p.Colors[i] = strings.ToUpper(c)
	}
	return p.validate()
}

func (p *Product) validate() error {
	var errs domain.ValidationErrors

	check := func(ok bool, field, format string, args ...any) {
		if !ok {
			errs = append(errs, domain.NewValidationError(field, format, args...))
		}
	}
	short := func(field, value string, required bool) {
		n := utf8.RuneCountInString(value)
		if required {
			check(n >= 1 && n <= maxShortString, field, "must be 1-%d characters", maxShortString)
			return
		}
		check(value == "" || n <= maxShortString, field, "must be at most %d characters", maxShortString)
	}
	nonNegative := func(field string, value *int64) {
		check(value == nil || *value >= 0, field, "must not be negative")
	}

	check(p.ID > 0, FieldID, "must be a positive integer")
	short(FieldName, p.Name, true)
	check(utf8.RuneCountInString(p.Description) <= maxDescription,
		FieldDescription, "must be at most %d characters", maxDescription)
	short(FieldMaterial, p.Material, false)
	check(p.CurrentPrice >= 0, FieldCurrentPrice, "must not be negative")
	check(p.OffPercent == nil || *p.OffPercent >= 0, FieldOffPercent, "must not be negative")
	short(FieldCurrency, p.Currency, true)
	check(len(p.Images) >= 1, FieldImages, "at least one image is required")
	nonNegative(FieldBrandID, p.BrandID)
	short(FieldBrandName, p.BrandName, false)
	short(FieldCode, p.Code, true)
	nonNegative(FieldCategoryID, p.CategoryID)
	short(FieldCategoryName, p.CategoryName, false)
	nonNegative(FieldGenderID, p.GenderID)
	short(FieldGenderName, p.GenderName, false)
	nonNegative(FieldShopID, p.ShopID)
	short(FieldShopName, p.ShopName, false)
	short(FieldLink, p.Link, true)
	short(FieldStatus, p.Status, false)
	for _, c := range p.Colors {
		check(colorPattern.MatchString(c), FieldColors, "invalid color %q", c)
	}
	check(len(p.Colors) <= maxListLen, FieldColors, "at most %d values", maxListLen)
	check(len(p.Sizes) <= maxListLen, FieldSizes, "at most %d values", maxListLen)
	short(FieldRegion, p.Region, false)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UUID derives the stable point identifier from the product id: the id
// occupies the low bytes of the UUID with the version nibble forced to 4 and
// the RFC 4122 variant set. Re-ingesting the same id overwrites the same
// point.
func (p *Product) UUID() uuid.UUID {
	var b [16]byte
	binary.BigEndian.PutUint64(b[8:], uint64(p.ID))
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return uuid.UUID(b)
}

// Payload serializes the product for point storage. The uuid is derived, not
// stored; empty optional fields are omitted.
func (p *Product) Payload() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload for product %d: %w", p.ID, err)
	}
	return data, nil
}

// IndexValues returns the populated store-indexed fields as flat strings, the
// form the store indexes for equality pre-filtering. Lists are comma-joined.
func (p *Product) IndexValues() map[string]string {
	m := make(map[string]string, 16)

	setTag := func(field, value string) {
		if value != "" {
			m[field] = value
		}
	}
	setInt := func(field string, value *int64) {
		if value != nil {
			m[field] = strconv.FormatInt(*value, 10)
		}
	}

	m[FieldID] = strconv.FormatInt(p.ID, 10)
	setTag(FieldName, p.Name)
	setTag(FieldMaterial, p.Material)
	m[FieldCurrentPrice] = strconv.FormatFloat(p.CurrentPrice, 'f', -1, 64)
	if p.OffPercent != nil {
		m[FieldOffPercent] = strconv.FormatFloat(*p.OffPercent, 'f', -1, 64)
	}
	setTag(FieldCurrency, p.Currency)
	setInt(FieldBrandID, p.BrandID)
	setTag(FieldBrandName, p.BrandName)
	setTag(FieldCode, p.Code)
	setInt(FieldCategoryID, p.CategoryID)
	setTag(FieldCategoryName, p.CategoryName)
	setInt(FieldGenderID, p.GenderID)
	setTag(FieldGenderName, p.GenderName)
	setInt(FieldShopID, p.ShopID)
	setTag(FieldShopName, p.ShopName)
	setTag(FieldLink, p.Link)
	setTag(FieldStatus, p.Status)
	if len(p.Colors) > 0 {
		m[FieldColors] = strings.Join(p.Colors, ",")
	}
	if len(p.Sizes) > 0 {
		m[FieldSizes] = strings.Join(p.Sizes, ",")
	}
	setTag(FieldRegion, p.Region)

	return m
}
