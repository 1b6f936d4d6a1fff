package catalog

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/trendhive/productsearch/internal/domain"
	"github.com/trendhive/productsearch/internal/domain/product"
)

// pointFields flattens a product into the stored hash: the embedding, the
// JSON payload, and one field per populated store-indexed product field.
func pointFields(p *product.Product, vector []float32) (map[string]string, error) {
	payload, err := p.Payload()
	if err != nil {
		return nil, fmt.Errorf("build point for product %d: %w", p.ID, err)
	}

	values := p.IndexValues()
	m := make(map[string]string, len(values)+2)
	for k, v := range values {
		m[k] = v
	}
	m[domain.PointVectorField] = vectorToBytes(vector)
	m[domain.PointPayloadField] = string(payload)
	return m, nil
}

// vectorToBytes serializes []float32 to 4 bytes per value, little-endian.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
