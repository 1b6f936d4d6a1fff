// Package catalog owns the product collection's lifecycle in the vector
// store and the batched ingestion path: ensure-exists provisioning, keyword
// index provisioning, and sequential point upserts with per-item failure
// isolation.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/trendhive/productsearch/internal/db"
	"github.com/trendhive/productsearch/internal/domain"
	"github.com/trendhive/productsearch/internal/domain/batch"
	"github.com/trendhive/productsearch/internal/domain/product"
)

// DefaultBatchSize is used when the caller does not set one.
const DefaultBatchSize = 64

// store is the consumer interface for collection lifecycle and writes.
type store interface {
	UpsertPoints(ctx context.Context, items []db.PointItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	AlterIndexAddField(ctx context.Context, index string, field db.IndexField) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// ImageEncoder turns a product's images into one embedding.
type ImageEncoder interface {
	EncodeImages(ctx context.Context, urls []string) ([]float32, error)
	Dimensions() int
}

// HNSWConfig holds vector index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo is the collection-side vector store gateway.
type Repo struct {
	store         store
	encoder       ImageEncoder
	collection    string
	keywordField  string
	hnsw          HNSWConfig
	encodeTimeout time.Duration
	writeTimeout  time.Duration
	logger        *zap.Logger
}

// Config holds gateway construction parameters.
type Config struct {
	Collection    string
	KeywordField  string
	HNSW          HNSWConfig
	EncodeTimeout time.Duration
	WriteTimeout  time.Duration
}

// New creates the catalog gateway.
func New(s store, encoder ImageEncoder, cfg Config, logger *zap.Logger) *Repo {
	if cfg.KeywordField == "" {
		cfg.KeywordField = product.FieldName
	}
	if cfg.EncodeTimeout <= 0 {
		cfg.EncodeTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Repo{
		store:         s,
		encoder:       encoder,
		collection:    cfg.Collection,
		keywordField:  cfg.KeywordField,
		hnsw:          cfg.HNSW,
		encodeTimeout: cfg.EncodeTimeout,
		writeTimeout:  cfg.WriteTimeout,
		logger:        logger,
	}
}

// EnsureCollection creates the collection index if it does not exist:
// vector dimensionality from the embedding provider, cosine distance, plus
// TAG/NUMERIC fields for every store-indexed product field. Creation is
// idempotent, so concurrent first-requests cannot race into duplicates.
// Any lookup failure other than "not found" is surfaced.
func (r *Repo) EnsureCollection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	name := domain.IndexName(r.collection)
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", r.collection, storeErr(err))
	}
	if exists {
		return nil
	}

	def := buildIndexDef(r.collection, r.encoder.Dimensions(), r.hnsw)
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create collection %s: %w", r.collection, storeErr(err))
	}

	r.logger.Info("collection created",
		zap.String("collection", r.collection),
		zap.Int("vector_dim", r.encoder.Dimensions()),
	)
	return nil
}

// EnsureKeywordIndex idempotently provisions the text index backing keyword
// search. An already-provisioned field is success; other failures are
// returned for the caller to log; keyword search simply degrades.
func (r *Repo) EnsureKeywordIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	field := db.IndexField{
		Name:  r.keywordField,
		Alias: domain.TextAttribute(r.keywordField),
		Type:  db.IndexFieldText,
	}
	err := r.store.AlterIndexAddField(ctx, domain.IndexName(r.collection), field)
	if err != nil {
		if errors.Is(err, db.ErrFieldExists) {
			return nil
		}
		return fmt.Errorf("index keyword field %s: %w", r.keywordField, storeErr(err))
	}

	r.logger.Info("keyword field indexed", zap.String("field", r.keywordField))
	return nil
}

// UpsertBatch encodes and writes products in fixed-size sequential batches.
// A product whose images cannot be encoded is logged and skipped, never
// aborting its batch. A batch write failure is fatal for the run but leaves
// prior batches in place; re-running is safe because points are keyed by the
// product uuid.
func (r *Repo) UpsertBatch(ctx context.Context, products []product.Product, batchSize int) ([]batch.Result, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	results := make([]batch.Result, 0, len(products))

	for start := 0; start < len(products); start += batchSize {
		end := min(start+batchSize, len(products))

		r.logger.Info("encoding batch",
			zap.Int("from", start), zap.Int("to", end), zap.Int("total", len(products)))

		items := make([]db.PointItem, 0, end-start)
		pending := make([]string, 0, end-start)

		for i := start; i < end; i++ {
			p := &products[i]
			id := p.UUID().String()

			vector, err := r.encodeProduct(ctx, p)
			if err != nil {
				r.logger.Warn("skipping product: image encoding failed",
					zap.Int64("product_id", p.ID),
					zap.Strings("images", p.Images),
					zap.Error(err),
				)
				results = append(results, batch.NewSkipped(id, batch.ReasonEncoding, err))
				continue
			}

			fields, err := pointFields(p, vector)
			if err != nil {
				results = append(results, batch.NewSkipped(id, batch.ReasonInvalid, err))
				continue
			}

			items = append(items, db.PointItem{
				Key:    domain.PointKey(r.collection, id),
				Fields: fields,
			})
			pending = append(pending, id)
		}

		r.logger.Info("writing batch",
			zap.Int("from", start), zap.Int("to", end), zap.Int("points", len(items)))

		if err := r.writePoints(ctx, items); err != nil {
			return results, fmt.Errorf("upsert batch [%d,%d): %w", start, end, err)
		}

		for _, id := range pending {
			results = append(results, batch.NewIndexed(id))
		}
	}

	return results, nil
}

func (r *Repo) encodeProduct(ctx context.Context, p *product.Product) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, r.encodeTimeout)
	defer cancel()
	return r.encoder.EncodeImages(ctx, p.Images)
}

func (r *Repo) writePoints(ctx context.Context, items []db.PointItem) error {
	if len(items) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.writeTimeout)
	defer cancel()
	if err := r.store.UpsertPoints(ctx, items); err != nil {
		return storeErr(err)
	}
	return nil
}

// buildIndexDef assembles the collection schema: the HNSW cosine vector
// field plus TAG/NUMERIC fields for every store-indexed product field, in
// deterministic order.
func buildIndexDef(collection string, vectorDim int, hnsw HNSWConfig) *db.IndexDefinition {
	names := product.IndexedFields()
	sort.Strings(names)

	def := &db.IndexDefinition{
		Name:   domain.IndexName(collection),
		Prefix: domain.PointPrefix(collection),
		Fields: make([]db.IndexField, 0, len(names)+1),
	}

	for _, name := range names {
		kind, _ := product.FieldKind(name)
		switch kind {
		case product.KindNumeric:
			def.Fields = append(def.Fields, db.IndexField{Name: name, Type: db.IndexFieldNumeric})
		case product.KindList:
			def.Fields = append(def.Fields, db.IndexField{Name: name, Type: db.IndexFieldTag, TagSeparator: ","})
		default:
			def.Fields = append(def.Fields, db.IndexField{Name: name, Type: db.IndexFieldTag})
		}
	}

	def.Fields = append(def.Fields, db.IndexField{
		Name:              domain.PointVectorField,
		Type:              db.IndexFieldVector,
		VectorDim:         vectorDim,
		VectorDistance:    db.DistanceCosine,
		VectorM:           hnsw.M,
		VectorEFConstruct: hnsw.EFConstruct,
	})

	return def
}

// storeErr classifies store failures: timeouts become the retryable
// unavailability sentinel.
func storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return err
}
