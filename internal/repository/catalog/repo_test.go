package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/trendhive/productsearch/internal/db"
	"github.com/trendhive/productsearch/internal/domain"
	"github.com/trendhive/productsearch/internal/domain/batch"
	"github.com/trendhive/productsearch/internal/domain/product"
)

// --- EnsureCollection ---

func TestEnsureCollection_CreatesWhenAbsent(t *testing.T) {
	repo, ms, _ := newTestRepo(t)

	var created *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		created = def
		return nil
	}

	if err := repo.EnsureCollection(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected CreateIndex to be called")
	}
	if created.Name != domain.IndexName("products") {
		t.Errorf("unexpected index name %q", created.Name)
	}

	var vec *db.IndexField
	for i := range created.Fields {
		if created.Fields[i].Type == db.IndexFieldVector {
			vec = &created.Fields[i]
		}
	}
	if vec == nil {
		t.Fatal("expected a vector field in the schema")
	}
	if vec.VectorDim != 4 || vec.VectorDistance != db.DistanceCosine {
		t.Errorf("unexpected vector field %+v", vec)
	}
}

func TestEnsureCollection_SkipsWhenPresent(t *testing.T) {
	repo, ms, _ := newTestRepo(t)

	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		t.Fatal("CreateIndex must not run when the index exists")
		return nil
	}

	if err := repo.EnsureCollection(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureCollection_LostCreateRaceIsSuccess(t *testing.T) {
	repo, ms, _ := newTestRepo(t)

	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		return db.ErrIndexExists
	}

	if err := repo.EnsureCollection(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureCollection_ProbeTimeoutIsRetryable(t *testing.T) {
	repo, ms, _ := newTestRepo(t)

	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) {
		return false, fmt.Errorf("probe: %w", context.DeadlineExceeded)
	}

	err := repo.EnsureCollection(context.Background())
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}

func TestEnsureCollection_SchemaCoversIndexedFields(t *testing.T) {
	repo, ms, _ := newTestRepo(t)

	var created *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		created = def
		return nil
	}

	if err := repo.EnsureCollection(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byName := make(map[string]db.IndexField)
	for _, f := range created.Fields {
		byName[f.Name] = f
	}
	if byName[product.FieldCurrentPrice].Type != db.IndexFieldNumeric {
		t.Error("current_price must be numeric")
	}
	if byName[product.FieldCurrency].Type != db.IndexFieldTag {
		t.Error("currency must be a tag")
	}
	if byName[product.FieldColors].TagSeparator != "," {
		t.Error("list fields must use comma-separated tags")
	}
	if _, ok := byName[product.FieldDescription]; ok {
		t.Error("description has no store index and must not be in the schema")
	}
}

// --- EnsureKeywordIndex ---

func TestEnsureKeywordIndex_AddsAliasedTextField(t *testing.T) {
	repo, ms, _ := newTestRepo(t)

	var gotIndex string
	var gotField db.IndexField
	ms.alterIndexAddFieldFn = func(_ context.Context, index string, field db.IndexField) error {
		gotIndex = index
		gotField = field
		return nil
	}

	if err := repo.EnsureKeywordIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotIndex != domain.IndexName("products") {
		t.Errorf("unexpected index %q", gotIndex)
	}
	if gotField.Name != product.FieldName || gotField.Alias != domain.TextAttribute(product.FieldName) {
		t.Errorf("unexpected field %+v", gotField)
	}
	if gotField.Type != db.IndexFieldText {
		t.Errorf("expected TEXT field, got %d", gotField.Type)
	}
}

func TestEnsureKeywordIndex_AlreadyProvisionedIsSuccess(t *testing.T) {
	repo, ms, _ := newTestRepo(t)

	ms.alterIndexAddFieldFn = func(_ context.Context, _ string, _ db.IndexField) error {
		return db.ErrFieldExists
	}

	if err := repo.EnsureKeywordIndex(context.Background()); err != nil {
		t.Fatalf("expected idempotent success, got %v", err)
	}
}

func TestEnsureKeywordIndex_OtherFailureSurfaces(t *testing.T) {
	repo, ms, _ := newTestRepo(t)

	ms.alterIndexAddFieldFn = func(_ context.Context, _ string, _ db.IndexField) error {
		return db.ErrIndexNotFound
	}

	if err := repo.EnsureKeywordIndex(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// --- UpsertBatch ---

func TestUpsertBatch_AllIndexed(t *testing.T) {
	repo, ms, _ := newTestRepo(t)

	products := []product.Product{testProduct(1), testProduct(2), testProduct(3)}
	results, err := repo.UpsertBatch(context.Background(), products, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Status() != batch.StatusIndexed {
			t.Errorf("expected indexed, got %s (%v)", res.Status(), res.Err())
		}
	}
	if len(ms.upsertCalls) != 1 || len(ms.upsertCalls[0]) != 3 {
		t.Fatalf("expected one pipelined write of 3 points, got %d calls", len(ms.upsertCalls))
	}
}

func TestUpsertBatch_RespectsBatchSize(t *testing.T) {
	repo, ms, _ := newTestRepo(t)

	products := []product.Product{testProduct(1), testProduct(2), testProduct(3)}
	if _, err := repo.UpsertBatch(context.Background(), products, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms.upsertCalls) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(ms.upsertCalls))
	}
	if len(ms.upsertCalls[0]) != 2 || len(ms.upsertCalls[1]) != 1 {
		t.Errorf("expected batch sizes 2 and 1, got %d and %d",
			len(ms.upsertCalls[0]), len(ms.upsertCalls[1]))
	}
}

func TestUpsertBatch_EncodingFailureSkipsItemOnly(t *testing.T) {
	repo, ms, me := newTestRepo(t)

	me.encodeFn = func(_ context.Context, urls []string) ([]float32, error) {
		if urls[0] == "https://cdn.example.com/bad.jpg" {
			return nil, fmt.Errorf("image unreachable: %w", domain.ErrEncoding)
		}
		return []float32{0.1, 0.2, 0.3, 0.4}, nil
	}

	bad := testProduct(2)
	bad.Images = []string{"https://cdn.example.com/bad.jpg"}
	products := []product.Product{testProduct(1), bad, testProduct(3)}

	results, err := repo.UpsertBatch(context.Background(), products, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var report batch.Report
	for _, res := range results {
		report.Add(res)
	}
	if report.Indexed != 2 || report.SkippedEncoding != 1 {
		t.Fatalf("expected 2 indexed and 1 encoding skip, got %+v", report)
	}
	if len(ms.upsertCalls) != 1 || len(ms.upsertCalls[0]) != 2 {
		t.Fatalf("expected the surviving 2 points to be written, got %v", ms.upsertCalls)
	}
}

func TestUpsertBatch_WriteFailureIsFatal(t *testing.T) {
	repo, ms, _ := newTestRepo(t)

	calls := 0
	ms.upsertPointsFn = func(_ context.Context, _ []db.PointItem) error {
		calls++
		if calls == 2 {
			return &db.Error{Op: db.OpHSet, Err: context.DeadlineExceeded}
		}
		return nil
	}

	products := []product.Product{testProduct(1), testProduct(2), testProduct(3), testProduct(4)}
	results, err := repo.UpsertBatch(context.Background(), products, 2)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
	// First batch completed before the failure.
	if len(results) != 2 {
		t.Fatalf("expected 2 results from the completed batch, got %d", len(results))
	}
	for _, res := range results {
		if res.Status() != batch.StatusIndexed {
			t.Errorf("expected indexed, got %s", res.Status())
		}
	}
}

func TestUpsertBatch_PointKeyUsesDerivedUUID(t *testing.T) {
	repo, ms, _ := newTestRepo(t)

	p := testProduct(42)
	if _, err := repo.UpsertBatch(context.Background(), []product.Product{p}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKey := domain.PointKey("products", p.UUID().String())
	if ms.upsertCalls[0][0].Key != wantKey {
		t.Errorf("expected key %q, got %q", wantKey, ms.upsertCalls[0][0].Key)
	}

	fields := ms.upsertCalls[0][0].Fields
	if _, ok := fields[domain.PointVectorField]; !ok {
		t.Error("expected embedded vector field")
	}
	if _, ok := fields[domain.PointPayloadField]; !ok {
		t.Error("expected payload field")
	}
	if fields[product.FieldCurrency] != "EUR" {
		t.Errorf("expected flattened currency field, got %v", fields)
	}
}

func TestUpsertBatch_Empty(t *testing.T) {
	repo, ms, _ := newTestRepo(t)

	results, err := repo.UpsertBatch(context.Background(), nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
	if len(ms.upsertCalls) != 0 {
		t.Fatal("no writes expected for an empty run")
	}
}
