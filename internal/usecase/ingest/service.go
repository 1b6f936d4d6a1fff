// Package ingest turns raw product records into indexed search points,
// skipping records that fail validation or embedding instead of aborting
// the whole run.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/trendhive/productsearch/internal/domain/batch"
	"github.com/trendhive/productsearch/internal/domain/product"
	"github.com/trendhive/productsearch/internal/metrics"
)

// Service runs the ingestion pipeline.
type Service struct {
	indexer   Indexer
	batchSize int
	logger    *zap.Logger
}

// New creates an ingestion service. batchSize bounds each write pipeline;
// zero selects the indexer default.
func New(indexer Indexer, batchSize int, logger *zap.Logger) *Service {
	return &Service{indexer: indexer, batchSize: batchSize, logger: logger}
}

// Run validates every record, indexes the valid ones, and reports per-item
// outcomes. A record that fails validation or embedding is counted and
// skipped. A storage write failure is fatal and returns the report
// accumulated so far.
func (s *Service) Run(ctx context.Context, records []json.RawMessage) (batch.Report, error) {
	var report batch.Report

	products := make([]product.Product, 0, len(records))
	for i, raw := range records {
		p, err := product.New(raw)
		if err != nil {
			s.logger.Warn("skipping invalid product record",
				zap.Int("position", i),
				zap.Error(err))
			report.Add(batch.NewSkipped(recordID(raw, i), batch.ReasonInvalid, err))
			continue
		}
		products = append(products, p)
	}

	results, err := s.indexer.UpsertBatch(ctx, products, s.batchSize)
	for _, res := range results {
		report.Add(res)
	}
	s.observe(report)

	if err != nil {
		return report, fmt.Errorf("index products: %w", err)
	}

	s.logger.Info("ingestion finished",
		zap.Int("total", report.Total),
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped_invalid", report.SkippedInvalid),
		zap.Int("skipped_encoding", report.SkippedEncoding))

	return report, nil
}

func (s *Service) observe(report batch.Report) {
	metrics.IngestedProductsTotal.WithLabelValues("indexed").Add(float64(report.Indexed))
	metrics.IngestedProductsTotal.WithLabelValues("skipped_invalid").Add(float64(report.SkippedInvalid))
	metrics.IngestedProductsTotal.WithLabelValues("skipped_encoding").Add(float64(report.SkippedEncoding))
}

// recordID recovers the id of a malformed record for reporting, falling
// back to the array position when even the id is unreadable.
func recordID(raw json.RawMessage, position int) string {
	var probe struct {
		ID *int64 `json:"id"`
	}
	if json.Unmarshal(raw, &probe) == nil && probe.ID != nil {
		return fmt.Sprintf("%d", *probe.ID)
	}
	return fmt.Sprintf("record[%d]", position)
}
