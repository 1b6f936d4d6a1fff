// Package health answers readiness probes: the service is ready when the
// search store responds and the product index exists.
package health

import (
	"context"
	"fmt"

	"github.com/trendhive/productsearch/internal/domain"
)

// CheckResult is an individual component check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing check.
	CheckError CheckResult = "error"
)

// Report aggregates readiness check results.
type Report struct {
	Ready  bool                   `json:"ready"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates readiness checks.
type Service struct {
	store     StorePinger
	index     IndexChecker
	indexName string
}

// New creates a Service. index can be nil to skip the provisioning check.
func New(store StorePinger, index IndexChecker, indexName string) *Service {
	return &Service{store: store, index: index, indexName: indexName}
}

// Check probes the store and, when configured, the product index. It returns
// the per-check report and ErrNotReady when any check fails.
func (s *Service) Check(ctx context.Context) (Report, error) {
	checks := make(map[string]CheckResult)

	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = CheckError
	} else {
		checks["store"] = CheckOK
	}

	if s.index != nil {
		exists, err := s.index.IndexExists(ctx, s.indexName)
		if err != nil || !exists {
			checks["index"] = CheckError
		} else {
			checks["index"] = CheckOK
		}
	}

	for name, v := range checks {
		if v == CheckError {
			return Report{Ready: false, Checks: checks},
				fmt.Errorf("%s check failed: %w", name, domain.ErrNotReady)
		}
	}

	return Report{Ready: true, Checks: checks}, nil
}
