package health

import (
	"context"
	"errors"
	"testing"

	"github.com/trendhive/productsearch/internal/domain"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockIndexChecker struct {
	exists bool
	err    error
}

func (m *mockIndexChecker) IndexExists(_ context.Context, _ string) (bool, error) {
	return m.exists, m.err
}

// --- Tests ---

func TestCheck_Ready(t *testing.T) {
	svc := New(&mockPinger{}, &mockIndexChecker{exists: true}, "productsearch:products:idx")
	r, err := svc.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Ready {
		t.Error("expected ready")
	}
	if r.Checks["store"] != CheckOK || r.Checks["index"] != CheckOK {
		t.Errorf("expected all checks ok, got %v", r.Checks)
	}
}

func TestCheck_StoreDown(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("conn refused")}, &mockIndexChecker{exists: true}, "idx")
	r, err := svc.Check(context.Background())
	if !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("expected not ready, got %v", err)
	}
	if r.Ready {
		t.Error("expected not ready")
	}
	if r.Checks["store"] != CheckError {
		t.Errorf("expected store error, got %v", r.Checks)
	}
}

func TestCheck_IndexMissing(t *testing.T) {
	svc := New(&mockPinger{}, &mockIndexChecker{exists: false}, "idx")
	r, err := svc.Check(context.Background())
	if !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("expected not ready, got %v", err)
	}
	if r.Checks["index"] != CheckError {
		t.Errorf("expected index error, got %v", r.Checks)
	}
}

func TestCheck_NoIndexChecker(t *testing.T) {
	svc := New(&mockPinger{}, nil, "")
	r, err := svc.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Ready {
		t.Error("expected ready")
	}
	if _, ok := r.Checks["index"]; ok {
		t.Error("index check should be absent without a checker")
	}
}
