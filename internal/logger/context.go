package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey keeps the stored logger invisible to other packages.
type contextKey struct{}

// ContextWithLogger returns a child context carrying the given logger,
// typically the request-scoped logger built by the HTTP middleware.
func ContextWithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the logger carried by the context. Contexts without
// one get a no-op logger, so callers never need a nil check.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(contextKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}
