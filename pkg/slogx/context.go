package slogx

import (
	"context"
	"log/slog"
	"sync"
)

type ctxKey struct{}

type attrsKey struct{}

// requestAttrs collects attributes learned while a request is handled, such
// as the authenticated user, for the completion line written by HTTPMiddleware.
type requestAttrs struct {
	mu   sync.Mutex
	args []any
}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the request logger, or slog.Default outside a request.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// With decorates the context logger with extra attributes.
func With(ctx context.Context, args ...any) context.Context {
	return WithContext(ctx, FromContext(ctx).With(args...))
}

// AddRequestAttrs appends attributes to the request's completion log line.
// Outside HTTPMiddleware it does nothing.
func AddRequestAttrs(ctx context.Context, args ...any) {
	ra, ok := ctx.Value(attrsKey{}).(*requestAttrs)
	if !ok {
		return
	}
	ra.mu.Lock()
	ra.args = append(ra.args, args...)
	ra.mu.Unlock()
}

func (ra *requestAttrs) snapshot() []any {
	ra.mu.Lock()
	defer ra.mu.Unlock()
	return append([]any(nil), ra.args...)
}
