// Package logctx carries a request-scoped zap logger on a context.
package logctx

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// With returns a copy of ctx that carries log.
func With(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// From returns the logger on ctx, or fallback when there is none.
func From(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && log != nil {
		return log
	}
	return fallback
}
