// Package snsctx carries per-call diagnostics through bus operations.
package snsctx

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	keyVerbose ctxKey = iota
	keyRequestID
)

// IsVerbose reports whether raw transport traffic should be dumped.
func IsVerbose(ctx context.Context) bool {
	v, _ := ctx.Value(keyVerbose).(bool)
	return v
}

func SetVerbose(ctx context.Context, value bool) context.Context {
	return context.WithValue(ctx, keyVerbose, value)
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)
	return id
}

// Attrs returns log attributes describing ctx.
func Attrs(ctx context.Context) []any {
	if id := RequestID(ctx); id != "" {
		return []any{slog.String("request", id)}
	}
	return nil
}
