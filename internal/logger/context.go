package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// FromCtx returns the global logger with request_id added when ctx carries one.
func FromCtx(ctx context.Context) *zap.Logger {
	return With(ctx, L())
}

// With decorates base with the request_id carried by ctx.
func With(ctx context.Context, base *zap.Logger) *zap.Logger {
	reqID := RequestIDFrom(ctx)
	if reqID == "" {
		return base
	}
	return base.With(zap.String("request_id", reqID))
}
