package logger

import (
	"context"

	"github.com/sirupsen/logrus"
)

// contextKey is an unexported type for context keys to avoid collisions.
type contextKey string

// correlationIDKey is the context key under which the correlation ID is stored.
const correlationIDKey contextKey = "correlation_id"

// SetCorrelationID returns a child context carrying the given correlation ID.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID extracts the correlation ID from the context, or "" if unset.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithCorrelationID returns a log entry annotated with the context's
// correlation ID, so all log lines for one request can be tied together.
func WithCorrelationID(ctx context.Context, logger *logrus.Logger) *logrus.Entry {
	if id := CorrelationID(ctx); id != "" {
		return logger.WithField("correlation_id", id)
	}
	return logrus.NewEntry(logger)
}
