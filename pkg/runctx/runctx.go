package runctx

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ContextKey string

const (
	RunIDKey ContextKey = "run_id"
	QueryKey ContextKey = "query"
)

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RunIDKey, id)
}

// WithQuery adds the original user query to the context
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, QueryKey, query)
}

// NewRunID generates a unique run ID
func NewRunID() string {
	return uuid.NewString()
}

// RunID retrieves the run ID from context
func RunID(ctx context.Context) string {
	if id, ok := ctx.Value(RunIDKey).(string); ok {
		return id
	}
	return ""
}

// Logger creates a logger with the run information found on ctx
func Logger(ctx context.Context, base *zap.Logger) *zap.Logger {
	logger := base
	if logger == nil {
		logger = zap.NewNop()
	}

	if id := RunID(ctx); id != "" {
		logger = logger.With(zap.String(string(RunIDKey), id))
	}

	if query, ok := ctx.Value(QueryKey).(string); ok && query != "" {
		logger = logger.With(zap.String(string(QueryKey), query))
	}

	return logger
}
