package shared

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-words/internal/platform/logger"
)

// SetTraceID adds a trace ID to the context. The request ID assigned by
// chi's RequestID middleware is reused when present.
// This is useful for correlating logs and error responses.
func SetTraceID(ctx context.Context) context.Context {
	traceID := chimw.GetReqID(ctx)
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return logger.WithTraceID(ctx, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	return logger.TraceID(ctx)
}
