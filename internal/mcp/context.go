package mcp

import "context"

// correlationKey is the context key for the per-invocation correlation id.
type correlationKey struct{}

// WithCorrelationID returns a new context carrying the correlation id for
// one tool invocation. The dispatcher picks it up so upstream request logs
// line up with the invocation that caused them.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationIDFrom extracts the correlation id from the context, if present.
func CorrelationIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationKey{}).(string)
	return id, ok
}
