package types

import "context"

// contextKey is used for storing values in context.Context.
type contextKey string

const (
	keyTraceID   contextKey = "trace_id"
	keySessionID contextKey = "session_id"
	keyActorName contextKey = "actor_name"
)

// WithTraceID adds trace ID to context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, keyTraceID, traceID)
}

// TraceID extracts trace ID from context.
func TraceID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyTraceID).(string)
	return v, ok && v != ""
}

// WithSessionID adds the swarm session ID to context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, keySessionID, sessionID)
}

// SessionID extracts the swarm session ID from context.
func SessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keySessionID).(string)
	return v, ok && v != ""
}

// WithActorName adds the currently active actor name to context.
func WithActorName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyActorName, name)
}

// ActorName extracts the currently active actor name from context.
func ActorName(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyActorName).(string)
	return v, ok && v != ""
}
