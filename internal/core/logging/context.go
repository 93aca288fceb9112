package logging

import "context"

type contextKey string

const (
	listIDKey contextKey = "list_id"
	opKey     contextKey = "op"
)

// WithListID adds a list ID to the context.
func WithListID(ctx context.Context, listID string) context.Context {
	return context.WithValue(ctx, listIDKey, listID)
}

// WithOp adds the name of the operation being performed to the context.
func WithOp(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, opKey, op)
}

// GetListID retrieves the list ID from the context.
// Returns empty string if not present.
func GetListID(ctx context.Context) string {
	if id, ok := ctx.Value(listIDKey).(string); ok {
		return id
	}
	return ""
}

// GetOp retrieves the operation name from the context.
// Returns empty string if not present.
func GetOp(ctx context.Context) string {
	if op, ok := ctx.Value(opKey).(string); ok {
		return op
	}
	return ""
}
