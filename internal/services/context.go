package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	nodeKey  contextKey = "node"
)

// WithRunID annotates context with the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(runIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithNode annotates context with the active node name.
func WithNode(ctx context.Context, node string) context.Context {
	if node == "" {
		return ctx
	}
	return context.WithValue(ctx, nodeKey, node)
}

// NodeFromContext returns the active node name if present.
func NodeFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(nodeKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}
