package services

import "context"

type contextKey string

const (
	sessionIDKey  contextKey = "session_id"
	collectionKey contextKey = "collection"
	pageKey       contextKey = "page"
	stageKey      contextKey = "stage"
)

// WithSessionID annotates context with the browsing session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext extracts the browsing session identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCollection annotates context with the collection kind being browsed.
func WithCollection(ctx context.Context, kind string) context.Context {
	if kind == "" {
		return ctx
	}
	return context.WithValue(ctx, collectionKey, kind)
}

// CollectionFromContext returns the collection kind if present.
func CollectionFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(collectionKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPage annotates context with the catalog page number.
func WithPage(ctx context.Context, page int) context.Context {
	return context.WithValue(ctx, pageKey, page)
}

// PageFromContext extracts the catalog page number if present.
func PageFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(pageKey).(int)
	return v, ok
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stageKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
