package logging

import (
	"context"
	"log/slog"

	"koneko/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSessionID identifies one browsing session across stages.
	FieldSessionID = "session_id"
	// FieldCollection is the collection kind being browsed (gallery, feed, users, post).
	FieldCollection = "collection"
	// FieldPage is the catalog page number.
	FieldPage = "page"
	// FieldStage is the pipeline stage name.
	FieldStage = "stage"
	// FieldOrdinal is the zero-based catalog position of an item.
	FieldOrdinal = "ordinal"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.SessionIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSessionID, id))
	}
	if kind, ok := services.CollectionFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCollection, kind))
	}
	if page, ok := services.PageFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldPage, page))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return slog.New(logger.Handler().WithAttrs(fields))
}
