package logging

import (
	"context"
	"log/slog"

	"subfetch/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one fetch invocation across all of its log lines.
	FieldRunID = "run_id"
	// FieldVideo is the video file being processed.
	FieldVideo = "video"
	// FieldStage is the pipeline stage name.
	FieldStage = "stage"
	FieldFingerprint = "fingerprint"
	// FieldRequestKind distinguishes hash and descriptive catalog queries.
	FieldRequestKind = "request_kind"
	// FieldOutcome is the per-video result (downloaded, skipped, no_match, failed).
	FieldOutcome = "outcome"
	FieldReason  = "reason"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if video, ok := services.VideoFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldVideo, video))
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
	return logger.With(Args(fields...)...)
}
