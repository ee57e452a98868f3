package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across pidsym.
const (
	// Identity
	FieldRunID = "run_id"

	// Symbols
	FieldFamily   = "family"
	FieldStandard = "standard"
	FieldIndex    = "index"
	FieldName     = "name"

	// Files and tools
	FieldFile      = "file"
	FieldDir       = "dir"
	FieldConverter = "converter"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount = "count"
	FieldSize  = "size"
)

type contextKey string

const (
	runIDKey  contextKey = "logger_run_id"
	familyKey contextKey = "logger_family"
)

// WithRunID adds an extraction run ID to the context for logging
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// WithFamily adds the symbol family being processed to the context
func WithFamily(ctx context.Context, family string) context.Context {
	return context.WithValue(ctx, familyKey, family)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		fields = append(fields, FieldRunID, runID)
	}
	if family, ok := ctx.Value(familyKey).(string); ok && family != "" {
		fields = append(fields, FieldFamily, family)
	}

	return fields
}

// LoggerFromContext returns the named component logger carrying run_id and family from ctx.
func LoggerFromContext(ctx context.Context, component string) *zap.SugaredLogger {
	l := ComponentLogger(component)
	if fields := FieldsFromContext(ctx); len(fields) > 0 {
		return l.With(fields...)
	}
	return l
}

// ComponentLogger returns a named logger for a specific component.
//
// Example:
//
//	log := logger.ComponentLogger("raster")
//	log.Warnw("converter failed", logger.FieldFile, path, logger.FieldError, err)
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
