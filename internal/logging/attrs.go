package logging

import (
	"context"
	"log/slog"
	"time"
)

// Attr mirrors slog.Attr so call sites can stay on this package's helpers.
type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func Uint64(key string, value uint64) Attr { return slog.Uint64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

// Error wraps an error for structured output under the "error" key.
func Error(err error) Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

// Group nests attributes under a dotted prefix in console output.
func Group(key string, attrs ...Attr) Attr {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return slog.Group(key, args...)
}

// Alert marks a record for operator attention.
func Alert(value string) Attr {
	return slog.String(FieldAlert, value)
}

// Args converts attrs into the variadic any form expected by slog methods.
func Args(attrs ...Attr) []any {
	out := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, attr)
	}
	return out
}

// NewNop returns a logger that discards every record.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger stamps every record with the given component name.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(String(FieldComponent, component))
}

// HasAttrKey reports whether any attr carries the given key.
func HasAttrKey(attrs []Attr, key string) bool {
	for _, attr := range attrs {
		if attr.Key == key {
			return true
		}
	}
	return false
}

// WarnWithContext logs a warning stamped with context fields plus default
// event metadata when the caller supplied none.
func WarnWithContext(ctx context.Context, logger *slog.Logger, msg string, attrs ...Attr) {
	if logger == nil {
		return
	}
	merged := withDefaults(ctx, attrs, "warning")
	logger.Warn(msg, Args(merged...)...)
}

// ErrorWithContext logs an error stamped with context fields plus default
// event metadata when the caller supplied none.
func ErrorWithContext(ctx context.Context, logger *slog.Logger, msg string, attrs ...Attr) {
	if logger == nil {
		return
	}
	merged := withDefaults(ctx, attrs, "error")
	if !HasAttrKey(merged, FieldErrorHint) {
		merged = append(merged, String(FieldErrorHint, "check logs for details"))
	}
	logger.Error(msg, Args(merged...)...)
}

func withDefaults(ctx context.Context, attrs []Attr, eventType string) []Attr {
	merged := append(ContextFields(ctx), attrs...)
	if !HasAttrKey(merged, FieldEventType) {
		merged = append(merged, String(FieldEventType, eventType))
	}
	return merged
}

// NoopHandler drops all records.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }
func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler        { return NoopHandler{} }
func (NoopHandler) WithGroup(string) slog.Handler             { return NoopHandler{} }
