package logging

import (
	"context"
	"log/slog"
)

// Shared structured log field names.
const (
	FieldComponent = "component"
	FieldMeeting   = "meeting_id"
	FieldSeason    = "season"
	FieldEpisode   = "episode"
	FieldTaskID    = "task_id"
	FieldOutcome   = "outcome"
)

// NewComponentLogger tags every record with the owning component.
func NewComponentLogger(base *slog.Logger, component string) *slog.Logger {
	if base == nil {
		return NewNop()
	}
	return base.With(slog.String(FieldComponent, component))
}

// Error wraps an error as a slog attribute, tolerating nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NoopHandler drops all records.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }
func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler        { return NoopHandler{} }
func (NoopHandler) WithGroup(string) slog.Handler             { return NoopHandler{} }
