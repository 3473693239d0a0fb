package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes registry events to an slog.Logger.
// Useful for development when you want to see the trace in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("registry_id", event.RegistryID),
		slog.String("category", event.Category.String()),
	}
	if event.URI != "" {
		attrs = append(attrs, slog.String("uri", event.URI))
	}

	switch {
	case event.Lifecycle != nil:
		attrs = append(attrs, slog.String("action", event.Lifecycle.Action.String()))
		if event.Lifecycle.Count > 0 {
			attrs = append(attrs, slog.Int("count", event.Lifecycle.Count))
		}
	case event.Dispatch != nil:
		attrs = append(attrs,
			slog.String("operation", event.Dispatch.Operation.String()),
			slog.String("status", event.Dispatch.Status.String()),
			slog.Int("size", event.Dispatch.Size),
			slog.Duration("processing_time", event.Dispatch.ProcessingTime),
		)
		if event.Dispatch.Error != "" {
			attrs = append(attrs, slog.String("error", event.Dispatch.Error))
		}
	case event.Observe != nil:
		attrs = append(attrs, slog.String("action", event.Observe.Action.String()))
		if event.Observe.ObservationID != "" {
			attrs = append(attrs, slog.String("observation_id", event.Observe.ObservationID))
		}
		if event.Observe.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.Observe.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "registry", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
