package observability

import (
	"context"
	"log/slog"
)

// FlagFunc reports whether diagnostic logging is currently enabled.
type FlagFunc func(ctx context.Context) bool

// Diagnostics is the trace sink for reconciliation runs. Output is gated by
// an externally managed flag; the gate only suppresses output and never
// affects control flow.
type Diagnostics struct {
	logger  *slog.Logger
	enabled FlagFunc
}

// NewDiagnostics creates a diagnostic sink writing through the given logger.
// A nil enabled func means always on.
func NewDiagnostics(logger *slog.Logger, enabled FlagFunc) *Diagnostics {
	if logger == nil {
		logger = slog.Default()
	}
	if enabled == nil {
		enabled = func(context.Context) bool { return true }
	}
	return &Diagnostics{logger: logger, enabled: enabled}
}

// Log writes a diagnostic message when the flag is on.
func (d *Diagnostics) Log(ctx context.Context, msg string, args ...any) {
	if d == nil || !d.enabled(ctx) {
		return
	}
	d.logger.InfoContext(ctx, msg, args...)
}

// Debug writes a verbose diagnostic message when the flag is on.
func (d *Diagnostics) Debug(ctx context.Context, msg string, args ...any) {
	if d == nil || !d.enabled(ctx) {
		return
	}
	d.logger.DebugContext(ctx, msg, args...)
}
