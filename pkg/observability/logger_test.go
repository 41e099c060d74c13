package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:       LogLevelInfo,
		Format:      LogFormatText,
		Output:      &buf,
		ServiceName: "availsync-test",
	})

	logger.Info("hello", "key", "value")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "key=value")
	assert.Contains(t, out, "service=availsync-test")
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:          LogLevelInfo,
		Format:         LogFormatJSON,
		Output:         &buf,
		ServiceName:    "availsync-test",
		ServiceVersion: "1.2.3",
	})

	logger.Info("structured message")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "structured message", entry["msg"])
	assert.Equal(t, "availsync-test", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:  LogLevelWarn,
		Format: LogFormatText,
		Output: &buf,
	})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
}

func TestNewLogger_CorrelationIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:  LogLevelInfo,
		Format: LogFormatText,
		Output: &buf,
	})

	ctx := WithCorrelationID(context.Background(), "corr-123")
	logger.InfoContext(ctx, "with correlation")

	assert.Contains(t, buf.String(), "correlation_id=corr-123")
}

func TestWithCorrelationID_GeneratesWhenEmpty(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")
	id := CorrelationIDFromContext(ctx)
	require.NotEmpty(t, id)
	assert.Len(t, strings.Split(id, "-"), 5)
}

func TestDiagnostics_GatedByFlag(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:  LogLevelDebug,
		Format: LogFormatText,
		Output: &buf,
	})

	enabled := false
	diag := NewDiagnostics(logger, func(context.Context) bool { return enabled })

	diag.Log(context.Background(), "suppressed message")
	assert.Empty(t, buf.String())

	enabled = true
	diag.Log(context.Background(), "visible message", "booking_id", "b-1")
	out := buf.String()
	assert.Contains(t, out, "visible message")
	assert.Contains(t, out, "booking_id=b-1")
}

func TestDiagnostics_NilReceiverIsSafe(t *testing.T) {
	var diag *Diagnostics
	assert.NotPanics(t, func() {
		diag.Log(context.Background(), "ignored")
		diag.Debug(context.Background(), "ignored")
	})
}
