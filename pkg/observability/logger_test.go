package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:       LogLevelInfo,
		Format:      LogFormatText,
		Output:      &buf,
		ServiceName: "timeboard",
	})

	logger.Info("hello", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "hello")
	assert.Contains(t, output, "key=value")
	assert.Contains(t, output, "service=timeboard")
}

func TestNewLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:          LogLevelInfo,
		Format:         LogFormatJSON,
		Output:         &buf,
		ServiceName:    "timeboard",
		ServiceVersion: "1.2.3",
	})

	logger.Info("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "timeboard", record["service"])
	assert.Equal(t, "1.2.3", record["version"])
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:  LogLevelWarn,
		Format: LogFormatText,
		Output: &buf,
	})

	logger.Info("quiet")
	logger.Warn("loud")

	output := buf.String()
	assert.NotContains(t, output, "quiet")
	assert.Contains(t, output, "loud")
}

func TestLoggerStampsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:  LogLevelInfo,
		Format: LogFormatJSON,
		Output: &buf,
	})

	ctx := WithCorrelationID(context.Background(), "test-correlation-id")
	logger.InfoContext(ctx, "test message")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "test-correlation-id")
}

func TestWithCorrelationIDGeneratesWhenEmpty(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")
	assert.NotEmpty(t, CorrelationIDFromContext(ctx))

	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()

	assert.Equal(t, LogLevelInfo, cfg.Level)
	assert.Equal(t, LogFormatText, cfg.Format)
	assert.Equal(t, "timeboard", cfg.ServiceName)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, parseLevel(LogLevelDebug).String(), "DEBUG")
	assert.Equal(t, parseLevel(LogLevelWarn).String(), "WARN")
	assert.Equal(t, parseLevel(LogLevelError).String(), "ERROR")
	assert.Equal(t, parseLevel(LogLevel("bogus")).String(), "INFO")
}
