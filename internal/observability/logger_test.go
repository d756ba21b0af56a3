// File: internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/riku-sakamoto/manabo-cli/internal/config"
)

// initForTest initializes the global logger against an in-memory buffer so
// assertions can read what was written.
func initForTest(t *testing.T, cfg config.LoggerConfig) *bytes.Buffer {
	t.Helper()
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(cfg, zapcore.AddSync(&buf))
	return &buf
}

func TestInitializeConsoleLoggerWithColors(t *testing.T) {
	buf := initForTest(t, config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "TestService",
		Colors:      config.ColorConfig{Info: "green"},
	})

	GetLogger().Info("This is a test message.")

	output := buf.String()
	assert.Contains(t, output, "INFO", "Output should contain the log level")
	assert.Contains(t, output, "This is a test message.", "Output should contain the message")
	assert.Contains(t, output, colorGreen, "Info level should be colorized green")
	assert.Contains(t, output, colorReset, "Output should contain the reset color code")
	assert.Contains(t, output, "TestService.", "Output should carry the service name")
}

func TestInitializeJSONLogger(t *testing.T) {
	buf := initForTest(t, config.LoggerConfig{
		Level:       "info",
		Format:      "json",
		ServiceName: "JSONTest",
	})

	GetLogger().Warn("This is a JSON message.", zap.String("key", "value"))

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry), "Log output should be valid JSON")
	assert.Equal(t, "WARN", logEntry["level"])
	assert.Equal(t, "This is a JSON message.", logEntry["msg"])
	assert.Equal(t, "value", logEntry["key"])
}

func TestLogLevelFiltering(t *testing.T) {
	buf := initForTest(t, config.LoggerConfig{
		Level:       "warn",
		Format:      "json",
		ServiceName: "FilterTest",
	})

	logger := GetLogger()
	logger.Info("should be filtered out")
	logger.Warn("should appear")

	output := buf.String()
	assert.NotContains(t, output, "should be filtered out")
	assert.Contains(t, output, "should appear")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	buf := initForTest(t, config.LoggerConfig{
		Level:       "not-a-level",
		Format:      "json",
		ServiceName: "FallbackTest",
	})

	logger := GetLogger()
	logger.Debug("debug suppressed at info")
	logger.Info("info passes")

	output := buf.String()
	assert.NotContains(t, output, "debug suppressed at info")
	assert.Contains(t, output, "info passes")
}

func TestGetLoggerBeforeInitialization(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	// Requesting the logger before initialization yields a usable fallback
	// rather than nil.
	assert.NotNil(t, GetLogger())
}
