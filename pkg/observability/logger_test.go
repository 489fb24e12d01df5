package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/helmcode/pr-impact/pkg/config"
)

func TestNewLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggerConfig{Level: "warn", Format: "console", ServiceName: "pr-impact"}, zapcore.AddSync(&buf))

	logger.Info("hidden")
	logger.Warn("shown", zap.String("key", "qai_scenarios_x"))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "pr-impact.")
	assert.Contains(t, out, "qai_scenarios_x")
}

func TestNewLoggerInvalidLevelFallsBackToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggerConfig{Level: "loud", Format: "json"}, zapcore.AddSync(&buf))
	logger.Info("hidden")
	logger.Error("shown")
	require.NoError(t, logger.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "shown", entry["msg"])
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pr-impact.log")
	var console bytes.Buffer
	logger := NewLogger(config.LoggerConfig{Level: "debug", Format: "console", LogFile: path, MaxSize: 1}, zapcore.AddSync(&console))
	logger.Debug("to file")
	require.NoError(t, logger.Sync())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"to file"`)
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	globalLogger.Store(nil)
	assert.NotNil(t, GetLogger())
	Sync()

	var buf bytes.Buffer
	l := Initialize(config.LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf))
	t.Cleanup(func() { globalLogger.Store(nil) })
	assert.Same(t, l, GetLogger())
}
