package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"oneps/internal/core/config"
)

func TestFromConfig_WritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := FromConfig(config.Log{Level: "info", JSON: true, File: file, MaxSizeMB: 1})
	l.Info("like toggled")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "like toggled")
}

func TestFromConfig_LevelFilter(t *testing.T) {
	l, cleanup := FromConfig(config.Log{Level: "warn"})
	defer cleanup()
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestToWriter(t *testing.T) {
	file := filepath.Join(t.TempDir(), "gin.log")
	l, cleanup := FromConfig(config.Log{Level: "debug", JSON: true, File: file})
	w := ToWriter(l, zapcore.InfoLevel)
	_, err := w.Write([]byte("[GIN-debug] GET /health\n"))
	require.NoError(t, err)
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[GIN-debug] GET /health")
}

func TestFromConfig_FileHasNoColorCodes(t *testing.T) {
	file := filepath.Join(t.TempDir(), "console.log")
	l, cleanup := FromConfig(config.Log{Level: "info", File: file})
	l.Warn("upload rejected")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "WARN")
	assert.NotContains(t, string(b), "\x1b[")
}
