package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doped.log")
	logger, err := New(Config{
		Level:      "debug",
		Format:     "json",
		OutputPath: path,
		Fields:     map[string]string{"service": "doped"},
	})
	require.NoError(t, err)

	logger.Debug("hello", zap.Int("rows", 3))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"rows":3`)
	assert.Contains(t, string(data), `"service":"doped"`)
}

func TestNewFallsBackToInfo(t *testing.T) {
	logger, err := New(Config{Level: "loud", Format: "console"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestStageAndDataQuality(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := Stage(zap.New(core), "supply", zap.String("resource", "Coal"))

	DataQuality(logger, "Coal Supply", "missing values", zap.Int("rows", 2))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "supply", fields["stage"])
	assert.Equal(t, "Coal", fields["resource"])
	assert.Equal(t, "Coal Supply", fields["entity"])
	assert.Equal(t, int64(2), fields["rows"])
}

func TestStageNilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		Stage(nil, "classify").Info("ignored")
	})
}
