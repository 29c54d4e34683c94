package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, logger.Level())

	dev, err := New(DevelopmentConfig())
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, dev.Level())
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestSetLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	require.NoError(t, logger.SetLevel("debug"))
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	assert.Error(t, logger.SetLevel("loud"))
	assert.Equal(t, zapcore.DebugLevel, logger.Level())
	assert.NoError(t, logger.Close())
}

func TestNop(t *testing.T) {
	logger := NewNop()
	logger.Info("discarded")
	assert.NoError(t, logger.SetLevel("warn"))
}
