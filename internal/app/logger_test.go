package app

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevelFollowsEnvironment(t *testing.T) {
	dev := NewLogger(&Config{AppEnv: "development"})
	require.NotNil(t, dev)
	assert.True(t, dev.Enabled(context.Background(), slog.LevelDebug))

	prod := NewLogger(&Config{AppEnv: "production", LogFormat: "json"})
	require.NotNil(t, prod)
	assert.False(t, prod.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, prod.Enabled(context.Background(), slog.LevelInfo))
}

func TestNewLoggerNilConfig(t *testing.T) {
	logger := NewLogger(nil)
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}
