package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Marlvin12/perfit/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Level(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	logger, closer := New(config.LogConfig{Level: "debug"})
	defer closer.Close()
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	formatter, ok := logger.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.Equal(t, TimestampFormat, formatter.TimestampFormat)
}

func TestNew_EnvOverridesConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	logger, closer := New(config.LogConfig{Level: "debug"})
	defer closer.Close()
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	logger, closer := New(config.LogConfig{Level: "chatty"})
	defer closer.Close()
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNew_File(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "logs", "perfit.log")

	logger, closer := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1})
	logger.Info("detector started")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "detector started")
}
