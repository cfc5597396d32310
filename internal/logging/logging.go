// Package logging builds the application logger.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/Marlvin12/perfit/internal/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// TimestampFormat is used for every log line
const TimestampFormat = "2006-01-02 15:04:05.000"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a logger from the log config. LOG_LEVEL in the environment
// takes precedence over the configured level. When a file is configured,
// output goes to stderr and to a rotating file; the returned closer closes
// the file.
func New(cfg config.LogConfig) (*logrus.Logger, io.Closer) {
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: TimestampFormat,
	})

	logger.SetLevel(logrus.InfoLevel)
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	}

	if cfg.File == "" {
		return logger, nopCloser{}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		logger.Warnf("Failed to create log directory for %s: %v", cfg.File, err)
		return logger, nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		LocalTime:  true,
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, rotator))

	return logger, rotator
}
