package contract

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the structured logger described by cfg. The returned
// closer releases the log file, if one was opened.
func NewLogger(cfg *Config) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	switch cfg.LogFormat {
	case JSONLogFormat:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.LogFile == "" {
		logger.SetOutput(os.Stderr)
		return logger, io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %q: %w", cfg.LogFile, err)
	}
	logger.SetOutput(f)
	return logger, f, nil
}

// NewDiscardLogger returns a logger that drops everything. Tests and the
// MCP server's stdio mode use it.
func NewDiscardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
