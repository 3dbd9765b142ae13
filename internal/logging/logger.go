// Package logging builds the zap loggers used by commands and the web server.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kozaktomas/face-groups/internal/config"
)

// NewLogger builds a structured logger. Format "json" uses the production
// encoder; anything else uses the human-readable console encoder.
func NewLogger(cfg config.LogConfig, verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}

	return zc.Build()
}

// WithOperation enriches the logger with operation and run identifiers.
func WithOperation(logger *zap.Logger, operation, runID string) *zap.Logger {
	fields := []zap.Field{zap.String("operation", operation)}
	if runID != "" {
		fields = append(fields, zap.String("run_id", runID))
	}
	return logger.With(fields...)
}
