// Package logging builds the zap loggers used by the CLI and sessions.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger flavour.
type Config struct {
	Verbose bool   `mapstructure:"verbose"` // development encoder, debug level
	Level   string `mapstructure:"level"`   // production level: debug, info, warn, error
}

// New builds a logger writing to stderr so command output on stdout stays
// machine-readable.
func New(cfg Config) (*zap.Logger, error) {
	var z zap.Config
	if cfg.Verbose {
		z = zap.NewDevelopmentConfig()
	} else {
		z = zap.NewProductionConfig()
		if cfg.Level != "" {
			level, err := zapcore.ParseLevel(cfg.Level)
			if err != nil {
				return nil, fmt.Errorf("log level: %w", err)
			}
			z.Level = zap.NewAtomicLevelAt(level)
		}
	}
	z.OutputPaths = []string{"stderr"}
	z.ErrorOutputPaths = []string{"stderr"}

	logger, err := z.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Nop returns a sugared logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
