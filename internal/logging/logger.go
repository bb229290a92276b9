// Package logging builds the shared zap logger from runtime configuration.
package logging

import (
	"go.uber.org/zap"
)

// New returns a structured logger. Format is "console" or "json"; an
// unparseable level falls back to info.
func New(level, format string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
		cfg.Encoding = "console"
	} else {
		cfg.Encoding = "json"
	}

	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		parsed = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Level = parsed

	return cfg.Build()
}

// Nop returns a disabled logger for tests and library callers that do not
// care about output.
func Nop() *zap.Logger {
	return zap.NewNop()
}
