// Package logging builds the process logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/diewo77/school-billing/internal/config"
)

// New returns a JSON production logger, or a console development logger
// when cfg.Format is "console".
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
