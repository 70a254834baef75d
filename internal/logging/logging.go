// Package logging builds the zap logger. The TUI owns stdout and stderr,
// so diagnostics go to a file, or nowhere when no file is configured.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a production-encoded logger writing to path. An empty path
// yields a no-op logger.
func New(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return logger, nil
}
