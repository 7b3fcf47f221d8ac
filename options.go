package unigram

import (
	"log/slog"
	"runtime"
)

// Option configures a Processor.
type Option func(*config)

type config struct {
	poolSize int
	logger   *slog.Logger
	addBOS   bool
	addEOS   bool
}

func defaultConfig() config {
	return config{
		poolSize: runtime.NumCPU(),
		logger:   slog.Default(),
	}
}

// WithPoolSize sets the number of segmentation workspaces used by
// EncodeBatch (default: runtime.NumCPU()).
func WithPoolSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBOS prepends the beginning-of-sequence id to every encoding.
func WithBOS(enabled bool) Option {
	return func(c *config) {
		c.addBOS = enabled
	}
}

// WithEOS appends the end-of-sequence id to every encoding.
func WithEOS(enabled bool) Option {
	return func(c *config) {
		c.addEOS = enabled
	}
}
