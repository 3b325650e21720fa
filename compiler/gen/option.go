package gen

import (
	"log/slog"
	"path/filepath"
	"strings"
)

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the header comment of generated files.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithFilename sets the name of the file written to every package.
func WithFilename(name string) Option {
	return func(c *Config) error {
		if name == "" || filepath.Base(name) != name || !strings.HasSuffix(name, ".go") {
			return NewConfigError("Filename", name, "must be a .go file name without directories")
		}
		if strings.HasSuffix(name, "_test.go") {
			return NewConfigError("Filename", name, "must not be a test file")
		}
		c.Filename = name
		return nil
	}
}

// WithWorkers sets the number of packages generated in parallel.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return NewConfigError("Workers", n, "must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithLogger sets the logger generation progress is reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithPatterns sets the package patterns loaded when none are given on the
// command line.
func WithPatterns(patterns ...string) Option {
	return func(c *Config) error {
		c.Patterns = patterns
		return nil
	}
}
