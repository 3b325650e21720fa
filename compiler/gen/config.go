package gen

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// DefaultFilename is the name of the file written to every package.
const DefaultFilename = "sqlxplus_gen.go"

// DefaultHeader is the header comment of generated files.
const DefaultHeader = "Code generated by sqlxplus. DO NOT EDIT."

// Config holds the generator configuration. It can be read from a YAML file:
//
//	header: Code generated by sqlxplus. DO NOT EDIT.
//	filename: sqlxplus_gen.go
//	workers: 4
//	patterns:
//	  - ./models/...
type Config struct {
	Header   string   `yaml:"header"`
	Filename string   `yaml:"filename"`
	Workers  int      `yaml:"workers"`
	Patterns []string `yaml:"patterns"`

	Logger *slog.Logger `yaml:"-"`
}

// NewConfig returns a configuration with defaults applied before opts.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	c.defaults()
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadConfig reads a YAML configuration file and applies opts on top of it.
// A missing file yields the default configuration.
func LoadConfig(path string, opts ...Option) (*Config, error) {
	c := &Config{}
	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("gen: opening %s: %w", path, err)
	default:
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("gen: decoding %s: %w", path, err)
		}
	}
	if c.Workers < 0 {
		return nil, NewConfigError("Workers", c.Workers, "must not be negative")
	}
	if c.Filename != "" {
		if err := WithFilename(c.Filename)(c); err != nil {
			return nil, err
		}
	}
	c.defaults()
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Config) defaults() {
	if c.Header == "" {
		c.Header = DefaultHeader
	}
	if c.Filename == "" {
		c.Filename = DefaultFilename
	}
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
