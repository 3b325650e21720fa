package gen

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultHeader, cfg.Header)
	assert.Equal(t, DefaultFilename, cfg.Filename)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Workers)
	assert.NotNil(t, cfg.Logger)
	assert.Empty(t, cfg.Patterns)
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{name: "header", opt: WithHeader("// custom"), check: func(t *testing.T, c *Config) { assert.Equal(t, "// custom", c.Header) }},
		{name: "filename", opt: WithFilename("insert_gen.go"), check: func(t *testing.T, c *Config) { assert.Equal(t, "insert_gen.go", c.Filename) }},
		{name: "filename_empty", opt: WithFilename(""), wantErr: true},
		{name: "filename_dir", opt: WithFilename("gen/insert_gen.go"), wantErr: true},
		{name: "filename_ext", opt: WithFilename("insert_gen.txt"), wantErr: true},
		{name: "filename_test", opt: WithFilename("insert_test.go"), wantErr: true},
		{name: "workers", opt: WithWorkers(3), check: func(t *testing.T, c *Config) { assert.Equal(t, 3, c.Workers) }},
		{name: "workers_zero", opt: WithWorkers(0), wantErr: true},
		{name: "logger_nil", opt: WithLogger(nil), wantErr: true},
		{name: "logger", opt: WithLogger(slog.Default()), check: func(t *testing.T, c *Config) { assert.Same(t, slog.Default(), c.Logger) }},
		{name: "patterns", opt: WithPatterns("./models/..."), check: func(t *testing.T, c *Config) { assert.Equal(t, []string{"./models/..."}, c.Patterns) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(tt.opt)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigError(err))
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sqlxplus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
header: Code generated by tests. DO NOT EDIT.
filename: insert_gen.go
workers: 2
patterns:
  - ./models/...
  - ./audit
`)
	cfg, err := LoadConfig(path, WithWorkers(5))
	require.NoError(t, err)
	assert.Equal(t, "Code generated by tests. DO NOT EDIT.", cfg.Header)
	assert.Equal(t, "insert_gen.go", cfg.Filename)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, []string{"./models/...", "./audit"}, cfg.Patterns)
}

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "sqlxplus.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultFilename, cfg.Filename)

	cfg, err = LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultHeader, cfg.Header)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		msg     string
	}{
		{name: "unknown_field", content: "output: gen\n", msg: "field output not found"},
		{name: "negative_workers", content: "workers: -1\n", msg: "must not be negative"},
		{name: "bad_filename", content: "filename: gen/out.go\n", msg: "without directories"},
		{name: "bad_yaml", content: "workers: [\n", msg: "decoding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
