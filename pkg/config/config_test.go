package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "http://localhost:8000", cfg.BackendURL)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	assert.Equal(t, "openrouter", cfg.Defaults.Provider)
	assert.Equal(t, "anthropic/claude-sonnet-4", cfg.Defaults.Model)
	assert.Equal(t, "all", cfg.Defaults.FilterMode)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.True(t, filepath.IsAbs(cfg.StateDir), "state dir is expanded: %s", cfg.StateDir)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
backend_url: https://impact.example.com
timeout: 90s
state_dir: `+filepath.Join(dir, "state")+`
defaults:
  repo: acme/shop
  provider: anthropic
logger:
  level: debug
  format: json
`), 0o600))

	t.Setenv("PR_IMPACT_DEFAULTS_MODEL", "claude-sonnet-4")

	cfg, err := Load(viper.New(), file)
	require.NoError(t, err)

	assert.Equal(t, "https://impact.example.com", cfg.BackendURL)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, filepath.Join(dir, "state"), cfg.StateDir)
	assert.Equal(t, "acme/shop", cfg.Defaults.Repo)
	assert.Equal(t, "anthropic", cfg.Defaults.Provider)
	assert.Equal(t, "claude-sonnet-4", cfg.Defaults.Model)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoadBackendURLFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PR_IMPACT_BACKEND_URL", "http://analysis:9000")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "http://analysis:9000", cfg.BackendURL)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := *NewDefaultConfig()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"relative url", func(c *Config) { c.BackendURL = "localhost:8000" }, "backend_url"},
		{"ftp url", func(c *Config) { c.BackendURL = "ftp://x" }, "backend_url"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"no state dir", func(c *Config) { c.StateDir = "" }, "state_dir"},
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }, "logger.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}
