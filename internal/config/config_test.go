package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caredesk/caredesk/internal/theme"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func TestDefaultConfigIsValid(t *testing.T) {
	isolate(t)
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8787", cfg.API.BaseURL)
	assert.Equal(t, filepath.Join(dir, "data", "caredesk", "caredesk.db"), cfg.Database.Path)
	assert.Equal(t, theme.ModeSystem, cfg.DefaultThemeMode())
	assert.Equal(t, 5*time.Second, cfg.Theme.PollInterval)
}

func TestLoadReadsDefaultConfigDir(t *testing.T) {
	dir := isolate(t)
	configDir := filepath.Join(dir, "config", "caredesk")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("theme:\n  default_mode: dark\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, theme.ModeDark, cfg.DefaultThemeMode())
}

func TestLoadExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "caredesk.yaml")
	content := `
api:
  base_url: https://hospital.example.com/api
  timeout: 30s
logging:
  level: debug
  format: json
theme:
  default_mode: light
  poll_interval: 2s
registration:
  fee_cents: 25000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://hospital.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, theme.ModeLight, cfg.DefaultThemeMode())
	assert.Equal(t, 2*time.Second, cfg.Theme.PollInterval)
	assert.Equal(t, int64(25000), cfg.Registration.FeeCents)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "caredesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme:\n  default_mode: light\n"), 0o644))

	t.Setenv("CAREDESK_THEME_DEFAULT_MODE", "dark")
	t.Setenv("CAREDESK_DATABASE_PATH", "~/caredesk-test.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, theme.ModeDark, cfg.DefaultThemeMode())

	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, "caredesk-test.db"), cfg.Database.Path)
}

func TestValidate(t *testing.T) {
	isolate(t)
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative base url", func(c *Config) { c.API.BaseURL = "localhost:8787" }},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"empty db path", func(c *Config) { c.Database.Path = " " }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad theme mode", func(c *Config) { c.Theme.DefaultMode = "sepia" }},
		{"fast polling", func(c *Config) { c.Theme.PollInterval = time.Millisecond }},
		{"negative fee", func(c *Config) { c.Registration.FeeCents = -1 }},
		{"no devserver addr", func(c *Config) { c.DevServer.Addr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDefaultConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/caredesk", DefaultConfigDir())

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".config", "caredesk"), DefaultConfigDir())
}
