// Package config loads CareDesk settings from defaults, a YAML file and
// CAREDESK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/caredesk/caredesk/internal/registration"
	"github.com/caredesk/caredesk/internal/theme"
)

// EnvPrefix is prepended to every environment override, e.g.
// CAREDESK_API_BASE_URL.
const EnvPrefix = "CAREDESK"

// Config is the full application configuration.
type Config struct {
	API          APIConfig          `mapstructure:"api"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Theme        ThemeConfig        `mapstructure:"theme"`
	Registration RegistrationConfig `mapstructure:"registration"`
	DevServer    DevServerConfig    `mapstructure:"devserver"`
}

// APIConfig points the client at the hospital API.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig locates the local SQLite file.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig controls zerolog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// ThemeConfig holds appearance settings.
type ThemeConfig struct {
	// DefaultMode applies until a saved mode is loaded, and when none exists.
	DefaultMode  string        `mapstructure:"default_mode"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// RegistrationConfig holds wizard settings.
type RegistrationConfig struct {
	FeeCents int64 `mapstructure:"fee_cents"`
}

// DevServerConfig configures `caredesk devserver`.
type DevServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8787",
			Timeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(DefaultDataDir(), "caredesk.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Theme: ThemeConfig{
			DefaultMode:  string(theme.ModeSystem),
			PollInterval: 5 * time.Second,
		},
		Registration: RegistrationConfig{
			FeeCents: registration.DefaultRegistrationFeeCents,
		},
		DevServer: DevServerConfig{
			Addr: "127.0.0.1:8787",
		},
	}
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/caredesk, falling back to
// ~/.config/caredesk.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "caredesk")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "caredesk")
}

// DefaultDataDir returns $XDG_DATA_HOME/caredesk, falling back to
// ~/.local/share/caredesk.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "caredesk")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "caredesk")
}

// Load reads the configuration. An explicit path must exist; without one
// config.yaml is looked up in DefaultConfigDir and may be absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Database.Path = expandHome(cfg.Database.Path)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("theme.default_mode", d.Theme.DefaultMode)
	v.SetDefault("theme.poll_interval", d.Theme.PollInterval)
	v.SetDefault("registration.fee_cents", d.Registration.FeeCents)
	v.SetDefault("devserver.addr", d.DevServer.Addr)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path is required")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	if _, err := theme.ParseMode(c.Theme.DefaultMode); err != nil {
		return fmt.Errorf("theme.default_mode: %w", err)
	}
	if c.Theme.PollInterval < 100*time.Millisecond {
		return fmt.Errorf("theme.poll_interval must be at least 100ms, got %s", c.Theme.PollInterval)
	}
	if c.Registration.FeeCents < 0 {
		return fmt.Errorf("registration.fee_cents cannot be negative")
	}
	if c.DevServer.Addr == "" {
		return fmt.Errorf("devserver.addr is required")
	}
	return nil
}

// DefaultThemeMode returns the parsed theme.default_mode, or system when it
// does not parse.
func (c *Config) DefaultThemeMode() theme.Mode {
	mode, err := theme.ParseMode(c.Theme.DefaultMode)
	if err != nil {
		return theme.ModeSystem
	}
	return mode
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
