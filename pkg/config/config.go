// Package config loads and validates gokv's settings tree: built-in
// defaults, overlaid by an optional YAML file, overlaid by GOKV_-prefixed
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the root of gokv's settings tree. It mirrors the dotted-path
// table in spec.md §6 exactly, plus ambient Logging and Metrics branches.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig groups the listener and persisted-store settings.
type ServerConfig struct {
	Network NetworkConfig `mapstructure:"network" yaml:"network"`
	DB      DBConfig      `mapstructure:"db" yaml:"db"`
}

// NetworkConfig controls the bind address and the two users seeded into the
// credential store at startup.
type NetworkConfig struct {
	Host string `mapstructure:"host" yaml:"host" validate:"required"`
	Port int    `mapstructure:"port" yaml:"port" validate:"required,min=1,max=65535"`

	RootUser     string `mapstructure:"root_user" yaml:"root_user" validate:"required"`
	RootPassword string `mapstructure:"root_password" yaml:"root_password" validate:"required,min=8"`

	User     string `mapstructure:"user" yaml:"user" validate:"required"`
	Password string `mapstructure:"password" yaml:"password" validate:"required,min=8"`
}

// DBConfig controls where the credential store lives on disk.
type DBConfig struct {
	Path           string `mapstructure:"path" yaml:"path" validate:"required"`
	BackupPath     string `mapstructure:"backup_path" yaml:"backup_path"`
	BackupInterval uint64 `mapstructure:"backup_interval" yaml:"backup_interval"`
}

// LoggingConfig controls the logger singleton's verbosity and output shape.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"required,oneof=DEBUG INFO WARN ERROR"`
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`
	Output string `mapstructure:"output" yaml:"output" validate:"required"`
}

// MetricsConfig configures the Prometheus metrics HTTP server. When Enabled
// is false, the counters are still incremented in-process but no scrape
// endpoint is mounted.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`
}

// Addr renders the metrics port as a "host:port" listen string, always
// bound to loopback since the scrape endpoint is not part of the public
// wire protocol surface.
func (m MetricsConfig) Addr() string {
	return fmt.Sprintf("127.0.0.1:%d", m.Port)
}

// Addr renders the network host/port as a "host:port" dial/listen string.
func (n NetworkConfig) Addr() string {
	return fmt.Sprintf("%s:%d", n.Host, n.Port)
}

var validate = validator.New()

// Load reads configuration from path (if non-empty and present), overlays
// GOKV_-prefixed environment variables, fills in defaults for anything
// still unset, and validates the result. path may be empty, in which case
// only defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GOKV")
	v.SetEnvKeyReplacer(newEnvReplacer())
	v.AutomaticEnv()
	// Bind every settings path so its GOKV_* variable applies even when the
	// path is absent from the config file.
	for _, key := range []string{
		"server.network.host", "server.network.port",
		"server.network.root_user", "server.network.root_password",
		"server.network.user", "server.network.password",
		"server.db.path", "server.db.backup_path", "server.db.backup_interval",
		"logging.level", "logging.format", "logging.output",
		"metrics.enabled", "metrics.port",
	} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	ApplyDefaults(cfg)

	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	// The overlay may supply a lower-case level; normalize it again.
	applyLoggingDefaults(&cfg.Logging)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad wraps Load with a friendlier, CLI-oriented error message.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gokv: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// Validate runs struct-tag validation over cfg.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SaveConfig writes cfg as YAML to path with 0600 permissions, since the
// network branch carries the root and regular user passwords in plaintext.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file %s: %w", path, err)
	}
	return nil
}

// DefaultConfigPath returns the conventional config file location under
// XDG_CONFIG_HOME (or ~/.config as a fallback).
func DefaultConfigPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "gokv", "config.yaml")
}
