package config

import "strings"

// ApplyDefaults fills every zero-valued field in cfg with its spec.md §6
// default. Called before the YAML/environment overlay in Load, so anything
// the overlay sets takes precedence.
func ApplyDefaults(cfg *Config) {
	applyNetworkDefaults(&cfg.Server.Network)
	applyDBDefaults(&cfg.Server.DB)
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)
}

func applyNetworkDefaults(cfg *NetworkConfig) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 6379
	}
	if cfg.RootUser == "" {
		cfg.RootUser = "root"
	}
	if cfg.RootPassword == "" {
		cfg.RootPassword = "password"
	}
	if cfg.User == "" {
		cfg.User = "user"
	}
	if cfg.Password == "" {
		cfg.Password = "password"
	}
}

func applyDBDefaults(cfg *DBConfig) {
	if cfg.Path == "" {
		cfg.Path = "./.db/internal"
	}
	if cfg.BackupPath == "" {
		cfg.BackupPath = "./.db/backup"
	}
	if cfg.BackupInterval == 0 {
		cfg.BackupInterval = 3600
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// newEnvReplacer maps dotted config paths (server.network.port) to the
// GOKV_-prefixed environment variable shape (GOKV_SERVER_NETWORK_PORT)
// that viper's AutomaticEnv lookup expects.
func newEnvReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}
