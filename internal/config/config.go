package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds all configuration for the application.
// Values come from defaults, an optional YAML file named by CONFIG_FILE,
// an optional .env file and the environment, in increasing priority.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Catalog  CatalogConfig
	Metrics  MetricsConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type AuthConfig struct {
	APIKeys []string // Valid API keys for catalog changes
}

type StorageConfig struct {
	Driver         string
	DatabaseURL    string
	ConnectRetries int
}

// CatalogConfig lists catalog blobs imported at startup
type CatalogConfig struct {
	SeedFiles     []string
	SeedURLs      []string
	SeedOverwrite bool
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from the environment and optional files
func Load() (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("port"),
			Host:            v.GetString("host"),
			ReadTimeout:     v.GetInt("read_timeout"),
			WriteTimeout:    v.GetInt("write_timeout"),
			ShutdownTimeout: v.GetInt("shutdown_timeout"),
		},
		Auth: AuthConfig{
			APIKeys: getList(v, "api_keys"),
		},
		Storage: StorageConfig{
			Driver:         strings.ToLower(v.GetString("storage_driver")),
			DatabaseURL:    v.GetString("database_url"),
			ConnectRetries: v.GetInt("db_connect_retries"),
		},
		Catalog: CatalogConfig{
			SeedFiles:     getList(v, "catalog_seed_files"),
			SeedURLs:      getList(v, "catalog_seed_urls"),
			SeedOverwrite: v.GetBool("catalog_seed_overwrite"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics_enabled"),
			Path:    v.GetString("metrics_path"),
		},
		LogLevel: v.GetString("log_level"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("read_timeout", 15)
	v.SetDefault("write_timeout", 15)
	v.SetDefault("shutdown_timeout", 30)
	v.SetDefault("api_keys", "apitest")
	v.SetDefault("storage_driver", StorageMemory)
	v.SetDefault("database_url", "")
	v.SetDefault("db_connect_retries", 5)
	v.SetDefault("catalog_seed_files", "")
	v.SetDefault("catalog_seed_urls", "")
	v.SetDefault("catalog_seed_overwrite", false)
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("metrics_path", "/metrics")
	v.SetDefault("log_level", "info")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	if len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("at least one API key must be configured")
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("invalid storage driver: %s (must be memory or postgres)", c.Storage.Driver)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("METRICS_PATH must start with /")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// getList reads a comma separated string from the environment or a list from the config file
func getList(v *viper.Viper, key string) []string {
	var items []string
	switch raw := v.Get(key).(type) {
	case string:
		items = strings.Split(raw, ",")
	default:
		items = cast.ToStringSlice(raw)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
