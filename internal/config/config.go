// Package config aggregates runtime configuration for both the API server and
// the terminal dashboard. Values come from a YAML file (CONFIG_PATH or
// configs/config.yaml) with environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Anomaly AnomalyConfig `yaml:"anomaly"`
	Client  ClientConfig  `yaml:"client"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

// AnomalyConfig drives the anomaly service and its backing stores.
type AnomalyConfig struct {
	CacheTTL    time.Duration  `yaml:"cacheTtl"`
	DatasetPath string         `yaml:"datasetPath"`
	Valkey      ValkeyConfig   `yaml:"valkey"`
	Postgres    PostgresConfig `yaml:"postgres"`
}

// ValkeyConfig contains connection information for the response cache.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PostgresConfig contains DSN and pooling settings for the sample store.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ClientConfig controls the dashboard's dispatcher.
type ClientConfig struct {
	APIBaseURL string `yaml:"apiBaseUrl"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Anomaly: AnomalyConfig{
			CacheTTL: 15 * time.Minute,
		},
		Client: ClientConfig{
			APIBaseURL: "http://localhost:8080",
		},
	}
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("ANOMALY_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Anomaly.CacheTTL = parsed
		}
	}
	if v := os.Getenv("ANOMALY_DATASET"); v != "" {
		cfg.Anomaly.DatasetPath = v
	}
	if v := os.Getenv("ANOMALY_VALKEY_ENABLED"); v != "" {
		cfg.Anomaly.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("ANOMALY_VALKEY_ADDR"); v != "" {
		cfg.Anomaly.Valkey.Addr = v
	}
	if v := os.Getenv("ANOMALY_POSTGRES_DSN"); v != "" {
		cfg.Anomaly.Postgres.DSN = v
	}
	if v := os.Getenv("ANOMALY_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Anomaly.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("ANOMALY_POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Anomaly.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("GREENZONE_API_URL"); v != "" {
		cfg.Client.APIBaseURL = v
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Address) == "" {
		return errors.New("http.address must not be empty")
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
		return errors.New("http timeouts must be positive")
	}
	if strings.TrimSpace(c.Client.APIBaseURL) == "" {
		return errors.New("client.apiBaseUrl must not be empty")
	}
	return nil
}
