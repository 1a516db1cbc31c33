// Package config loads and validates the engine configuration from YAML.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/signalmaster/signal-engine/pkg/errors"
	"github.com/signalmaster/signal-engine/pkg/marketdata"
)

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr" validate:"required"`
}

// DatabaseConfig configures the DuckDB store.
type DatabaseConfig struct {
	// Path is the database file, or ":memory:" for an ephemeral store.
	Path string `yaml:"path" validate:"required"`
}

// MarketDataConfig selects and configures the market data provider.
type MarketDataConfig struct {
	Provider      string `yaml:"provider" validate:"required,oneof=simulated polygon binance store"`
	PolygonAPIKey string `yaml:"polygon_api_key" validate:"required_if=Provider polygon"`
}

// WorkerConfig tunes the signal worker loop.
type WorkerConfig struct {
	BaseTick          time.Duration `yaml:"base_tick"`
	SubscriptionDelay time.Duration `yaml:"subscription_delay"`
	Bars              int           `yaml:"bars" validate:"omitempty,min=20"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`
}

// PushConfig configures push notification delivery.
type PushConfig struct {
	// Enabled switches between the Expo notifier and the log-only notifier.
	Enabled bool `yaml:"enabled"`
}

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	MarketData MarketDataConfig `yaml:"market_data"`
	Worker     WorkerConfig     `yaml:"worker"`
	Push       PushConfig       `yaml:"push"`
}

// DefaultConfig returns a configuration suitable for local development:
// in-memory database, simulated market data, push delivery disabled.
func DefaultConfig() Config {
	return Config{
		Server:     ServerConfig{Addr: ":8080"},
		Database:   DatabaseConfig{Path: ":memory:"},
		MarketData: MarketDataConfig{Provider: string(marketdata.ProviderSimulated)},
		Worker: WorkerConfig{
			BaseTick:          time.Minute,
			SubscriptionDelay: 500 * time.Millisecond,
			Bars:              marketdata.DefaultBars,
			FetchTimeout:      30 * time.Second,
		},
		Push: PushConfig{Enabled: false},
	}
}

// LoadConfig reads a YAML file over the defaults and validates the result.
// An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, errors.ErrCodeInvalidConfig, "failed to read config file %s", path)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(err, errors.ErrCodeInvalidConfig, "failed to parse config file")
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidConfig, "invalid config")
	}

	return nil
}
