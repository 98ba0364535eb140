// Package config loads the usergate configuration: built-in defaults, then an
// optional YAML file, then USERGATE_* environment variables, then validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"usergate/internal/core"
	"usergate/internal/keys"
	"usergate/internal/notify"
)

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Rules   RulesConfig   `yaml:"rules"`
	Keys    KeysConfig    `yaml:"keys"`
	Notify  NotifyConfig  `yaml:"notify"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	Protect         bool          `yaml:"protect"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RootRedirect    string        `yaml:"root_redirect"`
}

// LogConfig configures the root logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RulesConfig tunes the versioned validation rules.
type RulesConfig struct {
	V1MinorThreshold float64 `yaml:"v1_minor_threshold"`
	V1RequireAge     bool    `yaml:"v1_require_age"`
	V2UpdateAge      string  `yaml:"v2_update_age"`
}

// KeysConfig configures the API key pool.
type KeysConfig struct {
	PoolSize       int                `yaml:"pool_size"`
	Length         int                `yaml:"length"`
	ReplenishBelow int                `yaml:"replenish_below"`
	AuthMode       string             `yaml:"auth_mode"`
	Storage        keys.StorageConfig `yaml:"storage"`
}

// NotifyConfig configures issuance delivery.
type NotifyConfig struct {
	Driver  string        `yaml:"driver"`
	Timeout time.Duration `yaml:"timeout"`
}

// WebhookConfig configures the payment webhook.
type WebhookConfig struct {
	EventType string `yaml:"event_type"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	rules := core.DefaultRulesConfig()
	return Config{
		Server: ServerConfig{
			Address:         ":3000",
			ShutdownTimeout: 10 * time.Second,
			RootRedirect:    "/healthz",
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Rules: RulesConfig{
			V1MinorThreshold: rules.V1MinorThreshold,
			V1RequireAge:     rules.V1RequireAge,
			V2UpdateAge:      string(rules.V2UpdateAge),
		},
		Keys: KeysConfig{
			PoolSize: 100,
			Length:   keys.DefaultKeyLength,
			AuthMode: string(keys.AuthAny),
			Storage: keys.StorageConfig{
				Driver:    keys.StorageFilesystem,
				Path:      keys.DefaultRecordPath,
				ObjectKey: keys.DefaultObjectKey,
			},
		},
		Notify:  NotifyConfig{Driver: string(notify.DriverLog), Timeout: notify.DefaultTimeout},
		Webhook: WebhookConfig{EventType: "checkout.session.completed"},
	}
}

// Load builds the configuration. An empty path skips the file layer; a
// named file that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- operator supplied config path
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address must be set"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Rules.V1MinorThreshold < 0 {
		errs = append(errs, errors.New("rules.v1_minor_threshold must not be negative"))
	}
	switch core.UpdateAgePolicy(c.Rules.V2UpdateAge) {
	case "", core.UpdateAgeNonNegative, core.UpdateAgeBounded:
	default:
		errs = append(errs, fmt.Errorf("rules.v2_update_age %q must be %s or %s", c.Rules.V2UpdateAge, core.UpdateAgeNonNegative, core.UpdateAgeBounded))
	}
	if c.Keys.PoolSize < 0 {
		errs = append(errs, errors.New("keys.pool_size must not be negative"))
	}
	if c.Keys.Length <= 0 {
		errs = append(errs, errors.New("keys.length must be positive"))
	}
	if c.Keys.ReplenishBelow < 0 || c.Keys.ReplenishBelow > c.Keys.PoolSize {
		errs = append(errs, errors.New("keys.replenish_below must be between 0 and keys.pool_size"))
	}
	if _, err := keys.ParseAuthMode(c.Keys.AuthMode); err != nil {
		errs = append(errs, fmt.Errorf("keys.auth_mode: %w", err))
	}
	switch c.Keys.Storage.Driver {
	case "", keys.StorageFilesystem, keys.StorageMemory, keys.StorageSQLite, keys.StoragePostgres:
	case keys.StorageS3:
		if c.Keys.Storage.S3.Bucket == "" {
			errs = append(errs, errors.New("keys.storage.s3.bucket must be set for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown keys.storage.driver %q", c.Keys.Storage.Driver))
	}
	switch notify.Driver(c.Notify.Driver) {
	case "", notify.DriverLog, notify.DriverNone:
	default:
		errs = append(errs, fmt.Errorf("unknown notify.driver %q", c.Notify.Driver))
	}
	if c.Notify.Timeout <= 0 {
		errs = append(errs, errors.New("notify.timeout must be positive"))
	}
	return errors.Join(errs...)
}

// RulesConfig converts the rules section for the core package.
func (c Config) RulesConfig() core.RulesConfig {
	return core.RulesConfig{
		V1MinorThreshold: c.Rules.V1MinorThreshold,
		V1RequireAge:     c.Rules.V1RequireAge,
		V2UpdateAge:      core.UpdateAgePolicy(c.Rules.V2UpdateAge),
	}
}
