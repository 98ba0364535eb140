package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"usergate/internal/keys"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "USERGATE_"

// applyEnvOverrides overrides config values with environment variables if set.
// Invalid values fail fast.
func applyEnvOverrides(cfg *Config) error {
	// PORT is honoured for platforms that inject it; USERGATE_ADDRESS wins.
	if port := os.Getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Server.Address = ":" + port
	}
	setString(&cfg.Server.Address, "ADDRESS")
	if err := setBool(&cfg.Server.Protect, "PROTECT"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Server.ShutdownTimeout, "SHUTDOWN_TIMEOUT"); err != nil {
		return err
	}
	setString(&cfg.Server.RootRedirect, "ROOT_REDIRECT")

	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")

	if v := env("V1_MINOR_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sV1_MINOR_THRESHOLD %q: %w", EnvPrefix, v, err)
		}
		cfg.Rules.V1MinorThreshold = f
	}
	if err := setBool(&cfg.Rules.V1RequireAge, "V1_REQUIRE_AGE"); err != nil {
		return err
	}
	setString(&cfg.Rules.V2UpdateAge, "V2_UPDATE_AGE")

	for name, dst := range map[string]*int{
		"POOL_SIZE":       &cfg.Keys.PoolSize,
		"KEY_LENGTH":      &cfg.Keys.Length,
		"REPLENISH_BELOW": &cfg.Keys.ReplenishBelow,
	} {
		if err := setInt(dst, name); err != nil {
			return err
		}
	}
	setString(&cfg.Keys.AuthMode, "AUTH_MODE")

	st := &cfg.Keys.Storage
	if v := env("STORAGE_DRIVER"); v != "" {
		st.Driver = keys.StorageDriver(v)
	}
	setString(&st.Path, "KEYS_PATH")
	setString(&st.ObjectKey, "KEYS_OBJECT_KEY")
	setString(&st.SQLitePath, "SQLITE_PATH")
	setString(&st.PostgresDSN, "POSTGRES_DSN")
	setString(&st.S3.Bucket, "S3_BUCKET")
	setString(&st.S3.Region, "S3_REGION")
	setString(&st.S3.Prefix, "S3_PREFIX")
	setString(&st.S3.Endpoint, "S3_ENDPOINT")
	setString(&st.S3.AccessKeyID, "S3_ACCESS_KEY_ID")
	setString(&st.S3.SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	setString(&st.S3.SessionToken, "S3_SESSION_TOKEN")
	if err := setBool(&st.S3.PathStyle, "S3_PATH_STYLE"); err != nil {
		return err
	}

	setString(&cfg.Notify.Driver, "NOTIFY_DRIVER")
	if err := setDuration(&cfg.Notify.Timeout, "NOTIFY_TIMEOUT"); err != nil {
		return err
	}
	setString(&cfg.Webhook.EventType, "WEBHOOK_EVENT_TYPE")
	return nil
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + name))
}

func setString(dst *string, name string) {
	if v := env(name); v != "" {
		*dst = v
	}
}

func setInt(dst *int, name string) error {
	v := env(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, name, v, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, name string) error {
	v := env(name)
	if v == "" {
		return nil
	}
	b, err := parseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, name, v, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, name string) error {
	v := env(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, name, v, err)
	}
	*dst = d
	return nil
}

// parseBool accepts the usual strconv forms plus yes/no and on/off.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}
