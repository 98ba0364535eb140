package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usergate/internal/core"
	"usergate/internal/keys"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "usergate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Server.Address)
	assert.False(t, cfg.Server.Protect)
	assert.Equal(t, keys.StorageFilesystem, cfg.Keys.Storage.Driver)
	assert.Equal(t, keys.DefaultRecordPath, cfg.Keys.Storage.Path)
	assert.Equal(t, core.DefaultRulesConfig(), cfg.RulesConfig())
	assert.Equal(t, "checkout.session.completed", cfg.Webhook.EventType)
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  address: "127.0.0.1:8080"
  protect: true
  shutdown_timeout: 3s
rules:
  v1_require_age: false
  v2_update_age: bounded
keys:
  pool_size: 5
  auth_mode: issued
  storage:
    driver: s3
    object_key: pool.json
    s3:
      bucket: keys-bucket
      path_style: true
notify:
  timeout: 250ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Address)
	assert.True(t, cfg.Server.Protect)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.False(t, cfg.Rules.V1RequireAge)
	assert.Equal(t, 18.0, cfg.Rules.V1MinorThreshold, "unset fields keep defaults")
	assert.Equal(t, core.UpdateAgeBounded, cfg.RulesConfig().V2UpdateAge)
	assert.Equal(t, 5, cfg.Keys.PoolSize)
	assert.Equal(t, keys.StorageS3, cfg.Keys.Storage.Driver)
	assert.Equal(t, "keys-bucket", cfg.Keys.Storage.S3.Bucket)
	assert.True(t, cfg.Keys.Storage.S3.PathStyle)
	assert.Equal(t, 250*time.Millisecond, cfg.Notify.Timeout)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  address: \":9000\"\n")
	t.Setenv("PORT", "4000")
	t.Setenv("USERGATE_PROTECT", "yes")
	t.Setenv("USERGATE_POOL_SIZE", "7")
	t.Setenv("USERGATE_STORAGE_DRIVER", "sqlite")
	t.Setenv("USERGATE_SQLITE_PATH", "/tmp/keys.db")
	t.Setenv("USERGATE_V1_MINOR_THRESHOLD", "17")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.Server.Address)
	assert.True(t, cfg.Server.Protect)
	assert.Equal(t, 7, cfg.Keys.PoolSize)
	assert.Equal(t, keys.StorageSQLite, cfg.Keys.Storage.Driver)
	assert.Equal(t, "/tmp/keys.db", cfg.Keys.Storage.SQLitePath)
	assert.Equal(t, 17.0, cfg.Rules.V1MinorThreshold)

	t.Setenv("USERGATE_ADDRESS", "0.0.0.0:5000")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Address)
}

func TestEnvRejectsMalformedValues(t *testing.T) {
	for name, value := range map[string]string{
		"USERGATE_PROTECT":            "maybe",
		"USERGATE_POOL_SIZE":          "many",
		"USERGATE_NOTIFY_TIMEOUT":     "soon",
		"USERGATE_V1_MINOR_THRESHOLD": "eighteen",
		"PORT":                        "http",
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	_, err = Load(writeConfig(t, "server: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"address":        func(c *Config) { c.Server.Address = "" },
		"shutdown":       func(c *Config) { c.Server.ShutdownTimeout = 0 },
		"threshold":      func(c *Config) { c.Rules.V1MinorThreshold = -1 },
		"update policy":  func(c *Config) { c.Rules.V2UpdateAge = "lenient" },
		"length":         func(c *Config) { c.Keys.Length = 0 },
		"replenish":      func(c *Config) { c.Keys.ReplenishBelow = c.Keys.PoolSize + 1 },
		"auth mode":      func(c *Config) { c.Keys.AuthMode = "everyone" },
		"storage driver": func(c *Config) { c.Keys.Storage.Driver = "tape" },
		"s3 bucket":      func(c *Config) { c.Keys.Storage.Driver = keys.StorageS3 },
		"notify driver":  func(c *Config) { c.Notify.Driver = "pigeon" },
		"notify timeout": func(c *Config) { c.Notify.Timeout = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Defaults()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Defaults().Validate())
}
