package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usergate/internal/config"
)

func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	record := filepath.Join(dir, "data", "api-keys.json")
	cfgPath := filepath.Join(dir, "usergate.yaml")
	body := "log:\n  level: error\nkeys:\n  pool_size: 4\n  storage:\n    driver: fs\n    path: " + record + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))
	return cfgPath, record
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestKeysGenerateAndStats(t *testing.T) {
	cfgPath, record := writeConfig(t)

	out, err := execute(t, "--config", cfgPath, "keys", "generate", "--target", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "added 6 keys")

	out, err = execute(t, "--config", cfgPath, "keys", "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "added 0 keys", "pool_size 4 is already satisfied")

	out, err = execute(t, "-c", cfgPath, "keys", "stats")
	require.NoError(t, err)
	var stats map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, map[string]int{"available": 6, "used": 0, "total": 6}, stats)

	raw, err := os.ReadFile(record)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"availableKeys"`)
	assert.Contains(t, string(raw), `"usedKeys"`)
}

func TestKeysGenerateRejectsNegativeTarget(t *testing.T) {
	cfgPath, _ := writeConfig(t)
	_, err := execute(t, "--config", cfgPath, "keys", "generate", "--target", "-1")
	assert.Error(t, err)
}

func TestBadConfigFails(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "keys", "stats")
	assert.Error(t, err)
}

func TestAppServesWiredRoutes(t *testing.T) {
	cfgPath, record := writeConfig(t)
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg.Notify.Driver = "none"

	ctx := context.Background()
	a, err := newApp(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)

	srv := httptest.NewServer(a.handler)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v2/api/users", "application/json", strings.NewReader(`{"name":"Anna Lee","age":30}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/get-api-key", "application/json", strings.NewReader(`{"email":"a@example.com"}`))
	require.NoError(t, err)
	var issued struct {
		APIKey string `json:"apiKey"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&issued))
	_ = resp.Body.Close()
	assert.Len(t, issued.APIKey, cfg.Keys.Length)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	metrics, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Contains(t, string(metrics), `usergate_keys_pool_size{partition="used"} 1`)
	assert.Contains(t, string(metrics), "usergate_service_operations_total")

	require.NoError(t, a.close(ctx))
	raw, err := os.ReadFile(record)
	require.NoError(t, err)
	assert.Contains(t, string(raw), issued.APIKey)
}
