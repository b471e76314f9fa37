package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	path := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"endpoint_addr_http":              "www.example:9000",
		"secret_key":                      "my_secret_key",
		"session_token_validity_duration": "24h",
		"clock_skew_leeway":               5000000000,
		"external_jwks_url":               "https://issuer.example/.well-known/jwks.json",
		"external_audience":               "authenticated",
		"history_limit":                   10,
		"production":                      true,
	})

	t.Run("loads from json, keeps absent keys", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 24*time.Hour, cfg.SessionTokenValidityDuration)
		assert.Equal(t, 5*time.Second, cfg.ClockSkewLeeway)
		assert.Equal(t, "https://issuer.example/.well-known/jwks.json", cfg.ExternalJWKSURL)
		assert.Equal(t, "authenticated", cfg.ExternalAudience)
		assert.Equal(t, 10, cfg.HistoryLimit)
		assert.True(t, cfg.Production)

		// untouched by the file
		assert.Equal(t, 60*time.Minute, cfg.ResetTokenValidityDuration)
		assert.Equal(t, "gpt-4o-mini", cfg.Model)
	})

	t.Run("no config flag leaves config unchanged", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{EndpointAddrHTTP: "defaults:1234", SecretKey: "key"}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-c", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
