package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8000", c.EndpointAddrHTTP)
	assert.Equal(t, "", c.EndpointAddrGRPC)
	assert.Equal(t, "memory", c.DatabaseDSN)
	assert.Equal(t, "change_me", c.SecretKey)
	assert.Equal(t, 30*24*time.Hour, c.SessionTokenValidityDuration)
	assert.Equal(t, 60*time.Minute, c.ResetTokenValidityDuration)
	assert.Equal(t, 10*time.Second, c.ClockSkewLeeway)
	assert.Equal(t, time.Hour, c.KeyCacheTTL)
	assert.Equal(t, 5*time.Second, c.KeyFetchTimeout)
	assert.Equal(t, 30*time.Second, c.ProviderTimeout)
	assert.Equal(t, 16, c.HistoryLimit)
	assert.Equal(t, "gpt-4o-mini", c.Model)
	assert.InDelta(t, 0.4, c.Temperature, 1e-9)
	assert.Equal(t, []string{"RS256", "ES256"}, c.ExternalAlgorithms)
	assert.False(t, c.Production)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c := LoadConfig()
	require.NotNil(t, c)

	assert.Equal(t, ":8000", c.EndpointAddrHTTP)
	assert.Equal(t, "change_me", c.SecretKey)
	assert.Equal(t, 30*24*time.Hour, c.SessionTokenValidityDuration)
}

func TestLoadConfig_SubMinuteTTLsFromEnv(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	t.Setenv("RESET_TOKEN_TTL", "90s")
	t.Setenv("SESSION_TOKEN_TTL", "30s")

	c := LoadConfig()

	assert.Equal(t, 90*time.Second, c.ResetTokenValidityDuration)
	assert.Equal(t, 30*time.Second, c.SessionTokenValidityDuration)
	require.NoError(t, c.Validate())
}

func TestValidate_ExternalIssuerNeedsAudience(t *testing.T) {
	var c Config
	c.LoadDefaults()

	jwks := c
	jwks.ExternalJWKSURL = "https://issuer.example/.well-known/jwks.json"
	err := jwks.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "external audience")

	shared := c
	shared.ExternalSecretKey = "shared"
	assert.Error(t, shared.Validate())

	jwks.ExternalAudience = "authenticated"
	assert.NoError(t, jwks.Validate())
}

func TestEffectiveResetSecret(t *testing.T) {
	c := &Config{SecretKey: "s"}
	assert.Equal(t, "s", c.EffectiveResetSecret())

	c.ResetSecretKey = "r"
	assert.Equal(t, "r", c.EffectiveResetSecret())
}

func TestLoadSystemPrompt(t *testing.T) {
	c := &Config{}
	p, err := c.LoadSystemPrompt()
	require.NoError(t, err)
	assert.Equal(t, DefaultSystemPrompt, p)

	c.SystemPrompt = "Answer using only the KJV."
	p, err = c.LoadSystemPrompt()
	require.NoError(t, err)
	assert.Equal(t, "Answer using only the KJV.", p)

	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o600))
	c.SystemPromptFile = path
	p, err = c.LoadSystemPrompt()
	require.NoError(t, err)
	assert.Equal(t, "from file", p)

	c.SystemPromptFile = filepath.Join(t.TempDir(), "missing.txt")
	_, err = c.LoadSystemPrompt()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	var c Config
	c.LoadDefaults()
	require.NoError(t, c.Validate())

	prod := c
	prod.Production = true
	assert.Error(t, prod.Validate(), "default secret must be refused in production")

	prod.SecretKey = "a-real-secret"
	assert.NoError(t, prod.Validate())

	bad := c
	bad.HistoryLimit = 0
	bad.ProviderTimeout = 0
	bad.ClockSkewLeeway = -time.Second
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history limit")
	assert.Contains(t, err.Error(), "provider timeout")
	assert.Contains(t, err.Error(), "clock skew")
}
