// Package config handles configuration for the relay server, including
// defaults, JSON overlay, environment variables, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

const defaultSecretKey = "change_me"

// DefaultSystemPrompt is used when neither SystemPrompt nor SystemPromptFile
// is configured. The translation and answer structure live here as data so
// deployments can swap them without a rebuild.
const DefaultSystemPrompt = "You are a conservative Baptist biblical counselor.\n" +
	"Rules:\n" +
	"1) Answer using only the NKJV Bible.\n" +
	"2) Provide a modern-language, biblically accurate, practical explanation.\n" +
	"3) Include a short, relevant Charles Spurgeon quote when apt.\n" +
	"4) If Scripture is silent, say so and apply general biblical principles.\n" +
	"Tone: clear, compassionate, reverent."

// Config holds runtime settings for the relay server.
//
// Token settings:
//   - SecretKey signs session tokens (HS256). ResetSecretKey signs password
//     reset tokens and falls back to SecretKey when empty.
//   - ClockSkewLeeway is applied to iat/exp checks on every decode.
//
// External trust root: set ExternalJWKSURL for an asymmetric issuer, or
// ExternalSecretKey for an issuer that shares an HS256 secret. With neither
// set only locally issued tokens are accepted.
type Config struct {
	EndpointAddrHTTP string   `env:"HTTP_ADDR"`
	EndpointAddrGRPC string   `env:"GRPC_ADDR"`
	DatabaseDSN      string   `env:"DATABASE_DSN"`
	LogLevel         string   `env:"LOG_LEVEL"`
	Production       bool     `env:"PRODUCTION"`
	AllowedOrigins   []string `env:"FRONTEND_ORIGIN" envSeparator:","`

	SecretKey                    string        `env:"JWT_SECRET"`
	ResetSecretKey               string        `env:"RESET_JWT_SECRET"`
	SessionTokenValidityDuration time.Duration `env:"SESSION_TOKEN_TTL"`
	ResetTokenValidityDuration   time.Duration `env:"RESET_TOKEN_TTL"`
	ClockSkewLeeway              time.Duration `env:"JWT_CLOCK_LEEWAY"`
	ResetURLBase                 string        `env:"RESET_URL_BASE"`

	ExternalJWKSURL    string        `env:"EXTERNAL_JWKS_URL"`
	ExternalSecretKey  string        `env:"EXTERNAL_JWT_SECRET"`
	ExternalAudience   string        `env:"EXTERNAL_AUDIENCE"`
	ExternalIssuer     string        `env:"EXTERNAL_ISSUER"`
	ExternalAlgorithms []string      `env:"EXTERNAL_ALGORITHMS" envSeparator:","`
	KeyCacheTTL        time.Duration `env:"KEY_CACHE_TTL"`
	KeyFetchTimeout    time.Duration `env:"KEY_FETCH_TIMEOUT"`

	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL"`
	Model            string        `env:"OPENAI_MODEL"`
	Temperature      float64       `env:"OPENAI_TEMPERATURE"`
	ProviderTimeout  time.Duration `env:"PROVIDER_TIMEOUT"`
	HistoryLimit     int           `env:"CHAT_HISTORY_LIMIT"`
	SystemPrompt     string        `env:"SYSTEM_PROMPT"`
	SystemPromptFile string        `env:"SYSTEM_PROMPT_FILE"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey is insecure and Validate refuses it in production mode.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.EndpointAddrGRPC = ""
	c.DatabaseDSN = "memory"
	c.LogLevel = "info"
	c.Production = false
	c.AllowedOrigins = []string{"*"}

	c.SecretKey = defaultSecretKey
	c.ResetSecretKey = ""
	c.SessionTokenValidityDuration = 30 * 24 * time.Hour
	c.ResetTokenValidityDuration = 60 * time.Minute
	c.ClockSkewLeeway = 10 * time.Second
	c.ResetURLBase = "http://localhost:3000/reset"

	c.ExternalAlgorithms = []string{"RS256", "ES256"}
	c.KeyCacheTTL = time.Hour
	c.KeyFetchTimeout = 5 * time.Second

	c.Model = "gpt-4o-mini"
	c.Temperature = 0.4
	c.ProviderTimeout = 30 * time.Second
	c.HistoryLimit = 16
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment, and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// EffectiveResetSecret returns the key used for password reset tokens.
func (c *Config) EffectiveResetSecret() string {
	if c.ResetSecretKey != "" {
		return c.ResetSecretKey
	}
	return c.SecretKey
}

// LoadSystemPrompt returns the system prompt, reading SystemPromptFile when
// it is set.
func (c *Config) LoadSystemPrompt() (string, error) {
	if c.SystemPromptFile != "" {
		b, err := os.ReadFile(c.SystemPromptFile)
		if err != nil {
			return "", fmt.Errorf("reading system prompt: %w", err)
		}
		return string(b), nil
	}
	if c.SystemPrompt != "" {
		return c.SystemPrompt, nil
	}
	return DefaultSystemPrompt, nil
}

// Validate reports settings that would make the server unsafe or unusable.
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key must not be empty"))
	}
	if c.Production && c.SecretKey == defaultSecretKey {
		errs = append(errs, errors.New("default secret key is not allowed in production"))
	}
	if c.HistoryLimit < 1 {
		errs = append(errs, errors.New("history limit must be at least 1"))
	}
	if (c.ExternalJWKSURL != "" || c.ExternalSecretKey != "") && c.ExternalAudience == "" {
		errs = append(errs, errors.New("external audience is required when an external issuer is configured"))
	}
	for name, d := range map[string]time.Duration{
		"session token ttl": c.SessionTokenValidityDuration,
		"reset token ttl":   c.ResetTokenValidityDuration,
		"provider timeout":  c.ProviderTimeout,
		"key cache ttl":     c.KeyCacheTTL,
		"key fetch timeout": c.KeyFetchTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.ClockSkewLeeway < 0 {
		errs = append(errs, errors.New("clock skew leeway must not be negative"))
	}

	return errors.Join(errs...)
}
