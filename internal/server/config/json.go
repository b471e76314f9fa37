package config

import (
	"encoding/json"
	"os"

	"github.com/faithchat/relay/internal/flagx"
	"github.com/faithchat/relay/internal/timex"
)

// JsonConfig is the on-disk shape of the optional config file. Durations
// accept "1h"-style strings or integer nanoseconds. Keys absent from the
// file keep the value already present in Config.
type JsonConfig struct {
	EndpointAddrHTTP string   `json:"endpoint_addr_http"`
	EndpointAddrGRPC string   `json:"endpoint_addr_grpc"`
	DatabaseDSN      string   `json:"database_dsn"`
	LogLevel         string   `json:"log_level"`
	Production       bool     `json:"production"`
	AllowedOrigins   []string `json:"allowed_origins"`

	SecretKey                    string         `json:"secret_key"`
	ResetSecretKey               string         `json:"reset_secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	ResetTokenValidityDuration   timex.Duration `json:"reset_token_validity_duration"`
	ClockSkewLeeway              timex.Duration `json:"clock_skew_leeway"`
	ResetURLBase                 string         `json:"reset_url_base"`

	ExternalJWKSURL    string         `json:"external_jwks_url"`
	ExternalSecretKey  string         `json:"external_secret_key"`
	ExternalAudience   string         `json:"external_audience"`
	ExternalIssuer     string         `json:"external_issuer"`
	ExternalAlgorithms []string       `json:"external_algorithms"`
	KeyCacheTTL        timex.Duration `json:"key_cache_ttl"`
	KeyFetchTimeout    timex.Duration `json:"key_fetch_timeout"`

	OpenAIAPIKey     string         `json:"openai_api_key"`
	OpenAIBaseURL    string         `json:"openai_base_url"`
	Model            string         `json:"model"`
	Temperature      float64        `json:"temperature"`
	ProviderTimeout  timex.Duration `json:"provider_timeout"`
	HistoryLimit     int            `json:"history_limit"`
	SystemPrompt     string         `json:"system_prompt"`
	SystemPromptFile string         `json:"system_prompt_file"`

	StripeSecretKey     string `json:"stripe_secret_key"`
	StripeWebhookSecret string `json:"stripe_webhook_secret"`
}

// parseJson overlays values from the file named by -c/-config. Nothing
// happens when no file is given. An unreadable or invalid file panics,
// matching how flag errors are treated.
func parseJson(config *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}
	c.apply(config)
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrHTTP:             c.EndpointAddrHTTP,
		EndpointAddrGRPC:             c.EndpointAddrGRPC,
		DatabaseDSN:                  c.DatabaseDSN,
		LogLevel:                     c.LogLevel,
		Production:                   c.Production,
		AllowedOrigins:               c.AllowedOrigins,
		SecretKey:                    c.SecretKey,
		ResetSecretKey:               c.ResetSecretKey,
		SessionTokenValidityDuration: timex.Duration{Duration: c.SessionTokenValidityDuration},
		ResetTokenValidityDuration:   timex.Duration{Duration: c.ResetTokenValidityDuration},
		ClockSkewLeeway:              timex.Duration{Duration: c.ClockSkewLeeway},
		ResetURLBase:                 c.ResetURLBase,
		ExternalJWKSURL:              c.ExternalJWKSURL,
		ExternalSecretKey:            c.ExternalSecretKey,
		ExternalAudience:             c.ExternalAudience,
		ExternalIssuer:               c.ExternalIssuer,
		ExternalAlgorithms:           c.ExternalAlgorithms,
		KeyCacheTTL:                  timex.Duration{Duration: c.KeyCacheTTL},
		KeyFetchTimeout:              timex.Duration{Duration: c.KeyFetchTimeout},
		OpenAIAPIKey:                 c.OpenAIAPIKey,
		OpenAIBaseURL:                c.OpenAIBaseURL,
		Model:                        c.Model,
		Temperature:                  c.Temperature,
		ProviderTimeout:              timex.Duration{Duration: c.ProviderTimeout},
		HistoryLimit:                 c.HistoryLimit,
		SystemPrompt:                 c.SystemPrompt,
		SystemPromptFile:             c.SystemPromptFile,
		StripeSecretKey:              c.StripeSecretKey,
		StripeWebhookSecret:          c.StripeWebhookSecret,
	}
}

func (j *JsonConfig) apply(c *Config) {
	c.EndpointAddrHTTP = j.EndpointAddrHTTP
	c.EndpointAddrGRPC = j.EndpointAddrGRPC
	c.DatabaseDSN = j.DatabaseDSN
	c.LogLevel = j.LogLevel
	c.Production = j.Production
	c.AllowedOrigins = j.AllowedOrigins
	c.SecretKey = j.SecretKey
	c.ResetSecretKey = j.ResetSecretKey
	c.SessionTokenValidityDuration = j.SessionTokenValidityDuration.Duration
	c.ResetTokenValidityDuration = j.ResetTokenValidityDuration.Duration
	c.ClockSkewLeeway = j.ClockSkewLeeway.Duration
	c.ResetURLBase = j.ResetURLBase
	c.ExternalJWKSURL = j.ExternalJWKSURL
	c.ExternalSecretKey = j.ExternalSecretKey
	c.ExternalAudience = j.ExternalAudience
	c.ExternalIssuer = j.ExternalIssuer
	c.ExternalAlgorithms = j.ExternalAlgorithms
	c.KeyCacheTTL = j.KeyCacheTTL.Duration
	c.KeyFetchTimeout = j.KeyFetchTimeout.Duration
	c.OpenAIAPIKey = j.OpenAIAPIKey
	c.OpenAIBaseURL = j.OpenAIBaseURL
	c.Model = j.Model
	c.Temperature = j.Temperature
	c.ProviderTimeout = j.ProviderTimeout.Duration
	c.HistoryLimit = j.HistoryLimit
	c.SystemPrompt = j.SystemPrompt
	c.SystemPromptFile = j.SystemPromptFile
	c.StripeSecretKey = j.StripeSecretKey
	c.StripeWebhookSecret = j.StripeWebhookSecret
}
