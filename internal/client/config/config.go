package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the relay chat CLI.
//
// Fields:
//   - ServerURL: base URL of the relay's HTTP endpoint.
//   - RequestTimeout: upper bound on a single request, streaming included.
//   - Stream: print replies as they arrive instead of waiting for the whole text.
type Config struct {
	ServerURL      string        `env:"RELAY_URL"`
	RequestTimeout time.Duration `env:"RELAY_TIMEOUT"`
	Stream         bool          `env:"RELAY_STREAM"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 60 * time.Second
	c.Stream = true
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

func parseEnv(cfg *Config) {
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}
}
