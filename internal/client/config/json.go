package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/faithchat/relay/internal/flagx"
	"github.com/faithchat/relay/internal/timex"
)

// JsonConfig is the on-disk form of Config. Absent keys keep the values the
// struct was seeded with.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	Stream         bool           `json:"stream"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Read or decode errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	jc := JsonConfig{
		ServerURL:      cfg.ServerURL,
		RequestTimeout: timex.Duration{Duration: cfg.RequestTimeout},
		Stream:         cfg.Stream,
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerURL = jc.ServerURL
	cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	cfg.Stream = jc.Stream
}
