package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays values from environment variables named in the env
// struct tags of Config. Unset variables leave fields untouched. Malformed
// values (a bad duration, say) panic like malformed flags do.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
