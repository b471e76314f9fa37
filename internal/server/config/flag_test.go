package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		seed        *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-g", ":50051", "-d", "db", "-s", "secret", "-r", "reset",
			"-t", "60", "-x", "15", "-l", "debug", "-m", "gpt-4o", "-p=true",
		}, expected: &Config{
			EndpointAddrHTTP:             "127.0.0.1:9090",
			EndpointAddrGRPC:             ":50051",
			DatabaseDSN:                  "db",
			SecretKey:                    "secret",
			ResetSecretKey:               "reset",
			SessionTokenValidityDuration: time.Hour,
			ResetTokenValidityDuration:   15 * time.Minute,
			LogLevel:                     "debug",
			Model:                        "gpt-4o",
			Production:                   true,
		}},
		{name: "absent ttl flags keep finer durations", args: []string{"cmd", "-l", "warn"},
			seed: &Config{SessionTokenValidityDuration: 30 * time.Second, ResetTokenValidityDuration: 90 * time.Second},
			expected: &Config{
				SessionTokenValidityDuration: 30 * time.Second,
				ResetTokenValidityDuration:   90 * time.Second,
				LogLevel:                     "warn",
			}},
		{name: "bad int panics", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}
			if tt.seed != nil {
				*config = *tt.seed
			}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
