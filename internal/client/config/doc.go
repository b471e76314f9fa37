// Package config loads runtime configuration for the relay chat CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment: RELAY_URL, RELAY_TIMEOUT, RELAY_STREAM.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the relay
//	-t int      request timeout (seconds)
//	-s bool     stream replies
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "request_timeout": "60s",
//	  "stream": true
//	}
package config
