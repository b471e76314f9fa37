package config

import (
	"flag"
	"os"
	"time"

	"github.com/faithchat/relay/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-g string   gRPC ops bind address, empty disables it
//	-d string   PostgreSQL DSN, or "memory"
//	-s string   session token HMAC secret
//	-r string   reset token HMAC secret
//	-t int      session token validity, minutes
//	-x int      reset token validity, minutes
//	-l string   log level
//	-m string   completion model
//	-p bool     production mode (use -p=true)
//
// Token lifetimes are given in whole minutes and converted to durations. They
// are only applied when the flag is present, so finer values from JSON or the
// environment survive.
func parseFlags(config *Config) {
	args := flagx.Select(os.Args[1:], "-a", "-g", "-d", "-s", "-r", "-t", "-x", "-l", "-m", "-p")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run gRPC ops server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session token secret key")
	fs.StringVar(&config.ResetSecretKey, "r", config.ResetSecretKey, "reset token secret key")

	sessionTTL := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")
	resetTTL := fs.Int("x", int(config.ResetTokenValidityDuration.Minutes()), "reset token validity (in minutes)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.Model, "m", config.Model, "completion model")
	fs.BoolVar(&config.Production, "p", config.Production, "production mode")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionTokenValidityDuration = time.Duration(*sessionTTL) * time.Minute
		case "x":
			config.ResetTokenValidityDuration = time.Duration(*resetTTL) * time.Minute
		}
	})
}
