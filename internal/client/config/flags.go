package config

import (
	"flag"
	"os"
	"time"

	"github.com/faithchat/relay/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Only -a, -t and -s are considered; everything else in os.Args is ignored.
func parseFlags(cfg *Config) {
	args := flagx.Select(os.Args[1:], "-a", "-t", "-s")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the relay")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.BoolVar(&cfg.Stream, "s", cfg.Stream, "stream replies")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
