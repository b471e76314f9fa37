// Package flagx lets several independent flag sets share one command line.
// Each consumer picks out only the flags it owns and parses those, so an
// unknown flag meant for another consumer never aborts parsing.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// Select returns the subset of args that belong to the named flags, keeping
// their values. Both "-k v" and "-k=v" forms are recognised. A value is taken
// from the next argument only when that argument does not start with "-".
func Select(args []string, names ...string) []string {
	owned := make(map[string]bool, len(names))
	for _, n := range names {
		owned[n] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		if name, _, found := strings.Cut(arg, "="); found {
			if owned[name] {
				out = append(out, arg)
			}
			continue
		}
		if !owned[arg] {
			continue
		}
		out = append(out, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			out = append(out, args[i])
		}
	}
	return out
}

// ConfigPath extracts the JSON config file path given by -c or -config.
// It returns "" when neither is present.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(Select(args, "-c", "-config", "--config"))

	return path
}
