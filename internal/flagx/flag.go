// Package flagx layers command-line flags and environment variables over
// config structs whose fields are owned by several parsers.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// lookupEnv is a seam for tests.
var lookupEnv = os.LookupEnv

// FilterArgs keeps only the flags named in allowedFlags, with their values.
// Both "-c conf.json" and "-c=conf.json" forms are recognized. A token that
// starts with '-' is never taken as a value. The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]bool, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = true
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if allowed[name] {
				filtered = append(filtered, arg)
			}
			continue
		}

		if !allowed[arg] {
			continue
		}
		filtered = append(filtered, arg)
		if next := i + 1; next < len(args) && !strings.HasPrefix(args[next], "-") {
			filtered = append(filtered, args[next])
			i = next
		}
	}
	return filtered
}

// ConfigPath returns the JSON config file named by -c or -config in args,
// or "" when neither is given. When both appear the last one wins.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}

// OverlayEnv sets *dst from PREFIX_NAME for every NAME in vars whose
// variable is set and non-empty. Secrets such as DSNs and API keys are meant
// to come in this way rather than on the command line.
func OverlayEnv(prefix string, vars map[string]*string) {
	for name, dst := range vars {
		if v, ok := lookupEnv(prefix + "_" + name); ok && v != "" {
			*dst = v
		}
	}
}
