// Package flagx contains helpers for components that each parse only their own
// subset of the process command line.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the arguments in args that belong to allowedFlags,
// together with their values.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
//
// A token that starts with '-' is never consumed as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name := strings.SplitN(arg, "=", 2)[0]
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigFileFlag extracts the JSON config path given via -c or -config.
// It returns an empty string when neither is present.
func ConfigFileFlag(args []string) string {
	return stringFlag(args, "config", "c", "Path to config file")
}

// EnvFileFlag extracts the dotenv path given via -env. It returns an empty
// string when the flag is absent.
func EnvFileFlag(args []string) string {
	return stringFlag(args, "env", "", "Path to .env file")
}

func stringFlag(args []string, long, short, usage string) string {
	var value string

	names := []string{"-" + long}
	if short != "" {
		names = append(names, "-"+short)
	}

	fs := flag.NewFlagSet(long, flag.ContinueOnError)
	fs.StringVar(&value, long, "", usage)
	if short != "" {
		fs.StringVar(&value, short, "", usage+" (short)")
	}
	_ = fs.Parse(FilterArgs(args, names))

	return value
}
