// Package flagx picks the flags one component owns out of a shared
// command line, so the config loader can run several flag sets over
// os.Args without any of them failing on the others' flags.
package flagx

import (
	"flag"
	"strings"
)

func isFlag(arg string) bool {
	return len(arg) > 1 && arg[0] == '-'
}

// flagName strips the leading dashes: "-c", "--c" and "c" are one flag.
func flagName(arg string) string {
	return strings.TrimLeft(arg, "-")
}

// FilterArgs returns only the allowed flags (and their values) from args.
// Allowed names match both single- and double-dash spellings, and nothing
// after a "--" terminator is considered.
//
// Supported formats:
//
//	-c conf.json        flag and value as separate arguments
//	--config=conf.json  flag and value joined with '='
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[flagName(f)] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if !isFlag(arg) {
			continue
		}

		name, _, joined := strings.Cut(arg, "=")
		if _, ok := allowed[flagName(name)]; !ok {
			continue
		}
		filtered = append(filtered, arg)

		// a following non-flag token is this flag's value
		if !joined && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFileFlag extracts the config file path given via -c or -config.
// It returns "" when neither flag is present; the last one given wins.
func ConfigFileFlag(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}
