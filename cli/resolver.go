package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve is a [kong.ConfigurationLoader] for YAML configuration files.
//
// Top-level keys set global flags. A mapping under a command name sets that
// command's flags, and wins over a top-level key of the same name:
//
//	log_level: debug
//	log_pretty: false
//	build:
//	  progress: true
//	  plugin: [~/site-plugins/feeds]
//
// Keys may use hyphens or underscores. Command-line flags override the file.
// A file that does not decode yields no values rather than an error, so a
// broken user configuration never prevents the program from starting.
func resolve(r io.Reader) (kong.Resolver, error) {
	var raw map[string]any

	err := yaml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return config{}, nil //nolint:nilerr
	}

	return config(normalize(raw)), nil
}

// config implements [kong.Resolver] over a decoded configuration file.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
	key := normalizeKey(flag.Name)

	for _, name := range commandPath(kctx, parent) {
		section, ok := c[name].(map[string]any)
		if !ok {
			continue
		}

		if v, ok := section[key]; ok {
			return flagValue(v), nil
		}
	}

	if v, ok := c[key]; ok {
		if _, isSection := v.(map[string]any); !isSection {
			return flagValue(v), nil
		}
	}

	return nil, nil //nolint:nilnil
}

// commandPath returns the names of the selected commands, innermost first.
func commandPath(kctx *kong.Context, parent *kong.Path) []string {
	var names []string

	if parent != nil && parent.Command != nil {
		names = append(names, normalizeKey(parent.Command.Name))
	}

	if kctx != nil {
		if cmd := kctx.Selected(); cmd != nil {
			for node := cmd; node != nil && node.Type == kong.CommandNode; node = node.Parent {
				names = append(names, normalizeKey(node.Name))
			}
		}
	}

	return names
}

func normalizeKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "-", "_")
}

// normalize rewrites keys to their underscore form at every level.
func normalize(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))

	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			v = normalize(sub)
		}

		out[normalizeKey(k)] = v
	}

	return out
}

// flagValue converts decoded YAML into the form kong parses: numbers as
// strings, lists element by element.
func flagValue(v any) any {
	switch t := v.(type) {
	case uint64:
		return strconv.FormatUint(t, 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = flagValue(e)
		}

		return out
	default:
		return v
	}
}
