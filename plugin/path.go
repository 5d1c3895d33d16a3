package plugin

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/stuart/pkg"
)

// PathEnv names the environment variable holding a list of plugin search
// directories, separated by [os.PathListSeparator].
var PathEnv = strings.ToUpper(pkg.Name) + "_PLUGIN_PATH"

// SearchPath returns the plugin search directories: dirs first, then the
// entries of [PathEnv], then [pkg.PluginDir]. Duplicates and empty entries
// are removed, keeping the first occurrence.
func SearchPath(dirs ...string) []string {
	sep := string(os.PathListSeparator)

	list := mung.Make(
		mung.WithSubjectItems(pkg.PluginDir()),
		mung.WithDelim(sep),
		mung.WithPrefixItems(append(dirs, os.Getenv(PathEnv))...),
		mung.WithFilter(func(s string) bool { return strings.TrimSpace(s) != "" }),
	).String()

	var out []string

	seen := make(map[string]bool)

	for _, dir := range filepath.SplitList(list) {
		if strings.TrimSpace(dir) == "" {
			continue
		}

		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			out = append(out, dir)
		}
	}

	return out
}
