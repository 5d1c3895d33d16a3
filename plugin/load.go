package plugin

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/ardnew/stuart/log"
)

// Loader finds and compiles plugin manifests.
type Loader struct {
	logger log.Logger
	search []string
}

// LoaderOption configures a [Loader].
type LoaderOption func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(logger log.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// WithSearchPath replaces the directories scanned for manifests. The default
// is [SearchPath] with no extra directories.
func WithSearchPath(dirs ...string) LoaderOption {
	return func(l *Loader) { l.search = slices.Clone(dirs) }
}

// NewLoader returns a loader with the given options applied.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{search: SearchPath()}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load compiles the manifests named by paths, each a manifest file or a
// directory containing [ManifestName], and then every manifest found in the
// search path. A plugin name seen twice is an error unless the later one
// comes from the search path, in which case it is skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*Plugin, error) {
	var (
		plugins []*Plugin
		names   = make(map[string]string)
	)

	add := func(path string, explicit bool) error {
		m, err := ReadManifest(path)
		if err != nil {
			return err
		}

		if prev, ok := names[m.Name]; ok {
			if !explicit {
				l.logger.DebugContext(ctx, "plugin shadowed",
					slog.String("name", m.Name),
					slog.String("path", path),
					slog.String("by", prev))

				return nil
			}

			return ErrLoad.With(
				slog.String("name", m.Name),
				slog.String("path", path),
				slog.String("previous", prev),
			)
		}

		p, err := m.Compile()
		if err != nil {
			return ErrLoad.With(slog.String("path", path)).Wrap(err)
		}

		names[p.Name] = path
		plugins = append(plugins, p)

		l.logger.TraceContext(ctx, "plugin loaded",
			slog.String("name", p.Name),
			slog.String("version", p.Version),
			slog.Int("functions", len(p.Functions)),
			slog.Int("parsers", len(p.Parsers)),
			slog.String("path", path))

		return nil
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, ErrLoad.Wrap(err).With(slog.String("path", path))
		}

		if info.IsDir() {
			path = filepath.Join(path, ManifestName)
		}

		err = add(path, true)
		if err != nil {
			return nil, err
		}
	}

	for _, dir := range l.search {
		found, err := discover(dir)
		if err != nil {
			return nil, err
		}

		for _, path := range found {
			err = add(path, false)
			if err != nil {
				return nil, err
			}
		}
	}

	return plugins, nil
}

// discover lists dir/*/plugin.yml in lexical order. A missing directory has
// no manifests.
func discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, ErrLoad.Wrap(err).With(slog.String("path", dir))
	}

	var found []string

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		path := filepath.Join(dir, e.Name(), ManifestName)

		_, err := os.Stat(path)
		if err == nil {
			found = append(found, path)
		}
	}

	return found, nil
}
