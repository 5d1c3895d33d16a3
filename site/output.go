package site

import (
	"bytes"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// Directory and file modes for written output.
const (
	dirMode  os.FileMode = 0o755
	fileMode os.FileMode = 0o644
)

// MetadataName is the output file the build metadata is written to.
const MetadataName = "metadata.json"

// outputName returns the output path of doc before extension stripping,
// and whether doc produces output at all.
func outputName(doc *Document, cfg Config) (string, bool) {
	switch doc.Kind {
	case KindTemplate:
		return "", false

	case KindData:
		return doc.Path, cfg.SaveDataFiles

	case KindMarkdown:
		return strings.TrimSuffix(doc.Path, path.Ext(doc.Path)) + ".html", true

	case KindPlugin:
		if doc.parser.Output == "" {
			return doc.Path, true
		}

		return strings.TrimSuffix(doc.Path, path.Ext(doc.Path)) +
			normalizeExt(doc.parser.Output), true

	default:
		return doc.Path, true
	}
}

// outputPath returns the final output path of doc. With strip_extensions,
// "dir/name.html" becomes "dir/name/index.html" unless name is "index".
func outputPath(doc *Document, cfg Config) (string, bool) {
	name, ok := outputName(doc, cfg)
	if !ok {
		return "", false
	}

	if cfg.StripExtensions && path.Ext(name) == ".html" && path.Base(name) != "index.html" {
		name = path.Join(strings.TrimSuffix(name, ".html"), "index.html")
	}

	return name, true
}

func normalizeExt(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		return "." + ext
	}

	return ext
}

// target is a document and the output path it renders to.
type target struct {
	doc  *Document
	path string
}

// plan maps every output-producing document to its output path. Two
// documents resolving to the same path is [ErrDuplicateOutputPath].
func plan(tree *Tree, cfg Config) ([]target, error) {
	var (
		out  []target
		seen = make(map[string]string)
	)

	for _, doc := range tree.Documents() {
		p, ok := outputPath(doc, cfg)
		if !ok {
			continue
		}

		if prev, dup := seen[p]; dup {
			return nil, ErrDuplicateOutputPath.With(
				slog.String("output", p),
				slog.String("first", prev),
				slog.String("second", doc.Path),
			)
		}

		if cfg.SaveMetadata && p == MetadataName {
			return nil, ErrDuplicateOutputPath.With(
				slog.String("output", p),
				slog.String("first", doc.Path),
				slog.String("second", "build metadata"),
			)
		}

		seen[p] = doc.Path
		out = append(out, target{doc: doc, path: p})
	}

	return out, nil
}

// writeFile atomically replaces dir/name with data, creating parent
// directories as needed.
func writeFile(dir, name string, data []byte) error {
	dst := filepath.Join(dir, filepath.FromSlash(name))

	err := os.MkdirAll(filepath.Dir(dst), dirMode)
	if err != nil {
		return ErrWrite.Wrap(err).WithSource(dst)
	}

	err = atomic.WriteFile(dst, bytes.NewReader(data))
	if err != nil {
		return ErrWrite.Wrap(err).WithSource(dst)
	}

	// The temporary file atomic renames into place is owner-only.
	err = os.Chmod(dst, fileMode)
	if err != nil {
		return ErrWrite.Wrap(err).WithSource(dst)
	}

	return nil
}
