package site

import (
	"path"
	"slices"
	"strings"

	"github.com/ardnew/stuart/lang"
)

// Metadata returns the build metadata document:
//
//	{"name": ..., "author": ..., "data": [entry, ...]}
//
// Each file entry is {"name", "type"} plus "value" for Markdown pages (the
// frontmatter) and JSON files (the parsed data). Each directory entry is
// {"type": "directory", "name", "children"}. Templates are omitted and
// entries are in name order.
func Metadata(tree *Tree, cfg Config) ([]byte, error) {
	root := newMetaDir()

	for _, doc := range tree.Documents() {
		if doc.Kind == KindTemplate {
			continue
		}

		dir := root
		if d := doc.Dir(); d != "" {
			for _, part := range strings.Split(d, "/") {
				dir = dir.child(part)
			}
		}

		name, value := fileEntry(doc, cfg)
		dir.entries = append(dir.entries, metaEntry{name: name, value: value})
	}

	fields := map[string]lang.Value{
		"name": lang.String(cfg.Name),
		"data": root.children(),
	}

	if cfg.Author != "" {
		fields["author"] = lang.String(cfg.Author)
	}

	return lang.Object(fields).MarshalJSON()
}

func fileEntry(doc *Document, cfg Config) (string, lang.Value) {
	name, ok := outputName(doc, cfg)
	if !ok {
		name = doc.Path
	}

	name = path.Base(name)
	entry := map[string]lang.Value{"name": lang.String(name)}

	switch {
	case doc.Kind == KindMarkdown && doc.Err == nil:
		entry["type"] = lang.String("markdown")
		entry["value"] = doc.Frontmatter
	case doc.Kind == KindData && doc.Err == nil:
		entry["type"] = lang.String("json")
		entry["value"] = doc.Data
	default:
		entry["type"] = lang.String("file")
	}

	return name, lang.Object(entry)
}

type metaEntry struct {
	value lang.Value
	name  string
}

// metaDir collects the entries of one directory of the metadata tree.
type metaDir struct {
	dirs    map[string]*metaDir
	entries []metaEntry
}

func newMetaDir() *metaDir {
	return &metaDir{dirs: make(map[string]*metaDir)}
}

func (d *metaDir) child(name string) *metaDir {
	c, ok := d.dirs[name]
	if !ok {
		c = newMetaDir()
		d.dirs[name] = c
	}

	return c
}

// children returns the directory's files and subdirectories in name order.
func (d *metaDir) children() lang.Value {
	entries := slices.Clone(d.entries)

	for name, c := range d.dirs {
		entries = append(entries, metaEntry{
			name: name,
			value: lang.Object(map[string]lang.Value{
				"type":     lang.String("directory"),
				"name":     lang.String(name),
				"children": c.children(),
			}),
		})
	}

	slices.SortStableFunc(entries, func(a, b metaEntry) int {
		return strings.Compare(a.name, b.name)
	})

	values := make([]lang.Value, len(entries))
	for i, e := range entries {
		values[i] = e.value
	}

	return lang.Array(values...)
}
