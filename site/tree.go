package site

import (
	"context"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/stuart/lang"
	"github.com/ardnew/stuart/plugin"
	"github.com/ardnew/stuart/render"
)

// Template file names, resolved per directory by nearest ancestor.
const (
	RootTemplate     = "root.html"
	MarkdownTemplate = "md.html"
)

// DocumentKind classifies a content file.
type DocumentKind int

// Document kinds.
const (
	KindStatic DocumentKind = iota
	KindHTML
	KindMarkdown
	KindData
	KindTemplate
	KindPlugin
)

func (k DocumentKind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindMarkdown:
		return "markdown"
	case KindData:
		return "json"
	case KindTemplate:
		return "template"
	case KindPlugin:
		return "plugin"
	default:
		return "file"
	}
}

// Document is one file of the content tree. Template and page documents
// hold their parsed AST; a document that failed to load holds the error.
type Document struct {
	// Err is the file-local load error, if any.
	Err error
	// AST is the parsed template for HTML pages and templates, and the
	// templated body for Markdown pages.
	AST *lang.AST
	// Data is the parsed JSON value of data files.
	Data lang.Value
	// Frontmatter is the Markdown frontmatter mapping.
	Frontmatter lang.Value
	valueErr    error
	value       lang.Value
	parser      *plugin.Parser
	// Path is the slash-separated path relative to the content root.
	Path string
	// Markdown is the raw Markdown body after the frontmatter.
	Markdown string
	// Root and MD are the paths of the resolved root and Markdown
	// templates, empty when none applies.
	Root string
	MD   string
	Raw  []byte
	Kind DocumentKind
	once sync.Once
}

// Dir returns the directory of the document, "" for the content root.
func (d *Document) Dir() string { return dirOf(d.Path) }

// Name returns the base name of the document.
func (d *Document) Name() string { return path.Base(d.Path) }

// Page reports whether the document renders to an HTML page.
func (d *Document) Page() bool { return d.Kind == KindHTML || d.Kind == KindMarkdown }

// Tree is a loaded content tree. It is read-only once loaded and serves as
// the data [render.Source] for every page of a build.
type Tree struct {
	docs    map[string]*Document
	dirs    map[string][]*Document
	roots   map[string]*render.Template
	mds     map[string]*lang.AST
	reg     *render.Registry
	opts    options
	paths   []string
	parsers []plugin.Parser
	render  []render.Option
}

// LoadTree reads every file of fsys, parsing templates, Markdown pages, and
// JSON data. Parsing uses reg to tell block functions from inline ones.
// File-local failures are recorded on their [Document]; only failures to
// read the tree itself are returned.
func LoadTree(ctx context.Context, fsys fs.FS, cfg Config, opts ...Option) (*Tree, error) {
	o := makeOptions(opts...)

	reg := o.registry
	if reg == nil {
		var err error

		reg, err = NewRegistry(o.plugins...)
		if err != nil {
			return nil, err
		}
	}

	t := &Tree{
		docs:  make(map[string]*Document),
		dirs:  make(map[string][]*Document),
		roots: make(map[string]*render.Template),
		mds:   make(map[string]*lang.AST),
		reg:   reg,
		opts:  o,
	}

	for _, p := range o.plugins {
		t.parsers = append(t.parsers, p.Parsers...)
	}

	t.render = renderOptions(cfg, o)

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return ErrRead.Wrap(err).WithSource(p)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			return nil
		}

		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return ErrRead.Wrap(err).WithSource(p)
		}

		t.add(ctx, p, raw)

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(t.paths)

	for _, doc := range t.docs {
		if doc.Page() {
			doc.Root = t.nearest(doc.Dir(), RootTemplate)
		}

		if doc.Kind == KindMarkdown {
			doc.MD = t.nearest(doc.Dir(), MarkdownTemplate)
		}
	}

	o.logger.TraceContext(ctx, "tree loaded",
		slog.Int("files", len(t.paths)),
		slog.Int("roots", len(t.roots)),
		slog.Int("markdown_templates", len(t.mds)))

	return t, nil
}

// add classifies and parses one file.
func (t *Tree) add(ctx context.Context, p string, raw []byte) {
	doc := &Document{Path: p, Raw: raw}
	doc.Kind, doc.parser = t.classify(p)

	switch doc.Kind {
	case KindTemplate, KindHTML:
		doc.AST, doc.Err = t.parse(ctx, p, string(raw))

		if doc.Err == nil && doc.Kind == KindTemplate {
			if doc.Name() == RootTemplate {
				t.roots[doc.Dir()] = render.NewTemplate(doc.AST)
			} else {
				t.mds[doc.Dir()] = doc.AST
			}
		}

	case KindMarkdown:
		fm, err := splitFrontmatter(string(raw))
		if err != nil {
			doc.Err = lang.WrapError(err).WithSource(p)

			break
		}

		doc.Frontmatter = fm.value
		doc.Markdown = fm.body
		doc.AST, doc.Err = t.parse(ctx, p, fm.padded)

	case KindData:
		v, err := lang.ParseJSON(raw)
		if err != nil {
			doc.Err = lang.WrapError(err).WithSource(p)
		}

		doc.Data = v
	}

	t.docs[p] = doc
	t.paths = append(t.paths, p)
	t.dirs[doc.Dir()] = append(t.dirs[doc.Dir()], doc)
}

// classify returns the kind of the file at p. The built-in extensions take
// precedence over plugin parsers; the first parser claiming an extension
// wins.
func (t *Tree) classify(p string) (DocumentKind, *plugin.Parser) {
	name := path.Base(p)
	if name == RootTemplate || name == MarkdownTemplate {
		return KindTemplate, nil
	}

	ext := strings.ToLower(path.Ext(name))

	switch ext {
	case ".html":
		return KindHTML, nil
	case ".md":
		return KindMarkdown, nil
	case ".json":
		return KindData, nil
	}

	for i := range t.parsers {
		if t.parsers[i].Handles(ext) {
			return KindPlugin, &t.parsers[i]
		}
	}

	return KindStatic, nil
}

func (t *Tree) parse(ctx context.Context, name, src string) (*lang.AST, error) {
	return lang.Parse(ctx, src,
		lang.WithName(name),
		lang.WithFunctions(t.reg),
		lang.WithLogger(t.opts.logger),
	)
}

// nearest returns the path of the template file name in the closest of dir
// and its ancestors, or "" when there is none.
func (t *Tree) nearest(dir, name string) string {
	for {
		p := path.Join(dir, name)
		if _, ok := t.docs[p]; ok {
			return p
		}

		if dir == "" {
			return ""
		}

		dir = dirOf(dir)
	}
}

// Registry returns the function registry the tree was parsed against.
func (t *Tree) Registry() *render.Registry { return t.reg }

// Documents returns every document sorted by path.
func (t *Tree) Documents() []*Document {
	out := make([]*Document, len(t.paths))
	for i, p := range t.paths {
		out[i] = t.docs[p]
	}

	return out
}

// Document returns the document at the content-relative path p.
func (t *Tree) Document(p string) (*Document, bool) {
	doc, ok := t.docs[p]

	return doc, ok
}

// Root returns the root template that applies to doc. A nearest root
// template that failed to parse yields its parse error.
func (t *Tree) Root(doc *Document) (*render.Template, error) {
	if doc.Root == "" {
		return nil, ErrNoRootTemplate.WithSource(doc.Path)
	}

	if root, ok := t.roots[dirOf(doc.Root)]; ok {
		return root, nil
	}

	return nil, t.docs[doc.Root].Err
}

// Markdown returns the Markdown template that applies to doc.
func (t *Tree) Markdown(doc *Document) (*lang.AST, error) {
	if doc.MD == "" {
		return nil, ErrMissingMdTemplate.WithSource(doc.Path)
	}

	if md, ok := t.mds[dirOf(doc.MD)]; ok {
		return md, nil
	}

	return nil, t.docs[doc.MD].Err
}

// Data implements [render.Source].
func (t *Tree) Data(_ context.Context, p string) (lang.Value, error) {
	doc, ok := t.docs[p]
	if !ok || doc.Kind != KindData {
		return lang.Value{}, ErrNotFound.WithSource(p)
	}

	if doc.Err != nil {
		return lang.Value{}, doc.Err
	}

	return doc.Data, nil
}

// Pages implements [render.Source]. It returns the Markdown pages directly
// inside dir in path order.
func (t *Tree) Pages(ctx context.Context, dir string) ([]lang.Value, error) {
	dir = strings.Trim(path.Clean("/"+dir), "/")

	docs, ok := t.dirs[dir]
	if !ok {
		return nil, ErrNotFound.WithSource(dir)
	}

	var out []lang.Value

	for _, doc := range docs {
		if doc.Kind != KindMarkdown {
			continue
		}

		v, err := t.PageValue(ctx, doc)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

// PageValue returns the value a Markdown page exposes to templates: its
// frontmatter with content (the rendered HTML body) and markdown (the raw
// body). It is computed once per tree.
func (t *Tree) PageValue(ctx context.Context, doc *Document) (lang.Value, error) {
	if doc.Kind != KindMarkdown {
		return lang.Value{}, ErrNotFound.WithSource(doc.Path)
	}

	if doc.Err != nil {
		return lang.Value{}, doc.Err
	}

	doc.once.Do(func() { doc.value, doc.valueErr = t.pageValue(ctx, doc) })

	return doc.value, doc.valueErr
}

func (t *Tree) pageValue(ctx context.Context, doc *Document) (lang.Value, error) {
	body := doc.Markdown

	if doc.AST.HasTags() {
		opts := slices.Concat(t.render, []render.Option{
			render.WithSource(dataOnly{t}),
			render.WithVar("self", doc.Frontmatter),
		})

		out, err := render.Fragment(ctx, t.reg, doc.AST, opts...)
		if err != nil {
			return lang.Value{}, err
		}

		body = string(out)
	}

	content, err := toHTML(body)
	if err != nil {
		return lang.Value{}, lang.WrapError(err).WithSource(doc.Path)
	}

	return doc.Frontmatter.Merge(lang.Object(map[string]lang.Value{
		"content":  lang.String(content),
		"markdown": lang.String(doc.Markdown),
	})), nil
}

// dataOnly serves data files but not page listings, so a Markdown body
// cannot iterate over the pages whose values it is part of.
type dataOnly struct{ tree *Tree }

func (d dataOnly) Data(ctx context.Context, p string) (lang.Value, error) {
	return d.tree.Data(ctx, p)
}

func (dataOnly) Pages(_ context.Context, dir string) ([]lang.Value, error) {
	return nil, ErrNotFound.WithSource(dir).With(
		slog.String("reason", "page listings are unavailable in markdown bodies"),
	)
}

func dirOf(p string) string {
	d := path.Dir(p)
	if d == "." {
		return ""
	}

	return d
}
