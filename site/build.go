package site

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/stuart/lang"
	"github.com/ardnew/stuart/pkg"
	"github.com/ardnew/stuart/render"
)

// Page is one output file of a build.
type Page struct {
	// Frontmatter is the frontmatter of Markdown pages, null otherwise.
	Frontmatter lang.Value
	// Path is the slash-separated output path.
	Path string
	// Source is the content-relative path of the document it came from.
	Source  string
	Content []byte
	Kind    DocumentKind
}

// Timing records how long the phases of a build took.
type Timing struct {
	Load   time.Duration
	Render time.Duration
	Total  time.Duration
}

// Result is the outcome of a build.
type Result struct {
	// Pages are the rendered HTML and Markdown pages, sorted by path.
	Pages []Page
	// Files are the data, static, and plugin-processed files, sorted by
	// path.
	Files []Page
	// Diagnostics are the problems that did not abort the build.
	Diagnostics []Diagnostic
	// Metadata is the JSON build metadata when save_metadata is set.
	Metadata []byte
	Timing   Timing
}

// Err joins the errors of every error-severity diagnostic, or returns nil.
func (r *Result) Err() error {
	var errs []error

	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			errs = append(errs, d.Err)
		}
	}

	return pkg.Join(errs...)
}

// Write writes every page and file, and the metadata when present, under
// dir. Each file is replaced atomically.
func (r *Result) Write(dir string) error {
	for _, p := range slices.Concat(r.Pages, r.Files) {
		err := writeFile(dir, p.Path, p.Content)
		if err != nil {
			return err
		}
	}

	if r.Metadata != nil {
		return writeFile(dir, MetadataName, r.Metadata)
	}

	return nil
}

// Build compiles the content tree rooted at the directory root.
func Build(ctx context.Context, root string, cfg Config, opts ...Option) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, ErrRead.Wrap(err).WithSource(root)
	}

	if !info.IsDir() {
		return nil, ErrRead.WithSource(root).With(slog.String("reason", "not a directory"))
	}

	return BuildFS(ctx, os.DirFS(root), cfg, opts...)
}

// BuildFS compiles the content tree fsys.
//
// Pages render concurrently, at most cfg.Jobs at a time (GOMAXPROCS when
// not positive). A page-local error aborts the build unless
// cfg.ContinueOnError is set, in which case it becomes a diagnostic and the
// page is left out. A page without a root template and two documents
// sharing an output path always abort the build.
func BuildFS(ctx context.Context, fsys fs.FS, cfg Config, opts ...Option) (*Result, error) {
	start := time.Now()
	o := makeOptions(opts...)

	if o.registry == nil {
		reg, err := NewRegistry(o.plugins...)
		if err != nil {
			return nil, err
		}

		o.registry = reg
		opts = slices.Concat(opts, []Option{WithRegistry(reg)})
	}

	// The tree and every page share one store.
	opts = slices.Concat(opts, []Option{WithStore(o.store)})

	tree, err := LoadTree(ctx, fsys, cfg, opts...)
	if err != nil {
		return nil, err
	}

	b := &builder{tree: tree, cfg: cfg, opts: o, render: renderOptions(cfg, o)}
	b.timing.Load = time.Since(start)

	targets, err := plan(tree, cfg)
	if err != nil {
		return nil, err
	}

	err = b.check()
	if err != nil {
		return nil, err
	}

	rendered := time.Now()

	res, err := b.run(ctx, targets)
	if err != nil {
		return nil, err
	}

	b.timing.Render = time.Since(rendered)

	if cfg.SaveMetadata {
		res.Metadata, err = Metadata(tree, cfg)
		if err != nil {
			return nil, err
		}
	}

	b.timing.Total = time.Since(start)
	res.Timing = b.timing
	res.Diagnostics = sortDiagnostics(b.diags)

	o.logger.DebugContext(ctx, "build complete",
		slog.Int("pages", len(res.Pages)),
		slog.Int("files", len(res.Files)),
		slog.Int("diagnostics", len(res.Diagnostics)),
		slog.Duration("total", res.Timing.Total))

	return res, nil
}

type builder struct {
	tree   *Tree
	opts   options
	render []render.Option
	diags  []Diagnostic
	cfg    Config
	timing Timing
	done   int
	mu     sync.Mutex
}

func (b *builder) report(d Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.diags = append(b.diags, d)
}

func (b *builder) advance(path string, total int, err error) {
	if b.opts.progress == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.done++
	b.opts.progress(Progress{Path: path, Done: b.done, Total: total, Err: err})
}

// check fails the build for pages without a root template, and reports
// data files that do not parse as warnings since they only fail the pages
// that import them.
func (b *builder) check() error {
	for _, doc := range b.tree.Documents() {
		if doc.Page() && doc.Root == "" {
			return ErrNoRootTemplate.WithSource(doc.Path)
		}

		if doc.Kind == KindData && doc.Err != nil {
			b.report(diagnose(SeverityWarning, doc.Path, doc.Err))
		}
	}

	return nil
}

func (b *builder) run(ctx context.Context, targets []target) (*Result, error) {
	jobs := b.cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	out := make([][]byte, len(targets))
	ok := make([]bool, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, tg := range targets {
		g.Go(func() error {
			data, err := b.produce(gctx, tg.doc)
			b.advance(tg.doc.Path, len(targets), err)

			if err != nil {
				err = lang.WrapError(err).With(slog.String("page", tg.doc.Path))

				if !b.cfg.ContinueOnError || errors.Is(err, context.Canceled) {
					return err
				}

				b.report(diagnose(SeverityError, tg.doc.Path, err))

				return nil
			}

			out[i], ok[i] = data, true

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	res := &Result{}

	for i, tg := range targets {
		if !ok[i] {
			continue
		}

		p := Page{Path: tg.path, Source: tg.doc.Path, Kind: tg.doc.Kind, Content: out[i]}

		if tg.doc.Page() {
			p.Frontmatter = tg.doc.Frontmatter
			res.Pages = append(res.Pages, p)
		} else {
			res.Files = append(res.Files, p)
		}
	}

	byPath := func(a, b Page) int { return strings.Compare(a.Path, b.Path) }
	slices.SortFunc(res.Pages, byPath)
	slices.SortFunc(res.Files, byPath)

	return res, nil
}

// produce returns the output bytes of one document.
func (b *builder) produce(ctx context.Context, doc *Document) ([]byte, error) {
	if doc.Err != nil && doc.Kind != KindData {
		return nil, doc.Err
	}

	switch doc.Kind {
	case KindHTML:
		root, err := b.tree.Root(doc)
		if err != nil {
			return nil, err
		}

		return render.Page(ctx, b.tree.reg, doc.AST, root, b.pageOptions()...)

	case KindMarkdown:
		return b.markdown(ctx, doc)

	case KindPlugin:
		out, err := doc.parser.Parse(ctx, doc.Path, doc.Raw, b.opts.store)
		if err != nil {
			return nil, lang.WrapError(err).WithSource(doc.Path)
		}

		return out, nil

	default:
		return doc.Raw, nil
	}
}

// markdown renders the page's md.html with $self bound to the page value,
// then renders the root template with the sections md.html defined.
func (b *builder) markdown(ctx context.Context, doc *Document) ([]byte, error) {
	root, err := b.tree.Root(doc)
	if err != nil {
		return nil, err
	}

	md, err := b.tree.Markdown(doc)
	if err != nil {
		return nil, err
	}

	self, err := b.tree.PageValue(ctx, doc)
	if err != nil {
		return nil, err
	}

	opts := slices.Concat(b.pageOptions(), []render.Option{render.WithVar("self", self)})

	sections, err := render.Sections(ctx, b.tree.reg, md, opts...)
	if err != nil {
		return nil, err
	}

	return root.Render(ctx, b.tree.reg, sections, b.pageOptions()...)
}

func (b *builder) pageOptions() []render.Option {
	return slices.Concat(b.render, []render.Option{render.WithSource(b.tree)})
}
