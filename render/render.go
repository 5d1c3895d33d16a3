package render

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/stuart/lang"
)

// Template is a parsed root template. Its required sections are the
// distinct names passed to insert().
type Template struct {
	ast      *lang.AST
	required []string
}

// NewTemplate wraps a parsed root template.
func NewTemplate(ast *lang.AST) *Template {
	seen := make(map[string]bool)

	for call := range ast.Calls("insert") {
		if name := call.Label(); name != "" {
			seen[name] = true
		}
	}

	required := make([]string, 0, len(seen))
	for name := range seen {
		required = append(required, name)
	}

	slices.Sort(required)

	return &Template{ast: ast, required: required}
}

// Name returns the template's source path.
func (t *Template) Name() string { return t.ast.Name }

// AST returns the parsed template.
func (t *Template) AST() *lang.AST { return t.ast }

// RequiredSections returns the sorted, distinct names the template inserts.
func (t *Template) RequiredSections() []string { return slices.Clone(t.required) }

// Check reports [ErrSectionMismatch] unless the section names equal the
// required set exactly. The error lists the missing and extra names.
func (t *Template) Check(sections []Section) error {
	defined := make(map[string]bool, len(sections))
	for _, s := range sections {
		defined[s.Name] = true
	}

	var missing, extra []string

	for _, name := range t.required {
		if !defined[name] {
			missing = append(missing, name)
		}
	}

	for _, s := range sections {
		if !slices.Contains(t.required, s.Name) {
			extra = append(extra, s.Name)
		}
	}

	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}

	slices.Sort(extra)

	return ErrSectionMismatch.With(
		slog.String("template", t.Name()),
		slog.String("missing", strings.Join(missing, ",")),
		slog.String("extra", strings.Join(extra, ",")),
	)
}

// Render renders the root template with insert() resolved against
// sections. The sections must satisfy [Template.Check].
func (t *Template) Render(
	ctx context.Context,
	reg *Registry,
	sections []Section,
	opts ...Option,
) ([]byte, error) {
	err := t.Check(sections)
	if err != nil {
		return nil, err
	}

	rc := NewContext(reg, slices.Concat(opts, []Option{WithPage(t.Name())})...)
	rc.root = true
	rc.insert = make(map[string][]byte, len(sections))

	for _, s := range sections {
		rc.insert[s.Name] = s.Content
	}

	err = rc.Render(ctx, t.ast.Nodes)
	if err == nil {
		err = rc.finish()
	}

	if err != nil {
		return nil, withSource(err, t.Name())
	}

	rc.opts.logger.TraceContext(ctx, "rendered root",
		slog.String("template", t.Name()),
		slog.Int("sections", len(sections)))

	return rc.Output(), nil
}

// Sections renders a page and returns the sections it defines. Output
// outside of begin() and end() is discarded.
func Sections(
	ctx context.Context,
	reg *Registry,
	page *lang.AST,
	opts ...Option,
) ([]Section, error) {
	rc := NewContext(reg, append([]Option{WithPage(page.Name)}, opts...)...)

	err := rc.Render(ctx, page.Nodes)
	if err == nil {
		err = rc.finish()
	}

	if err != nil {
		return nil, withSource(err, page.Name)
	}

	return rc.Sections(), nil
}

// Fragment renders a template that is neither a page nor a root, such as a
// Markdown body, and returns its output. Sections it defines are discarded.
func Fragment(
	ctx context.Context,
	reg *Registry,
	ast *lang.AST,
	opts ...Option,
) ([]byte, error) {
	rc := NewContext(reg, append([]Option{WithPage(ast.Name)}, opts...)...)

	err := rc.Render(ctx, ast.Nodes)
	if err == nil {
		err = rc.finish()
	}

	if err != nil {
		return nil, withSource(err, ast.Name)
	}

	return rc.Output(), nil
}

// Page renders a page against its root template.
func Page(
	ctx context.Context,
	reg *Registry,
	page *lang.AST,
	root *Template,
	opts ...Option,
) ([]byte, error) {
	sections, err := Sections(ctx, reg, page, opts...)
	if err != nil {
		return nil, err
	}

	out, err := root.Render(ctx, reg, sections, opts...)
	if err != nil {
		return nil, withSource(err, page.Name)
	}

	return out, nil
}

func withSource(err error, name string) error {
	if name == "" {
		return err
	}

	return lang.WrapError(err).WithSource(name)
}
