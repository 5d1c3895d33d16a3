package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/stuart/lang"
	"github.com/ardnew/stuart/pkg"
	"github.com/ardnew/stuart/plugin"
	"github.com/ardnew/stuart/site"
)

// writeProject creates files under a new project directory and returns it.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))

		err := os.MkdirAll(filepath.Dir(p), 0o755)
		if err != nil {
			t.Fatal(err)
		}

		err = os.WriteFile(p, []byte(body), 0o644)
		if err != nil {
			t.Fatal(err)
		}
	}

	return dir
}

func readFile(t *testing.T, elem ...string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(elem...))
	if err != nil {
		t.Fatal(err)
	}

	return string(data)
}

const cmdPlugin = `
name: text
functions:
  - name: shout
    block: true
    expr: upper(trim(body)) + "!"
`

func TestBuild_Run(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"stuart.yml":             "name: Test\nsave_metadata: true\nsave_index: true\nplugins: [text]\n",
		"text/plugin.yml":        cmdPlugin,
		"content/root.html":      `<html>{{insert("body")}}</html>`,
		"content/index.html":     `{{begin("body")}}{{text::shout()}} hi {{end()}}{{end("body")}}`,
		"content/posts/md.html":  `{{begin("body")}}{{$self.title}}{{end("body")}}`,
		"content/posts/first.md": "---\ntitle: First\n---\nbody\n",
		"content/style.css":      "body{}",
	})

	var out bytes.Buffer

	b := Build{Project: Project{Dir: dir}}

	err := b.Run(t.Context(), &out)
	if err != nil {
		t.Fatalf("Run: %v\n%s", err, out.String())
	}

	dist := filepath.Join(dir, "dist")

	if got := readFile(t, dist, "index.html"); got != "<html>HI!</html>" {
		t.Errorf("index.html = %q", got)
	}

	if got := readFile(t, dist, "posts", "first", "index.html"); got != "<html>First</html>" {
		t.Errorf("first = %q", got)
	}

	if got := readFile(t, dist, "style.css"); got != "body{}" {
		t.Errorf("style.css = %q", got)
	}

	if got := readFile(t, dist, site.MetadataName); !strings.Contains(got, `"name":"Test"`) {
		t.Errorf("metadata = %s", got)
	}

	entries, err := site.ReadIndex(t.Context(), filepath.Join(dir, site.IndexName))
	if err != nil || len(entries) != 2 {
		t.Errorf("index entries = %d, %v", len(entries), err)
	}

	if !strings.Contains(out.String(), "built 2 pages, 1 files") {
		t.Errorf("summary = %q", out.String())
	}
}

func TestBuild_OutputAndClean(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"content/root.html":  `{{insert("body")}}`,
		"content/index.html": `{{begin("body")}}x{{end("body")}}`,
	})

	dest := filepath.Join(t.TempDir(), "public")
	stale := filepath.Join(dest, "stale.html")

	err := os.MkdirAll(dest, 0o755)
	if err != nil {
		t.Fatal(err)
	}

	err = os.WriteFile(stale, nil, 0o644)
	if err != nil {
		t.Fatal(err)
	}

	b := Build{Project: Project{Dir: dir}, Output: dest, Clean: true}

	err = b.Run(t.Context(), &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale file survived clean: %v", err)
	}

	if got := readFile(t, dest, "index.html"); got != "x" {
		t.Errorf("index.html = %q", got)
	}

	b.Output = dir

	err = b.Run(t.Context(), &bytes.Buffer{})
	if !errors.Is(err, ErrOutputDir) {
		t.Errorf("cleaning the project dir: expected ErrOutputDir, got %v", err)
	}
}

func TestCheck_Run(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"content/root.html": `{{insert("body")}}`,
		"content/bad.html":  `{{begin("body")}}{{$nope}}{{end("body")}}`,
		"content/good.html": `{{begin("body")}}ok{{end("body")}}`,
	})

	var out bytes.Buffer

	c := Check{Project: Project{Dir: dir}, Render: Render{ContinueOnError: true}}

	err := c.Run(t.Context(), &out)
	if !errors.Is(err, ErrBuild) {
		t.Fatalf("expected ErrBuild, got %v", err)
	}

	if !strings.Contains(out.String(), "bad.html:1:18: error:") {
		t.Errorf("diagnostics = %q", out.String())
	}

	if _, err := os.Stat(filepath.Join(dir, "dist")); !errors.Is(err, os.ErrNotExist) {
		t.Error("check wrote output")
	}

	c.ContinueOnError = false

	err = c.Run(t.Context(), &out)
	if errors.Is(err, ErrBuild) || err == nil {
		t.Errorf("without continue-on-error expected the page error, got %v", err)
	}
}

func TestFunctions_Run(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"plugins/text/plugin.yml": cmdPlugin,
	})

	tests := []struct {
		query string
		want  []string
		not   []string
	}{
		{query: "", want: []string{"dateformat", "text::shout", "block"}},
		{query: "shout", want: []string{"text::shout", "0+"}, not: []string{"dateformat"}},
		{query: "zzzz", want: []string{"no functions match"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var out bytes.Buffer

			f := Functions{Project: Project{Dir: dir}, Query: tt.query}

			err := f.Run(t.Context(), &out)
			if err != nil {
				t.Fatal(err)
			}

			for _, s := range tt.want {
				if !strings.Contains(out.String(), s) {
					t.Errorf("output missing %q:\n%s", s, out.String())
				}
			}

			for _, s := range tt.not {
				if strings.Contains(out.String(), s) {
					t.Errorf("output has %q:\n%s", s, out.String())
				}
			}
		})
	}
}

func TestFmt_Run(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"page.html": `{{ begin("body") }}x{{ end("body") }}`,
		"bad.html":  `{{begin("body")}}`,
	})

	in := Input{Project: Project{Dir: dir}, Source: filepath.Join(dir, "page.html")}

	var out bytes.Buffer

	err := (&Native{Input: in}).Run(t.Context(), &out)
	if err != nil {
		t.Fatal(err)
	}

	if out.String() != `{{begin("body")}}x{{end("body")}}` {
		t.Errorf("native = %q", out.String())
	}

	out.Reset()

	err = (&JSON{Input: in}).Run(t.Context(), &out)
	if err != nil || !strings.HasPrefix(out.String(), "[") {
		t.Errorf("json = %q, %v", out.String(), err)
	}

	Stdin = strings.NewReader(`a{{$x}}`)
	t.Cleanup(func() { Stdin = os.Stdin })

	out.Reset()

	err = (&Native{Input: Input{Project: Project{Dir: dir}, Source: "-"}}).Run(t.Context(), &out)
	if err != nil || out.String() != `a{{$x}}` {
		t.Errorf("stdin = %q, %v", out.String(), err)
	}

	in.Source = filepath.Join(dir, "bad.html")

	err = (&YAML{Input: in}).Run(t.Context(), &out)
	if !errors.Is(err, lang.ErrUnmatchedBlock) {
		t.Errorf("expected ErrUnmatchedBlock, got %v", err)
	}

	in.Source = filepath.Join(dir, "missing.html")

	err = (&Native{Input: in}).Run(t.Context(), &out)
	if !errors.Is(err, ErrSource) {
		t.Errorf("expected ErrSource, got %v", err)
	}
}

func TestVersion_Run(t *testing.T) {
	var out bytes.Buffer

	err := Version{}.Run(t.Context(), &out)
	if err != nil {
		t.Fatal(err)
	}

	if want := pkg.Name + " " + pkg.Version() + "\n"; out.String() != want {
		t.Errorf("version = %q, want %q", out.String(), want)
	}
}

func TestWithin(t *testing.T) {
	sep := string(filepath.Separator)

	tests := []struct {
		p, dir string
		want   bool
	}{
		{p: sep + "a", dir: sep + "a", want: true},
		{p: sep + filepath.Join("a", "b"), dir: sep + "a", want: true},
		{p: sep + "a", dir: sep + filepath.Join("a", "b")},
		{p: sep + "ab", dir: sep + "a"},
		{p: sep + filepath.Join("a", "..b"), dir: sep + "a", want: true},
	}

	for _, tt := range tests {
		if got := within(tt.p, tt.dir); got != tt.want {
			t.Errorf("within(%q, %q) = %v", tt.p, tt.dir, got)
		}
	}
}

func TestArity(t *testing.T) {
	m, err := plugin.ParseManifest([]byte(`
name: a
functions:
  - {name: none, args: 0, expr: "1"}
  - {name: range, min_args: 1, max_args: 3, expr: "1"}
  - {name: many, min_args: 2, expr: "1"}
`))
	if err != nil {
		t.Fatal(err)
	}

	p, err := m.Compile()
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{"a::none": "0", "a::range": "1-3", "a::many": "2+"}

	for _, fn := range plugin.Functions(p) {
		if got := arity(fn); got != want[fn.Name()] {
			t.Errorf("arity(%s) = %q, want %q", fn.Name(), got, want[fn.Name()])
		}
	}
}

func TestProgressModel(t *testing.T) {
	var m tea.Model = newProgressModel()

	m, _ = m.Update(progressMsg{Path: "a.html", Done: 1, Total: 3})
	m, _ = m.Update(progressMsg{Path: "b.html", Done: 2, Total: 3, Err: errors.New("x")})

	view := m.View()
	if !strings.Contains(view, "2/3 b.html") || !strings.Contains(view, "1 failed") {
		t.Errorf("view = %q", view)
	}

	m, cmd := m.Update(finishedMsg{})
	if cmd == nil || m.View() != "" {
		t.Errorf("finished view = %q", m.View())
	}
}

func TestWriteSummary(t *testing.T) {
	res := &site.Result{
		Pages: make([]site.Page, 3),
		Files: make([]site.Page, 1),
		Diagnostics: []site.Diagnostic{
			{Severity: site.SeverityWarning, Message: "w", Location: site.Location{Path: "d.json"}},
			{Severity: site.SeverityError, Message: "e", Location: site.Location{Path: "a.html", Line: 2, Column: 3}},
		},
		Timing: site.Timing{Total: 1500 * time.Microsecond},
	}

	var out bytes.Buffer

	writeDiagnostics(&out, res.Diagnostics)
	writeSummary(&out, "built", res, "dist")

	for _, s := range []string{
		"d.json: warning: w\n",
		"a.html:2:3: error: e\n",
		"built 3 pages, 1 files in 1.5ms → dist (1 warnings) (1 errors)",
	} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("output missing %q:\n%s", s, out.String())
		}
	}
}
