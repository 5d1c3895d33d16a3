package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/stuart/lang"
	"github.com/ardnew/stuart/log"
)

// Fmt parses a template and prints it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Print in canonical tag syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Print the syntax tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Print the syntax tree as YAML."`
}

// Stdin is read when a command's source is "-".
//
//nolint:gochecknoglobals
var Stdin io.Reader = os.Stdin

const stdinSource = "-"

// Input is a template argument parsed with the project's functions, so
// plugin block functions nest correctly.
type Input struct {
	Project `embed:""`

	Source string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"source"`
}

func (s *Input) parse(ctx context.Context, format string) (*lang.AST, error) {
	proj, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	reg, err := proj.registry()
	if err != nil {
		return nil, err
	}

	var src io.Reader = Stdin

	if s.Source != stdinSource {
		f, err := os.Open(s.Source)
		if err != nil {
			return nil, ErrSource.Wrap(err).WithSource(s.Source)
		}
		defer f.Close()

		src = f
	}

	ast, err := lang.ParseReader(ctx, src,
		lang.WithName(s.Source),
		lang.WithFunctions(reg),
		lang.WithLogger(log.Default()),
	)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("format", format))
	}

	return ast, nil
}

// Native prints a template in canonical tag syntax.
type Native struct {
	Input `embed:""`
}

// Run executes the fmt command.
func (f *Native) Run(ctx context.Context, out io.Writer) error {
	ast, err := f.parse(ctx, "native")
	if err != nil {
		return err
	}

	return ast.Format(ctx, out)
}

// JSON prints a template's syntax tree as JSON.
type JSON struct {
	Input `embed:""`

	Indent int `default:"2" help:"Indent width for JSON output." short:"i"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context, out io.Writer) error {
	ast, err := j.parse(ctx, "json")
	if err != nil {
		return err
	}

	return ast.FormatJSON(ctx, out, j.Indent)
}

// YAML prints a template's syntax tree as YAML.
type YAML struct {
	Input `embed:""`

	Indent int `default:"2" help:"Indent width for YAML output." short:"i"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context, out io.Writer) error {
	ast, err := y.parse(ctx, "yaml")
	if err != nil {
		return err
	}

	return ast.FormatYAML(ctx, out, y.Indent)
}
