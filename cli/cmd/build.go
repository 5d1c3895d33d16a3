package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/stuart/log"
	"github.com/ardnew/stuart/site"
)

// Build renders a project's content tree and writes the output directory.
type Build struct {
	Project `embed:""`
	Render  `embed:""`

	Output   string `help:"Output directory (default from stuart.yml, relative to the project)." short:"o" type:"path"`
	Progress bool   `help:"Show a progress spinner while rendering."`
	Clean    bool   `help:"Remove the output directory before writing."`
}

// Run executes the build command.
func (b *Build) Run(ctx context.Context, out io.Writer) error {
	proj, err := b.load(ctx)
	if err != nil {
		return err
	}

	b.apply(&proj.cfg)

	dest := proj.output()
	if b.Output != "" {
		dest = b.Output
	}

	res, err := buildProject(ctx, proj, out, b.Progress)
	if err != nil {
		return err
	}

	writeDiagnostics(out, res.Diagnostics)

	if b.Clean {
		err = clean(ctx, dest, proj)
		if err != nil {
			return err
		}
	}

	err = res.Write(dest)
	if err != nil {
		return ErrWriteOutput.Wrap(err).WithSource(dest)
	}

	if proj.cfg.SaveIndex {
		err = res.WriteIndex(ctx, filepath.Join(proj.dir, site.IndexName))
		if err != nil {
			return err
		}
	}

	writeSummary(out, "built", res, dest)

	err = res.Err()
	if err != nil {
		return ErrBuild.Wrap(err)
	}

	return nil
}

// Check renders a project without writing anything. It fails when the
// build reports errors.
type Check struct {
	Project `embed:""`
	Render  `embed:""`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context, out io.Writer) error {
	proj, err := c.load(ctx)
	if err != nil {
		return err
	}

	c.apply(&proj.cfg)

	res, err := buildProject(ctx, proj, out, false)
	if err != nil {
		return err
	}

	writeDiagnostics(out, res.Diagnostics)
	writeSummary(out, "checked", res, "")

	err = res.Err()
	if err != nil {
		return ErrBuild.Wrap(err)
	}

	return nil
}

func buildProject(ctx context.Context, proj loaded, out io.Writer, spin bool) (*site.Result, error) {
	var opts []site.Option

	if spin {
		p := startProgress(ctx, out)
		defer p.stop()

		opts = append(opts, site.WithProgress(p.report))
	}

	return site.Build(ctx, proj.content(), proj.cfg, proj.options(opts...)...)
}

// clean removes dest unless it holds the project or its content.
func clean(ctx context.Context, dest string, proj loaded) error {
	abs, err := filepath.Abs(dest)
	if err != nil {
		return ErrOutputDir.Wrap(err).WithSource(dest)
	}

	for _, keep := range []string{proj.dir, proj.content()} {
		if within(keep, abs) {
			return ErrOutputDir.WithSource(dest).With(slog.String("contains", keep))
		}
	}

	log.DebugContext(ctx, "removing output directory", slog.String("dir", abs))

	err = os.RemoveAll(abs)
	if err != nil {
		return ErrOutputDir.Wrap(err).WithSource(dest)
	}

	return nil
}

// within reports whether p is dir or lies under it.
func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
