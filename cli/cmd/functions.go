package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ardnew/stuart/render"
)

// Functions lists the template functions available to a project: the
// built-ins and every loaded plugin function.
type Functions struct {
	Project `embed:""`

	Query string `arg:"" help:"Fuzzy filter on function names." optional:""`
}

// Run executes the functions command.
func (f *Functions) Run(ctx context.Context, out io.Writer) error {
	proj, err := f.load(ctx)
	if err != nil {
		return err
	}

	reg, err := proj.registry()
	if err != nil {
		return err
	}

	names := reg.Match(f.Query)
	if len(names) == 0 {
		fmt.Fprintln(out, hintStyle.Render("no functions match "+strconv.Quote(f.Query)))

		return nil
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("NAME", "KIND", "ARGS")

	for _, name := range names {
		fn, _ := reg.Lookup(name)
		t.Row(name, fn.Kind().String(), arity(fn))
	}

	fmt.Fprintln(out, t.Render())

	return nil
}

// arity formats the positional argument bounds of functions that declare
// them.
func arity(fn render.Function) string {
	ar, ok := fn.(interface{ Arity() (int, int) })
	if !ok {
		return ""
	}

	lo, hi := ar.Arity()

	switch {
	case hi < 0:
		return strconv.Itoa(lo) + "+"
	case lo == hi:
		return strconv.Itoa(lo)
	default:
		return strconv.Itoa(lo) + "-" + strconv.Itoa(hi)
	}
}
