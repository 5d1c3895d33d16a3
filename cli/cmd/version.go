package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/ardnew/stuart/pkg"
)

// Version prints the program name and version.
type Version struct{}

// Run executes the version command.
func (Version) Run(_ context.Context, out io.Writer) error {
	_, err := fmt.Fprintln(out, pkg.Name, pkg.Version())

	return err
}
