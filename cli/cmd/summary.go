package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/stuart/site"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	nameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func severityStyle(s site.Severity) lipgloss.Style {
	if s == site.SeverityError {
		return errorStyle
	}

	return warnStyle
}

// writeDiagnostics prints one line per diagnostic: location, severity,
// message.
func writeDiagnostics(w io.Writer, diags []site.Diagnostic) {
	for _, d := range diags {
		loc := d.Location.String()
		if loc != "" {
			loc = nameStyle.Render(loc) + ": "
		}

		fmt.Fprintf(w, "%s%s: %s\n", loc, severityStyle(d.Severity).Render(d.Severity.String()), d.Message)
	}
}

// writeSummary prints the counts and timing of a build. dest is omitted
// when empty.
func writeSummary(w io.Writer, verb string, res *site.Result, dest string) {
	var warnings, errs int

	for _, d := range res.Diagnostics {
		if d.Severity == site.SeverityError {
			errs++
		} else {
			warnings++
		}
	}

	mark := okStyle.Render("✔")
	if errs > 0 {
		mark = errorStyle.Render("✘")
	}

	line := fmt.Sprintf("%s %s %d pages, %d files in %s", mark, verb,
		len(res.Pages), len(res.Files), res.Timing.Total.Round(time.Microsecond))

	if dest != "" {
		line += " → " + nameStyle.Render(dest)
	}

	if warnings > 0 {
		line += warnStyle.Render(fmt.Sprintf(" (%d warnings)", warnings))
	}

	if errs > 0 {
		line += errorStyle.Render(fmt.Sprintf(" (%d errors)", errs))
	}

	fmt.Fprintln(w, line)
}
