package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/caselower/internal/diagnostics"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// reporter prints diagnostics, coloured by severity when the output is a
// terminal and NO_COLOR is unset.
type reporter struct {
	w     io.Writer
	color bool
}

func newReporter(w io.Writer) *reporter {
	return &reporter{w: w, color: useColor(w)}
}

func useColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *reporter) report(diags []*diagnostics.DiagnosticError) {
	for _, d := range diags {
		fmt.Fprintln(r.w, r.format(d))
	}
}

func (r *reporter) format(d *diagnostics.DiagnosticError) string {
	text := d.Error()
	if !r.color {
		return text
	}
	switch d.Severity {
	case diagnostics.SeverityError:
		return colorRed + text + colorReset
	case diagnostics.SeverityWarning:
		return colorYellow + text + colorReset
	default:
		return colorCyan + text + colorReset
	}
}
