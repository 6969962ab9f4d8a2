// Package report renders composition plans, diagnostics, call traces and
// analyzed Go types for the command line.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// ANSI SGR codes.
const (
	bold   = "1"
	dim    = "2"
	red    = "31"
	yellow = "33"
	cyan   = "36"
)

const maxValueWidth = 40

// Printer writes reports to an output stream.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter creates a printer. With color set, headers and severities are
// highlighted with ANSI escapes.
func NewPrinter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

func (p *Printer) paint(code, s string) string {
	if !p.color || s == "" {
		return s
	}

	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

// table writes rows as aligned columns. Cells must not be painted: escapes
// would skew the column widths.
func (p *Printer) table(indent string, rows [][]string) error {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)

	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, indent+strings.Join(row, "\t")); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func shorten(v any) string {
	s := fmt.Sprint(v)
	if len(s) > maxValueWidth {
		s = s[:maxValueWidth-3] + "..."
	}

	return s
}
