package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"class-composer/internal/catalog"
)

// Trace writes recorded calls, one numbered step per line, indented by how
// many decorators are open around it.
func (p *Printer) Trace(events []catalog.Event) {
	depth := 0

	for i, e := range events {
		if e.Phase == catalog.PhaseClose && depth > 0 {
			depth--
		}

		step := e.Type + "." + e.Member
		switch e.Phase {
		case catalog.PhaseOpen:
			step = p.paint(cyan, step+" {")
		case catalog.PhaseClose:
			step = p.paint(cyan, "} "+step)
		}

		p.printf("%3d  %s%s%s\n", i+1, strings.Repeat("  ", depth), step, formatArgs(e.Args))

		if e.Phase == catalog.PhaseOpen {
			depth++
		}
	}
}

// Result writes the value a call returned.
func (p *Printer) Result(name string, v any) {
	p.printf("%s %s = %s\n", p.paint(bold, "result"), name, shorten(v))
}

// Attributes writes an instance's attributes, sorted by name.
func (p *Printer) Attributes(attrs map[string]any) error {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}

	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, shorten(attrs[name])})
	}

	p.printf("%s\n", p.paint(bold, "attributes"))

	return p.table("  ", rows)
}

func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}

	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}

	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + quote(args[name])
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

func quote(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}

	return shorten(fmt.Sprint(v))
}
