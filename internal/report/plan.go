package report

import (
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"class-composer/internal/compose"
	"class-composer/internal/diagnostic"
	"class-composer/internal/typenode"
)

// Plan writes the composite ancestor tree of a composition: one section per
// rank with the members the rank's type offers and where each comes from.
func (p *Printer) Plan(res *compose.Result) error {
	p.printf("%s %s\n", p.paint(bold, "composite"), res.Type)

	notes := noteIndex(res.Diagnostics)

	for _, r := range res.Rank.Chain() {
		header := "rank " + strconv.Itoa(r.Depth) + "  " + r.Name()
		if !r.Type.IsComposite() {
			header += "  (as is)"
		}

		p.printf("%s\n", p.paint(cyan, header))

		rows := [][]string{{"MEMBER", "KIND", "SOURCE", "NOTE"}}

		for _, name := range r.Type.MemberNames() {
			m := r.Type.Members[name]
			rows = append(rows, []string{name, memberKind(m), memberSource(r, name, m), notes[r.Name()+"."+name]})
		}

		if init := r.Type.Init; init != nil {
			src := init.QualifiedName()
			if r.Type.IsComposite() {
				src = "fan-out"
			}

			rows = append(rows, []string{typenode.InitName, "constructor", src, notes[r.Name()+"."+typenode.InitName]})
		}

		if err := p.table("  ", rows); err != nil {
			return err
		}
	}

	return nil
}

func memberKind(m typenode.Member) string {
	switch {
	case !m.IsCallable():
		return "value " + shorten(m.Value)
	case m.Callable.Wraps:
		return "decorator"
	default:
		return "method"
	}
}

// memberSource names the type a member was resolved from: the last
// contributor that resolves the name decides, as it did when the rank was built.
func memberSource(r *compose.Rank, name string, m typenode.Member) string {
	if m.IsCallable() && m.Callable.Owner == r.Type && r.Type.IsComposite() {
		return "fan-out"
	}

	for i := len(r.Contributors) - 1; i >= 0; i-- {
		res, err := r.Contributors[i].Lookup(name)
		if err == nil && res.Found() && res.Owner != nil {
			return res.Owner.Name
		}
	}

	return r.Type.Name
}

func noteIndex(d diagnostic.Diagnostics) map[string]string {
	notes := make(map[string]string)

	for _, info := range d.Infos {
		key := info.Scope + "." + info.Member
		if prev, ok := notes[key]; ok {
			notes[key] = prev + "; " + info.Message
			continue
		}

		notes[key] = info.Message
	}

	return notes
}

// Diagnostics writes errors and warnings, one per line. Infos are part of
// the plan and are only written with verbose set.
func (p *Printer) Diagnostics(d diagnostic.Diagnostics, verbose bool) {
	for _, e := range d.Errors {
		p.printf("%s %s\n", p.paint(red, "error:"), e)
	}

	for _, w := range d.Warnings {
		p.printf("%s %s\n", p.paint(yellow, "warning:"), w)
	}

	if !verbose {
		return
	}

	for _, i := range d.Infos {
		p.printf("%s %s\n", p.paint(dim, "info:"), i)
	}
}

// rankDump is the shape of a rank written by Dump.
type rankDump struct {
	Name         string
	Depth        int
	Contributors []string
	Members      map[string]string
	Parent       *rankDump
}

func dumpOf(r *compose.Rank) *rankDump {
	if r == nil {
		return nil
	}

	d := &rankDump{
		Name:    r.Name(),
		Depth:   r.Depth,
		Members: make(map[string]string, len(r.Type.Members)),
		Parent:  dumpOf(r.Parent),
	}

	for _, c := range r.Contributors {
		d.Contributors = append(d.Contributors, c.String())
	}

	for name, m := range r.Type.Members {
		d.Members[name] = strings.TrimSpace(memberKind(m) + " from " + memberSource(r, name, m))
	}

	return d
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump writes the rank tree in go-spew's format.
func (p *Printer) Dump(r *compose.Rank) {
	dumpConfig.Fdump(p.w, dumpOf(r))
}
