package report

import (
	"class-composer/internal/analyze"
)

// Types writes analyzed Go types: the embedding header, then fields,
// constructor and declared methods.
func (p *Printer) Types(infos []*analyze.TypeInfo) error {
	for _, info := range infos {
		p.printf("%s\n", p.paint(bold, info.String()))

		var rows [][]string

		for _, f := range info.Fields {
			if f.Embedded {
				continue
			}

			rows = append(rows, []string{"field", f.Name, f.String()})
		}

		if info.Constructor != nil {
			rows = append(rows, []string{"constructor", "New" + info.ID.Name, info.Constructor.String()})
		}

		for _, m := range info.Methods {
			recv := "value"
			if m.PointerReceiver {
				recv = "pointer"
			}

			rows = append(rows, []string{"method", m.Name, m.String() + "  [" + recv + "]"})
		}

		if err := p.table("  ", rows); err != nil {
			return err
		}
	}

	return nil
}
