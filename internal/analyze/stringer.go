package analyze

import (
	"go/types"
	"strings"
)

// qualifier names other packages by package name instead of import path.
func qualifier(p *types.Package) string {
	return p.Name()
}

// TypeString renders t the way another package would write it,
// e.g. "*store.Product" or "[]store.OrderItem".
func TypeString(t types.Type) string {
	return types.TypeString(t, qualifier)
}

// String renders the method as it is declared, without the receiver:
// "Reprice(cents int64, at time.Time)" or "Pay(at time.Time) error".
func (m MethodInfo) String() string {
	var sb strings.Builder

	sb.WriteString(m.Name)
	sb.WriteByte('(')

	for i, p := range m.Params {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(p.Name)
		sb.WriteByte(' ')

		if i < len(m.ParamTypes) {
			sb.WriteString(m.ParamTypes[i])
		}
	}

	sb.WriteByte(')')

	switch len(m.Results) {
	case 0:
	case 1:
		sb.WriteString(" " + m.Results[0])
	default:
		sb.WriteString(" (" + strings.Join(m.Results, ", ") + ")")
	}

	return sb.String()
}

// String renders the type header: its name and embedded bases.
func (t *TypeInfo) String() string {
	if t == nil {
		return "<nil>"
	}

	if len(t.Embeds) == 0 {
		return t.Name()
	}

	bases := make([]string, len(t.Node.Bases))
	for i, b := range t.Node.Bases {
		bases[i] = b.Name
	}

	return t.Name() + " embeds " + strings.Join(bases, ", ")
}
