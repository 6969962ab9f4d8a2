package adapt

import (
	"maps"
	"slices"
)

// Arguments is the adapted argument set bound to one target's signature.
type Arguments struct {
	values map[string]any
	order  []string
	byName map[string]bool
	rest   []any
	extra  map[string]any
}

func (a *Arguments) bind(name string, value any, named bool) {
	if a.values == nil {
		a.values = make(map[string]any)
	}

	a.values[name] = value
	a.order = append(a.order, name)

	if named {
		if a.byName == nil {
			a.byName = make(map[string]bool)
		}

		a.byName[name] = true
	}
}

// Get returns the value bound to the named parameter.
func (a Arguments) Get(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Value returns the value bound to the named parameter, or nil.
func (a Arguments) Value(name string) any {
	return a.values[name]
}

// String returns the bound value as a string, or "" when it is unbound or not a string.
func (a Arguments) String(name string) string {
	s, _ := a.values[name].(string)
	return s
}

// Names returns the bound parameter names in signature order.
func (a Arguments) Names() []string {
	return slices.Clone(a.order)
}

// Rest returns the values collected by the variadic-positional parameter.
func (a Arguments) Rest() []any {
	return slices.Clone(a.rest)
}

// Extra returns the values collected by the variadic-named parameter.
func (a Arguments) Extra() map[string]any {
	return maps.Clone(a.extra)
}

// Len returns the number of bound parameters, not counting collected values.
func (a Arguments) Len() int {
	return len(a.order)
}

// Bundle re-packs the arguments into a bundle: positional parameters and
// collected positional values become positional, named-only parameters and
// collected named values become named. A target forwarding its own arguments
// to another target uses this.
func (a Arguments) Bundle() Bundle {
	b := Bundle{Positional: make([]any, 0, len(a.order)+len(a.rest))}

	for _, name := range a.order {
		if a.byName[name] {
			continue
		}

		b.Positional = append(b.Positional, a.values[name])
	}

	b.Positional = append(b.Positional, a.rest...)

	if len(a.byName) > 0 || len(a.extra) > 0 {
		b.Named = maps.Clone(a.extra)
		if b.Named == nil {
			b.Named = make(map[string]any, len(a.byName))
		}

		for name := range a.byName {
			b.Named[name] = a.values[name]
		}
	}

	return b
}

// Map returns every bound and collected named value keyed by name.
func (a Arguments) Map() map[string]any {
	out := make(map[string]any, len(a.values)+len(a.extra))
	maps.Copy(out, a.extra)
	maps.Copy(out, a.values)

	return out
}
