package adapt

import (
	"maps"
	"slices"
	"sort"
)

// Bundle is the argument bundle shared by every target of one call:
// ordered positional values plus named values.
type Bundle struct {
	Positional []any
	Named      map[string]any
}

// NewBundle copies positional and named into a new Bundle.
func NewBundle(positional []any, named map[string]any) Bundle {
	return Bundle{
		Positional: slices.Clone(positional),
		Named:      maps.Clone(named),
	}
}

// Positional returns a bundle holding only positional values.
func Positional(values ...any) Bundle {
	return Bundle{Positional: values}
}

// Named returns a bundle holding only named values, given as alternating
// name/value pairs. A trailing name without a value is ignored.
func Named(pairs ...any) Bundle {
	b := Bundle{Named: make(map[string]any, len(pairs)/2)}

	for i := 0; i+1 < len(pairs); i += 2 {
		if name, ok := pairs[i].(string); ok {
			b.Named[name] = pairs[i+1]
		}
	}

	return b
}

// With returns a copy of b with the named value set.
func (b Bundle) With(name string, value any) Bundle {
	out := NewBundle(b.Positional, b.Named)
	if out.Named == nil {
		out.Named = make(map[string]any, 1)
	}

	out.Named[name] = value

	return out
}

// Prepend returns a copy of b with values inserted before its positional values.
func (b Bundle) Prepend(values ...any) Bundle {
	return Bundle{
		Positional: append(slices.Clone(values), b.Positional...),
		Named:      maps.Clone(b.Named),
	}
}

// Len returns the total number of values in the bundle.
func (b Bundle) Len() int {
	return len(b.Positional) + len(b.Named)
}

// Names returns the named keys in sorted order.
func (b Bundle) Names() []string {
	names := make([]string, 0, len(b.Named))
	for name := range b.Named {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
