package catalog

import (
	"fmt"
	"maps"
	"slices"

	"class-composer/internal/decorate"
	"class-composer/internal/match"
	"class-composer/internal/typenode"
)

// Catalog holds the types built from a File.
type Catalog struct {
	file  *File
	types map[string]*typenode.TypeNode
	trace *Trace
}

// UnknownTypeError reports a type name the catalogue does not declare.
type UnknownTypeError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownTypeError) Error() string {
	msg := fmt.Sprintf("unknown type %q", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", e.Suggestions[0])
	}

	return msg
}

// Build validates f and builds its types. Bases are built before the types
// that list them. Every scripted call records into the catalogue's trace.
func Build(f *File) (*Catalog, error) {
	if err := Validate(f).Error(); err != nil {
		return nil, fmt.Errorf("invalid catalogue: %w", err)
	}

	index := make(map[string]int, len(f.Types))
	for i := range f.Types {
		index[f.Types[i].Name] = i
	}

	order, _, err := topoSort(len(f.Types), func(i int) []int {
		deps := make([]int, 0, len(f.Types[i].Bases))
		for _, b := range f.Types[i].Bases {
			deps = append(deps, index[b])
		}

		return deps
	})
	if err != nil {
		return nil, fmt.Errorf("invalid catalogue: %w", err)
	}

	c := &Catalog{
		file:  f,
		types: make(map[string]*typenode.TypeNode, len(f.Types)),
		trace: &Trace{},
	}

	for _, i := range order {
		t, err := c.buildType(&f.Types[i])
		if err != nil {
			return nil, err
		}

		c.types[t.Name] = t
	}

	return c, nil
}

func (c *Catalog) buildType(td *TypeDef) (*typenode.TypeNode, error) {
	bases := make([]*typenode.TypeNode, len(td.Bases))
	for i, b := range td.Bases {
		bases[i] = c.types[b]
	}

	t := typenode.New(td.Name, bases...)

	for _, name := range slices.Sorted(maps.Keys(td.Values)) {
		t.Value(name, td.Values[name])
	}

	if td.Init != nil {
		def := *td.Init
		def.Name = typenode.InitName

		sig, err := def.Signature(td.Name)
		if err != nil {
			return nil, err
		}

		t.Constructor(c.body(td.Name, def, true), sig.Params...)
	}

	for _, def := range td.Methods {
		sig, err := def.Signature(td.Name)
		if err != nil {
			return nil, err
		}

		fn := c.body(td.Name, def, false)

		switch {
		case def.Wraps:
			t.Decorator(def.Name, fn, sig.Params...)
		case len(def.DecorateWith) > 0:
			decorate.Method(t, def.Name, &typenode.Callable{Params: sig.Params, Fn: fn},
				def.DecorateWith, c.decorateOptions(td, def)...)
		default:
			t.Method(def.Name, fn, sig.Params...)
		}
	}

	return t, nil
}

func (c *Catalog) decorateOptions(td *TypeDef, def MethodDef) []decorate.Option {
	var opts []decorate.Option

	if def.SubInstance != "" {
		opts = append(opts, decorate.WithSubInstance(def.SubInstance))
	}

	if def.Fallback != "" {
		for _, m := range td.Methods {
			if m.Name == def.Fallback {
				opts = append(opts, decorate.WithFallback(c.body(td.Name, m, false)))
				break
			}
		}
	}

	return opts
}

func (c *Catalog) body(owner string, def MethodDef, ctor bool) typenode.Func {
	s := &script{owner: owner, def: def, init: ctor, trace: c.trace}
	return s.run
}

// File returns the catalogue definition the types were built from.
func (c *Catalog) File() *File {
	return c.file
}

// Trace returns the trace shared by every scripted call of the catalogue.
func (c *Catalog) Trace() *Trace {
	return c.trace
}

// Names returns the type names in declaration order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.file.Types))
	for i := range c.file.Types {
		names[i] = c.file.Types[i].Name
	}

	return names
}

// Type returns the type with the given name.
func (c *Catalog) Type(name string) (*typenode.TypeNode, bool) {
	t, ok := c.types[name]
	return t, ok
}

// Types returns the named types in order. An unknown name is an
// *UnknownTypeError.
func (c *Catalog) Types(names ...string) ([]*typenode.TypeNode, error) {
	out := make([]*typenode.TypeNode, 0, len(names))

	for _, name := range names {
		t, ok := c.types[name]
		if !ok {
			return nil, &UnknownTypeError{Name: name, Suggestions: match.Suggest(name, c.Names(), suggestionLimit)}
		}

		out = append(out, t)
	}

	return out, nil
}
