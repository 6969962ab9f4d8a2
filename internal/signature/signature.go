package signature

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Param describes a single declared parameter.
type Param struct {
	Name       string    // Parameter name, unique within a signature
	Kind       ParamKind // Binding kind
	HasDefault bool      // Whether the parameter may be left unbound
	Default    any       // Value used when HasDefault is set and nothing binds; treated as immutable
}

// Required reports whether a call must supply a value for the parameter.
func (p Param) Required() bool {
	return !p.Kind.IsCollector() && !p.HasDefault
}

// String renders the parameter the way it appears inside a signature.
func (p Param) String() string {
	switch p.Kind {
	case VariadicPositional:
		return "*" + p.Name
	case VariadicNamed:
		return "**" + p.Name
	}

	if p.HasDefault {
		return fmt.Sprintf("%s=%v", p.Name, p.Default)
	}

	return p.Name
}

// Signature is the ordered parameter list of a callable.
type Signature struct {
	Name   string  // Callable name used in diagnostics
	Params []Param // Parameters in declaration order
}

// Collectors reports whether the signature has a variadic-positional and a
// variadic-named collector.
func (s Signature) Collectors() (positional, named bool) {
	for _, p := range s.Params {
		switch p.Kind {
		case VariadicPositional:
			positional = true
		case VariadicNamed:
			named = true
		}
	}

	return positional, named
}

// Lookup returns the parameter with the given name.
func (s Signature) Lookup(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}

	return Param{}, false
}

// String returns a human-readable representation, e.g. "C(a, b, /, kw1=<nil>, *, kw2=1)".
func (s Signature) String() string {
	var parts []string

	hasVarPos, _ := s.Collectors()
	starred := hasVarPos

	for i, p := range s.Params {
		if p.Kind == NamedOnly && !starred {
			parts = append(parts, "*")
			starred = true
		}

		parts = append(parts, p.String())

		if p.Kind == PositionalOnly && (i == len(s.Params)-1 || s.Params[i+1].Kind != PositionalOnly) {
			parts = append(parts, "/")
		}
	}

	return s.Name + "(" + strings.Join(parts, ", ") + ")"
}

// Collect returns a signature that accepts any call: a variadic-positional
// collector followed by a variadic-named collector.
func Collect(name string) Signature {
	return Signature{
		Name: name,
		Params: []Param{
			{Name: "args", Kind: VariadicPositional},
			{Name: "kwargs", Kind: VariadicNamed},
		},
	}
}

// IntrospectionError reports a callable whose declared parameters do not form
// a valid signature.
type IntrospectionError struct {
	Callable string
	Param    string
	Reason   string
}

func (e *IntrospectionError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("introspect %s: %s", e.Callable, e.Reason)
	}

	return fmt.Sprintf("introspect %s: parameter %q: %s", e.Callable, e.Param, e.Reason)
}

// Introspect validates the declared parameters of a callable and returns its
// signature. Parameters keep their declaration order; zero kinds are read as
// PositionalOrNamed.
func Introspect(name string, params []Param) (Signature, error) {
	sig := Signature{Name: name, Params: make([]Param, 0, len(params))}

	seen := make(map[string]struct{}, len(params))
	last := ParamKind(0)
	defaulted := false

	for _, p := range params {
		if p.Kind == 0 {
			p.Kind = PositionalOrNamed
		}

		fail := func(reason string) (Signature, error) {
			return Signature{}, &IntrospectionError{Callable: name, Param: p.Name, Reason: reason}
		}

		if p.Kind < PositionalOnly || p.Kind > VariadicNamed {
			return fail(fmt.Sprintf("unknown kind %d", int(p.Kind)))
		}

		if p.Name == "" {
			return fail("empty name")
		}

		if _, dup := seen[p.Name]; dup {
			return fail("duplicate name")
		}

		seen[p.Name] = struct{}{}

		if p.Kind < last {
			return fail(fmt.Sprintf("%s cannot follow %s", p.Kind, last))
		}

		if p.Kind == last && p.Kind.IsCollector() {
			return fail(fmt.Sprintf("more than one %s collector", p.Kind))
		}

		if p.Kind.IsCollector() && p.HasDefault {
			return fail("collector cannot have a default")
		}

		if p.Kind.AcceptsPosition() {
			if p.HasDefault {
				defaulted = true
			} else if defaulted {
				return fail("required positional parameter follows a defaulted one")
			}
		}

		last = p.Kind
		sig.Params = append(sig.Params, p)
	}

	return sig, nil
}

// MustIntrospect is like Introspect but panics on an invalid signature.
// It is meant for statically declared signatures in tests and samples.
func MustIntrospect(name string, params ...Param) Signature {
	sig, err := Introspect(name, params)
	if err != nil {
		panic(err)
	}

	return sig
}

var errNotFunc = errors.New("not a function")

// FromFunc introspects a Go function value. Go does not retain parameter
// names at runtime, so they are taken from names in order and generated as
// "argN" when absent. A variadic function ends with a VariadicPositional
// collector.
func FromFunc(fn any, names ...string) (Signature, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return Signature{}, &IntrospectionError{
			Callable: fmt.Sprintf("%T", fn),
			Reason:   errNotFunc.Error(),
		}
	}

	t := v.Type()
	params := make([]Param, 0, t.NumIn())

	for i := range t.NumIn() {
		name := fmt.Sprintf("arg%d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}

		kind := PositionalOrNamed
		if t.IsVariadic() && i == t.NumIn()-1 {
			kind = VariadicPositional
		}

		params = append(params, Param{Name: name, Kind: kind})
	}

	return Introspect(funcName(v), params)
}

func funcName(v reflect.Value) string {
	return v.Type().String()
}
