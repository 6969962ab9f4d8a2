package signature

//go:generate go tool stringer -type=ParamKind -output=kind_string.go

// ParamKind classifies how a parameter binds call arguments.
//
// The numeric order is also the only order in which kinds may appear in a
// Signature.
type ParamKind int

const (
	_ ParamKind = iota // zero value is invalid

	PositionalOnly     // bound by position only
	PositionalOrNamed  // bound by name, or by position when no name matches
	VariadicPositional // collects every remaining positional value
	NamedOnly          // bound by name only
	VariadicNamed      // collects every named value not bound to a declared parameter
)

// IsCollector reports whether the kind collects a variable number of values.
func (k ParamKind) IsCollector() bool {
	return k == VariadicPositional || k == VariadicNamed
}

// AcceptsPosition reports whether a single positional value can bind to the kind.
func (k ParamKind) AcceptsPosition() bool {
	return k == PositionalOnly || k == PositionalOrNamed
}

// AcceptsName reports whether a named value can bind to the kind.
func (k ParamKind) AcceptsName() bool {
	return k == PositionalOrNamed || k == NamedOnly
}

// ParseKind maps the textual names used in catalogue files to a ParamKind.
// The empty string selects PositionalOrNamed.
func ParseKind(s string) (ParamKind, bool) {
	switch s {
	case "", "positional_or_named", "param":
		return PositionalOrNamed, true
	case "positional", "positional_only":
		return PositionalOnly, true
	case "named", "named_only", "keyword":
		return NamedOnly, true
	case "varargs", "variadic":
		return VariadicPositional, true
	case "varkw", "variadic_named", "kwargs":
		return VariadicNamed, true
	default:
		return 0, false
	}
}
