package adapt

import (
	"fmt"

	"class-composer/internal/signature"
)

// Policy decides what happens when a target's required parameter cannot be bound.
type Policy int

const (
	// Strict reports the missing parameter as an error.
	Strict Policy = iota
	// Lenient skips the target without invoking it.
	Lenient
)

// PolicyFor maps a strict flag to a Policy.
func PolicyFor(strict bool) Policy {
	if strict {
		return Strict
	}

	return Lenient
}

// String returns a human-readable policy name.
func (p Policy) String() string {
	if p == Lenient {
		return "lenient"
	}

	return "strict"
}

// Outcome is the result class of Adapt.
type Outcome int

const (
	Adapted Outcome = iota
	MissingRequired
	Skipped
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case Adapted:
		return "adapted"
	case MissingRequired:
		return "missing-required"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the adapted argument set for one target.
type Result struct {
	Outcome Outcome
	Args    Arguments
	// Missing names the first required parameter that could not be bound.
	Missing string
}

// Err converts a MissingRequired result into a *MissingArgumentError.
// Any other outcome yields nil.
func (r Result) Err(callable string) error {
	if r.Outcome != MissingRequired {
		return nil
	}

	return &MissingArgumentError{Callable: callable, Param: r.Missing}
}

// MissingArgumentError reports a required parameter that no value in the
// bundle could satisfy under the strict policy.
type MissingArgumentError struct {
	Callable string
	Param    string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s: missing required argument %q", e.Callable, e.Param)
}

// Adapt selects from b the arguments that sig accepts.
//
// A positional-or-named parameter takes the named value of the same name
// when there is one and the next unused positional value otherwise, so a
// value given by name never consumes a positional one. Values nothing
// accepts are dropped unless a matching collector exists.
// Adapt never fails on excess arguments.
func Adapt(sig signature.Signature, b Bundle, policy Policy) Result {
	args := Arguments{values: make(map[string]any, len(sig.Params))}

	named := make(map[string]any, len(b.Named))
	for k, v := range b.Named {
		named[k] = v
	}

	next := 0
	missing := func(p signature.Param) Result {
		if policy == Lenient {
			return Result{Outcome: Skipped, Missing: p.Name}
		}

		return Result{Outcome: MissingRequired, Missing: p.Name}
	}

	for _, p := range sig.Params {
		switch p.Kind {
		case signature.PositionalOnly, signature.PositionalOrNamed:
			if p.Kind == signature.PositionalOrNamed {
				if v, ok := named[p.Name]; ok {
					args.bind(p.Name, v, false)
					delete(named, p.Name)

					continue
				}
			}

			if next < len(b.Positional) {
				args.bind(p.Name, b.Positional[next], false)
				next++

				continue
			}

			if !p.HasDefault {
				return missing(p)
			}

			args.bind(p.Name, p.Default, false)

		case signature.VariadicPositional:
			if next < len(b.Positional) {
				args.rest = append([]any(nil), b.Positional[next:]...)
				next = len(b.Positional)
			}

		case signature.NamedOnly:
			if v, ok := named[p.Name]; ok {
				args.bind(p.Name, v, true)
				delete(named, p.Name)

				continue
			}

			if !p.HasDefault {
				return missing(p)
			}

			args.bind(p.Name, p.Default, true)

		case signature.VariadicNamed:
			if len(named) > 0 {
				args.extra = named
			}
		}
	}

	return Result{Outcome: Adapted, Args: args}
}
