package catalog

import (
	"fmt"

	"class-composer/internal/adapt"
	"class-composer/internal/typenode"
)

// script is the body of a catalogue method.
type script struct {
	owner string
	def   MethodDef
	init  bool
	trace *Trace
}

func (s *script) run(call *typenode.Call) (any, error) {
	phase := PhaseCall
	if s.def.Wraps {
		phase = PhaseOpen
	}

	s.trace.record(Event{Type: s.owner, Member: s.def.Name, Phase: phase, Args: call.Args.Map()})

	if s.def.Super {
		var err error
		if s.init {
			_, err = call.SuperInit(call.Bundle)
		} else {
			_, err = call.Super(s.def.Name, call.Bundle)
		}

		if err != nil {
			return nil, err
		}
	}

	for _, as := range s.def.Set {
		v, err := eval(call, as.Expr)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: set %s: %w", s.owner, s.def.Name, as.Attr, err)
		}

		call.Set(as.Attr, v)
	}

	var ret any

	if s.def.Wraps {
		v, err := call.Next(call.Bundle)
		if err != nil {
			return nil, err
		}

		ret = v

		s.trace.record(Event{Type: s.owner, Member: s.def.Name, Phase: PhaseClose})
	}

	if s.def.Returns != nil {
		v, err := eval(call, s.def.Returns)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: returns: %w", s.owner, s.def.Name, err)
		}

		ret = v
	}

	return ret, nil
}

// eval evaluates an expression of a scripted method:
//
//	$name   argument bound to parameter name (or collected under that name)
//	@name   result of calling member name on the receiver
//	.name   attribute name of the receiver
//	[...]   list of expressions
func eval(call *typenode.Call, expr any) (any, error) {
	switch v := expr.(type) {
	case string:
		if len(v) < 2 {
			return v, nil
		}

		name := v[1:]

		switch v[0] {
		case '$':
			if val, ok := call.Args.Get(name); ok {
				return val, nil
			}

			return call.Args.Extra()[name], nil
		case '@':
			if call.Self == nil {
				return nil, fmt.Errorf("call %s: no receiver", name)
			}

			return call.Self.Call(name, adapt.Bundle{})
		case '.':
			if call.Self == nil {
				return nil, nil
			}

			val, _ := call.Self.Attr(name)

			return val, nil
		}

		return v, nil

	case []any:
		out := make([]any, len(v))

		for i, e := range v {
			val, err := eval(call, e)
			if err != nil {
				return nil, err
			}

			out[i] = val
		}

		return out, nil

	default:
		return expr, nil
	}
}

// references returns the argument and member names an expression uses.
func references(expr any) (args, members []string) {
	switch v := expr.(type) {
	case string:
		if len(v) < 2 {
			return nil, nil
		}

		switch v[0] {
		case '$':
			return []string{v[1:]}, nil
		case '@':
			return nil, []string{v[1:]}
		}
	case []any:
		for _, e := range v {
			a, m := references(e)
			args = append(args, a...)
			members = append(members, m...)
		}
	}

	return args, members
}
