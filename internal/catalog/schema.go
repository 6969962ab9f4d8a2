package catalog

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"class-composer/internal/signature"
)

// File represents the root of a YAML type catalogue.
type File struct {
	// Version of the catalogue schema.
	Version string `yaml:"version,omitempty"`

	// Types lists the type definitions. Bases may refer to types declared
	// later in the list.
	Types []TypeDef `yaml:"types"`

	// Compose optionally describes a composition of catalogue types.
	Compose *ComposeDef `yaml:"compose,omitempty"`
}

// TypeDef defines one type.
type TypeDef struct {
	Name string `yaml:"name"`

	// Bases lists the direct ancestors in order.
	Bases StringOrArray `yaml:"bases,omitempty"`

	// Values are plain value members.
	Values map[string]any `yaml:"values,omitempty"`

	// Init is the constructor. Its name is ignored.
	Init *MethodDef `yaml:"init,omitempty"`

	Methods []MethodDef `yaml:"methods,omitempty"`
}

// MethodDef defines a scripted callable. When invoked it records a trace
// event, optionally runs the next definition up the hierarchy, assigns
// attributes in order and returns a value.
//
// Expressions in Set and Returns are YAML values. A string "$name" is the
// argument bound to parameter name, a string "@name" is the result of calling
// member name on the receiver without arguments and a list evaluates each of
// its elements. Anything else is a literal.
type MethodDef struct {
	Name   string     `yaml:"name"`
	Params []ParamDef `yaml:"params,omitempty"`

	// Super runs the definition of the same member that follows the owner in
	// its linearization before the body, with the same arguments.
	Super bool `yaml:"super,omitempty"`

	Set     Assignments `yaml:"set,omitempty"`
	Returns any         `yaml:"returns,omitempty"`

	// Wraps makes the method decorator-style: it runs the wrapped call
	// between its open and close trace events.
	Wraps bool `yaml:"wraps,omitempty"`

	// DecorateWith lists decorator names applied around this method at call time.
	DecorateWith StringOrArray `yaml:"decorate_with,omitempty"`

	// SubInstance is the attribute holding the object that provides the
	// decorators named in DecorateWith.
	SubInstance string `yaml:"sub_instance,omitempty"`

	// Fallback names a method of the same type that runs before the method
	// when none of the decorators exists.
	Fallback string `yaml:"fallback,omitempty"`
}

// ParamDef defines one parameter.
//
// The scalar form is shorthand: "name" is a required positional-or-named
// parameter, "name=value" has a default, "*name" collects positional values
// and "**name" collects named values.
type ParamDef struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind,omitempty"`
	Default any    `yaml:"default,omitempty"`

	// Optional marks a parameter with a default even when Default is null.
	Optional bool `yaml:"optional,omitempty"`
}

// ComposeDef selects roots and options for a composition.
type ComposeDef struct {
	Roots  []string `yaml:"roots"`
	FanOut []string `yaml:"fan_out,omitempty"`
	Strict *bool    `yaml:"strict,omitempty"`
}

// StringOrArray holds one or more strings.
type StringOrArray []string

// Assignments is an ordered list of attribute assignments.
type Assignments []Assignment

// Assignment sets attribute Attr to the value of expression Expr.
type Assignment struct {
	Attr string
	Expr any
}

// UnmarshalYAML accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		if str == "" {
			*s = StringOrArray{}
		} else {
			*s = StringOrArray{str}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// UnmarshalYAML decodes a mapping, keeping the order of its keys.
func (a *Assignments) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: set must be a mapping", node.Line)
	}

	out := make(Assignments, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var expr any
		if err := node.Content[i+1].Decode(&expr); err != nil {
			return err
		}

		out = append(out, Assignment{Attr: node.Content[i].Value, Expr: expr})
	}

	*a = out

	return nil
}

// MarshalYAML outputs the assignments as an ordered mapping.
func (a Assignments) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, as := range a {
		var val yaml.Node
		if err := val.Encode(as.Expr); err != nil {
			return nil, err
		}

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: as.Attr}, &val)
	}

	return node, nil
}

// UnmarshalYAML accepts the scalar shorthand or the mapping form.
func (p *ParamDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		type plain ParamDef

		return node.Decode((*plain)(p))
	}

	s := node.Value

	switch {
	case strings.HasPrefix(s, "**"):
		*p = ParamDef{Name: s[2:], Kind: "kwargs"}
	case strings.HasPrefix(s, "*"):
		*p = ParamDef{Name: s[1:], Kind: "varargs"}
	default:
		name, def, ok := strings.Cut(s, "=")
		if !ok {
			*p = ParamDef{Name: s}
			return nil
		}

		var v any
		if err := yaml.Unmarshal([]byte(def), &v); err != nil {
			return fmt.Errorf("line %d: default of %s: %w", node.Line, name, err)
		}

		*p = ParamDef{Name: strings.TrimSpace(name), Default: v, Optional: true}
	}

	return nil
}

// Param converts the definition into a signature parameter.
func (p ParamDef) Param() (signature.Param, error) {
	kind, ok := signature.ParseKind(p.Kind)
	if !ok {
		return signature.Param{}, fmt.Errorf("parameter %s: unknown kind %q", p.Name, p.Kind)
	}

	return signature.Param{
		Name:       p.Name,
		Kind:       kind,
		HasDefault: p.Optional || p.Default != nil,
		Default:    p.Default,
	}, nil
}

// Signature converts the parameter definitions of m into a validated signature.
func (m MethodDef) Signature(owner string) (signature.Signature, error) {
	params := make([]signature.Param, 0, len(m.Params))

	for _, pd := range m.Params {
		p, err := pd.Param()
		if err != nil {
			return signature.Signature{}, fmt.Errorf("%s.%s: %w", owner, m.Name, err)
		}

		params = append(params, p)
	}

	return signature.Introspect(owner+"."+m.Name, params)
}
