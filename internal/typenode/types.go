package typenode

import (
	"sort"
	"strings"

	"class-composer/internal/signature"
)

// InitName is the member name under which constructors are reported.
const InitName = "init"

// Func is the body of a callable member.
type Func func(call *Call) (any, error)

// Callable is a callable member descriptor.
type Callable struct {
	Name   string            // Member name
	Owner  *TypeNode         // Type that declares the callable
	Params []signature.Param // Declared parameters, validated by Signature
	Wraps  bool              // Decorator-style: receives the wrapped call through Call.Next
	Fn     Func              // Body; nil for describe-only callables
}

// QualifiedName returns "Owner.Name", or Name when the owner is unknown.
func (c *Callable) QualifiedName() string {
	if c.Owner == nil {
		return c.Name
	}

	return c.Owner.Name + "." + c.Name
}

// Signature introspects the declared parameters.
func (c *Callable) Signature() (signature.Signature, error) {
	return signature.Introspect(c.QualifiedName(), c.Params)
}

// Member is a member descriptor: either a plain value or a callable.
type Member struct {
	Name     string
	Value    any
	Callable *Callable
}

// IsCallable reports whether the member is a callable.
func (m Member) IsCallable() bool {
	return m.Callable != nil
}

// TypeNode is one type: identity, ordered direct ancestors, own members and
// an optional constructor. Composite types synthesized by composition also
// list the contributors they merge.
type TypeNode struct {
	Name         string
	Bases        []*TypeNode
	Members      map[string]Member
	Init         *Callable
	Contributors []*TypeNode
}

// New creates a TypeNode with the given direct ancestors.
func New(name string, bases ...*TypeNode) *TypeNode {
	return &TypeNode{
		Name:    name,
		Bases:   bases,
		Members: make(map[string]Member),
	}
}

// Define adds a member. A callable without an owner is owned by t.
func (t *TypeNode) Define(name string, m Member) *TypeNode {
	if t.Members == nil {
		t.Members = make(map[string]Member)
	}

	m.Name = name
	if m.Callable != nil {
		if m.Callable.Name == "" {
			m.Callable.Name = name
		}

		if m.Callable.Owner == nil {
			m.Callable.Owner = t
		}
	}

	t.Members[name] = m

	return t
}

// Value adds a plain value member.
func (t *TypeNode) Value(name string, v any) *TypeNode {
	return t.Define(name, Member{Value: v})
}

// Method adds a callable member.
func (t *TypeNode) Method(name string, fn Func, params ...signature.Param) *TypeNode {
	return t.Define(name, Member{Callable: &Callable{Fn: fn, Params: params}})
}

// Decorator adds a decorator-style callable member.
func (t *TypeNode) Decorator(name string, fn Func, params ...signature.Param) *TypeNode {
	return t.Define(name, Member{Callable: &Callable{Fn: fn, Params: params, Wraps: true}})
}

// Constructor sets the constructor.
func (t *TypeNode) Constructor(fn Func, params ...signature.Param) *TypeNode {
	t.Init = &Callable{Name: InitName, Owner: t, Fn: fn, Params: params}
	return t
}

// Own returns a member declared directly on t.
func (t *TypeNode) Own(name string) (Member, bool) {
	m, ok := t.Members[name]
	return m, ok
}

// MemberNames returns the names of the members declared directly on t, sorted.
func (t *TypeNode) MemberNames() []string {
	names := make([]string, 0, len(t.Members))
	for name := range t.Members {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// IsComposite reports whether t was synthesized by composition.
func (t *TypeNode) IsComposite() bool {
	return len(t.Contributors) > 0
}

// String returns the type name; composites list their contributors.
func (t *TypeNode) String() string {
	if t == nil {
		return "<nil>"
	}

	if !t.IsComposite() {
		return t.Name
	}

	names := make([]string, len(t.Contributors))
	for i, c := range t.Contributors {
		names[i] = c.String()
	}

	return t.Name + "[" + strings.Join(names, "+") + "]"
}

// Resolved is the result of a member lookup that may find nothing.
type Resolved struct {
	Member Member
	Owner  *TypeNode // Type the member was found on; nil for instance attributes
	found  bool
}

// Found reports whether the lookup found a member.
func (r Resolved) Found() bool {
	return r.found
}

// Missing is the empty lookup result.
func Missing() Resolved {
	return Resolved{}
}

func found(m Member, owner *TypeNode) Resolved {
	return Resolved{Member: m, Owner: owner, found: true}
}
