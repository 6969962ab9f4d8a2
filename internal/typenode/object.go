package typenode

import (
	"errors"
	"fmt"
	"maps"

	"class-composer/internal/adapt"
)

var (
	// ErrMemberNotFound is returned when neither the instance nor its type
	// resolves a member name.
	ErrMemberNotFound = errors.New("member not found")
	// ErrNotCallable is returned when a call targets a value member.
	ErrNotCallable = errors.New("member is not callable")
	// ErrNotInvocable is returned when a describe-only callable is invoked.
	ErrNotInvocable = errors.New("callable has no body")
)

// Object is an instance of a TypeNode.
type Object struct {
	typ   *TypeNode
	attrs map[string]any
}

// Instantiate creates an instance of t and runs the constructor resolved
// along its linearization with b. Missing required constructor arguments are
// an error.
func Instantiate(t *TypeNode, b adapt.Bundle) (*Object, error) {
	if t == nil {
		return nil, errors.New("instantiate: nil type")
	}

	obj := &Object{typ: t, attrs: make(map[string]any)}

	init, err := t.LookupInit()
	if err != nil {
		return nil, fmt.Errorf("instantiate %s: %w", t.Name, err)
	}

	if init == nil {
		return obj, nil
	}

	if _, err := Invoke(init, obj, b); err != nil {
		return nil, fmt.Errorf("instantiate %s: %w", t.Name, err)
	}

	return obj, nil
}

// Type returns the type of the instance.
func (o *Object) Type() *TypeNode {
	return o.typ
}

// Set sets an instance attribute.
func (o *Object) Set(name string, v any) {
	o.attrs[name] = v
}

// Attr returns an instance attribute.
func (o *Object) Attr(name string) (any, bool) {
	v, ok := o.attrs[name]
	return v, ok
}

// Attrs returns a copy of the instance attributes.
func (o *Object) Attrs() map[string]any {
	return maps.Clone(o.attrs)
}

// Lookup resolves name on the instance attributes first and then on the type.
// An attribute holding a *Callable or a Func resolves as a callable member.
func (o *Object) Lookup(name string) (Resolved, error) {
	if v, ok := o.attrs[name]; ok {
		m := Member{Name: name, Value: v}

		switch fn := v.(type) {
		case *Callable:
			m = Member{Name: name, Callable: fn}
		case Func:
			m = Member{Name: name, Callable: &Callable{Name: name, Fn: fn}}
		}

		return found(m, nil), nil
	}

	return o.typ.Lookup(name)
}

// Get returns the value of an attribute or value member.
func (o *Object) Get(name string) (any, error) {
	r, err := o.Lookup(name)
	if err != nil {
		return nil, err
	}

	if !r.Found() {
		return nil, fmt.Errorf("%w: %s.%s", ErrMemberNotFound, o.typ.Name, name)
	}

	if r.Member.IsCallable() {
		return r.Member.Callable, nil
	}

	return r.Member.Value, nil
}

// Call invokes the callable member name with b.
func (o *Object) Call(name string, b adapt.Bundle) (any, error) {
	r, err := o.Lookup(name)
	if err != nil {
		return nil, err
	}

	if !r.Found() {
		return nil, fmt.Errorf("%w: %s.%s", ErrMemberNotFound, o.typ.Name, name)
	}

	if !r.Member.IsCallable() {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotCallable, o.typ.Name, name)
	}

	return Invoke(r.Member.Callable, o, b)
}
