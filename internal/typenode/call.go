package typenode

import (
	"errors"
	"fmt"

	"class-composer/internal/adapt"
)

// Next invokes the call wrapped by a decorator-style callable.
type Next func(b adapt.Bundle) (any, error)

// Call is the invocation context handed to a callable body.
type Call struct {
	Self     *Object
	Callable *Callable
	Args     adapt.Arguments // Arguments adapted to the callable's signature
	Bundle   adapt.Bundle    // The bundle the call was made with, before adaptation
	next     Next
}

// Arg returns the value bound to the named parameter, or nil.
func (c *Call) Arg(name string) any {
	return c.Args.Value(name)
}

// Set sets an attribute on the receiver.
func (c *Call) Set(name string, v any) {
	if c.Self != nil {
		c.Self.Set(name, v)
	}
}

// Wrapping reports whether the call wraps another call.
func (c *Call) Wrapping() bool {
	return c.next != nil
}

// Next runs the wrapped call with b. Without a wrapped call it returns nil.
func (c *Call) Next(b adapt.Bundle) (any, error) {
	if c.next == nil {
		return nil, nil
	}

	return c.next(b)
}

// Super invokes the definition of name that follows the callable's owner in
// the owner's linearization.
func (c *Call) Super(name string, b adapt.Bundle) (any, error) {
	owner := c.Callable.Owner
	if owner == nil {
		return nil, fmt.Errorf("super %s: callable has no owner", name)
	}

	r, err := lookupAfter(owner, name)
	if err != nil {
		return nil, err
	}

	if !r.Found() {
		return nil, fmt.Errorf("%w: super(%s).%s", ErrMemberNotFound, owner.Name, name)
	}

	if !r.Member.IsCallable() {
		return nil, fmt.Errorf("%w: super(%s).%s", ErrNotCallable, owner.Name, name)
	}

	return Invoke(r.Member.Callable, c.Self, b)
}

// SuperInit invokes the constructor that follows the callable's owner in the
// owner's linearization. It is a no-op when there is none.
func (c *Call) SuperInit(b adapt.Bundle) (any, error) {
	owner := c.Callable.Owner
	if owner == nil {
		return nil, errors.New("super init: callable has no owner")
	}

	init, err := initAfter(owner)
	if err != nil || init == nil {
		return nil, err
	}

	return Invoke(init, c.Self, b)
}

// Prepare introspects c and adapts b to its signature under policy. The
// error is reserved for introspection failures; missing arguments are
// reported through the result.
func Prepare(c *Callable, b adapt.Bundle, policy adapt.Policy) (adapt.Result, error) {
	sig, err := c.Signature()
	if err != nil {
		return adapt.Result{}, err
	}

	return adapt.Adapt(sig, b, policy), nil
}

// Apply runs c with arguments that were already adapted. next is the wrapped
// call for decorator-style callables and may be nil.
func Apply(c *Callable, self *Object, args adapt.Arguments, b adapt.Bundle, next Next) (any, error) {
	if c.Fn == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotInvocable, c.QualifiedName())
	}

	return c.Fn(&Call{Self: self, Callable: c, Args: args, Bundle: b, next: next})
}

// Invoke adapts b to c strictly and runs it.
func Invoke(c *Callable, self *Object, b adapt.Bundle) (any, error) {
	return InvokeWrapped(c, self, b, nil)
}

// InvokeWrapped is Invoke for decorator-style callables wrapping next.
func InvokeWrapped(c *Callable, self *Object, b adapt.Bundle, next Next) (any, error) {
	res, err := Prepare(c, b, adapt.Strict)
	if err != nil {
		return nil, err
	}

	if err := res.Err(c.QualifiedName()); err != nil {
		return nil, err
	}

	return Apply(c, self, res.Args, b, next)
}
