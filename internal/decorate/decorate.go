package decorate

import (
	"errors"
	"fmt"
	"strings"

	"class-composer/internal/adapt"
	"class-composer/internal/typenode"
)

// DecoratedSelf is the named argument through which a decorator found on a
// sub-instance receives the instance whose method it decorates.
const DecoratedSelf = "decorated_self"

// ErrNotDecorator is returned when a listed name resolves to a member that
// is not decorator-style.
var ErrNotDecorator = errors.New("member is not a decorator")

// Option configures With.
type Option func(*config)

type config struct {
	fallback    typenode.Func
	subInstance string
}

// WithFallback runs fn before the decorated method when none of the listed
// decorators exists on the receiver. The result of fn is discarded; an
// error from fn stops the call.
func WithFallback(fn typenode.Func) Option {
	return func(c *config) {
		c.fallback = fn
	}
}

// WithSubInstance looks the decorators up on the object held by the named
// attribute instead of on the receiver itself.
func WithSubInstance(attr string) Option {
	return func(c *config) {
		c.subInstance = attr
	}
}

// With returns a callable with the signature of target that runs target
// inside the decorators named by names. Names are resolved on the receiver
// at every call; a dotted name walks attributes holding objects. The first
// name is the outermost decorator. Names that resolve to nothing are left
// out of the chain.
func With(target *typenode.Callable, names []string, opts ...Option) *typenode.Callable {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	paths := make([]string, len(names))
	for i, n := range names {
		if cfg.subInstance != "" {
			n = cfg.subInstance + "." + n
		}

		paths[i] = n
	}

	d := &decorated{target: target, paths: paths, fallback: cfg.fallback}

	return &typenode.Callable{
		Name:   target.Name,
		Owner:  target.Owner,
		Params: target.Params,
		Fn:     d.call,
	}
}

// Method declares name on t as target wrapped by the named decorators.
func Method(t *typenode.TypeNode, name string, target *typenode.Callable, names []string, opts ...Option) *typenode.TypeNode {
	target.Name = name
	if target.Owner == nil {
		target.Owner = t
	}

	return t.Define(name, typenode.Member{Callable: With(target, names, opts...)})
}

type decorated struct {
	target   *typenode.Callable
	paths    []string
	fallback typenode.Func
}

// decorator is one decorator found on the receiver or one of its sub-instances.
type decorator struct {
	callable *typenode.Callable
	receiver *typenode.Object
	sub      bool
}

func (d *decorated) call(call *typenode.Call) (any, error) {
	self := call.Self

	var chain []decorator

	for _, path := range d.paths {
		dec, ok, err := resolve(self, path)
		if err != nil {
			return nil, err
		}

		if ok {
			chain = append(chain, dec)
		}
	}

	runTarget := func(b adapt.Bundle) (any, error) {
		return typenode.Invoke(d.target, self, b)
	}

	if len(chain) == 0 {
		if d.fallback == nil {
			return runTarget(call.Bundle)
		}

		fb := &typenode.Callable{
			Name:   d.target.Name + ".fallback",
			Owner:  d.target.Owner,
			Params: d.target.Params,
			Fn:     d.fallback,
		}

		if _, err := typenode.Invoke(fb, self, call.Bundle); err != nil {
			return nil, err
		}

		return runTarget(call.Bundle)
	}

	var step func(i int, b adapt.Bundle) (any, error)

	step = func(i int, b adapt.Bundle) (any, error) {
		if i == len(chain) {
			return runTarget(b)
		}

		dec := chain[i]

		db := b
		if dec.sub {
			db = b.With(DecoratedSelf, self)
		}

		return typenode.InvokeWrapped(dec.callable, dec.receiver, db, func(nb adapt.Bundle) (any, error) {
			if dec.sub {
				nb = without(nb, DecoratedSelf)
			}

			return step(i+1, nb)
		})
	}

	return step(0, call.Bundle)
}

// resolve finds the decorator named by path. ok is false when some element
// of the path does not exist.
func resolve(self *typenode.Object, path string) (decorator, bool, error) {
	parts := strings.Split(path, ".")
	recv := self

	for _, attr := range parts[:len(parts)-1] {
		v, ok := recv.Attr(attr)
		if !ok {
			return decorator{}, false, nil
		}

		sub, ok := v.(*typenode.Object)
		if !ok {
			return decorator{}, false, nil
		}

		recv = sub
	}

	name := parts[len(parts)-1]

	r, err := recv.Lookup(name)
	if err != nil {
		return decorator{}, false, err
	}

	if !r.Found() {
		return decorator{}, false, nil
	}

	if !r.Member.IsCallable() || !r.Member.Callable.Wraps {
		return decorator{}, false, fmt.Errorf("%w: %s", ErrNotDecorator, path)
	}

	return decorator{callable: r.Member.Callable, receiver: recv, sub: recv != self}, true, nil
}

func without(b adapt.Bundle, name string) adapt.Bundle {
	if _, ok := b.Named[name]; !ok {
		return b
	}

	out := adapt.NewBundle(b.Positional, b.Named)
	delete(out.Named, name)

	return out
}
