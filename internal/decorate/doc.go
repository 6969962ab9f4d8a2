// Package decorate wraps a method in decorators that are looked up by name
// on the receiver each time the method runs.
//
// A decorator is a decorator-style callable (typenode.Callable.Wraps) that
// runs the decorated call through Call.Next. Because lookup happens at call
// time, decorators contributed by a composite type, including fan-out
// decorators merged from several contributors, apply to methods declared on
// any one of them.
package decorate
