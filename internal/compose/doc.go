// Package compose merges several type hierarchies into one composite type.
//
// The ancestor trees of the roots are zipped rank by rank: a rank holds the
// types found at the same ancestor position in each input, and its parent is
// the rank built from their direct ancestors. Each rank with more than one
// contributor becomes a synthesized type whose only base is the parent
// rank's type.
//
// A member name either resolves to the rightmost contributor that defines it
// or, when listed in Options.FanOut, to a wrapper that invokes every
// contributor's definition left to right. Constructors always fan out. The
// wrapper adapts one shared argument bundle to each target's signature, see
// package adapt.
//
//	t, err := compose.Compose([]*typenode.TypeNode{a, b}, []string{"setup"}, true)
//	obj, err := typenode.Instantiate(t, adapt.NewBundle(args, kwargs))
package compose
