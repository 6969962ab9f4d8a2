// Package analyze builds type nodes from Go source.
//
// It uses golang.org/x/tools/go/packages with go/types to read the exported
// named structs of a set of packages:
//   - embedded named structs become bases, in declaration order
//   - exported fields become value members holding a FieldInfo
//   - declared methods become describe-only callables whose parameters
//     bind by name or position; a variadic parameter collects the rest
//   - a package function New<Name> returning the type becomes its constructor
//
// The resulting nodes compose like any other, so a plan can be computed for
// a set of Go types without running them.
package analyze
