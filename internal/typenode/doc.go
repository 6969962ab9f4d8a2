// Package typenode is the in-memory type model the composition engine works on.
//
// Key types:
//   - TypeNode: a type with ordered direct ancestors, own members and a constructor
//   - Member / Callable: value or callable member descriptors
//   - Resolved: the result of a lookup that may find nothing
//   - Object / Call: instances and the invocation context of callable bodies
//
// Member lookup follows the C3 linearization of a type. Every invocation
// goes through the argument adapter, so callables receive only the arguments
// their signature declares.
package typenode
