// Package diagnostic provides structured errors, warnings and "why this
// member resolved here" explanations for compositions and catalogues.
//
// Key capabilities:
//   - Override reports naming the winning and the shadowed contributors
//   - Fan-out names no contributor defines, with suggestions
//   - Catalogue validation errors (unknown bases, bad parameter kinds)
package diagnostic
