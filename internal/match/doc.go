// Package match ranks known names against an unknown one so that diagnostics
// can suggest what was probably meant.
//
// Member names fold their snake_case or camelCase words before comparison.
// Dotted sub-instance paths and package qualifiers are compared apart from
// the last segment, so a bare name still finds its qualified form.
package match
