package catalog

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"class-composer/internal/diagnostic"
	"class-composer/internal/match"
	"class-composer/internal/signature"
	"class-composer/internal/typenode"
)

const suggestionLimit = 3

// Validate checks a catalogue for structural errors: duplicate or unknown
// names, cyclic bases, invalid signatures and dangling references. Unknown
// names come with suggestions.
func Validate(f *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError("catalog_is_nil", "catalogue is nil", "", "")
		return res
	}

	if len(f.Types) == 0 {
		res.AddError("no_types", "catalogue declares no types", "", "")
		return res
	}

	names := make([]string, 0, len(f.Types))
	index := make(map[string]int, len(f.Types))

	for i := range f.Types {
		name := f.Types[i].Name
		if name == "" {
			res.AddError("type_name_empty", fmt.Sprintf("type #%d has no name", i), "", "")
			continue
		}

		if _, ok := index[name]; ok {
			res.AddError("duplicate_type", fmt.Sprintf("duplicate type %q", name), name, "")
			continue
		}

		index[name] = i
		names = append(names, name)
	}

	members := allMembers(f)

	for i := range f.Types {
		td := &f.Types[i]
		if td.Name == "" {
			continue
		}

		for _, b := range td.Bases {
			if _, ok := index[b]; !ok {
				res.AddError("unknown_base", fmt.Sprintf("unknown base %q", b), td.Name, "",
					match.Suggest(b, names, suggestionLimit)...)
			}
		}

		validateType(res, td, members)
	}

	validateBases(res, f, index)
	validateCompose(res, f.Compose, names, members)

	return res
}

func validateType(res *diagnostic.Diagnostics, td *TypeDef, members []string) {
	methods := make(map[string]struct{}, len(td.Methods))
	methodNames := make([]string, 0, len(td.Methods))

	for _, m := range td.Methods {
		if _, ok := methods[m.Name]; ok {
			res.AddError("duplicate_member", fmt.Sprintf("duplicate method %q", m.Name), td.Name, m.Name)
		}

		if _, ok := td.Values[m.Name]; ok {
			res.AddError("duplicate_member", fmt.Sprintf("%q is both a value and a method", m.Name), td.Name, m.Name)
		}

		methods[m.Name] = struct{}{}
		methodNames = append(methodNames, m.Name)
	}

	if td.Init != nil {
		ctor := *td.Init
		ctor.Name = typenode.InitName
		validateMethod(res, td, ctor, nil, members)
	}

	for _, m := range td.Methods {
		validateMethod(res, td, m, methodNames, members)
	}
}

func validateMethod(res *diagnostic.Diagnostics, td *TypeDef, m MethodDef, methodNames, members []string) {
	if m.Name == "" {
		res.AddError("method_name_empty", "method has no name", td.Name, "")
		return
	}

	sig, err := m.Signature(td.Name)
	if err != nil {
		res.AddError("invalid_signature", err.Error(), td.Name, m.Name)
		return
	}

	if m.Name == typenode.InitName && (m.Wraps || len(m.DecorateWith) > 0) {
		res.AddError("invalid_constructor", "a constructor cannot be a decorator or be decorated", td.Name, m.Name)
	}

	if m.Wraps && len(m.DecorateWith) > 0 {
		res.AddError("decorated_decorator", "a decorator cannot itself be decorated", td.Name, m.Name)
	}

	if m.Fallback != "" {
		if len(m.DecorateWith) == 0 {
			res.AddWarning("fallback_unused", "fallback without decorate_with is never used", td.Name, m.Name)
		}

		if !slices.Contains(methodNames, m.Fallback) {
			res.AddError("unknown_fallback", fmt.Sprintf("unknown fallback method %q", m.Fallback), td.Name, m.Name,
				match.Suggest(m.Fallback, methodNames, suggestionLimit)...)
		}
	}

	if m.SubInstance != "" && len(m.DecorateWith) == 0 {
		res.AddWarning("sub_instance_unused", "sub_instance without decorate_with is never used", td.Name, m.Name)
	}

	exprs := []any{m.Returns}
	for _, as := range m.Set {
		exprs = append(exprs, as.Expr)
	}

	hasKwargs := false
	for _, p := range sig.Params {
		if p.Kind == signature.VariadicNamed {
			hasKwargs = true
		}
	}

	for _, e := range exprs {
		args, calls := references(e)

		for _, a := range args {
			if _, ok := sig.Lookup(a); !ok && !hasKwargs {
				res.AddWarning("unknown_argument", fmt.Sprintf("$%s is not a parameter", a), td.Name, m.Name,
					match.Suggest(a, paramNames(sig), suggestionLimit)...)
			}
		}

		for _, c := range calls {
			if !slices.Contains(members, c) {
				res.AddWarning("unknown_member", fmt.Sprintf("@%s is not declared by any type", c), td.Name, m.Name,
					match.Suggest(c, members, suggestionLimit)...)
			}
		}
	}
}

func validateBases(res *diagnostic.Diagnostics, f *File, index map[string]int) {
	_, stuck, err := topoSort(len(f.Types), func(i int) []int {
		var deps []int

		for _, b := range f.Types[i].Bases {
			if j, ok := index[b]; ok && j != i {
				deps = append(deps, j)
			}
		}

		return deps
	})
	if err != nil && len(stuck) > 0 {
		names := make([]string, len(stuck))
		for i, s := range stuck {
			names[i] = f.Types[s].Name
		}

		res.AddError("cyclic_bases", "bases form a cycle among "+strings.Join(names, ", "), names[0], "")
	}

	for i := range f.Types {
		for _, b := range f.Types[i].Bases {
			if b == f.Types[i].Name {
				res.AddError("cyclic_bases", "type lists itself as a base", b, "")
			}
		}
	}
}

func validateCompose(res *diagnostic.Diagnostics, c *ComposeDef, names, members []string) {
	if c == nil {
		return
	}

	if len(c.Roots) == 0 {
		res.AddError("no_roots", "compose block lists no roots", "compose", "")
	}

	for _, r := range c.Roots {
		if !slices.Contains(names, r) {
			res.AddError("unknown_root", fmt.Sprintf("unknown root %q", r), "compose", "",
				match.Suggest(r, names, suggestionLimit)...)
		}
	}

	for _, name := range c.FanOut {
		if name != typenode.InitName && !slices.Contains(members, name) {
			res.AddWarning("unknown_fan_out", fmt.Sprintf("no type declares %q", name), "compose", name,
				match.Suggest(name, members, suggestionLimit)...)
		}
	}
}

// allMembers returns every value and method name declared in f, in order of
// first appearance.
func allMembers(f *File) []string {
	seen := map[string]struct{}{}

	var out []string

	add := func(name string) {
		if _, ok := seen[name]; ok || name == "" {
			return
		}

		seen[name] = struct{}{}
		out = append(out, name)
	}

	for i := range f.Types {
		for _, m := range f.Types[i].Methods {
			add(m.Name)
		}

		for _, name := range slices.Sorted(maps.Keys(f.Types[i].Values)) {
			add(name)
		}
	}

	return out
}

func paramNames(sig signature.Signature) []string {
	out := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		out[i] = p.Name
	}

	return out
}

