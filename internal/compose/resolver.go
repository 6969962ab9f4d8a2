package compose

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"class-composer/internal/adapt"
	"class-composer/internal/match"
	"class-composer/internal/signature"
	"class-composer/internal/typenode"
)

// contribution is one contributor's definition of a member name.
type contribution struct {
	contributor *typenode.TypeNode
	resolved    typenode.Resolved
}

func (c contribution) callable() *typenode.Callable {
	return c.resolved.Member.Callable
}

// resolveMembers fills t.Members from the rank's contributors. Each
// contributor resolves a name along its own linearization, so an inherited
// member competes at the position of the contributor that inherits it.
func (run *composition) resolveMembers(r *Rank, t *typenode.TypeNode) error {
	scope := r.Name()

	names, err := memberNames(r.Contributors)
	if err != nil {
		return err
	}

	run.reportUnusedFanOut(scope, names)

	for _, name := range names {
		var defs []contribution

		for _, c := range r.Contributors {
			res, err := c.Lookup(name)
			if err != nil {
				return err
			}

			if res.Found() {
				defs = append(defs, contribution{contributor: c, resolved: res})
			}
		}

		if _, ok := run.fanOut[name]; ok {
			member, err := run.fanOutMember(r, name, t, defs)
			if err != nil {
				return err
			}

			t.Members[name] = member

			continue
		}

		winner := defs[len(defs)-1]
		t.Members[name] = winner.resolved.Member

		if len(defs) > 1 {
			shadowed := make([]string, 0, len(defs)-1)
			for _, d := range defs[:len(defs)-1] {
				shadowed = append(shadowed, d.contributor.Name)
			}

			run.diags.AddInfo("override",
				fmt.Sprintf("resolved from %s, shadowing %s", winner.contributor.Name, strings.Join(shadowed, ", ")),
				scope, name)
			run.logger.Debug("member overridden", "rank", scope, "member", name, "winner", winner.contributor.Name)
		}
	}

	return nil
}

func (run *composition) fanOutMember(
	r *Rank,
	name string,
	owner *typenode.TypeNode,
	defs []contribution,
) (typenode.Member, error) {
	scope := r.Name()
	wraps := 0

	for _, d := range defs {
		if !d.resolved.Member.IsCallable() {
			return typenode.Member{}, &ConfigurationError{
				Member:      name,
				Contributor: d.contributor.Name,
				Reason:      "member is not callable",
			}
		}

		if d.callable().Wraps {
			wraps++
		}
	}

	if wraps > 0 && wraps < len(defs) {
		return typenode.Member{}, &ConfigurationError{
			Member:      name,
			Contributor: scope,
			Reason:      "mixes decorator-style and plain callables",
		}
	}

	targets := make([]target, len(defs))
	for i, d := range defs {
		targets[i] = target{contributor: d.contributor, callable: d.callable()}
	}

	fo := run.newFanOut(scope, name, targets, absent(r.Contributors, targets))

	fn := fo.sequence
	if wraps > 0 {
		fn = fo.nest
	}

	run.diags.AddInfo("fan_out",
		fmt.Sprintf("invokes %s in order", targetNames(targets)),
		scope, name)

	return typenode.Member{
		Name: name,
		Callable: &typenode.Callable{
			Name:   name,
			Owner:  owner,
			Params: signature.Collect(name).Params,
			Wraps:  wraps > 0,
			Fn:     fn,
		},
	}, nil
}

// resolveConstructor sets t.Init to a fan-out over every contributor's
// resolved constructor. The constructor is never overridden.
func (run *composition) resolveConstructor(r *Rank, t *typenode.TypeNode) error {
	var targets []target

	for _, c := range r.Contributors {
		init, err := c.LookupInit()
		if err != nil {
			return err
		}

		if init != nil {
			targets = append(targets, target{contributor: c, callable: init})
		}
	}

	t.Init = &typenode.Callable{
		Name:   typenode.InitName,
		Owner:  t,
		Params: signature.Collect(typenode.InitName).Params,
		Fn:     run.newFanOut(r.Name(), typenode.InitName, targets, absent(r.Contributors, targets)).sequence,
	}

	if len(targets) > 0 {
		run.diags.AddInfo("constructor", fmt.Sprintf("invokes %s in order", targetNames(targets)),
			r.Name(), typenode.InitName)
	}

	return nil
}

func (run *composition) reportUnusedFanOut(scope string, names []string) {
	defined := make(map[string]struct{}, len(names))
	for _, n := range names {
		defined[n] = struct{}{}
	}

	for _, name := range run.opts.FanOut {
		if name == typenode.InitName {
			continue
		}

		if _, ok := defined[name]; ok {
			continue
		}

		run.diags.AddWarning("fan_out_unused", "no contributor defines "+name,
			scope, name, match.Suggest(name, names, 3)...)
	}
}

func memberNames(nodes []*typenode.TypeNode) ([]string, error) {
	seen := make(map[string]struct{})

	for _, n := range nodes {
		names, err := n.ResolvedNames()
		if err != nil {
			return nil, err
		}

		for _, name := range names {
			seen[name] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}

	sort.Strings(out)

	return out, nil
}

// target is one callable invoked by a fan-out wrapper.
type target struct {
	contributor *typenode.TypeNode
	callable    *typenode.Callable
}

// absent returns the names of the contributors that have no target.
func absent(contributors []*typenode.TypeNode, targets []target) []string {
	var out []string

	for _, c := range contributors {
		if !slices.ContainsFunc(targets, func(t target) bool { return t.contributor == c }) {
			out = append(out, c.Name)
		}
	}

	return out
}

func targetNames(targets []target) string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.callable.QualifiedName()
	}

	return strings.Join(names, ", ")
}

// fanOut invokes one member name on several targets. It carries only what
// the invocation needs, so nothing else of the composition outlives Compose.
type fanOut struct {
	scope   string
	name    string
	policy  adapt.Policy
	logger  *slog.Logger
	targets []target
	absent  []string // contributors that do not define the member
}

func (run *composition) newFanOut(scope, name string, targets []target, absent []string) *fanOut {
	return &fanOut{
		scope:   scope,
		name:    name,
		policy:  adapt.PolicyFor(run.opts.Strict),
		logger:  run.logger,
		targets: targets,
		absent:  absent,
	}
}

func (f *fanOut) logAbsent() {
	for _, c := range f.absent {
		f.logger.Debug("fan-out target absent", "rank", f.scope, "member", f.name, "contributor", c)
	}
}

// prepare adapts the call's bundle to one target. ok is false when the
// target is skipped under the lenient policy.
func (f *fanOut) prepare(t target, b adapt.Bundle) (adapt.Result, bool, error) {
	res, err := typenode.Prepare(t.callable, b, f.policy)
	if err != nil {
		return res, false, err
	}

	switch res.Outcome {
	case adapt.Skipped:
		f.logger.Debug("fan-out target skipped",
			"rank", f.scope, "member", f.name, "contributor", t.contributor.Name, "missing", res.Missing)

		return res, false, nil
	case adapt.MissingRequired:
		return res, false, res.Err(t.callable.QualifiedName())
	}

	return res, true, nil
}

// sequence invokes every target left to right with the shared bundle and
// returns the result of the last one invoked.
func (f *fanOut) sequence(call *typenode.Call) (any, error) {
	f.logAbsent()

	var ret any

	for _, t := range f.targets {
		res, ok, err := f.prepare(t, call.Bundle)
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		ret, err = typenode.Apply(t.callable, call.Self, res.Args, call.Bundle, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.callable.QualifiedName(), err)
		}
	}

	return ret, nil
}

// nest chains decorator-style targets in onion order: the leftmost opens
// first and closes last, and the call being decorated runs innermost.
func (f *fanOut) nest(call *typenode.Call) (any, error) {
	f.logAbsent()

	var step func(i int, b adapt.Bundle) (any, error)

	step = func(i int, b adapt.Bundle) (any, error) {
		if i == len(f.targets) {
			return call.Next(b)
		}

		t := f.targets[i]

		res, ok, err := f.prepare(t, b)
		if err != nil {
			return nil, err
		}

		if !ok {
			return step(i+1, b)
		}

		return typenode.Apply(t.callable, call.Self, res.Args, b, func(nb adapt.Bundle) (any, error) {
			return step(i+1, nb)
		})
	}

	return step(0, call.Bundle)
}
