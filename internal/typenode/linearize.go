package typenode

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// LinearizationError reports a type whose ancestors admit no consistent
// resolution order, or that is its own ancestor.
type LinearizationError struct {
	Type   string
	Reason string
}

func (e *LinearizationError) Error() string {
	return fmt.Sprintf("linearize %s: %s", e.Type, e.Reason)
}

// Linearize returns the C3 resolution order of t: t first, then its ancestors
// such that every type precedes its own bases and the local order of bases is
// kept.
func (t *TypeNode) Linearize() ([]*TypeNode, error) {
	return linearize(t, make(map[*TypeNode]bool))
}

func linearize(t *TypeNode, visiting map[*TypeNode]bool) ([]*TypeNode, error) {
	if visiting[t] {
		return nil, &LinearizationError{Type: t.Name, Reason: "cyclic ancestry"}
	}

	visiting[t] = true
	defer delete(visiting, t)

	seqs := make([][]*TypeNode, 0, len(t.Bases)+1)

	for _, base := range t.Bases {
		if base == nil {
			return nil, &LinearizationError{Type: t.Name, Reason: "nil base"}
		}

		lin, err := linearize(base, visiting)
		if err != nil {
			return nil, err
		}

		seqs = append(seqs, lin)
	}

	seqs = append(seqs, slices.Clone(t.Bases))

	merged, err := c3Merge(seqs)
	if err != nil {
		return nil, &LinearizationError{Type: t.Name, Reason: err.Error()}
	}

	return append([]*TypeNode{t}, merged...), nil
}

func c3Merge(seqs [][]*TypeNode) ([]*TypeNode, error) {
	var out []*TypeNode

	for {
		seqs = slices.DeleteFunc(seqs, func(s []*TypeNode) bool { return len(s) == 0 })
		if len(seqs) == 0 {
			return out, nil
		}

		var head *TypeNode

		for _, s := range seqs {
			if !inTail(seqs, s[0]) {
				head = s[0]
				break
			}
		}

		if head == nil {
			return nil, fmt.Errorf("inconsistent order among %s", heads(seqs))
		}

		out = append(out, head)

		for i, s := range seqs {
			if s[0] == head {
				seqs[i] = s[1:]
			}
		}
	}
}

func inTail(seqs [][]*TypeNode, t *TypeNode) bool {
	for _, s := range seqs {
		if slices.Contains(s[1:], t) {
			return true
		}
	}

	return false
}

func heads(seqs [][]*TypeNode) string {
	seen := map[string]struct{}{}

	for _, s := range seqs {
		seen[s[0].Name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}

	sort.Strings(names)

	return strings.Join(names, ", ")
}

// Lookup resolves a member along the linearization of t.
func (t *TypeNode) Lookup(name string) (Resolved, error) {
	lin, err := t.Linearize()
	if err != nil {
		return Missing(), err
	}

	return lookupIn(lin, name), nil
}

// LookupInit resolves the constructor along the linearization of t. It
// returns nil when no type in the chain declares one.
func (t *TypeNode) LookupInit() (*Callable, error) {
	lin, err := t.Linearize()
	if err != nil {
		return nil, err
	}

	return initIn(lin), nil
}

// ResolvedNames returns every member name reachable from t, sorted.
func (t *TypeNode) ResolvedNames() ([]string, error) {
	lin, err := t.Linearize()
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}

	var names []string

	for _, n := range lin {
		for name := range n.Members {
			if _, ok := seen[name]; ok {
				continue
			}

			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names, nil
}

// lookupAfter resolves name on the types that follow owner in the
// linearization of owner itself.
func lookupAfter(owner *TypeNode, name string) (Resolved, error) {
	lin, err := owner.Linearize()
	if err != nil {
		return Missing(), err
	}

	return lookupIn(lin[1:], name), nil
}

func initAfter(owner *TypeNode) (*Callable, error) {
	lin, err := owner.Linearize()
	if err != nil {
		return nil, err
	}

	return initIn(lin[1:]), nil
}

func lookupIn(lin []*TypeNode, name string) Resolved {
	for _, n := range lin {
		if m, ok := n.Members[name]; ok {
			return found(m, n)
		}
	}

	return Missing()
}

func initIn(lin []*TypeNode) *Callable {
	for _, n := range lin {
		if n.Init != nil {
			return n.Init
		}
	}

	return nil
}
