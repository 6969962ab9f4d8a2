package compose

import (
	"class-composer/internal/typenode"
)

// build synthesizes the composite type of a rank: the first contributor's
// name, the parent rank's type as its only base, and the merged members.
func (run *composition) build(r *Rank) (*typenode.TypeNode, error) {
	t := &typenode.TypeNode{
		Name:         r.Contributors[0].Name,
		Members:      make(map[string]typenode.Member),
		Contributors: r.Contributors,
	}

	if r.Parent != nil {
		t.Bases = []*typenode.TypeNode{r.Parent.Type}
	}

	if err := run.resolveMembers(r, t); err != nil {
		return nil, err
	}

	if err := run.resolveConstructor(r, t); err != nil {
		return nil, err
	}

	run.logger.Debug("composite type built",
		"rank", r.Name(),
		"depth", r.Depth,
		"members", len(t.Members),
	)

	return t, nil
}
