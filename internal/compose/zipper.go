package compose

import (
	"log/slog"
	"strconv"
	"strings"

	"class-composer/internal/diagnostic"
	"class-composer/internal/typenode"
)

// Rank is one position of the composite ancestor tree. It holds the types
// that occupy the equivalent ancestor position in every input hierarchy.
type Rank struct {
	Contributors []*typenode.TypeNode
	Parent       *Rank              // nil for the terminal rank
	Type         *typenode.TypeNode // synthesized type; the contributor itself for single-contributor ranks
	Depth        int
}

// Name returns the contributor names joined with "+".
func (r *Rank) Name() string {
	if r == nil {
		return ""
	}

	return rankName(r.Contributors)
}

// Chain returns r followed by its ancestors, nearest first.
func (r *Rank) Chain() []*Rank {
	var out []*Rank
	for cur := r; cur != nil; cur = cur.Parent {
		out = append(out, cur)
	}

	return out
}

func rankName(nodes []*typenode.TypeNode) string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}

	return strings.Join(names, "+")
}

// composition is the state of one Compose call. Only the rank cache it
// borrows from the Composer outlives the call.
type composition struct {
	opts   Options
	fanOut map[string]struct{}
	logger *slog.Logger
	diags  diagnostic.Diagnostics
	cache  *rankCache
}

// rankCache holds the composite ranks a Composer has built. A zip chain never
// repeats a rank, so entries are reused by later Compose calls of the same
// Composer: roots whose ancestors line up again get the very same composite
// ancestor type.
type rankCache struct {
	ranks map[string]cachedRank
	ids   map[*typenode.TypeNode]int
}

type cachedRank struct {
	rank  *Rank
	diags diagnostic.Diagnostics // reported for the rank and its ancestors
}

func newRankCache() *rankCache {
	return &rankCache{
		ranks: make(map[string]cachedRank),
		ids:   make(map[*typenode.TypeNode]int),
	}
}

// key identifies a rank by its depth and the identity of its contributors in
// order. The depth is part of the key because ranks report it.
func (c *rankCache) key(depth int, nodes []*typenode.TypeNode) string {
	var sb strings.Builder

	sb.WriteString(strconv.Itoa(depth))
	sb.WriteByte(':')

	for i, n := range nodes {
		id, ok := c.ids[n]
		if !ok {
			id = len(c.ids)
			c.ids[n] = id
		}

		if i > 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(strconv.Itoa(id))
	}

	return sb.String()
}

// zip builds the rank for nodes and, recursively, the ranks for their ancestors.
func (run *composition) zip(nodes []*typenode.TypeNode, depth int, chain []string) (*Rank, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	chain = append(chain, rankName(nodes))
	if depth >= run.opts.maxDepth() {
		return nil, &RecursionLimitError{Limit: run.opts.maxDepth(), Chain: chain}
	}

	if len(nodes) == 1 {
		return &Rank{Contributors: nodes, Type: nodes[0], Depth: depth}, nil
	}

	key := run.cache.key(depth, nodes)
	if hit, ok := run.cache.ranks[key]; ok {
		run.logger.Debug("composite rank reused", "rank", hit.rank.Name(), "depth", depth)
		run.diags.Merge(hit.diags)

		return hit.rank, nil
	}

	// Collect what this rank and its ancestors report apart, so that a
	// later hit can replay it.
	outer := run.diags
	run.diags = diagnostic.Diagnostics{}

	parent, err := run.zip(ancestorsOf(nodes), depth+1, chain)
	if err != nil {
		return nil, err
	}

	r := &Rank{
		Contributors: append([]*typenode.TypeNode(nil), nodes...),
		Parent:       parent,
		Depth:        depth,
	}

	if r.Type, err = run.build(r); err != nil {
		return nil, err
	}

	run.cache.ranks[key] = cachedRank{rank: r, diags: run.diags}

	outer.Merge(run.diags)
	run.diags = outer

	return r, nil
}

// ancestorsOf returns the direct ancestors of nodes in contributor order,
// keeping the first occurrence of an ancestor shared by several contributors.
func ancestorsOf(nodes []*typenode.TypeNode) []*typenode.TypeNode {
	var out []*typenode.TypeNode

	seen := make(map[*typenode.TypeNode]struct{})

	for _, n := range nodes {
		for _, base := range n.Bases {
			if base == nil {
				continue
			}

			if _, dup := seen[base]; dup {
				continue
			}

			seen[base] = struct{}{}
			out = append(out, base)
		}
	}

	return out
}
