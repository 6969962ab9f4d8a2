package compose

import (
	"fmt"
	"sync"

	"class-composer/internal/diagnostic"
	"class-composer/internal/typenode"
)

// Result is the outcome of one composition.
type Result struct {
	// Type is the composite type, or the root itself when only one root was given.
	Type *typenode.TypeNode
	// Rank is the top rank of the composite ancestor tree.
	Rank *Rank
	// Diagnostics collects override, fan-out and unused-name reports.
	Diagnostics diagnostic.Diagnostics
}

// Composer merges type hierarchies into composite types. It keeps the
// composite ranks it builds, so composing the same roots again returns the
// same composite type. A Composer is safe for concurrent use.
type Composer struct {
	opts Options

	mu    sync.Mutex
	cache *rankCache
}

// NewComposer creates a composer with the given options.
func NewComposer(opts Options) *Composer {
	return &Composer{opts: opts, cache: newRankCache()}
}

// Compose merges roots into a composite type. Member names in the fan-out
// set are invoked on every contributor, any other name resolves to the
// rightmost contributor that defines it. The constructor always fans out.
//
// Shape errors are returned here. Argument adaptation errors surface when
// the composite's members are invoked.
func (c *Composer) Compose(roots ...*typenode.TypeNode) (*Result, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}

	for i, r := range roots {
		if r == nil {
			return nil, fmt.Errorf("compose: root %d is nil", i)
		}
	}

	if len(roots) == 1 {
		return &Result{
			Type: roots[0],
			Rank: &Rank{Contributors: roots, Type: roots[0]},
		}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	run := &composition{
		opts:   c.opts,
		fanOut: make(map[string]struct{}, len(c.opts.FanOut)),
		logger: c.opts.logger(),
		cache:  c.cache,
	}

	for _, name := range c.opts.FanOut {
		run.fanOut[name] = struct{}{}
	}

	rank, err := run.zip(roots, 0, nil)
	if err != nil {
		return nil, err
	}

	run.logger.Debug("composition done",
		"type", rank.Type.String(),
		"ranks", len(rank.Chain()),
		"warnings", len(run.diags.Warnings),
	)

	return &Result{
		Type:        rank.Type,
		Rank:        rank,
		Diagnostics: run.diags,
	}, nil
}

// Compose merges roots with the given fan-out names under the strict or
// lenient missing-argument policy. Every call builds its ranks afresh.
func Compose(roots []*typenode.TypeNode, fanOut []string, strict bool) (*typenode.TypeNode, error) {
	opts := DefaultOptions()
	opts.FanOut = fanOut
	opts.Strict = strict

	res, err := NewComposer(opts).Compose(roots...)
	if err != nil {
		return nil, err
	}

	return res.Type, nil
}
