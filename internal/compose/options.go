package compose

import (
	"log/slog"
)

// Options configures a Composer.
type Options struct {
	// FanOut lists member names invoked on every contributor instead of being
	// overridden. The constructor is always fanned out and need not be listed.
	FanOut []string
	// Strict makes a fan-out target with an unsatisfiable required parameter
	// an error; otherwise the target is skipped.
	Strict bool
	// MaxDepth limits the depth of the composite ancestor tree (0 = DefaultMaxDepth).
	MaxDepth int
	// Logger receives debug records about resolution and fan-out. Nil discards them.
	Logger *slog.Logger
}

// DefaultMaxDepth is the ancestor depth past which composition gives up.
const DefaultMaxDepth = 32

// DefaultOptions returns the default composition options.
func DefaultOptions() Options {
	return Options{
		Strict:   true,
		MaxDepth: DefaultMaxDepth,
	}
}

func (o Options) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}

	return o.MaxDepth
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return o.Logger
}
