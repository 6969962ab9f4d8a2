package compose

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoRoots is returned when Compose is called without types.
var ErrNoRoots = errors.New("compose: no root types")

// ConfigurationError reports a fan-out name that cannot be fanned out on
// some contributor.
type ConfigurationError struct {
	Member      string
	Contributor string
	Reason      string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("compose: fan-out member %q of %s: %s", e.Member, e.Contributor, e.Reason)
}

// RecursionLimitError reports an ancestor tree deeper than the configured
// limit, which in practice means a cyclic ancestor graph.
type RecursionLimitError struct {
	Limit int
	Chain []string // rank names from the roots down to where the limit was hit
}

func (e *RecursionLimitError) Error() string {
	chain := e.Chain
	if len(chain) > 6 {
		chain = append(append([]string{}, chain[:3]...), append([]string{"..."}, chain[len(chain)-2:]...)...)
	}

	return fmt.Sprintf("compose: ancestor depth exceeds %d: %s", e.Limit, strings.Join(chain, " -> "))
}
