// Package checker holds the frontier of configurations still to explore
// and the set of configurations already seen, so an exploration driven to
// a fixpoint by its caller terminates on any finite state space.
package checker

import "github.com/oisee/gcmc/internal/memory"

// Strategy selects the frontier's pop order.
type Strategy int

const (
	// DFS pops the most recently pushed configuration (a stack).
	DFS Strategy = iota
	// BFS pops the earliest pushed configuration (a queue).
	BFS
)

// Checker holds the known set of configurations reached so far and the
// frontier still to be explored. It does not itself run cores — callers
// (the Simulator) supply each configuration's successors and feed them
// back in with Push.
type Checker struct {
	strategy Strategy
	known    map[string]*memory.Configuration
	frontier []*memory.Configuration
}

// New builds an empty Checker using the given pop strategy.
func New(strategy Strategy) *Checker {
	return &Checker{
		strategy: strategy,
		known:    make(map[string]*memory.Configuration),
	}
}

// Seed marks the initial configuration as known and pushes it onto the
// frontier.
func (ch *Checker) Seed(cfg *memory.Configuration) {
	ch.known[cfg.Key()] = cfg
	ch.frontier = append(ch.frontier, cfg)
}

// CheckConfig reports whether cfg has already been seen, and if not,
// records it as known. Returns true when cfg is new.
func (ch *Checker) CheckConfig(cfg *memory.Configuration) bool {
	key := cfg.Key()
	if _, seen := ch.known[key]; seen {
		return false
	}
	ch.known[key] = cfg
	return true
}

// Push adds a newly-discovered configuration to the frontier. Callers
// should only Push configurations for which CheckConfig has just returned
// true.
func (ch *Checker) Push(cfg *memory.Configuration) {
	ch.frontier = append(ch.frontier, cfg)
}

// NextConfig pops the next configuration to explore according to the
// Checker's strategy, and reports whether the frontier was non-empty.
func (ch *Checker) NextConfig() (*memory.Configuration, bool) {
	if len(ch.frontier) == 0 {
		return nil, false
	}
	switch ch.strategy {
	case BFS:
		cfg := ch.frontier[0]
		ch.frontier = ch.frontier[1:]
		return cfg, true
	default: // DFS
		last := len(ch.frontier) - 1
		cfg := ch.frontier[last]
		ch.frontier = ch.frontier[:last]
		return cfg, true
	}
}

// Done reports whether the frontier is exhausted — the fixpoint has been
// reached.
func (ch *Checker) Done() bool {
	return len(ch.frontier) == 0
}

// KnownList returns every configuration discovered so far, in no
// particular order.
func (ch *Checker) KnownList() []*memory.Configuration {
	out := make([]*memory.Configuration, 0, len(ch.known))
	for _, cfg := range ch.known {
		out = append(out, cfg)
	}
	return out
}

// Len reports the number of known configurations.
func (ch *Checker) Len() int {
	return len(ch.known)
}

// FrontierLen reports the number of configurations still awaiting
// exploration.
func (ch *Checker) FrontierLen() int {
	return len(ch.frontier)
}
