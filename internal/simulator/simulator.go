// Package simulator composes a Checker and a Coordinator into a full
// exploration run: drain the frontier to a fixpoint, summing worst-case
// cycles along the way.
package simulator

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/oisee/gcmc/internal/checker"
	"github.com/oisee/gcmc/internal/coordinator"
	"github.com/oisee/gcmc/internal/memory"
)

// Simulator owns one Checker/Coordinator pair and runs them to a fixpoint.
type Simulator struct {
	Coordinator *coordinator.Coordinator
	Checker     *checker.Checker
	Logger      *log.Logger

	worstCaseCycles int
	steps           int
}

// New builds a Simulator. A nil logger falls back to a discard logger, so
// callers who don't want progress output don't have to wire one up.
func New(co *coordinator.Coordinator, ch *checker.Checker, logger *log.Logger) *Simulator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Simulator{Coordinator: co, Checker: ch, Logger: logger}
}

// WorstCaseCycles returns the sum, across every step, of that step's
// slowest core — each step models parallel hardware where all cores start
// simultaneously, so a step's cost is a max across cores, not a sum. The
// total is the cost metric spec.md's CSV report carries.
func (s *Simulator) WorstCaseCycles() int {
	return s.worstCaseCycles
}

// Steps reports how many configurations were popped off the frontier.
func (s *Simulator) Steps() int {
	return s.steps
}

// LaunchChecking seeds the checker with the initial configuration and
// explores every reachable configuration exactly once, to a fixpoint. It
// returns the number of distinct configurations discovered (the size of
// the known set at termination).
func (s *Simulator) LaunchChecking(initial *memory.Configuration) (int, error) {
	s.Checker.Seed(initial)

	for {
		cfg, ok := s.Checker.NextConfig()
		if !ok {
			break
		}
		s.steps++

		successors, stepCycles, err := s.Coordinator.ProcessConfig(cfg)
		if err != nil {
			return 0, fmt.Errorf("simulator: step %d: %w", s.steps, err)
		}
		s.worstCaseCycles += stepCycles

		fresh := 0
		for _, succ := range successors {
			if s.Checker.CheckConfig(succ) {
				s.Checker.Push(succ)
				fresh++
			}
		}

		s.Logger.Debug("explored configuration",
			"step", s.steps,
			"known", s.Checker.Len(),
			"frontier", s.Checker.FrontierLen(),
			"fresh_successors", fresh,
			"cycles_so_far", s.worstCaseCycles,
		)
	}

	s.Logger.Info("exploration reached fixpoint",
		"configurations", s.Checker.Len(),
		"steps", s.steps,
		"worst_case_cycles", s.worstCaseCycles,
	)

	return s.Checker.Len(), nil
}
