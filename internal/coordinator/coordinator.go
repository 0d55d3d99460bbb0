// Package coordinator runs a fixed set of cores over one configuration,
// sequentially and deterministically, and aggregates the successor
// configurations each core publishes via ENDGA.
package coordinator

import (
	"fmt"

	"github.com/oisee/gcmc/internal/core"
	"github.com/oisee/gcmc/internal/memory"
)

// Coordinator owns the N cores that make up one run.
type Coordinator struct {
	Cores []*core.Core
}

// New builds a Coordinator over the given cores. Core order is fixed and
// determines the (deterministic) order in which they run within a turn.
func New(cores []*core.Core) *Coordinator {
	return &Coordinator{Cores: cores}
}

// ProcessConfig runs every core, one at a time (no host-level concurrency —
// exploration must stay deterministic), over its own deep clone of base.
// Each ENDGA a core executes publishes one successor, so a single core may
// contribute zero, one, or several entries to the returned slice; a core
// that only idles out contributes nothing.
//
// The cores model independent hardware units that all start simultaneously,
// so the step's cost is the slowest core's cycle count, not their sum —
// ProcessConfig returns that maximum alongside the successors.
func (co *Coordinator) ProcessConfig(base *memory.Configuration) ([]*memory.Configuration, int, error) {
	var successors []*memory.Configuration
	maxCycles := 0

	for _, c := range co.Cores {
		if c.Program == nil {
			return nil, 0, fmt.Errorf("coordinator: core %d has no program loaded", c.ID)
		}
		clone := base.Clone()
		c.SetupCfgMemory(clone)
		cycles := c.ProcessInstructions()
		if cycles > maxCycles {
			maxCycles = cycles
		}
		successors = append(successors, c.NewConfigs()...)
	}

	return successors, maxCycles, nil
}
