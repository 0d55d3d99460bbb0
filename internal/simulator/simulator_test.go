package simulator

import (
	"encoding/binary"
	"testing"

	"github.com/oisee/gcmc/internal/checker"
	"github.com/oisee/gcmc/internal/coordinator"
	"github.com/oisee/gcmc/internal/core"
	"github.com/oisee/gcmc/internal/decode"
	"github.com/oisee/gcmc/internal/memory"
	"github.com/oisee/gcmc/internal/word"
)

func programOf(t *testing.T, words []uint32) *word.Source {
	t.Helper()
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	src, err := word.FromBytes(buf)
	if err != nil {
		t.Fatalf("word.FromBytes: %v", err)
	}
	return src
}

// TestFixpointOnASingleIdleCore: a core that always idles out never
// publishes a successor, so exploration terminates after one step with
// exactly one known configuration.
func TestFixpointOnASingleIdleCore(t *testing.T) {
	c := core.NewCore(0, programOf(t, nil))
	co := coordinator.New([]*core.Core{c})
	ch := checker.New(checker.DFS)
	sim := New(co, ch, nil)

	n, err := sim.LaunchChecking(memory.New(32))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("known configurations = %d, want 1", n)
	}
	if sim.Steps() != 1 {
		t.Fatalf("Steps() = %d, want 1", sim.Steps())
	}
}

// TestCounterConvergesToFixpoint runs a core that increments a counter
// field in the configuration and re-publishes itself via ENDGA until the
// counter overflows an 8-bit field, then stops (the byte STORE truncates
// 256 to 0 and the all-zero configuration has already been seen, closing
// the loop).
func TestCounterConvergesToFixpoint(t *testing.T) {
	// r0 = LOAD byte at @0; r1 = 1 (IMM); r0 = r0 + r1; STORE r0 at @0; ENDGA.
	loadCounter := uint32(decode.LOAD)<<28 | uint32(decode.Byte)<<24 | uint32(decode.LoadADR)<<26 | 0
	loadOne := uint32(decode.LOAD)<<28 | uint32(decode.Byte)<<24 | uint32(1)<<20 | uint32(decode.LoadIMM)<<26 | 1
	add := uint32(decode.ADD)<<28 | uint32(decode.RR)<<26 | uint32(0)<<22 | uint32(0)<<11 | uint32(1)
	store := uint32(decode.STORE)<<28 | uint32(decode.Byte)<<24 | uint32(decode.StoreADR)<<26 | 0
	endga := uint32(decode.ENDGA) << 28

	c := core.NewCore(0, programOf(t, []uint32{loadCounter, loadOne, add, store, endga}))
	co := coordinator.New([]*core.Core{c})
	ch := checker.New(checker.DFS)
	sim := New(co, ch, nil)

	n, err := sim.LaunchChecking(memory.New(8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The counter takes every value 0..255 exactly once before wrapping
	// back to a value already in the known set (0), so exactly 256
	// distinct configurations are reachable.
	if n != 256 {
		t.Fatalf("known configurations = %d, want 256", n)
	}
}

func TestExploringTheSameConfigurationTwiceIsIdempotent(t *testing.T) {
	c := core.NewCore(0, programOf(t, nil))
	co := coordinator.New([]*core.Core{c})
	ch := checker.New(checker.DFS)
	sim := New(co, ch, nil)

	n1, err := sim.LaunchChecking(memory.New(32))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Re-running LaunchChecking on a fresh Checker/Simulator pair over the
	// same initial configuration must reach the same result.
	ch2 := checker.New(checker.DFS)
	sim2 := New(co, ch2, nil)
	n2, err := sim2.LaunchChecking(memory.New(32))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n1 != n2 {
		t.Errorf("non-deterministic exploration: %d vs %d known configurations", n1, n2)
	}
}
