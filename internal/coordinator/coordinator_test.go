package coordinator

import (
	"encoding/binary"
	"testing"

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

func endgaOnly(t *testing.T) *word.Source {
	return programOf(t, []uint32{uint32(decode.ENDGA) << 28})
}

func idleOnly(t *testing.T) *word.Source {
	return programOf(t, nil)
}

func TestProcessConfigResetsSuccessorsEachCall(t *testing.T) {
	c1 := core.NewCore(0, endgaOnly(t))
	co := New([]*core.Core{c1})
	base := memory.New(32)

	first, _, err := co.ProcessConfig(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("first call: %d successors, want 1", len(first))
	}

	second, _, err := co.ProcessConfig(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("second call: %d successors, want 1 (accumulator must reset, not grow)", len(second))
	}
}

func TestIdleCoreContributesNoSuccessor(t *testing.T) {
	c1 := core.NewCore(0, idleOnly(t))
	co := New([]*core.Core{c1})

	successors, _, err := co.ProcessConfig(memory.New(32))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(successors) != 0 {
		t.Fatalf("got %d successors from an idle core, want 0", len(successors))
	}
}

func TestMultipleCoresRunInOrderOverIndependentClones(t *testing.T) {
	storeSelf := func(id uint8) *word.Source {
		// r0 = id (IMM), store r0 at @(id*8), ENDGA.
		load := uint32(decode.LOAD)<<28 | uint32(decode.Int)<<24 | uint32(decode.LoadIMM)<<26 | uint32(id)
		store := uint32(decode.STORE)<<28 | uint32(decode.Int)<<24 | uint32(decode.StoreADR)<<26 | uint32(id)*8
		return programOf(t, []uint32{load, store, uint32(decode.ENDGA) << 28})
	}

	cores := []*core.Core{
		core.NewCore(0, storeSelf(1)),
		core.NewCore(1, storeSelf(2)),
		core.NewCore(2, storeSelf(3)),
	}
	co := New(cores)

	successors, _, err := co.ProcessConfig(memory.New(64))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(successors) != 3 {
		t.Fatalf("got %d successors, want 3 (one ENDGA per core)", len(successors))
	}

	// Each core clones the same pristine base independently: core 1's
	// successor must carry only its own write, not core 0's. Core 1's own int
	// field starts at bit 16, so bits 8..15 (where core 0's value 1 lands)
	// are read as a byte to avoid overlapping it.
	if successors[0].Get(8, decode.Int) != 1 {
		t.Error("core 0's successor is missing its own write")
	}
	if successors[1].Get(8, decode.Byte) != 0 {
		t.Error("core 1's successor was polluted by core 0's write — clones are not independent")
	}
	if successors[1].Get(16, decode.Int) != 2 {
		t.Error("core 1's successor is missing its own write")
	}
}

func TestProcessConfigCycleCostIsMaxAcrossCores(t *testing.T) {
	// Cores run in parallel hardware: the step's cost is the slowest core's
	// cycle count, not the sum of every core's cycle count.
	idle := core.NewCore(0, idleOnly(t))   // reset(2) + fetch/decode(4) + NOP(1) = 7
	endga := core.NewCore(1, endgaOnly(t)) // + [ENDGA: 4+1] + [trailing NOP: 4+1] = 12
	co := New([]*core.Core{idle, endga})

	_, cycles, err := co.ProcessConfig(memory.New(32))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 12; cycles != want {
		t.Errorf("cycles = %d, want %d (max across cores, not their sum of 19)", cycles, want)
	}
}

func TestMissingProgramErrors(t *testing.T) {
	co := New([]*core.Core{core.NewCore(0, nil)})
	_, _, err := co.ProcessConfig(memory.New(32))
	if err == nil {
		t.Fatal("expected an error for a core with no program loaded")
	}
}
