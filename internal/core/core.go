// Package core implements a single core's register file and its
// fetch/decode/execute loop over a shared Configuration memory.
package core

import (
	"math"

	"github.com/oisee/gcmc/internal/decode"
	"github.com/oisee/gcmc/internal/memory"
	"github.com/oisee/gcmc/internal/word"
)

// NumRegisters is the fixed register-file size.
const NumRegisters = 16

// DivMode selects DIV's rounding behavior (spec open question 3).
type DivMode int

const (
	// DivReal performs float64 division, truncated back to uint32.
	DivReal DivMode = iota
	// DivTruncate performs integer division, truncating toward zero.
	DivTruncate
)

// Registers is the value-typed register file. Copying it copies all 16
// registers, mirroring the teacher's value-typed CPU state.
type Registers [NumRegisters]uint32

// Equal reports whether two register files hold the same values.
func (r Registers) Equal(o Registers) bool {
	return r == o
}

// Core is one of the N cores a Coordinator runs over a Configuration. A
// Core owns its own program and register file; the Configuration it
// executes against is supplied per run and is not owned by the Core.
type Core struct {
	ID      int
	Program *word.Source
	DivMode DivMode

	decoder    *decode.Decoder
	regs       Registers
	cfg        *memory.Configuration
	pristine   *memory.Configuration
	newConfigs []*memory.Configuration
	idle       bool
	cycles     int
}

// NewCore builds a core over the given program image.
func NewCore(id int, program *word.Source) *Core {
	return &Core{
		ID:      id,
		Program: program,
		decoder: decode.NewDecoder(program),
	}
}

// Registers returns a copy of the current register file.
func (c *Core) Registers() Registers {
	return c.regs
}

// Idle reports whether the core's last run ended on a NOP (which includes
// the sentinel word every program is terminated with).
func (c *Core) Idle() bool {
	return c.idle
}

// Cycles returns the cycle count accumulated by the most recent run.
func (c *Core) Cycles() int {
	return c.cycles
}

// SetupCfgMemory binds the core to a Configuration for the upcoming run,
// rewinds its program counter, and clears its register file (spec open
// question 2: registers are cleared here, not left over from a prior run).
// The Configuration handed in is also kept as the pristine copy ENDGA
// restarts from.
func (c *Core) SetupCfgMemory(cfg *memory.Configuration) {
	c.cfg = cfg
	c.pristine = cfg.Clone()
	c.newConfigs = nil
	c.decoder.Reset()
	c.regs = Registers{}
	c.idle = false
	c.cycles = 0
}

// ResetExecution rewinds the program counter and cycle count without
// touching registers or the bound configuration — used when a core is
// re-run against the same configuration without the full setup discipline.
func (c *Core) ResetExecution() {
	c.decoder.Reset()
	c.cycles = 0
	c.idle = false
	c.newConfigs = nil
}

// Endgaed reports whether the most recent run executed ENDGA at least once
// (and therefore published one or more successor configurations).
func (c *Core) Endgaed() bool {
	return len(c.newConfigs) > 0
}

// NewConfigs returns the successor configurations published by ENDGA during
// the most recent run, in execution order. A run may publish zero, one, or
// several — ENDGA restarts the working memory from the pristine copy and
// keeps running rather than ending the core's turn.
func (c *Core) NewConfigs() []*memory.Configuration {
	return c.newConfigs
}

// costOf returns the cycle cost of executing in, per the instruction timing
// table. LOAD's cost depends on its addressing mode: register-to-register
// and immediate loads are cheap, direct-address loads cost more, and
// register-indirect loads cost the most.
func costOf(in decode.Instruction) int {
	switch in.Op {
	case decode.NOP:
		return 1
	case decode.ADD, decode.SUB, decode.MUL, decode.DIV, decode.MOD,
		decode.AND, decode.OR, decode.LT, decode.GT, decode.EQ:
		return 3
	case decode.NOT:
		return 1
	case decode.JMP:
		return 2
	case decode.STORE:
		return 2
	case decode.LOAD:
		switch decode.LoadCfg(in.Cfg) {
		case decode.LoadADR:
			return 2
		case decode.LoadRAA:
			return 3
		default: // LoadREG, LoadIMM
			return 1
		}
	case decode.ENDGA:
		return 1
	}
	return 1
}

// ProcessInstructions runs the core from the current program counter until
// it idles out on a NOP, mutating the register file and (via ENDGA) the
// new-configs accumulator in place. It returns the number of cycles
// consumed by this run.
//
// The loop charges the reset routine's 2 cycles once, then 4 cycles
// (fetch=2, decode=2) plus the instruction's own cost every iteration.
// NOP and the all-zero sentinel word are the same opcode, so a program
// always idles out by running off its own end even if it never executes an
// explicit NOP — there is no separate sentinel check.
func (c *Core) ProcessInstructions() int {
	c.cycles += 2
	for {
		in := c.decoder.DecodeNext()
		c.cycles += 4
		c.cycles += costOf(in)
		if c.exec(in) {
			return c.cycles
		}
	}
}

// exec applies one instruction's semantics, returning true iff it was NOP
// (idling the core and ending this run).
func (c *Core) exec(in decode.Instruction) bool {
	switch in.Op {
	case decode.NOP:
		c.idle = true
		return true
	case decode.ADD:
		a, b := c.operands(in)
		c.regs[in.Rd] = a + b
	case decode.SUB:
		a, b := c.operands(in)
		c.regs[in.Rd] = a - b
	case decode.MUL:
		a, b := c.operands(in)
		c.regs[in.Rd] = a * b
	case decode.DIV:
		a, b := c.operands(in)
		c.regs[in.Rd] = c.div(a, b)
	case decode.MOD:
		a, b := c.operands(in)
		if b == 0 {
			c.regs[in.Rd] = 0
		} else {
			c.regs[in.Rd] = a % b
		}
	case decode.AND:
		a, b := c.operands(in)
		c.regs[in.Rd] = a & b
	case decode.OR:
		a, b := c.operands(in)
		c.regs[in.Rd] = a | b
	case decode.LT:
		a, b := c.operands(in)
		c.regs[in.Rd] = boolWord(a < b)
	case decode.GT:
		a, b := c.operands(in)
		c.regs[in.Rd] = boolWord(a > b)
	case decode.EQ:
		a, b := c.operands(in)
		c.regs[in.Rd] = boolWord(a == b)
	case decode.NOT:
		c.regs[in.Rd] = boolWord(c.regs[in.Ra] == 0)
	case decode.JMP:
		if c.regs[in.Rd] == 0 {
			c.decoder.SetIndex(int(in.Addr))
		}
	case decode.STORE:
		c.store(in)
	case decode.LOAD:
		c.load(in)
	case decode.ENDGA:
		c.newConfigs = append(c.newConfigs, c.cfg.Clone())
		c.cfg = c.pristine.Clone()
	}
	return false
}

func boolWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// operands resolves a binary instruction's two operands per its BinCfg.
func (c *Core) operands(in decode.Instruction) (uint32, uint32) {
	switch decode.BinCfg(in.Cfg) {
	case decode.RR:
		return c.regs[in.Ra], c.regs[in.Rb]
	case decode.RI:
		return c.regs[in.Ra], in.Immb
	case decode.IR:
		return in.Imma, c.regs[in.Rb]
	case decode.II:
		return in.Imma, in.Immb
	}
	return 0, 0
}

func (c *Core) div(a, b uint32) uint32 {
	if b == 0 {
		return 0
	}
	switch c.DivMode {
	case DivTruncate:
		return a / b
	default:
		return uint32(math.Trunc(float64(a) / float64(b)))
	}
}

// fieldOffset resolves a LOAD/STORE's bit offset within the configuration.
func (c *Core) fieldOffset(in decode.Instruction) int {
	switch in.Op {
	case decode.LOAD:
		switch decode.LoadCfg(in.Cfg) {
		case decode.LoadADR:
			return int(in.Addr)
		case decode.LoadRAA:
			return int(c.regs[in.Ra])
		}
	case decode.STORE:
		switch decode.StoreCfg(in.Cfg) {
		case decode.StoreADR:
			return int(in.Addr)
		case decode.StoreRAA:
			return int(c.regs[in.Ra])
		}
	}
	return 0
}

func (c *Core) store(in decode.Instruction) {
	offset := c.fieldOffset(in)
	c.cfg.Set(offset, in.Typ, uint64(c.regs[in.Rd]))
}

func (c *Core) load(in decode.Instruction) {
	switch decode.LoadCfg(in.Cfg) {
	case decode.LoadREG:
		c.regs[in.Rd] = c.regs[in.Ra]
	case decode.LoadIMM:
		c.regs[in.Rd] = in.Imma
	case decode.LoadADR, decode.LoadRAA:
		offset := c.fieldOffset(in)
		c.regs[in.Rd] = uint32(c.cfg.Get(offset, in.Typ))
	}
}
