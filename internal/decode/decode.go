// Package decode turns fixed 32-bit words into typed Instruction records.
// The decoder never rejects a word — every 32-bit pattern decodes to some
// instruction, positionally, exactly as spec.md §4.1/§7 requires.
package decode

import "github.com/oisee/gcmc/internal/word"

// Op is the high-nibble opcode.
type Op uint8

// Opcode assignment, fixed by the instruction set.
const (
	NOP Op = iota
	ADD
	SUB
	MUL
	DIV
	MOD
	AND
	OR
	LT
	GT
	EQ
	NOT
	JMP
	STORE
	LOAD
	ENDGA
)

var opNames = [...]string{
	NOP: "nop", ADD: "add", SUB: "sub", MUL: "mul", DIV: "div", MOD: "mod",
	AND: "and", OR: "or", LT: "lt", GT: "gt", EQ: "eq", NOT: "not",
	JMP: "jmp", STORE: "store", LOAD: "load", ENDGA: "endga",
}

// String renders the opcode mnemonic, or "op?" for an out-of-range value
// (unreachable given the 4-bit field, kept for safe %v formatting).
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "op?"
}

// BinCfg selects the operand shape of a binary arithmetic/comparison op.
type BinCfg uint8

const (
	RR BinCfg = iota // both operands are registers
	RI                // first register, second immediate
	IR                // first immediate, second register
	II                // both immediate
)

// LoadCfg selects the addressing mode of a LOAD.
type LoadCfg uint8

const (
	LoadREG LoadCfg = iota
	LoadIMM
	LoadADR
	LoadRAA
)

// StoreCfg selects the addressing mode of a STORE.
type StoreCfg uint8

const (
	StoreADR StoreCfg = iota
	StoreRAA
)

// FieldType is the width tag carried by LOAD/STORE instructions and used by
// the configuration memory for typed access.
type FieldType uint8

const (
	Bool FieldType = iota
	Byte
	Int
	State
)

// Width returns the bit width of a field type.
func (t FieldType) Width() int {
	switch t {
	case Bool, Byte:
		return 8
	case Int:
		return 32
	case State:
		return 16
	}
	return 0
}

func (t FieldType) String() string {
	switch t {
	case Bool:
		return "bool"
	case Byte:
		return "byte"
	case Int:
		return "int"
	case State:
		return "state"
	default:
		return "type?"
	}
}

// Instruction is a decoded record. Not every field is meaningful for every
// Op/Cfg combination — the decoder only populates the fields the encoding
// says are present for that shape; the rest are left zero. Equality is
// structural (the struct holds only comparable scalar fields).
type Instruction struct {
	Op    Op
	Cfg   uint8 // BinCfg, LoadCfg or StoreCfg depending on Op
	Typ   FieldType
	Rd    uint8
	Ra    uint8
	Rb    uint8
	Imma  uint32
	Immb  uint32
	Addr  uint32
}

func bits(w uint32, hi, lo uint) uint32 {
	width := hi - lo + 1
	mask := uint32(1)<<width - 1
	return (w >> lo) & mask
}

// Decode turns one 32-bit word into an Instruction, by position, per the
// field tables in spec.md §4.1. It never errors.
func Decode(w uint32) Instruction {
	op := Op(bits(w, 31, 28))
	var in Instruction
	in.Op = op

	switch op {
	case ADD, SUB, MUL, DIV, MOD, AND, OR, LT, GT, EQ:
		cfg := BinCfg(bits(w, 27, 26))
		in.Cfg = uint8(cfg)
		in.Rd = uint8(bits(w, 25, 22))
		switch cfg {
		case RR:
			in.Ra = uint8(bits(w, 14, 11))
			in.Rb = uint8(bits(w, 3, 0))
		case RI:
			in.Ra = uint8(bits(w, 14, 11))
			in.Immb = bits(w, 10, 0)
		case IR:
			in.Imma = bits(w, 21, 11)
			in.Rb = uint8(bits(w, 3, 0))
		case II:
			in.Imma = bits(w, 21, 11)
			in.Immb = bits(w, 10, 0)
		}
	case NOT:
		in.Rd = uint8(bits(w, 27, 24))
		in.Ra = uint8(bits(w, 3, 0))
	case JMP:
		in.Rd = uint8(bits(w, 27, 24))
		in.Addr = bits(w, 23, 0)
	case LOAD:
		cfg := LoadCfg(bits(w, 27, 26))
		in.Cfg = uint8(cfg)
		in.Typ = FieldType(bits(w, 25, 24))
		in.Rd = uint8(bits(w, 23, 20))
		switch cfg {
		case LoadREG:
			in.Ra = uint8(bits(w, 3, 0))
		case LoadIMM:
			in.Imma = bits(w, 10, 0)
		case LoadADR:
			in.Addr = bits(w, 19, 0)
		case LoadRAA:
			in.Ra = uint8(bits(w, 3, 0))
		}
	case STORE:
		cfg := StoreCfg(bits(w, 27, 26))
		in.Cfg = uint8(cfg)
		in.Typ = FieldType(bits(w, 25, 24))
		in.Rd = uint8(bits(w, 23, 20))
		switch cfg {
		case StoreADR:
			in.Addr = bits(w, 19, 0)
		case StoreRAA:
			in.Ra = uint8(bits(w, 3, 0))
		}
	case ENDGA, NOP:
		// no fields
	}
	return in
}

// Decoder advances a word index over a Source, decoding on demand. JMP
// writes the index directly (word units, not bytes).
type Decoder struct {
	words *word.Source
	index int
}

// NewDecoder wraps a word Source starting at index 0.
func NewDecoder(w *word.Source) *Decoder {
	return &Decoder{words: w}
}

// Reset rewinds the decoder to word 0.
func (d *Decoder) Reset() {
	d.index = 0
}

// Index returns the next word index to be fetched.
func (d *Decoder) Index() int {
	return d.index
}

// SetIndex overrides the next word index (used by JMP).
func (d *Decoder) SetIndex(i int) {
	d.index = i
}

// DecodeNext fetches the word at the current index, advances the index by
// one, and decodes it.
func (d *Decoder) DecodeNext() Instruction {
	w := d.words.Word(d.index)
	d.index++
	return Decode(w)
}
