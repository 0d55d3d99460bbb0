// Package asm assembles text source lines into the 32-bit words
// internal/decode understands, and disassembles words back to text. It
// exists so the decode/assemble round-trip property can be tested — gcmc
// does not ship this as a production compiler front end (spec.md treats
// the assembler and the upstream compiler as external), but the property
// in spec.md §8 needs something in-repo that turns a mnemonic line into a
// word.
package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oisee/gcmc/internal/decode"
)

// Error reports a structural assembly failure at a specific source line,
// the way keurnel-assembler's generator attaches line/column to its errors.
type Error struct {
	Line     int
	Source   string
	Mnemonic string
	Reason   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("asm: line %d: %q: %s", e.Line, e.Source, e.Reason)
}

func errAt(line int, src, mnemonic, reason string) *Error {
	return &Error{Line: line, Source: src, Mnemonic: mnemonic, Reason: reason}
}

var binOps = map[string]decode.Op{
	"add": decode.ADD, "sub": decode.SUB, "mul": decode.MUL, "div": decode.DIV,
	"mod": decode.MOD, "and": decode.AND, "or": decode.OR,
	"lt": decode.LT, "gt": decode.GT, "eq": decode.EQ,
}

var loadTypes = map[string]decode.FieldType{
	"loadint": decode.Int, "loadbyte": decode.Byte,
	"loadbool": decode.Bool, "loadstate": decode.State,
}

var storeTypes = map[string]decode.FieldType{
	"storeint": decode.Int, "storebyte": decode.Byte,
	"storebool": decode.Bool, "storestate": decode.State,
}

// operand is a parsed token: a register, an immediate, an address literal
// (@N), or a register-indirect address ([rN]).
type operand struct {
	kind operandKind
	reg  uint8
	imm  uint32
}

type operandKind int

const (
	opReg operandKind = iota
	opImm
	opAddr
	opIndirect
)

func parseOperand(line int, src, mnemonic, tok string) (operand, error) {
	tok = strings.TrimSpace(tok)
	switch {
	case strings.HasPrefix(tok, "r"):
		n, err := strconv.ParseUint(tok[1:], 10, 8)
		if err != nil || n > 15 {
			return operand{}, errAt(line, src, mnemonic, fmt.Sprintf("bad register %q", tok))
		}
		return operand{kind: opReg, reg: uint8(n)}, nil
	case strings.HasPrefix(tok, "@"):
		n, err := strconv.ParseUint(tok[1:], 10, 32)
		if err != nil {
			return operand{}, errAt(line, src, mnemonic, fmt.Sprintf("bad address %q", tok))
		}
		return operand{kind: opAddr, imm: uint32(n)}, nil
	case strings.HasPrefix(tok, "[") && strings.HasSuffix(tok, "]"):
		inner := tok[1 : len(tok)-1]
		reg, err := parseOperand(line, src, mnemonic, inner)
		if err != nil || reg.kind != opReg {
			return operand{}, errAt(line, src, mnemonic, fmt.Sprintf("bad indirect operand %q", tok))
		}
		return operand{kind: opIndirect, reg: reg.reg}, nil
	default:
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return operand{}, errAt(line, src, mnemonic, fmt.Sprintf("bad operand %q", tok))
		}
		return operand{kind: opImm, imm: uint32(n)}, nil
	}
}

func tokenize(line string) []string {
	line = strings.TrimSpace(line)
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	line = strings.ReplaceAll(line, ",", " ")
	return strings.Fields(line)
}

func bitsField(v uint32, width uint) uint32 {
	return v & (1<<width - 1)
}

// AssembleLine assembles a single source line into its encoded word. Blank
// lines and lines that are comments only return (0, false, nil).
func AssembleLine(lineNo int, line string) (word uint32, ok bool, err error) {
	fields := tokenize(line)
	if len(fields) == 0 {
		return 0, false, nil
	}
	mnemonic := strings.ToLower(fields[0])
	args := fields[1:]

	if op, isBin := binOps[mnemonic]; isBin {
		w, err := assembleBin(lineNo, line, mnemonic, op, args)
		return w, true, err
	}

	switch mnemonic {
	case "nop":
		return 0, true, nil
	case "endga":
		return uint32(decode.ENDGA) << 28, true, nil
	case "not":
		if len(args) != 2 {
			return 0, true, errAt(lineNo, line, mnemonic, "want 2 operands: rd, ra")
		}
		rd, err := parseOperand(lineNo, line, mnemonic, args[0])
		if err != nil || rd.kind != opReg {
			return 0, true, errAt(lineNo, line, mnemonic, "destination must be a register")
		}
		ra, err := parseOperand(lineNo, line, mnemonic, args[1])
		if err != nil || ra.kind != opReg {
			return 0, true, errAt(lineNo, line, mnemonic, "source must be a register")
		}
		w := uint32(decode.NOT)<<28 | uint32(rd.reg)<<24 | uint32(ra.reg)
		return w, true, nil
	case "jmp":
		if len(args) != 2 {
			return 0, true, errAt(lineNo, line, mnemonic, "want 2 operands: rd, addr")
		}
		rd, err := parseOperand(lineNo, line, mnemonic, args[0])
		if err != nil || rd.kind != opReg {
			return 0, true, errAt(lineNo, line, mnemonic, "branch register must be a register")
		}
		addr, err := parseOperand(lineNo, line, mnemonic, args[1])
		if err != nil || addr.kind != opImm {
			return 0, true, errAt(lineNo, line, mnemonic, "target must be an immediate word index")
		}
		w := uint32(decode.JMP)<<28 | uint32(rd.reg)<<24 | bitsField(addr.imm, 24)
		return w, true, nil
	case "mov":
		if len(args) != 2 {
			return 0, true, errAt(lineNo, line, mnemonic, "want 2 operands: rd, ra")
		}
		rd, err := parseOperand(lineNo, line, mnemonic, args[0])
		if err != nil || rd.kind != opReg {
			return 0, true, errAt(lineNo, line, mnemonic, "destination must be a register")
		}
		ra, err := parseOperand(lineNo, line, mnemonic, args[1])
		if err != nil || ra.kind != opReg {
			return 0, true, errAt(lineNo, line, mnemonic, "source must be a register")
		}
		w := uint32(decode.LOAD)<<28 | uint32(decode.LoadREG)<<26 | uint32(rd.reg)<<20 | uint32(ra.reg)
		return w, true, nil
	}

	if typ, isLoad := loadTypes[mnemonic]; isLoad {
		w, err := assembleLoad(lineNo, line, mnemonic, typ, args)
		return w, true, err
	}
	if typ, isStore := storeTypes[mnemonic]; isStore {
		w, err := assembleStore(lineNo, line, mnemonic, typ, args)
		return w, true, err
	}

	return 0, true, errAt(lineNo, line, mnemonic, "unknown mnemonic")
}

func assembleBin(lineNo int, line, mnemonic string, op decode.Op, args []string) (uint32, error) {
	if len(args) != 3 {
		return 0, errAt(lineNo, line, mnemonic, "want 3 operands: rd, a, b")
	}
	rd, err := parseOperand(lineNo, line, mnemonic, args[0])
	if err != nil || rd.kind != opReg {
		return 0, errAt(lineNo, line, mnemonic, "destination must be a register")
	}
	a, err := parseOperand(lineNo, line, mnemonic, args[1])
	if err != nil || (a.kind != opReg && a.kind != opImm) {
		return 0, errAt(lineNo, line, mnemonic, "operand a must be a register or immediate")
	}
	b, err := parseOperand(lineNo, line, mnemonic, args[2])
	if err != nil || (b.kind != opReg && b.kind != opImm) {
		return 0, errAt(lineNo, line, mnemonic, "operand b must be a register or immediate")
	}

	w := uint32(op)<<28 | uint32(rd.reg)<<22

	switch {
	case a.kind == opReg && b.kind == opReg:
		w |= uint32(decode.RR) << 26
		w |= uint32(a.reg) << 11
		w |= uint32(b.reg)
	case a.kind == opReg && b.kind == opImm:
		w |= uint32(decode.RI) << 26
		w |= uint32(a.reg) << 11
		w |= bitsField(b.imm, 11)
	case a.kind == opImm && b.kind == opReg:
		w |= uint32(decode.IR) << 26
		w |= bitsField(a.imm, 11) << 11
		w |= uint32(b.reg)
	default:
		w |= uint32(decode.II) << 26
		w |= bitsField(a.imm, 11) << 11
		w |= bitsField(b.imm, 11)
	}
	return w, nil
}

func assembleLoad(lineNo int, line, mnemonic string, typ decode.FieldType, args []string) (uint32, error) {
	if len(args) != 2 {
		return 0, errAt(lineNo, line, mnemonic, "want 2 operands: rd, source")
	}
	rd, err := parseOperand(lineNo, line, mnemonic, args[0])
	if err != nil || rd.kind != opReg {
		return 0, errAt(lineNo, line, mnemonic, "destination must be a register")
	}
	src, err := parseOperand(lineNo, line, mnemonic, args[1])
	if err != nil {
		return 0, errAt(lineNo, line, mnemonic, fmt.Sprintf("bad source operand %q", args[1]))
	}

	base := uint32(decode.LOAD)<<28 | uint32(typ)<<24 | uint32(rd.reg)<<20

	switch src.kind {
	case opImm:
		return base | uint32(decode.LoadIMM)<<26 | bitsField(src.imm, 11), nil
	case opAddr:
		return base | uint32(decode.LoadADR)<<26 | bitsField(src.imm, 20), nil
	case opReg, opIndirect:
		return base | uint32(decode.LoadRAA)<<26 | uint32(src.reg), nil
	default:
		return 0, errAt(lineNo, line, mnemonic, "source must be an immediate, @address or register")
	}
}

func assembleStore(lineNo int, line, mnemonic string, typ decode.FieldType, args []string) (uint32, error) {
	if len(args) != 2 {
		return 0, errAt(lineNo, line, mnemonic, "want 2 operands: rd, destination")
	}
	rd, err := parseOperand(lineNo, line, mnemonic, args[0])
	if err != nil || rd.kind != opReg {
		return 0, errAt(lineNo, line, mnemonic, "source register must be a register")
	}
	dst, err := parseOperand(lineNo, line, mnemonic, args[1])
	if err != nil {
		return 0, errAt(lineNo, line, mnemonic, fmt.Sprintf("bad destination operand %q", args[1]))
	}

	base := uint32(decode.STORE)<<28 | uint32(typ)<<24 | uint32(rd.reg)<<20

	switch dst.kind {
	case opAddr:
		return base | uint32(decode.StoreADR)<<26 | bitsField(dst.imm, 20), nil
	case opReg, opIndirect:
		return base | uint32(decode.StoreRAA)<<26 | uint32(dst.reg), nil
	default:
		return 0, errAt(lineNo, line, mnemonic, "destination must be @address or register")
	}
}

// Assemble assembles a full source text into a sequence of words, one per
// non-blank line, in order. Errors from every offending line are returned
// together rather than stopping at the first.
func Assemble(src string) ([]uint32, []error) {
	var words []uint32
	var errs []error
	for i, line := range strings.Split(src, "\n") {
		w, ok, err := AssembleLine(i+1, line)
		if !ok {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		words = append(words, w)
	}
	return words, errs
}

// Disassemble renders a decoded instruction back into a source line, in
// the same mnemonic grammar Assemble accepts — not a full round trip of
// original formatting (spacing, [rN] versus rN, comments), but
// Decode(AssembleLine(Disassemble(i))) reproduces i's semantics for every
// opcode.
func Disassemble(in decode.Instruction) string {
	switch in.Op {
	case decode.NOP:
		return "nop"
	case decode.ENDGA:
		return "endga"
	case decode.NOT:
		return fmt.Sprintf("not r%d, r%d", in.Rd, in.Ra)
	case decode.JMP:
		return fmt.Sprintf("jmp r%d, %d", in.Rd, in.Addr)
	case decode.ADD, decode.SUB, decode.MUL, decode.DIV, decode.MOD,
		decode.AND, decode.OR, decode.LT, decode.GT, decode.EQ:
		mnemonic := in.Op.String()
		a := operandText(decode.BinCfg(in.Cfg) == decode.IR || decode.BinCfg(in.Cfg) == decode.II, in.Imma, in.Ra)
		b := operandText(decode.BinCfg(in.Cfg) == decode.RI || decode.BinCfg(in.Cfg) == decode.II, in.Immb, in.Rb)
		return fmt.Sprintf("%s r%d, %s, %s", mnemonic, in.Rd, a, b)
	case decode.LOAD:
		mnemonic := "load" + in.Typ.String()
		switch decode.LoadCfg(in.Cfg) {
		case decode.LoadREG:
			return fmt.Sprintf("mov r%d, r%d", in.Rd, in.Ra)
		case decode.LoadIMM:
			return fmt.Sprintf("%s r%d, %d", mnemonic, in.Rd, in.Imma)
		case decode.LoadADR:
			return fmt.Sprintf("%s r%d, @%d", mnemonic, in.Rd, in.Addr)
		case decode.LoadRAA:
			return fmt.Sprintf("%s r%d, r%d", mnemonic, in.Rd, in.Ra)
		}
	case decode.STORE:
		mnemonic := "store" + in.Typ.String()
		switch decode.StoreCfg(in.Cfg) {
		case decode.StoreADR:
			return fmt.Sprintf("%s r%d, @%d", mnemonic, in.Rd, in.Addr)
		case decode.StoreRAA:
			return fmt.Sprintf("%s r%d, r%d", mnemonic, in.Rd, in.Ra)
		}
	}
	return "?"
}

func operandText(isImm bool, imm uint32, reg uint8) string {
	if isImm {
		return strconv.FormatUint(uint64(imm), 10)
	}
	return fmt.Sprintf("r%d", reg)
}
