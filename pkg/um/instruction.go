package um

import (
	"errors"
	"fmt"

	"github.com/akhildatla/umlab/pkg/bitpack"
)

// Instruction represents a 32-bit encoded instruction.
//
// Three-register layout:
// ┌────────┬──────────────────┬──────┬──────┬──────┐
// │ opcode │      unused      │  A   │  B   │  C   │
// │ 31..28 │      27..9       │ 8..6 │ 5..3 │ 2..0 │
// └────────┴──────────────────┴──────┴──────┴──────┘
//
// Load-value layout:
// ┌────────┬────────┬───────────────────────────────┐
// │ opcode │   A    │             value             │
// │ 31..28 │ 27..25 │             24..0             │
// └────────┴────────┴───────────────────────────────┘
type Instruction uint32

// Field geometry of both formats. This table is the only place bit positions
// are defined.
var (
	FieldOpcode  = bitpack.Field{Width: 4, LSB: 28}
	FieldA       = bitpack.Field{Width: 3, LSB: 6}
	FieldB       = bitpack.Field{Width: 3, LSB: 3}
	FieldC       = bitpack.Field{Width: 3, LSB: 0}
	FieldLoadReg = bitpack.Field{Width: 3, LSB: 25}
	FieldValue   = bitpack.Field{Width: 25, LSB: 0}
)

// MaxValue is the largest immediate a load-value instruction can carry.
const MaxValue = 1<<25 - 1

var (
	ErrUnknownOpcode = errors.New("undefined opcode")
	ErrFormat        = errors.New("opcode used with the wrong instruction format")
)

// encoder lays fields into a word one at a time and keeps the first failure.
type encoder struct {
	word uint32
	err  error
}

func (e *encoder) put(f bitpack.Field, v uint64, what string) {
	if e.err != nil {
		return
	}
	word, err := f.Put(e.word, v)
	if err != nil {
		e.err = fmt.Errorf("%s: %w", what, err)
		return
	}
	e.word = word
}

func (e *encoder) result() (Instruction, error) {
	if e.err != nil {
		return 0, e.err
	}
	return Instruction(e.word), nil
}

func checkOpcode(op Opcode, want Format) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownOpcode, uint8(op))
	}
	if op.Format() != want {
		return fmt.Errorf("%w: %s is %s, not %s", ErrFormat, op, op.Format(), want)
	}
	return nil
}

// EncodeThreeRegister encodes op with registers A, B and C. Bits 27..9 are
// always zero.
func EncodeThreeRegister(op Opcode, a, b, c Register) (Instruction, error) {
	if err := checkOpcode(op, FormatThreeRegister); err != nil {
		return 0, err
	}
	var e encoder
	e.put(FieldOpcode, uint64(op), "opcode")
	e.put(FieldA, uint64(a), "register A")
	e.put(FieldB, uint64(b), "register B")
	e.put(FieldC, uint64(c), "register C")
	return e.result()
}

// EncodeLoadValue encodes a load-value of value into register a.
func EncodeLoadValue(a Register, value uint32) (Instruction, error) {
	var e encoder
	e.put(FieldOpcode, uint64(OpLV), "opcode")
	e.put(FieldLoadReg, uint64(a), "register A")
	e.put(FieldValue, uint64(value), "value")
	return e.result()
}

// Halt stops the machine.
func Halt() (Instruction, error) {
	return EncodeThreeRegister(OpHalt, R0, R0, R0)
}

// CondMove sets $r[a] := $r[b] when $r[c] != 0.
func CondMove(a, b, c Register) (Instruction, error) {
	return EncodeThreeRegister(OpCMov, a, b, c)
}

// SegmentedLoad loads $m[$r[b]][$r[c]] into a.
func SegmentedLoad(a, b, c Register) (Instruction, error) {
	return EncodeThreeRegister(OpSLoad, a, b, c)
}

// SegmentedStore stores $r[c] at $m[$r[a]][$r[b]].
func SegmentedStore(a, b, c Register) (Instruction, error) {
	return EncodeThreeRegister(OpSStore, a, b, c)
}

// Add sets $r[a] := ($r[b] + $r[c]) mod 2^32.
func Add(a, b, c Register) (Instruction, error) {
	return EncodeThreeRegister(OpAdd, a, b, c)
}

// Multiply sets $r[a] := ($r[b] * $r[c]) mod 2^32.
func Multiply(a, b, c Register) (Instruction, error) {
	return EncodeThreeRegister(OpMul, a, b, c)
}

// Divide sets $r[a] := $r[b] / $r[c], unsigned.
func Divide(a, b, c Register) (Instruction, error) {
	return EncodeThreeRegister(OpDiv, a, b, c)
}

// NAND sets $r[a] := ^($r[b] & $r[c]).
func NAND(a, b, c Register) (Instruction, error) {
	return EncodeThreeRegister(OpNAND, a, b, c)
}

// MapSegment maps a segment of $r[c] words and leaves its id in b. Slot A is
// unused by the format and always zero.
func MapSegment(b, c Register) (Instruction, error) {
	return EncodeThreeRegister(OpMap, R0, b, c)
}

// UnmapSegment unmaps segment $r[c]. Slots A and B are always zero.
func UnmapSegment(c Register) (Instruction, error) {
	return EncodeThreeRegister(OpUnmap, R0, R0, c)
}

// Output writes the low byte of $r[c]. Slots A and B are always zero.
func Output(c Register) (Instruction, error) {
	return EncodeThreeRegister(OpOut, R0, R0, c)
}

// Input reads one byte into c. Slots A and B are always zero.
func Input(c Register) (Instruction, error) {
	return EncodeThreeRegister(OpIn, R0, R0, c)
}

// LoadProgram replaces segment 0 with a copy of $m[$r[b]] and jumps to $r[c].
// Slot A is always zero.
func LoadProgram(b, c Register) (Instruction, error) {
	return EncodeThreeRegister(OpLoadP, R0, b, c)
}

// LoadValue sets a to value.
func LoadValue(a Register, value uint32) (Instruction, error) {
	return EncodeLoadValue(a, value)
}

func (i Instruction) field(f bitpack.Field) uint32 {
	// The geometry table is fixed and valid, so Get cannot fail here.
	v, _ := f.Get(uint32(i))
	return v
}

// Opcode returns the opcode (bits 31-28).
func (i Instruction) Opcode() Opcode {
	return Opcode(i.field(FieldOpcode))
}

// A returns register A of a three-register instruction (bits 8-6).
func (i Instruction) A() Register {
	return Register(i.field(FieldA))
}

// B returns register B (bits 5-3).
func (i Instruction) B() Register {
	return Register(i.field(FieldB))
}

// C returns register C (bits 2-0).
func (i Instruction) C() Register {
	return Register(i.field(FieldC))
}

// LoadRegister returns the target register of a load-value (bits 27-25).
func (i Instruction) LoadRegister() Register {
	return Register(i.field(FieldLoadReg))
}

// Value returns the immediate of a load-value (bits 24-0).
func (i Instruction) Value() uint32 {
	return i.field(FieldValue)
}

// String returns the instruction in assembler syntax.
func (i Instruction) String() string {
	return disassembleInstruction(i)
}
