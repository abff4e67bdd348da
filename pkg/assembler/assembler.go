// Package assembler turns UM assembly text into instruction streams.
//
// Source is line oriented:
//
//	; print "B" and stop
//	lv    r1, 'B'
//	out   r1
//	.rept 3
//	map   r2, r1
//	.endr
//	halt
//
// Mnemonics are the lower-case opcode names of package um. Operands are
// registers r0-r7, decimal or 0x hex integers, and character literals.
package assembler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/akhildatla/umlab/pkg/um"
)

// MaxExpanded bounds the number of instructions .rept expansion may produce.
const MaxExpanded = 1 << 24

var ErrTooLarge = errors.New("program expands past instruction limit")

// Assemble assembles source into a new stream.
func Assemble(source string) (*um.Stream, error) {
	s := um.NewStream()
	if err := AssembleInto(s, source); err != nil {
		return nil, err
	}
	return s, nil
}

// AssembleInto assembles source and appends the result to s. Nothing is
// appended when source has an error.
func AssembleInto(s *um.Stream, source string) error {
	parser := NewParser(source)
	asmProgram, err := parser.Parse()
	if err != nil {
		return err
	}

	a := &Assembler{code: []um.Instruction{}}
	if err := a.assembleBlock(asmProgram.Instructions); err != nil {
		return err
	}

	for _, inst := range a.code {
		s.Append(inst)
	}
	return nil
}

// Assembler encodes parsed assembly into instructions.
type Assembler struct {
	code []um.Instruction
}

func (a *Assembler) assembleBlock(body []AsmInstruction) error {
	for _, inst := range body {
		if inst.Opcode == ".rept" {
			start := len(a.code)
			if err := a.assembleBlock(inst.Body); err != nil {
				return err
			}
			chunk := a.code[start:]
			if inst.Count == 0 {
				a.code = a.code[:start]
				continue
			}
			if len(chunk) > 0 && (inst.Count > MaxExpanded ||
				uint64(start)+uint64(len(chunk))*inst.Count > MaxExpanded) {
				return fmt.Errorf("line %d: %w", inst.Line, ErrTooLarge)
			}
			chunk = append([]um.Instruction(nil), chunk...)
			for i := uint64(1); i < inst.Count; i++ {
				a.code = append(a.code, chunk...)
			}
			continue
		}

		bytecode, err := a.assembleInstruction(inst)
		if err != nil {
			return fmt.Errorf("line %d: %w", inst.Line, err)
		}
		if len(a.code) >= MaxExpanded {
			return fmt.Errorf("line %d: %w", inst.Line, ErrTooLarge)
		}
		a.code = append(a.code, bytecode)
	}
	return nil
}

func (a *Assembler) assembleInstruction(inst AsmInstruction) (um.Instruction, error) {
	opcode, ok := um.OpcodeFromString(strings.ToLower(inst.Opcode))
	if !ok {
		return 0, fmt.Errorf("unknown opcode: %s", inst.Opcode)
	}

	switch opcode {
	case um.OpHalt:
		if err := expectRegisters(inst, 0); err != nil {
			return 0, err
		}
		return um.Halt()

	case um.OpCMov, um.OpSLoad, um.OpSStore, um.OpAdd, um.OpMul, um.OpDiv, um.OpNAND:
		if err := expectRegisters(inst, 3); err != nil {
			return 0, err
		}
		ops := inst.Operands
		return um.EncodeThreeRegister(opcode, ops[0].RegNum, ops[1].RegNum, ops[2].RegNum)

	case um.OpMap:
		if err := expectRegisters(inst, 2); err != nil {
			return 0, err
		}
		return um.MapSegment(inst.Operands[0].RegNum, inst.Operands[1].RegNum)

	case um.OpLoadP:
		if err := expectRegisters(inst, 2); err != nil {
			return 0, err
		}
		return um.LoadProgram(inst.Operands[0].RegNum, inst.Operands[1].RegNum)

	case um.OpUnmap, um.OpOut, um.OpIn:
		if err := expectRegisters(inst, 1); err != nil {
			return 0, err
		}
		c := inst.Operands[0].RegNum
		switch opcode {
		case um.OpUnmap:
			return um.UnmapSegment(c)
		case um.OpOut:
			return um.Output(c)
		default:
			return um.Input(c)
		}

	case um.OpLV:
		return a.assembleLoadValue(inst)

	default:
		return 0, fmt.Errorf("unsupported opcode: %s", opcode)
	}
}

func (a *Assembler) assembleLoadValue(inst AsmInstruction) (um.Instruction, error) {
	if len(inst.Operands) != 2 {
		return 0, fmt.Errorf("lv expects a register and a value, got %d operands", len(inst.Operands))
	}
	reg, val := inst.Operands[0], inst.Operands[1]
	if reg.Type != OperandRegister {
		return 0, fmt.Errorf("lv: first operand must be a register")
	}
	if val.Type != OperandInt {
		return 0, fmt.Errorf("lv: second operand must be a value")
	}
	// Check the full literal against the field before narrowing it.
	if _, err := um.FieldValue.Put(0, val.IntVal); err != nil {
		return 0, fmt.Errorf("value: %w", err)
	}
	return um.LoadValue(reg.RegNum, uint32(val.IntVal))
}

func expectRegisters(inst AsmInstruction, n int) error {
	if len(inst.Operands) != n {
		return fmt.Errorf("%s expects %d register operands, got %d",
			strings.ToLower(inst.Opcode), n, len(inst.Operands))
	}
	for i, op := range inst.Operands {
		if op.Type != OperandRegister {
			return fmt.Errorf("%s: operand %d must be a register", strings.ToLower(inst.Opcode), i+1)
		}
	}
	return nil
}
