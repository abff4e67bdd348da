package um

import (
	"fmt"
	"iter"
	"slices"
)

// Stream is an append-only sequence of instructions forming one program.
// The first instruction appended is the first one executed.
type Stream struct {
	code []Instruction
	err  error
}

// NewStream returns an empty stream.
func NewStream() *Stream {
	return &Stream{}
}

// Append adds inst at the end of the stream.
func (s *Stream) Append(inst Instruction) {
	s.code = append(s.code, inst)
}

// Emit appends the result of an encoder call:
//
//	s.Emit(um.LoadValue(um.R1, 'B'))
//	s.Emit(um.Output(um.R1))
//
// The first encoding error is kept and every later Emit is ignored, so a
// builder stops growing the program at the first bad instruction. Callers
// check Err once the builder returns.
func (s *Stream) Emit(inst Instruction, err error) {
	if s.err != nil {
		return
	}
	if err != nil {
		s.err = fmt.Errorf("instruction %d: %w", len(s.code), err)
		return
	}
	s.code = append(s.code, inst)
}

// Err returns the first error recorded by Emit.
func (s *Stream) Err() error {
	return s.err
}

// Len returns the number of instructions.
func (s *Stream) Len() int {
	return len(s.code)
}

// At returns the instruction at index i.
func (s *Stream) At(i int) Instruction {
	return s.code[i]
}

// All yields the instructions in append order without consuming them.
func (s *Stream) All() iter.Seq2[int, Instruction] {
	return func(yield func(int, Instruction) bool) {
		for i, inst := range s.code {
			if !yield(i, inst) {
				return
			}
		}
	}
}

// Words returns a copy of the instructions.
func (s *Stream) Words() []Instruction {
	return slices.Clone(s.code)
}
