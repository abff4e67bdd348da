package scenario

import (
	"github.com/akhildatla/umlab/pkg/um"
)

// BuiltinScenarios returns the standard UM unit tests.
func BuiltinScenarios() []Scenario {
	return []Scenario{
		{Name: "halt", Build: buildHalt},
		{Name: "halt-verbose", Build: buildVerboseHalt},

		{Name: "load_output", Output: "test\n", Build: buildOutput},

		{Name: "input_output", Input: "what\n", Output: "what\n", Build: buildInput},
		{Name: "input_eof", Input: "2", Output: "1", Build: buildInputEOF},

		{Name: "add", Build: buildAdd},
		{Name: "print-six", Output: "6", Build: buildPrintDigit},
		{Name: "multiple_add", Output: "8", Build: buildMultipleAdd},
		{Name: "input_add", Input: "*&", Output: "P", Build: buildInputAdd},

		{Name: "multiply", Output: "0", Build: buildMultiply},
		{Name: "multiply_many", Output: "0", Build: buildMultipleMultiply},
		{Name: "multiply_by_0", Input: "a", Output: "2", Build: buildMultiplyByZero},
		{Name: "mod_mul", Output: "8", Build: buildModMultiply},

		{Name: "divide", Output: "2", Build: buildDivide},
		{Name: "divide_many", Output: "2", Build: buildMultipleDivide},
		{Name: "divide_by_1", Output: "4", Build: buildDivideByOne},
		{Name: "divide_by_nonfactor", Input: "(", Output: ">", Build: buildDivideByNonfactor},

		{Name: "conditional_move_true", Output: "2", Build: buildCondMoveTrue},
		{Name: "conditional_move_false", Output: "0", Build: buildCondMoveFalse},

		{Name: "nand_0", Output: "2", Build: buildNANDAllOnes},
		{Name: "nand_1", Output: "1", Build: buildNANDZero},

		{Name: "mapseg_size0", Output: "2", Build: buildMapSegmentEmpty},
		{Name: "mapseg_large", Output: "2", Build: buildMapSegmentLarge},
		{Name: "mapseg_many", Output: "d", Build: buildMapSegmentMany},

		{Name: "unmapseg_size1", Output: "2", Build: buildUnmapSegment},
		{Name: "unmapseg_many", Output: "2", Build: buildUnmapSegmentMany},
		{Name: "unmapseg_alt", Output: "e", Build: buildUnmapSegmentAlternating},

		{Name: "seg_store", Build: buildSegmentedStore},
		{Name: "seg_load", Output: "2", Build: buildSegmentedLoad},
		{Name: "seg_storeload", Output: "2", Build: buildSegmentedStoreLoad},
		{Name: "load_prog", Output: "2", Build: buildLoadProgram},

		{Name: "run_500k", Build: buildLoop},
	}
}

// Builtin returns a registry of BuiltinScenarios.
func Builtin() *Registry {
	r, err := NewRegistry(BuiltinScenarios()...)
	if err != nil {
		// The table above is static.
		panic(err)
	}
	return r
}

func buildHalt(s *um.Stream) {
	s.Emit(um.Halt())
}

// Output after halt must never appear.
func buildVerboseHalt(s *um.Stream) {
	s.Emit(um.Halt())
	for _, ch := range "Bad!\n" {
		s.Emit(um.LoadValue(um.R1, uint32(ch)))
		s.Emit(um.Output(um.R1))
	}
}

func buildOutput(s *um.Stream) {
	s.Emit(um.LoadValue(um.R0, 't'))
	s.Emit(um.Output(um.R0))

	s.Emit(um.LoadValue(um.R3, 'e'))
	s.Emit(um.Output(um.R3))

	s.Emit(um.LoadValue(um.R4, 's'))
	s.Emit(um.Output(um.R4))

	s.Emit(um.LoadValue(um.R5, 't'))
	s.Emit(um.Output(um.R5))

	s.Emit(um.LoadValue(um.R7, '\n'))
	s.Emit(um.Output(um.R7))

	s.Emit(um.Halt())
}

func buildInput(s *um.Stream) {
	for _, r := range []um.Register{um.R5, um.R3, um.R7, um.R7} {
		s.Emit(um.Input(r))
		s.Emit(um.Output(r))
	}

	s.Emit(um.LoadValue(um.R7, '\n'))
	s.Emit(um.Output(um.R7))

	s.Emit(um.Halt())
}

// The second read hits end of input and yields all ones, so r2 ends up one
// less than the first byte.
func buildInputEOF(s *um.Stream) {
	s.Emit(um.Input(um.R1))
	s.Emit(um.Input(um.R2))

	s.Emit(um.Add(um.R2, um.R2, um.R1))
	s.Emit(um.Output(um.R2))

	s.Emit(um.Halt())
}

func buildAdd(s *um.Stream) {
	s.Emit(um.Add(um.R1, um.R2, um.R3))
	s.Emit(um.Halt())
}

func buildPrintDigit(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 48))
	s.Emit(um.LoadValue(um.R2, 6))
	s.Emit(um.Add(um.R3, um.R1, um.R2))
	s.Emit(um.Output(um.R3))
	s.Emit(um.Halt())
}

func buildMultipleAdd(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 48))
	s.Emit(um.LoadValue(um.R2, 6))
	s.Emit(um.Add(um.R3, um.R1, um.R2))
	s.Emit(um.LoadValue(um.R4, 2))
	s.Emit(um.Add(um.R3, um.R3, um.R4))
	s.Emit(um.Output(um.R3))
	s.Emit(um.Halt())
}

func buildInputAdd(s *um.Stream) {
	s.Emit(um.Input(um.R1))
	s.Emit(um.Input(um.R2))
	s.Emit(um.Add(um.R3, um.R1, um.R2))
	s.Emit(um.Output(um.R3))
	s.Emit(um.Halt())
}

func buildMultiply(s *um.Stream) {
	s.Emit(um.LoadValue(um.R3, 12))
	s.Emit(um.LoadValue(um.R2, 4))
	s.Emit(um.Multiply(um.R1, um.R2, um.R3))
	s.Emit(um.Output(um.R1))
	s.Emit(um.Halt())
}

func buildMultipleMultiply(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 6))
	s.Emit(um.LoadValue(um.R2, 2))
	s.Emit(um.Multiply(um.R3, um.R1, um.R2))
	s.Emit(um.LoadValue(um.R4, 4))
	s.Emit(um.Multiply(um.R3, um.R3, um.R4))
	s.Emit(um.Output(um.R3))
	s.Emit(um.Halt())
}

func buildMultiplyByZero(s *um.Stream) {
	s.Emit(um.LoadValue(um.R2, 0))
	s.Emit(um.Input(um.R3))

	s.Emit(um.Multiply(um.R1, um.R2, um.R3))

	s.Emit(um.LoadValue(um.R2, 50))
	s.Emit(um.Add(um.R1, um.R1, um.R2))
	s.Emit(um.Output(um.R1))

	s.Emit(um.Halt())
}

// 358332 * 11986 overflows 32 bits; the low byte of the wrapped product is '8'.
func buildModMultiply(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 358332))
	s.Emit(um.LoadValue(um.R2, 11986))

	s.Emit(um.Multiply(um.R3, um.R1, um.R2))
	s.Emit(um.Output(um.R3))

	s.Emit(um.Halt())
}

func buildDivide(s *um.Stream) {
	s.Emit(um.LoadValue(um.R3, 4))
	s.Emit(um.LoadValue(um.R2, 200))
	s.Emit(um.Divide(um.R1, um.R2, um.R3))
	s.Emit(um.Output(um.R1))
	s.Emit(um.Halt())
}

func buildMultipleDivide(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 20000))
	s.Emit(um.LoadValue(um.R2, 100))
	s.Emit(um.Divide(um.R3, um.R1, um.R2))
	s.Emit(um.LoadValue(um.R4, 4))
	s.Emit(um.Divide(um.R3, um.R3, um.R4))
	s.Emit(um.Output(um.R3))
	s.Emit(um.Halt())
}

func buildDivideByOne(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 52))
	s.Emit(um.LoadValue(um.R2, 1))

	s.Emit(um.Divide(um.R3, um.R1, um.R2))
	s.Emit(um.Output(um.R3))

	s.Emit(um.Halt())
}

func buildDivideByNonfactor(s *um.Stream) {
	s.Emit(um.LoadValue(um.R2, 2500))
	s.Emit(um.Input(um.R3))

	s.Emit(um.Divide(um.R1, um.R2, um.R3))
	s.Emit(um.Output(um.R1))

	s.Emit(um.Halt())
}

func buildCondMoveTrue(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 1213))
	s.Emit(um.LoadValue(um.R2, 50))
	s.Emit(um.LoadValue(um.R3, 48))

	s.Emit(um.CondMove(um.R3, um.R2, um.R1))
	s.Emit(um.Output(um.R3))

	s.Emit(um.Halt())
}

func buildCondMoveFalse(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 0))
	s.Emit(um.LoadValue(um.R2, 50))
	s.Emit(um.LoadValue(um.R3, 48))

	s.Emit(um.CondMove(um.R3, um.R2, um.R1))
	s.Emit(um.Output(um.R3))

	s.Emit(um.Halt())
}

// Two all-ones words NANDed give zero.
func buildNANDAllOnes(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 0))
	s.Emit(um.LoadValue(um.R2, 0))
	s.Emit(um.LoadValue(um.R3, 50))
	s.Emit(um.LoadValue(um.R4, 432))

	s.Emit(um.NAND(um.R3, um.R1, um.R2))
	s.Emit(um.NAND(um.R4, um.R1, um.R2))
	s.Emit(um.NAND(um.R5, um.R3, um.R4))

	s.Emit(um.LoadValue(um.R2, 50))
	s.Emit(um.Add(um.R5, um.R5, um.R2))
	s.Emit(um.Output(um.R5))

	s.Emit(um.Halt())
}

// NAND of zeros is all ones, so adding 50 prints '1'.
func buildNANDZero(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 0))
	s.Emit(um.LoadValue(um.R2, 0))
	s.Emit(um.LoadValue(um.R3, 23))

	s.Emit(um.NAND(um.R3, um.R2, um.R1))

	s.Emit(um.LoadValue(um.R2, 50))
	s.Emit(um.Add(um.R3, um.R3, um.R2))
	s.Emit(um.Output(um.R3))

	s.Emit(um.Halt())
}

func buildMapSegmentEmpty(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 0))
	s.Emit(um.LoadValue(um.R2, 123))

	s.Emit(um.MapSegment(um.R2, um.R1))

	s.Emit(um.LoadValue(um.R3, 49))
	s.Emit(um.Add(um.R3, um.R3, um.R2))
	s.Emit(um.Output(um.R3))

	s.Emit(um.Halt())
}

func buildMapSegmentLarge(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 99999))
	s.Emit(um.LoadValue(um.R2, 123))

	s.Emit(um.MapSegment(um.R2, um.R1))

	s.Emit(um.LoadValue(um.R3, 49))
	s.Emit(um.Add(um.R3, um.R3, um.R2))
	s.Emit(um.Output(um.R3))

	s.Emit(um.Halt())
}

func buildMapSegmentMany(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 300))
	s.Emit(um.LoadValue(um.R2, 123))

	for i := 0; i < 100; i++ {
		s.Emit(um.MapSegment(um.R2, um.R1))
	}

	s.Emit(um.Output(um.R2))
	s.Emit(um.Halt())
}

func buildUnmapSegment(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 3))
	s.Emit(um.LoadValue(um.R2, 123))
	s.Emit(um.MapSegment(um.R2, um.R1))
	s.Emit(um.UnmapSegment(um.R2))

	s.Emit(um.MapSegment(um.R2, um.R1))

	s.Emit(um.LoadValue(um.R3, 49))
	s.Emit(um.Add(um.R3, um.R3, um.R2))
	s.Emit(um.Output(um.R3))

	s.Emit(um.Halt())
}

func buildUnmapSegmentMany(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 3))
	s.Emit(um.LoadValue(um.R2, 123))

	for i := 0; i < 200; i++ {
		s.Emit(um.MapSegment(um.R2, um.R1))
		s.Emit(um.UnmapSegment(um.R2))
	}

	s.Emit(um.MapSegment(um.R2, um.R1))

	s.Emit(um.LoadValue(um.R3, 49))
	s.Emit(um.Add(um.R3, um.R3, um.R2))
	s.Emit(um.Output(um.R3))

	s.Emit(um.Halt())
}

func buildUnmapSegmentAlternating(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 4))
	s.Emit(um.LoadValue(um.R2, 123))

	for i := 0; i < 100; i++ {
		s.Emit(um.MapSegment(um.R2, um.R1))
		s.Emit(um.MapSegment(um.R2, um.R1))
		s.Emit(um.UnmapSegment(um.R2))
	}

	s.Emit(um.MapSegment(um.R2, um.R1))
	s.Emit(um.Output(um.R2))

	s.Emit(um.Halt())
}

func buildSegmentedStore(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 10))
	s.Emit(um.LoadValue(um.R3, 5))

	s.Emit(um.MapSegment(um.R2, um.R1))

	s.Emit(um.LoadValue(um.R1, 50))
	s.Emit(um.SegmentedStore(um.R2, um.R3, um.R1))

	s.Emit(um.Halt())
}

func buildSegmentedLoad(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 10))
	s.Emit(um.LoadValue(um.R3, 5))

	s.Emit(um.MapSegment(um.R2, um.R1))

	s.Emit(um.LoadValue(um.R1, 50))

	// $m[r2][r3] := r1
	s.Emit(um.SegmentedStore(um.R2, um.R3, um.R1))
	// r6 := $m[r2][r3]
	s.Emit(um.SegmentedLoad(um.R6, um.R2, um.R3))

	s.Emit(um.Output(um.R6))
	s.Emit(um.Halt())
}

// Reads and patches segment 0 in place.
func buildSegmentedStoreLoad(s *um.Stream) {
	s.Emit(um.LoadValue(um.R1, 0))
	s.Emit(um.LoadValue(um.R3, 9))

	s.Emit(um.LoadValue(um.R6, 50))
	s.Emit(um.Output(um.R6))

	s.Emit(um.SegmentedLoad(um.R5, um.R1, um.R3))

	s.Emit(um.LoadValue(um.R4, 7))
	s.Emit(um.SegmentedStore(um.R1, um.R4, um.R5))

	s.Emit(um.LoadValue(um.R1, 51))
	s.Emit(um.Output(um.R6))

	s.Emit(um.Halt())
}

// Copies the last three instructions of this program into a new segment and
// jumps into it with load-program.
func buildLoadProgram(s *um.Stream) {
	// map a segment of size 10
	s.Emit(um.LoadValue(um.R1, 10))
	s.Emit(um.MapSegment(um.R2, um.R1))

	// index of the first instruction to copy
	s.Emit(um.LoadValue(um.R6, 21))
	// index in the new segment
	s.Emit(um.LoadValue(um.R5, 0))

	s.Emit(um.SegmentedLoad(um.R7, um.R5, um.R6))
	s.Emit(um.SegmentedStore(um.R2, um.R5, um.R7))

	s.Emit(um.LoadValue(um.R0, 1))
	s.Emit(um.Add(um.R3, um.R5, um.R0))
	s.Emit(um.Add(um.R6, um.R6, um.R0))

	s.Emit(um.SegmentedLoad(um.R7, um.R5, um.R6))
	s.Emit(um.SegmentedStore(um.R2, um.R3, um.R7))

	s.Emit(um.LoadValue(um.R0, 1))
	s.Emit(um.Add(um.R3, um.R3, um.R0))
	s.Emit(um.Add(um.R6, um.R6, um.R0))

	s.Emit(um.SegmentedLoad(um.R7, um.R5, um.R6))
	s.Emit(um.SegmentedStore(um.R2, um.R3, um.R7))

	s.Emit(um.LoadValue(um.R3, 0))
	s.Emit(um.LoadProgram(um.R2, um.R3))

	s.Emit(um.SegmentedStore(um.R2, um.R5, um.R7))

	s.Emit(um.LoadValue(um.R1, 55))
	s.Emit(um.Output(um.R1))

	s.Emit(um.LoadValue(um.R1, 50))
	s.Emit(um.Output(um.R1))
	s.Emit(um.Halt())
}

// Counts down from 50000 with load-program jumps until the counter reaches
// zero and the conditional move stops selecting the loop target.
func buildLoop(s *um.Stream) {
	// segment 0
	s.Emit(um.LoadValue(um.R1, 0))

	// r5 = all ones, i.e. -1
	s.Emit(um.NAND(um.R5, um.R1, um.R1))
	s.Emit(um.LoadValue(um.R0, 4))

	// counter
	s.Emit(um.LoadValue(um.R2, 50000))

	// loop target, instruction 4
	s.Emit(um.Add(um.R2, um.R2, um.R5))

	// padding
	for _, v := range []uint32{24553, 234, 2332, 32, 5, 3} {
		s.Emit(um.LoadValue(um.R7, v))
	}
	s.Emit(um.LoadValue(um.R7, 14))
	s.Emit(um.CondMove(um.R7, um.R0, um.R2))

	// jump back to instruction 4 while the counter is non-zero
	s.Emit(um.LoadProgram(um.R1, um.R7))

	s.Emit(um.Halt())
}
