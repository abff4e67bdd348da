package assembler

import (
	"errors"
	"strings"
	"testing"

	"github.com/akhildatla/umlab/pkg/bitpack"
	"github.com/akhildatla/umlab/pkg/um"
	"github.com/google/go-cmp/cmp"
)

func encoded(t *testing.T) func(um.Instruction, error) um.Instruction {
	return func(inst um.Instruction, err error) um.Instruction {
		t.Helper()
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		return inst
	}
}

func TestAssemble_AllMnemonics(t *testing.T) {
	src := `
; every operation once
cmov   r3, r2, r1
sload  r6, r2, r3
sstore r2, r3, r1
add    r1, r2, r3
mul    r1, r2, r3
div    r1, r2, r3
nand   r5, r1, r1
halt
map    r2, r1
unmap  r2
out    r1
in     r5
loadp  r2, r3
lv     r1, 'B'
LV     R7, 0x1ffffff
`
	s, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	must := encoded(t)
	want := []um.Instruction{
		must(um.CondMove(um.R3, um.R2, um.R1)),
		must(um.SegmentedLoad(um.R6, um.R2, um.R3)),
		must(um.SegmentedStore(um.R2, um.R3, um.R1)),
		must(um.Add(um.R1, um.R2, um.R3)),
		must(um.Multiply(um.R1, um.R2, um.R3)),
		must(um.Divide(um.R1, um.R2, um.R3)),
		must(um.NAND(um.R5, um.R1, um.R1)),
		must(um.Halt()),
		must(um.MapSegment(um.R2, um.R1)),
		must(um.UnmapSegment(um.R2)),
		must(um.Output(um.R1)),
		must(um.Input(um.R5)),
		must(um.LoadProgram(um.R2, um.R3)),
		must(um.LoadValue(um.R1, 'B')),
		must(um.LoadValue(um.R7, um.MaxValue)),
	}
	if diff := cmp.Diff(want, s.Words()); diff != "" {
		t.Errorf("assembled program mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_Repeat(t *testing.T) {
	src := `lv r1, 4
.rept 100
map r2, r1
map r2, r1
unmap r2
.endr
.rept 0
halt
.endr
out r2
halt
`
	s, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if s.Len() != 1+300+2 {
		t.Fatalf("expected 303 instructions, got %d", s.Len())
	}
	if s.At(1).Opcode() != um.OpMap || s.At(3).Opcode() != um.OpUnmap || s.At(300).Opcode() != um.OpUnmap {
		t.Error("repeat body out of order")
	}
	if s.At(301).Opcode() != um.OpOut || s.At(302).Opcode() != um.OpHalt {
		t.Error("instructions after the blocks are misplaced")
	}
}

func TestAssemble_RangeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  string
	}{
		{"register", "halt\nadd r1, r8, r3\n", "line 2:"},
		{"value", "lv r1, 33554432\n", "line 1:"},
		{"value past uint32", "lv r1, 0x100000000\n", "line 1:"},
		{"lv register", "lv r9, 1\n", "line 1:"},
		{"register past a byte", "add r256, r0, r0\n", "line 1:"},
		{"output register past a byte", "halt\nout r300\n", "line 2:"},
		{"register past uint64", "in r99999999999999999999\n", "line 1:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(tt.input)
			if !errors.Is(err, bitpack.ErrRange) {
				t.Fatalf("expected ErrRange, got %v", err)
			}
			if !strings.HasPrefix(err.Error(), tt.line) {
				t.Errorf("expected error to start with %q, got %q", tt.line, err.Error())
			}
		})
	}
}

func TestAssemble_OperandErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"jmp r1\n", "unknown opcode: jmp"},
		{"halt r1\n", "halt expects 0 register operands, got 1"},
		{"add r1, r2\n", "add expects 3 register operands, got 2"},
		{"out 5\n", "out: operand 1 must be a register"},
		{"lv r1\n", "lv expects a register and a value"},
		{"lv 1, 2\n", "first operand must be a register"},
		{"lv r1, r2\n", "second operand must be a value"},
		{"map r1\n", "map expects 2 register operands, got 1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Assemble(tt.input)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestAssembleInto_NothingAppendedOnError(t *testing.T) {
	s := um.NewStream()
	s.Emit(um.Halt())

	if err := AssembleInto(s, "out r1\nout r8\n"); err == nil {
		t.Fatal("expected error")
	}
	if s.Len() != 1 {
		t.Errorf("stream should be untouched, has %d instructions", s.Len())
	}
}

func TestAssemble_TooLarge(t *testing.T) {
	_, err := Assemble(".rept 0x1000000\nhalt\nhalt\n.endr\n")
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestAssemble_DisassemblyRoundTrip(t *testing.T) {
	orig, err := Assemble("lv r1, 'B'\nout r1\nlv r2, 1213\nmap r2, r1\nsstore r2, r3, r1\nhalt\n")
	if err != nil {
		t.Fatal(err)
	}

	var listing strings.Builder
	for _, inst := range orig.All() {
		listing.WriteString(inst.String())
		listing.WriteString("\n")
	}

	again, err := Assemble(listing.String())
	if err != nil {
		t.Fatalf("re-assembling %q failed: %v", listing.String(), err)
	}
	if diff := cmp.Diff(orig.Words(), again.Words()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_Empty(t *testing.T) {
	s, err := Assemble("; nothing here\n\n")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty stream, got %d", s.Len())
	}
}
