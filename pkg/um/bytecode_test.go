package um

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/akhildatla/umlab/pkg/bitpack"
	"github.com/google/go-cmp/cmp"
)

// chunkWriter records each Write call separately.
type chunkWriter struct {
	chunks [][]byte
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	w.chunks = append(w.chunks, append([]byte(nil), p...))
	return len(p), nil
}

// failingWriter accepts limit writes and fails afterwards.
type failingWriter struct {
	bytes.Buffer
	limit int
	short bool
}

var errSinkFull = errors.New("sink full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.limit == 0 {
		if w.short {
			return w.Buffer.Write(p[:1])
		}
		return 0, errSinkFull
	}
	w.limit--
	return w.Buffer.Write(p)
}

func TestWriteProgram_ByteOrder(t *testing.T) {
	s := NewStream()
	s.Emit(LoadValue(R1, 'B'))
	s.Emit(Output(R1))

	data, err := MarshalProgram(s)
	if err != nil {
		t.Fatalf("MarshalProgram failed: %v", err)
	}

	expected := []byte{0xD2, 0x00, 0x00, 0x42, 0xA0, 0x00, 0x00, 0x01}
	if !bytes.Equal(data, expected) {
		t.Fatalf("expected % x, got % x", expected, data)
	}

	// Reassemble the first word most significant byte first.
	word := uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
	first := Instruction(word)
	if first.Opcode() != OpLV || first.LoadRegister() != R1 || first.Value() != 66 {
		t.Errorf("decoded %s, want lv r1, 66", first)
	}
}

func TestWriteProgram_OneWritePerWord(t *testing.T) {
	s := NewStream()
	s.Emit(Add(R1, R2, R3))
	s.Emit(Halt())

	var w chunkWriter
	if err := WriteProgram(&w, s); err != nil {
		t.Fatalf("WriteProgram failed: %v", err)
	}
	if len(w.chunks) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(w.chunks))
	}
	for i, c := range w.chunks {
		if len(c) != WordBytes {
			t.Errorf("write %d: expected %d bytes, got %d", i, WordBytes, len(c))
		}
	}
}

func TestWriteProgram_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteProgram(&buf, NewStream()); err != nil {
		t.Fatalf("WriteProgram failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected 0 bytes, got %d", buf.Len())
	}
}

func TestWriteProgram_LengthAndRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{1, 2, 7, 100, 4096} {
		s := NewStream()
		for i := 0; i < n; i++ {
			s.Append(Instruction(rng.Uint32()))
		}

		data, err := MarshalProgram(s)
		if err != nil {
			t.Fatalf("n=%d: MarshalProgram failed: %v", n, err)
		}
		if len(data) != 4*n {
			t.Errorf("n=%d: expected %d bytes, got %d", n, 4*n, len(data))
		}

		restored, err := ReadProgram(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("n=%d: ReadProgram failed: %v", n, err)
		}
		if diff := cmp.Diff(s.Words(), restored.Words()); diff != "" {
			t.Errorf("n=%d: round trip mismatch (-want +got):\n%s", n, diff)
		}
	}
}

func TestWriteProgram_SinkFailure(t *testing.T) {
	s := NewStream()
	for i := 0; i < 5; i++ {
		s.Emit(Halt())
	}

	w := &failingWriter{limit: 2}
	err := WriteProgram(w, s)
	if !errors.Is(err, ErrWrite) || !errors.Is(err, errSinkFull) {
		t.Fatalf("expected ErrWrite wrapping the sink error, got %v", err)
	}
	if !strings.Contains(err.Error(), "word 2") {
		t.Errorf("error should name the failing word: %v", err)
	}
	// Nothing is rolled back.
	if w.Len() != 8 {
		t.Errorf("expected 8 bytes left in sink, got %d", w.Len())
	}
}

func TestWriteProgram_ShortWrite(t *testing.T) {
	s := NewStream()
	s.Emit(Halt())

	err := WriteProgram(&failingWriter{short: true}, s)
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}
}

func TestWriteProgram_RefusesBrokenStream(t *testing.T) {
	s := NewStream()
	s.Emit(Halt())
	s.Emit(LoadValue(R1, MaxValue+1))

	var buf bytes.Buffer
	err := WriteProgram(&buf, s)
	if !errors.Is(err, bitpack.ErrRange) {
		t.Fatalf("expected ErrRange, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written, got %d bytes", buf.Len())
	}
}

func TestUnmarshalProgram_Truncated(t *testing.T) {
	_, err := UnmarshalProgram([]byte{0x70, 0, 0, 0, 0x70})
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}

func TestDisassemble(t *testing.T) {
	s := NewStream()
	s.Emit(LoadValue(R1, 'B'))
	s.Emit(LoadValue(R2, 1213))
	s.Emit(Output(R1))
	s.Emit(MapSegment(R2, R1))
	s.Emit(SegmentedLoad(R6, R2, R3))
	s.Emit(Halt())
	s.Append(0xE0000000)

	asm := Disassemble(s)

	tests := []string{
		"; 7 instructions, 28 bytes",
		"0000: d2000042  lv     r1, 66 ; 'B'",
		"0001: d40004bd  lv     r2, 1213\n",
		"0002: a0000001  out    r1",
		"0003: 80000011  map    r2, r1",
		"0004: 10000193  sload  r6, r2, r3",
		"0005: 70000000  halt",
		"0006: e0000000  .word  0xe0000000",
	}
	for _, want := range tests {
		if !strings.Contains(asm, want) {
			t.Errorf("disassembly missing %q:\n%s", want, asm)
		}
	}
}

func TestOpcode_StringRoundTrip(t *testing.T) {
	for op := Opcode(0); op < NumOpcodes; op++ {
		got, ok := OpcodeFromString(op.String())
		if !ok || got != op {
			t.Errorf("opcode %d: %q parsed back as %d (%v)", op, op.String(), got, ok)
		}
	}
	if _, ok := OpcodeFromString("jmp"); ok {
		t.Error("jmp is not an opcode")
	}
	if Opcode(14).String() != "UNKNOWN" || Opcode(14).Valid() {
		t.Error("opcode 14 must be undefined")
	}
}

func TestDisassemble_StrayBits(t *testing.T) {
	tests := []struct {
		word Instruction
		want string
	}{
		{0x70000000, "halt"},
		{0x700001FF, ".word  0x700001ff"},
		{0x30000053, "add    r1, r2, r3"},
		{0x30000253, ".word  0x30000253"},
		{0x3FFFFE00, ".word  0x3ffffe00"},
		{0x80000011, "map    r2, r1"},
		{0x80000051, ".word  0x80000051"},
		{0xC0000011, "loadp  r2, r1"},
		{0xC0000040, ".word  0xc0000040"},
		{0xA0000001, "out    r1"},
		{0xA0000009, ".word  0xa0000009"},
		{0x90000040, ".word  0x90000040"},
		{0xB0000100, ".word  0xb0000100"},
		{0xDFFFFFFF, "lv     r7, 33554431"},
	}
	for _, tt := range tests {
		if got := tt.word.String(); got != tt.want {
			t.Errorf("%08x: expected %q, got %q", uint32(tt.word), tt.want, got)
		}
	}
}

func TestParseRegister(t *testing.T) {
	tests := []struct {
		in      string
		want    Register
		wantErr bool
	}{
		{"r0", R0, false},
		{"R7", R7, false},
		{"r9", 9, false},
		{"x1", 0, true},
		{"r", 0, true},
		{"r300", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseRegister(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: unexpected error state %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestParseRegister_RangeErrors(t *testing.T) {
	for _, in := range []string{"r256", "r300", "R99999999999999999999"} {
		_, err := ParseRegister(in)
		if !errors.Is(err, bitpack.ErrRange) {
			t.Errorf("%s: expected ErrRange, got %v", in, err)
		}
	}

	_, err := ParseRegister("r-1")
	if err == nil || errors.Is(err, bitpack.ErrRange) {
		t.Errorf("r-1: expected a syntax error, got %v", err)
	}
}
