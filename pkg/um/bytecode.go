package um

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/akhildatla/umlab/pkg/bitpack"
)

// Program file format:
// - no header, no trailer, no length prefix
// - each instruction is 4 bytes, most significant byte first

// WordBytes is the size of one instruction in a program file.
const WordBytes = 4

var (
	ErrWrite     = errors.New("writing program")
	ErrTruncated = errors.New("program length is not a multiple of 4 bytes")
)

// byteLanes lists the bytes of a word in file order.
var byteLanes = [WordBytes]bitpack.Field{
	{Width: 8, LSB: 24},
	{Width: 8, LSB: 16},
	{Width: 8, LSB: 8},
	{Width: 8, LSB: 0},
}

// WriteProgram writes every instruction of s to w, big-endian, in stream
// order. Each word is handed to w in a single Write call. A stream holding an
// encoding error is refused before anything is written. On a failed write the
// bytes already written stay in w.
func WriteProgram(w io.Writer, s *Stream) error {
	if err := s.Err(); err != nil {
		return fmt.Errorf("refusing to write program: %w", err)
	}

	var buf [WordBytes]byte
	for i, inst := range s.All() {
		for k, lane := range byteLanes {
			b, err := lane.Get(uint32(inst))
			if err != nil {
				return err
			}
			buf[k] = byte(b)
		}

		n, err := w.Write(buf[:])
		if err == nil && n != len(buf) {
			err = io.ErrShortWrite
		}
		if err != nil {
			return fmt.Errorf("%w: word %d: %w", ErrWrite, i, err)
		}
	}
	return nil
}

// MarshalProgram returns the program file contents for s.
func MarshalProgram(s *Stream) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(s.Len() * WordBytes)
	if err := WriteProgram(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadProgram reads a program file back into a stream.
func ReadProgram(r io.Reader) (*Stream, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	return UnmarshalProgram(data)
}

// UnmarshalProgram decodes program file contents.
func UnmarshalProgram(data []byte) (*Stream, error) {
	if len(data)%WordBytes != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}

	s := &Stream{code: make([]Instruction, 0, len(data)/WordBytes)}
	for off := 0; off < len(data); off += WordBytes {
		var word uint32
		for k, lane := range byteLanes {
			var err error
			word, err = lane.Put(word, uint64(data[off+k]))
			if err != nil {
				return nil, err
			}
		}
		s.Append(Instruction(word))
	}
	return s, nil
}

// Disassemble renders s as a numbered listing, one instruction per line.
func Disassemble(s *Stream) string {
	var buf bytes.Buffer

	buf.WriteString("; Disassembled from UM program\n")
	buf.WriteString(fmt.Sprintf("; %d instructions, %d bytes\n\n", s.Len(), s.Len()*WordBytes))

	for i, inst := range s.All() {
		buf.WriteString(fmt.Sprintf("%04d: %08x  %s\n", i, uint32(inst), disassembleInstruction(inst)))
	}

	return buf.String()
}

// A word with bits set outside its opcode's operands lists as .word, so the
// listing never hides bits the mnemonic form would drop.
func disassembleInstruction(inst Instruction) string {
	op := inst.Opcode()
	opName := op.String()

	if op.Valid() && uint32(inst)&^operandBits(op) != 0 {
		return fmt.Sprintf(".word  0x%08x", uint32(inst))
	}

	switch op {
	case OpHalt:
		return opName

	case OpCMov, OpSLoad, OpSStore, OpAdd, OpMul, OpDiv, OpNAND:
		return fmt.Sprintf("%-6s %s, %s, %s", opName, inst.A(), inst.B(), inst.C())

	case OpMap, OpLoadP:
		return fmt.Sprintf("%-6s %s, %s", opName, inst.B(), inst.C())

	case OpUnmap, OpOut, OpIn:
		return fmt.Sprintf("%-6s %s", opName, inst.C())

	case OpLV:
		v := inst.Value()
		if v >= 0x20 && v < 0x7f && v != '\'' && v != '\\' {
			return fmt.Sprintf("%-6s %s, %d ; '%c'", opName, inst.LoadRegister(), v, rune(v))
		}
		return fmt.Sprintf("%-6s %s, %d", opName, inst.LoadRegister(), v)

	default:
		return fmt.Sprintf(".word  0x%08x", uint32(inst))
	}
}

// operandBits returns the bits a valid opcode's mnemonic form can carry.
func operandBits(op Opcode) uint32 {
	mask := fieldMask(FieldOpcode)
	switch op {
	case OpHalt:
	case OpMap, OpLoadP:
		mask |= fieldMask(FieldB) | fieldMask(FieldC)
	case OpUnmap, OpOut, OpIn:
		mask |= fieldMask(FieldC)
	case OpLV:
		mask |= fieldMask(FieldLoadReg) | fieldMask(FieldValue)
	default:
		mask |= fieldMask(FieldA) | fieldMask(FieldB) | fieldMask(FieldC)
	}
	return mask
}

func fieldMask(f bitpack.Field) uint32 {
	return uint32(f.Max()) << f.LSB
}
