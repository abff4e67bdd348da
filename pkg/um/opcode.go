package um

// Opcode selects the operation of an instruction. The numeric values are the
// wire encoding and must not change.
type Opcode uint8

const (
	OpCMov   Opcode = 0  // if $r[C] != 0 then $r[A] := $r[B]
	OpSLoad  Opcode = 1  // $r[A] := $m[$r[B]][$r[C]]
	OpSStore Opcode = 2  // $m[$r[A]][$r[B]] := $r[C]
	OpAdd    Opcode = 3  // $r[A] := ($r[B] + $r[C]) mod 2^32
	OpMul    Opcode = 4  // $r[A] := ($r[B] * $r[C]) mod 2^32
	OpDiv    Opcode = 5  // $r[A] := $r[B] / $r[C]
	OpNAND   Opcode = 6  // $r[A] := ^($r[B] & $r[C])
	OpHalt   Opcode = 7  // stop
	OpMap    Opcode = 8  // new segment of $r[C] words, id in $r[B]
	OpUnmap  Opcode = 9  // segment $m[$r[C]] is unmapped
	OpOut    Opcode = 10 // $r[C] written to output
	OpIn     Opcode = 11 // $r[C] loaded from input, all ones on EOF
	OpLoadP  Opcode = 12 // $m[$r[B]] duplicated into $m[0], pc := $r[C]
	OpLV     Opcode = 13 // $r[A] := value (immediate-load format)

	// NumOpcodes is the number of defined opcodes. Values from NumOpcodes up to
	// 15 fit the opcode field but name no operation.
	NumOpcodes = 14
)

// Format identifies one of the two instruction layouts.
type Format uint8

const (
	FormatThreeRegister Format = iota
	FormatLoadValue
)

func (f Format) String() string {
	switch f {
	case FormatThreeRegister:
		return "three-register"
	case FormatLoadValue:
		return "load-value"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether o names a defined operation.
func (o Opcode) Valid() bool {
	return o < NumOpcodes
}

// Format returns the layout used by o.
func (o Opcode) Format() Format {
	if o == OpLV {
		return FormatLoadValue
	}
	return FormatThreeRegister
}

// String returns the assembler mnemonic of an opcode.
func (o Opcode) String() string {
	switch o {
	case OpCMov:
		return "cmov"
	case OpSLoad:
		return "sload"
	case OpSStore:
		return "sstore"
	case OpAdd:
		return "add"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpNAND:
		return "nand"
	case OpHalt:
		return "halt"
	case OpMap:
		return "map"
	case OpUnmap:
		return "unmap"
	case OpOut:
		return "out"
	case OpIn:
		return "in"
	case OpLoadP:
		return "loadp"
	case OpLV:
		return "lv"
	default:
		return "UNKNOWN"
	}
}

// OpcodeFromString returns the opcode for the given mnemonic.
func OpcodeFromString(s string) (Opcode, bool) {
	switch s {
	case "cmov":
		return OpCMov, true
	case "sload":
		return OpSLoad, true
	case "sstore":
		return OpSStore, true
	case "add":
		return OpAdd, true
	case "mul":
		return OpMul, true
	case "div":
		return OpDiv, true
	case "nand":
		return OpNAND, true
	case "halt":
		return OpHalt, true
	case "map":
		return OpMap, true
	case "unmap":
		return OpUnmap, true
	case "out":
		return OpOut, true
	case "in":
		return OpIn, true
	case "loadp":
		return OpLoadP, true
	case "lv":
		return OpLV, true
	default:
		return 0, false
	}
}
