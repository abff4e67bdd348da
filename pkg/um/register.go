package um

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/akhildatla/umlab/pkg/bitpack"
)

// NumRegisters is the number of general purpose registers.
const NumRegisters = 8

// Register identifies one of the eight machine registers. Values above R7 can
// be constructed but are rejected by every encoder.
type Register uint8

const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
)

func (r Register) String() string {
	return "r" + strconv.Itoa(int(r))
}

// ParseRegister parses a register name such as "r3" or "R3". Numbers from 8
// to 255 parse and are left for the encoders to reject; larger ones fail here
// with a bitpack range error.
func ParseRegister(s string) (Register, error) {
	if len(s) < 2 || (s[0] != 'r' && s[0] != 'R') {
		return 0, fmt.Errorf("invalid register: %s", s)
	}
	num, err := strconv.ParseUint(s[1:], 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("invalid register number: %s", s)
	}
	if err != nil || num > math.MaxUint8 {
		return 0, fmt.Errorf("register %s: %w", s,
			&bitpack.FieldError{Width: FieldC.Width, LSB: FieldC.LSB, Value: num})
	}
	return Register(num), nil
}
