// Package bitpack packs unsigned values into, and extracts them from, bit fields
// of a 32-bit word.
//
// A field is described by its width in bits and the offset of its least
// significant bit. Every function here checks that geometry and that the value
// fits; nothing is ever silently truncated.
package bitpack

import (
	"errors"
	"fmt"
)

// WordWidth is the number of bits in a word.
const WordWidth = 32

// ErrRange is matched by every error this package returns.
var ErrRange = errors.New("bit field out of range")

// FieldError describes a value or a field geometry that does not fit a word.
type FieldError struct {
	Width uint
	LSB   uint
	Value uint64
	// Geometry is set when the field itself is illegal, in which case Value is
	// not meaningful.
	Geometry bool
}

func (e *FieldError) Error() string {
	if e.Geometry {
		return fmt.Sprintf("bitpack: field of width %d at lsb %d does not fit a %d-bit word",
			e.Width, e.LSB, WordWidth)
	}
	return fmt.Sprintf("bitpack: value %d does not fit in %d unsigned bits", e.Value, e.Width)
}

func (e *FieldError) Unwrap() error { return ErrRange }

// Fitsu reports whether value can be represented in width unsigned bits.
func Fitsu(value uint64, width uint) bool {
	if width >= 64 {
		return true
	}
	return value>>width == 0
}

func checkField(width, lsb uint) error {
	if width == 0 || width > WordWidth || lsb+width > WordWidth {
		return &FieldError{Width: width, LSB: lsb, Geometry: true}
	}
	return nil
}

func mask(width, lsb uint) uint32 {
	return uint32((uint64(1)<<width - 1) << lsb)
}

// Newu returns word with bits [lsb, lsb+width) replaced by value.
func Newu(word uint32, width, lsb uint, value uint64) (uint32, error) {
	if err := checkField(width, lsb); err != nil {
		return word, err
	}
	if !Fitsu(value, width) {
		return word, &FieldError{Width: width, LSB: lsb, Value: value}
	}
	return word&^mask(width, lsb) | uint32(value)<<lsb, nil
}

// Getu extracts bits [lsb, lsb+width) of word.
func Getu(word uint32, width, lsb uint) (uint32, error) {
	if err := checkField(width, lsb); err != nil {
		return 0, err
	}
	return (word & mask(width, lsb)) >> lsb, nil
}

// Field is a fixed bit field within a word.
type Field struct {
	Width uint
	LSB   uint
}

// Put stores value in the field of word.
func (f Field) Put(word uint32, value uint64) (uint32, error) {
	return Newu(word, f.Width, f.LSB, value)
}

// Get extracts the field from word.
func (f Field) Get(word uint32) (uint32, error) {
	return Getu(word, f.Width, f.LSB)
}

// Max returns the largest value the field can hold.
func (f Field) Max() uint64 {
	return uint64(1)<<f.Width - 1
}

// Valid reports whether the field lies inside a word.
func (f Field) Valid() bool {
	return checkField(f.Width, f.LSB) == nil
}

// Overlaps reports whether f and g share any bit.
func (f Field) Overlaps(g Field) bool {
	return f.LSB < g.LSB+g.Width && g.LSB < f.LSB+f.Width
}

func (f Field) String() string {
	return fmt.Sprintf("[%d:%d]", f.LSB+f.Width-1, f.LSB)
}
