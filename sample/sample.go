// SPDX-License-Identifier: EPL-2.0

package sample

import (
	"fmt"
	"math"
)

// Type is the set of numeric representations a Buffer can hold.
// Unsigned types are offset binary (half their range is silence), signed
// ones are two's complement, floats are nominally in [-1, 1].
type Type interface {
	uint8 | int8 | uint16 | int16 | uint32 | int32 | float32 | float64
}

// Kind tags a sample Type at run time.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindU8
	KindS8
	KindS16
	KindS32
	KindF32
	KindF64
	KindU16
	KindU32
)

func (k Kind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindS8:
		return "s8"
	case KindS16:
		return "s16"
	case KindS32:
		return "s32"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Bits returns the storage width of one sample.
func (k Kind) Bits() int {
	switch k {
	case KindU8, KindS8:
		return 8
	case KindS16, KindU16:
		return 16
	case KindS32, KindU32, KindF32:
		return 32
	case KindF64:
		return 64
	default:
		return 0
	}
}

// IsFloat reports whether k is a floating point kind.
func (k Kind) IsFloat() bool { return k == KindF32 || k == KindF64 }

// KindOf returns the tag of T.
func KindOf[T Type]() Kind {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return KindU8
	case int8:
		return KindS8
	case uint16:
		return KindU16
	case int16:
		return KindS16
	case uint32:
		return KindU32
	case int32:
		return KindS32
	case float32:
		return KindF32
	case float64:
		return KindF64
	}
	return KindInvalid
}

// Format describes how a decoder back-end delivers samples before they are
// converted to the caller's Type. Integer formats carry Bits significant
// bits, sign extended, in an int32.
type Format struct {
	Float bool
	Bits  int
}

var (
	S8  = Format{Bits: 8}
	S16 = Format{Bits: 16}
	S24 = Format{Bits: 24}
	S32 = Format{Bits: 32}
	F32 = Format{Float: true, Bits: 32}
)

func (f Format) String() string {
	if f.Float {
		return fmt.Sprintf("f%d", f.Bits)
	}
	return fmt.Sprintf("s%d", f.Bits)
}

// Valid reports whether f can be converted by this package.
func (f Format) Valid() bool {
	if f.Float {
		return f.Bits == 32
	}
	return f.Bits >= 1 && f.Bits <= 32
}

// scale holds the mapping between a Kind and the unit range.
type scale struct {
	float  bool
	offset float64
	factor float64
	min    float64
	max    float64
}

func scaleOf(k Kind) scale {
	switch k {
	case KindU8:
		return scale{offset: 128, factor: 128, min: 0, max: math.MaxUint8}
	case KindS8:
		return scale{factor: 128, min: math.MinInt8, max: math.MaxInt8}
	case KindU16:
		return scale{offset: 32768, factor: 32768, min: 0, max: math.MaxUint16}
	case KindS16:
		return scale{factor: 32768, min: math.MinInt16, max: math.MaxInt16}
	case KindU32:
		return scale{offset: 2147483648, factor: 2147483648, min: 0, max: math.MaxUint32}
	case KindS32:
		return scale{factor: 2147483648, min: math.MinInt32, max: math.MaxInt32}
	default:
		return scale{float: true, factor: 1}
	}
}

// toUnit maps a raw value to the unit range.
func (s scale) toUnit(v float64) float64 {
	if s.float {
		return v
	}
	return (v - s.offset) / s.factor
}

// fromUnit rounds half away from zero and clamps for integer kinds.
func (s scale) fromUnit(u float64) float64 {
	if s.float {
		return u
	}
	if math.IsNaN(u) {
		return s.offset
	}
	q := math.Round(u*s.factor) + s.offset
	if q < s.min {
		return s.min
	}
	if q > s.max {
		return s.max
	}
	return q
}
