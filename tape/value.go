package tape

import (
	"encoding/binary"
	"math"
)

// Int128 is a 128-bit signed integer stored as two 64-bit halves,
// since Go has no native 128-bit integer type. Hi carries the sign.
type Int128 struct {
	Lo uint64
	Hi int64
}

// Uint128 is a 128-bit unsigned integer stored as two 64-bit halves.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

// ValueLen returns the number of trailing payload bytes a value of
// the given kind occupies, or -1 for ValueStr/ValueError, whose
// length is determined by the record's header.Len instead.
func ValueLen(kind ValueKind) int {
	switch kind {
	case ValueBool:
		return 1
	case ValueI64, ValueU64:
		return 8
	case ValueI128, ValueU128:
		return 16
	case ValueF64:
		return 8
	default:
		return -1
	}
}

// PutBool writes the wire encoding of v into the start of buf.
func PutBool(buf []byte, v bool) {
	if v {
		buf[0] = 1
	} else {
		buf[0] = 0
	}
}

// PutI64 writes the little-endian wire encoding of v into the start of buf.
func PutI64(buf []byte, v int64) { binary.LittleEndian.PutUint64(buf, uint64(v)) }

// PutU64 writes the little-endian wire encoding of v into the start of buf.
func PutU64(buf []byte, v uint64) { binary.LittleEndian.PutUint64(buf, v) }

// PutI128 writes the little-endian wire encoding of v into the start of buf.
func PutI128(buf []byte, v Int128) {
	binary.LittleEndian.PutUint64(buf[0:8], v.Lo)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(v.Hi))
}

// PutU128 writes the little-endian wire encoding of v into the start of buf.
func PutU128(buf []byte, v Uint128) {
	binary.LittleEndian.PutUint64(buf[0:8], v.Lo)
	binary.LittleEndian.PutUint64(buf[8:16], v.Hi)
}

// PutF64 writes the little-endian wire encoding of v into the start of buf.
func PutF64(buf []byte, v float64) {
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
}
