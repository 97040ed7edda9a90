package taperecorder

import "github.com/abrander/tracetape/tape"

// Value is one field value attached to an event or span. Exactly one
// of the typed fields is meaningful, selected by Kind.
type Value struct {
	FieldName string
	Kind      tape.ValueKind

	Bool bool
	I64  int64
	U64  uint64
	I128 tape.Int128
	U128 tape.Uint128
	F64  float64
	Str  string
	Err  string
}

// BoolValue builds a boolean field value.
func BoolValue(fieldName string, v bool) Value {
	return Value{FieldName: fieldName, Kind: tape.ValueBool, Bool: v}
}

// I64Value builds a signed 64-bit field value.
func I64Value(fieldName string, v int64) Value {
	return Value{FieldName: fieldName, Kind: tape.ValueI64, I64: v}
}

// U64Value builds an unsigned 64-bit field value.
func U64Value(fieldName string, v uint64) Value {
	return Value{FieldName: fieldName, Kind: tape.ValueU64, U64: v}
}

// I128Value builds a signed 128-bit field value.
func I128Value(fieldName string, v tape.Int128) Value {
	return Value{FieldName: fieldName, Kind: tape.ValueI128, I128: v}
}

// U128Value builds an unsigned 128-bit field value.
func U128Value(fieldName string, v tape.Uint128) Value {
	return Value{FieldName: fieldName, Kind: tape.ValueU128, U128: v}
}

// F64Value builds a 64-bit float field value.
func F64Value(fieldName string, v float64) Value {
	return Value{FieldName: fieldName, Kind: tape.ValueF64, F64: v}
}

// StrValue builds a UTF-8 string field value.
func StrValue(fieldName string, v string) Value {
	return Value{FieldName: fieldName, Kind: tape.ValueStr, Str: v}
}

// ErrValue builds a field value holding a formatted error message,
// recorded as text rather than as a structured type.
func ErrValue(fieldName string, v string) Value {
	return Value{FieldName: fieldName, Kind: tape.ValueError, Err: v}
}

// payload returns the value's wire-format payload bytes, excluding any
// record header.
func (v Value) payload() []byte {
	switch v.Kind {
	case tape.ValueBool:
		buf := make([]byte, 1)
		tape.PutBool(buf, v.Bool)
		return buf
	case tape.ValueI64:
		buf := make([]byte, 8)
		tape.PutI64(buf, v.I64)
		return buf
	case tape.ValueU64:
		buf := make([]byte, 8)
		tape.PutU64(buf, v.U64)
		return buf
	case tape.ValueI128:
		buf := make([]byte, 16)
		tape.PutI128(buf, v.I128)
		return buf
	case tape.ValueU128:
		buf := make([]byte, 16)
		tape.PutU128(buf, v.U128)
		return buf
	case tape.ValueF64:
		buf := make([]byte, 8)
		tape.PutF64(buf, v.F64)
		return buf
	case tape.ValueStr:
		return []byte(v.Str)
	case tape.ValueError:
		return []byte(v.Err)
	default:
		return nil
	}
}

func (r *Recorder) writeEventValue(callsite tape.CallsiteID, thread tape.ThreadID, v Value) error {
	payload := v.payload()
	rec := tape.EventValueRecord{Kind: v.Kind, FieldID: r.FieldID(callsite, v.FieldName), ThreadID: thread}
	size := tape.EventValueRecordLen + len(payload)
	return r.w.Write(size, func(buf []byte) {
		rec.Marshal(buf, uint16(size))
		copy(buf[tape.EventValueRecordLen:], payload)
	})
}

func (r *Recorder) writeSpanValue(callsite tape.CallsiteID, id tape.SpanID, v Value) error {
	payload := v.payload()
	rec := tape.SpanValueRecord{Kind: v.Kind, FieldID: r.FieldID(callsite, v.FieldName), SpanID: id}
	size := tape.SpanValueRecordLen + len(payload)
	return r.w.Write(size, func(buf []byte) {
		rec.Marshal(buf, uint16(size))
		copy(buf[tape.SpanValueRecordLen:], payload)
	})
}
