package tapeparser

import (
	"encoding/binary"
	"math"

	"go.uber.org/zap"

	"github.com/abrander/tracetape/tape"
)

// decodeValue decodes payload, a value's raw trailing bytes, according
// to kind. A payload shorter than kind requires decodes to the zero
// value for that kind rather than panicking, since a truncated tape
// must still parse as far as it can. An unrecognized kind is dropped
// entirely: decodeValue logs a warning and returns ok == false, and
// the caller must not append the zero Value it also returns.
func decodeValue(logger *zap.SugaredLogger, kind tape.ValueKind, fieldIndex int, payload []byte) (v Value, ok bool) {
	v = Value{FieldIndex: fieldIndex, Kind: kind}
	switch kind {
	case tape.ValueBool:
		if len(payload) >= 1 {
			v.Bool = payload[0] != 0
		}
	case tape.ValueI64:
		if len(payload) >= 8 {
			v.I64 = int64(binary.LittleEndian.Uint64(payload))
		}
	case tape.ValueU64:
		if len(payload) >= 8 {
			v.U64 = binary.LittleEndian.Uint64(payload)
		}
	case tape.ValueI128:
		if len(payload) >= 16 {
			v.I128 = tape.Int128{
				Lo: binary.LittleEndian.Uint64(payload[0:8]),
				Hi: int64(binary.LittleEndian.Uint64(payload[8:16])),
			}
		}
	case tape.ValueU128:
		if len(payload) >= 16 {
			v.U128 = tape.Uint128{
				Lo: binary.LittleEndian.Uint64(payload[0:8]),
				Hi: binary.LittleEndian.Uint64(payload[8:16]),
			}
		}
	case tape.ValueF64:
		if len(payload) >= 8 {
			v.F64 = math.Float64frombits(binary.LittleEndian.Uint64(payload))
		}
	case tape.ValueStr:
		v.Str = string(payload)
	case tape.ValueError:
		v.Err = string(payload)
	default:
		logger.Warnw("unknown value kind, dropping value", "kind", kind, "field", fieldIndex)
		return Value{}, false
	}
	return v, true
}
