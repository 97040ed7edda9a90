package tape

import "encoding/binary"

// RecordHeaderLen is the fixed, unaligned size of a record header:
// one kind byte followed by a little-endian u16 length.
const RecordHeaderLen = 3

// Record kinds. NOOP is zero so a zero-filled chapter tail parses as
// padding.
const (
	KindNoop          uint8 = 0x00
	KindThreadName    uint8 = 0x01
	KindCallsite      uint8 = 0x08
	KindCallsiteField uint8 = 0x09
	KindEvent         uint8 = 0x10
	KindEventValue    uint8 = 0x11
	KindSpanOpen      uint8 = 0x20
	KindSpanEnter     uint8 = 0x21
	KindSpanExit      uint8 = 0x22
	KindSpanClose     uint8 = 0x23
	KindSpanValue     uint8 = 0x24
	KindSpanFollows   uint8 = 0x25
)

// RecordHeader is the 3-byte header prefixing every record. Len is
// the total size of the record, header included.
type RecordHeader struct {
	Kind uint8
	Len  uint16
}

// PutRecordHeader writes a record header into the first
// RecordHeaderLen bytes of buf.
func PutRecordHeader(buf []byte, kind uint8, length uint16) {
	_ = buf[:RecordHeaderLen]
	buf[0] = kind
	binary.LittleEndian.PutUint16(buf[1:3], length)
}

// ParseRecordHeader decodes a record header from the first
// RecordHeaderLen bytes of buf.
func ParseRecordHeader(buf []byte) RecordHeader {
	_ = buf[:RecordHeaderLen]
	return RecordHeader{
		Kind: buf[0],
		Len:  binary.LittleEndian.Uint16(buf[1:3]),
	}
}

// ValueKind tags the wire representation of a Value.
type ValueKind uint8

const (
	ValueBool  ValueKind = 0
	ValueI64   ValueKind = 1
	ValueU64   ValueKind = 2
	ValueI128  ValueKind = 3
	ValueU128  ValueKind = 4
	ValueF64   ValueKind = 5
	ValueStr   ValueKind = 6
	ValueError ValueKind = 7
)
