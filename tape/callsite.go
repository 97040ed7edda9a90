package tape

import "encoding/binary"

// Kind distinguishes an event callsite from a span callsite.
type Kind uint8

const (
	KindEventCallsite Kind = 0
	KindSpanCallsite  Kind = 1
)

// Level is a tracing verbosity level, ordered from most to least
// verbose.
type Level uint8

const (
	LevelTrace Level = 0
	LevelDebug Level = 1
	LevelInfo  Level = 2
	LevelWarn  Level = 3
	LevelError Level = 4
)

// CallsiteInfo packs a callsite's Kind, hint flag, and Level into a
// single byte: level occupies bits 0-2, kind occupies bit 3, and the
// hint flag occupies bit 4.
type CallsiteInfo uint8

const (
	infoLevelMask = 0b0000_0111
	infoKindBit   = 0b0000_1000
	infoHintBit   = 0b0001_0000
)

// NewCallsiteInfo packs kind, hint, and level into a CallsiteInfo.
func NewCallsiteInfo(kind Kind, hint bool, level Level) CallsiteInfo {
	info := CallsiteInfo(level & infoLevelMask)
	if kind == KindSpanCallsite {
		info |= infoKindBit
	}
	if hint {
		info |= infoHintBit
	}
	return info
}

// Kind returns the packed Kind.
func (i CallsiteInfo) Kind() Kind {
	if i&infoKindBit != 0 {
		return KindSpanCallsite
	}
	return KindEventCallsite
}

// Hint returns the packed hint flag.
func (i CallsiteInfo) Hint() bool {
	return i&infoHintBit != 0
}

// Level returns the packed Level.
func (i CallsiteInfo) Level() Level {
	return Level(i & infoLevelMask)
}

// CallsiteRecordLen is the fixed size of a CALLSITE record, excluding
// the variable-length name/target/module_path/file tail.
const CallsiteRecordLen = RecordHeaderLen + 1 + 2 + 2 + 2 + 2 + 2 + 4 + 8

// CallsiteRecord is the fixed portion of a CALLSITE record. It is
// followed in the tape by Name, Target, ModulePath, and File, each of
// the declared length, in that order.
type CallsiteRecord struct {
	Info           CallsiteInfo
	FieldCount     uint16
	NameLen        uint16
	TargetLen      uint16
	ModulePathLen  uint16
	FileLen        uint16
	Line           uint32 // 0 means absent
	ID             CallsiteID
}

// Marshal encodes the fixed portion of the record, including its
// header, into buf. buf must be at least CallsiteRecordLen bytes.
func (r CallsiteRecord) Marshal(buf []byte, totalLen uint16) {
	_ = buf[:CallsiteRecordLen]
	PutRecordHeader(buf, KindCallsite, totalLen)
	buf[3] = uint8(r.Info)
	binary.LittleEndian.PutUint16(buf[4:6], r.FieldCount)
	binary.LittleEndian.PutUint16(buf[6:8], r.NameLen)
	binary.LittleEndian.PutUint16(buf[8:10], r.TargetLen)
	binary.LittleEndian.PutUint16(buf[10:12], r.ModulePathLen)
	binary.LittleEndian.PutUint16(buf[12:14], r.FileLen)
	binary.LittleEndian.PutUint32(buf[14:18], r.Line)
	binary.LittleEndian.PutUint64(buf[18:26], uint64(r.ID))
}

// ParseCallsiteRecord decodes the fixed portion of a CALLSITE record
// from buf, which must start just past the record header.
func ParseCallsiteRecord(buf []byte) CallsiteRecord {
	_ = buf[:CallsiteRecordLen-RecordHeaderLen]
	return CallsiteRecord{
		Info:          CallsiteInfo(buf[0]),
		FieldCount:    binary.LittleEndian.Uint16(buf[1:3]),
		NameLen:       binary.LittleEndian.Uint16(buf[3:5]),
		TargetLen:     binary.LittleEndian.Uint16(buf[5:7]),
		ModulePathLen: binary.LittleEndian.Uint16(buf[7:9]),
		FileLen:       binary.LittleEndian.Uint16(buf[9:11]),
		Line:          binary.LittleEndian.Uint32(buf[11:15]),
		ID:            CallsiteID(binary.LittleEndian.Uint64(buf[15:23])),
	}
}

// CallsiteFieldRecordLen is the fixed size of a CALLSITE_FIELD record,
// excluding the variable-length field name tail.
const CallsiteFieldRecordLen = RecordHeaderLen + 2 + 8 + 8

// CallsiteFieldRecord describes one field of a previously announced
// callsite. It is followed in the tape by the field name, FieldNameLen
// bytes long.
type CallsiteFieldRecord struct {
	FieldNameLen uint16
	CallsiteID   CallsiteID
	FieldID      FieldID
}

// Marshal encodes the record, including its header, into buf. buf
// must be at least CallsiteFieldRecordLen bytes.
func (r CallsiteFieldRecord) Marshal(buf []byte, totalLen uint16) {
	_ = buf[:CallsiteFieldRecordLen]
	PutRecordHeader(buf, KindCallsiteField, totalLen)
	binary.LittleEndian.PutUint16(buf[3:5], r.FieldNameLen)
	binary.LittleEndian.PutUint64(buf[5:13], uint64(r.CallsiteID))
	binary.LittleEndian.PutUint64(buf[13:21], uint64(r.FieldID))
}

// ParseCallsiteFieldRecord decodes the fixed portion of a
// CALLSITE_FIELD record from buf, which must start just past the
// record header.
func ParseCallsiteFieldRecord(buf []byte) CallsiteFieldRecord {
	_ = buf[:CallsiteFieldRecordLen-RecordHeaderLen]
	return CallsiteFieldRecord{
		FieldNameLen: binary.LittleEndian.Uint16(buf[0:2]),
		CallsiteID:   CallsiteID(binary.LittleEndian.Uint64(buf[2:10])),
		FieldID:      FieldID(binary.LittleEndian.Uint64(buf[10:18])),
	}
}
