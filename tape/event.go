package tape

import "encoding/binary"

// EventRecordLen is the fixed size of an EVENT record header.
const EventRecordLen = RecordHeaderLen + 2 + 8 + 8 + 8

// EventRecord is an event header. It is followed in the tape by
// ValueCount EVENT_VALUE records sharing ThreadID.
type EventRecord struct {
	ValueCount uint16
	Timestamp  int64
	CallsiteID CallsiteID
	ThreadID   ThreadID
}

// Marshal encodes the record, including its header, into buf. buf
// must be at least EventRecordLen bytes.
func (r EventRecord) Marshal(buf []byte) {
	_ = buf[:EventRecordLen]
	PutRecordHeader(buf, KindEvent, EventRecordLen)
	binary.LittleEndian.PutUint16(buf[3:5], r.ValueCount)
	binary.LittleEndian.PutUint64(buf[5:13], uint64(r.Timestamp))
	binary.LittleEndian.PutUint64(buf[13:21], uint64(r.CallsiteID))
	binary.LittleEndian.PutUint64(buf[21:29], uint64(r.ThreadID))
}

// ParseEventRecord decodes an EVENT record from buf, which must start
// just past the record header.
func ParseEventRecord(buf []byte) EventRecord {
	_ = buf[:EventRecordLen-RecordHeaderLen]
	return EventRecord{
		ValueCount: binary.LittleEndian.Uint16(buf[0:2]),
		Timestamp:  int64(binary.LittleEndian.Uint64(buf[2:10])),
		CallsiteID: CallsiteID(binary.LittleEndian.Uint64(buf[10:18])),
		ThreadID:   ThreadID(binary.LittleEndian.Uint64(buf[18:26])),
	}
}

// EventValueRecordLen is the fixed size of an EVENT_VALUE record,
// excluding the variable-length value payload.
const EventValueRecordLen = RecordHeaderLen + 1 + 8 + 8

// EventValueRecord carries one value for the most recently opened,
// not-yet-complete event on ThreadID. It is followed in the tape by
// the raw value payload, whose length is Header.Len - EventValueRecordLen.
type EventValueRecord struct {
	Kind     ValueKind
	FieldID  FieldID
	ThreadID ThreadID
}

// Marshal encodes the record, including its header, into buf. buf
// must be at least EventValueRecordLen bytes.
func (r EventValueRecord) Marshal(buf []byte, totalLen uint16) {
	_ = buf[:EventValueRecordLen]
	PutRecordHeader(buf, KindEventValue, totalLen)
	buf[3] = uint8(r.Kind)
	binary.LittleEndian.PutUint64(buf[4:12], uint64(r.FieldID))
	binary.LittleEndian.PutUint64(buf[12:20], uint64(r.ThreadID))
}

// ParseEventValueRecord decodes an EVENT_VALUE record's fixed portion
// from buf, which must start just past the record header.
func ParseEventValueRecord(buf []byte) EventValueRecord {
	_ = buf[:EventValueRecordLen-RecordHeaderLen]
	return EventValueRecord{
		Kind:     ValueKind(buf[0]),
		FieldID:  FieldID(binary.LittleEndian.Uint64(buf[1:9])),
		ThreadID: ThreadID(binary.LittleEndian.Uint64(buf[9:17])),
	}
}
