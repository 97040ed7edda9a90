package tape

import "encoding/binary"

// ParentKind discriminates how a span's parent was determined at
// open time.
type ParentKind uint8

const (
	ParentRoot     ParentKind = 0
	ParentCurrent  ParentKind = 1
	ParentExplicit ParentKind = 2
)

// SpanOpenRecordLen is the size of the legacy SPAN_OPEN layout, which
// has no ParentKind byte. A record this length is always treated as
// ParentExplicit if ParentID != 0, else ParentRoot.
const SpanOpenRecordLen = RecordHeaderLen + 8 + 8 + 8 + 8

// SpanOpenRecordExtendedLen is the size of the extended SPAN_OPEN
// layout, which carries an explicit ParentKind byte. Writers always
// emit this layout; parsers must accept both.
const SpanOpenRecordExtendedLen = SpanOpenRecordLen + 1

// SpanOpenRecord is a span creation record.
type SpanOpenRecord struct {
	ID         SpanID
	ParentKind ParentKind
	ParentID   SpanID // meaningless when ParentKind == ParentRoot
	CallsiteID CallsiteID
	Timestamp  int64
}

// Marshal encodes the record using the extended layout, including its
// header, into buf. buf must be at least SpanOpenRecordExtendedLen
// bytes.
func (r SpanOpenRecord) Marshal(buf []byte) {
	_ = buf[:SpanOpenRecordExtendedLen]
	PutRecordHeader(buf, KindSpanOpen, SpanOpenRecordExtendedLen)
	binary.LittleEndian.PutUint64(buf[3:11], uint64(r.ID))
	binary.LittleEndian.PutUint64(buf[11:19], uint64(r.ParentID))
	binary.LittleEndian.PutUint64(buf[19:27], uint64(r.CallsiteID))
	binary.LittleEndian.PutUint64(buf[27:35], uint64(r.Timestamp))
	buf[35] = uint8(r.ParentKind)
}

// ParseSpanOpenRecord decodes a SPAN_OPEN record from buf, which must
// start just past the record header. recordLen is the record's
// declared length (header.Len), used to distinguish the legacy layout
// from the extended one.
func ParseSpanOpenRecord(buf []byte, recordLen uint16) SpanOpenRecord {
	_ = buf[:SpanOpenRecordLen-RecordHeaderLen]
	id := SpanID(binary.LittleEndian.Uint64(buf[0:8]))
	parentID := SpanID(binary.LittleEndian.Uint64(buf[8:16]))
	callsiteID := CallsiteID(binary.LittleEndian.Uint64(buf[16:24]))
	timestamp := int64(binary.LittleEndian.Uint64(buf[24:32]))

	var parentKind ParentKind
	if recordLen >= SpanOpenRecordExtendedLen {
		parentKind = ParentKind(buf[32])
	} else if parentID != 0 {
		parentKind = ParentExplicit
	} else {
		parentKind = ParentRoot
	}

	return SpanOpenRecord{
		ID:         id,
		ParentKind: parentKind,
		ParentID:   parentID,
		CallsiteID: callsiteID,
		Timestamp:  timestamp,
	}
}

// SpanEnterRecordLen is the fixed size of a SPAN_ENTER record.
const SpanEnterRecordLen = RecordHeaderLen + 8 + 8 + 8

// SpanEnterRecord records a thread entering a span.
type SpanEnterRecord struct {
	ID        SpanID
	Timestamp int64
	ThreadID  ThreadID
}

func (r SpanEnterRecord) Marshal(buf []byte) {
	_ = buf[:SpanEnterRecordLen]
	PutRecordHeader(buf, KindSpanEnter, SpanEnterRecordLen)
	binary.LittleEndian.PutUint64(buf[3:11], uint64(r.ID))
	binary.LittleEndian.PutUint64(buf[11:19], uint64(r.Timestamp))
	binary.LittleEndian.PutUint64(buf[19:27], uint64(r.ThreadID))
}

func ParseSpanEnterRecord(buf []byte) SpanEnterRecord {
	_ = buf[:SpanEnterRecordLen-RecordHeaderLen]
	return SpanEnterRecord{
		ID:        SpanID(binary.LittleEndian.Uint64(buf[0:8])),
		Timestamp: int64(binary.LittleEndian.Uint64(buf[8:16])),
		ThreadID:  ThreadID(binary.LittleEndian.Uint64(buf[16:24])),
	}
}

// SpanExitRecordLen is the fixed size of a SPAN_EXIT record.
const SpanExitRecordLen = RecordHeaderLen + 8 + 8

// SpanExitRecord records a thread exiting a span.
type SpanExitRecord struct {
	ID        SpanID
	Timestamp int64
}

func (r SpanExitRecord) Marshal(buf []byte) {
	_ = buf[:SpanExitRecordLen]
	PutRecordHeader(buf, KindSpanExit, SpanExitRecordLen)
	binary.LittleEndian.PutUint64(buf[3:11], uint64(r.ID))
	binary.LittleEndian.PutUint64(buf[11:19], uint64(r.Timestamp))
}

func ParseSpanExitRecord(buf []byte) SpanExitRecord {
	_ = buf[:SpanExitRecordLen-RecordHeaderLen]
	return SpanExitRecord{
		ID:        SpanID(binary.LittleEndian.Uint64(buf[0:8])),
		Timestamp: int64(binary.LittleEndian.Uint64(buf[8:16])),
	}
}

// SpanCloseRecordLen is the fixed size of a SPAN_CLOSE record.
const SpanCloseRecordLen = RecordHeaderLen + 8 + 8

// SpanCloseRecord records a span closing.
type SpanCloseRecord struct {
	ID        SpanID
	Timestamp int64
}

func (r SpanCloseRecord) Marshal(buf []byte) {
	_ = buf[:SpanCloseRecordLen]
	PutRecordHeader(buf, KindSpanClose, SpanCloseRecordLen)
	binary.LittleEndian.PutUint64(buf[3:11], uint64(r.ID))
	binary.LittleEndian.PutUint64(buf[11:19], uint64(r.Timestamp))
}

func ParseSpanCloseRecord(buf []byte) SpanCloseRecord {
	_ = buf[:SpanCloseRecordLen-RecordHeaderLen]
	return SpanCloseRecord{
		ID:        SpanID(binary.LittleEndian.Uint64(buf[0:8])),
		Timestamp: int64(binary.LittleEndian.Uint64(buf[8:16])),
	}
}

// SpanValueRecordLen is the fixed size of a SPAN_VALUE record,
// excluding the variable-length value payload.
const SpanValueRecordLen = RecordHeaderLen + 1 + 8 + 8

// SpanValueRecord carries one value attached to an open span.
type SpanValueRecord struct {
	Kind    ValueKind
	FieldID FieldID
	SpanID  SpanID
}

func (r SpanValueRecord) Marshal(buf []byte, totalLen uint16) {
	_ = buf[:SpanValueRecordLen]
	PutRecordHeader(buf, KindSpanValue, totalLen)
	buf[3] = uint8(r.Kind)
	binary.LittleEndian.PutUint64(buf[4:12], uint64(r.FieldID))
	binary.LittleEndian.PutUint64(buf[12:20], uint64(r.SpanID))
}

func ParseSpanValueRecord(buf []byte) SpanValueRecord {
	_ = buf[:SpanValueRecordLen-RecordHeaderLen]
	return SpanValueRecord{
		Kind:    ValueKind(buf[0]),
		FieldID: FieldID(binary.LittleEndian.Uint64(buf[1:9])),
		SpanID:  SpanID(binary.LittleEndian.Uint64(buf[9:17])),
	}
}

// SpanFollowsRecordLen is the fixed size of a SPAN_FOLLOWS record.
const SpanFollowsRecordLen = RecordHeaderLen + 8 + 8

// SpanFollowsRecord records a causal "follows-from" edge between two
// spans that are not strictly nested.
type SpanFollowsRecord struct {
	SpanID    SpanID
	FollowsID SpanID
}

func (r SpanFollowsRecord) Marshal(buf []byte) {
	_ = buf[:SpanFollowsRecordLen]
	PutRecordHeader(buf, KindSpanFollows, SpanFollowsRecordLen)
	binary.LittleEndian.PutUint64(buf[3:11], uint64(r.SpanID))
	binary.LittleEndian.PutUint64(buf[11:19], uint64(r.FollowsID))
}

func ParseSpanFollowsRecord(buf []byte) SpanFollowsRecord {
	_ = buf[:SpanFollowsRecordLen-RecordHeaderLen]
	return SpanFollowsRecord{
		SpanID:    SpanID(binary.LittleEndian.Uint64(buf[0:8])),
		FollowsID: SpanID(binary.LittleEndian.Uint64(buf[8:16])),
	}
}
