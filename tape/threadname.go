package tape

import "encoding/binary"

// ThreadNameRecordLen is the fixed size of a THREAD_NAME record,
// excluding the variable-length name tail.
const ThreadNameRecordLen = RecordHeaderLen + 8 + 2

// ThreadNameRecord associates a human-readable name with a ThreadID.
// It is followed in the tape by NameLen bytes of name.
type ThreadNameRecord struct {
	ThreadID ThreadID
	NameLen  uint16
}

// Marshal encodes the record, including its header, into buf. buf must
// be at least ThreadNameRecordLen bytes.
func (r ThreadNameRecord) Marshal(buf []byte, totalLen uint16) {
	_ = buf[:ThreadNameRecordLen]
	PutRecordHeader(buf, KindThreadName, totalLen)
	binary.LittleEndian.PutUint64(buf[3:11], uint64(r.ThreadID))
	binary.LittleEndian.PutUint16(buf[11:13], r.NameLen)
}

// ParseThreadNameRecord decodes the fixed portion of a THREAD_NAME
// record from buf, which must start just past the record header.
func ParseThreadNameRecord(buf []byte) ThreadNameRecord {
	_ = buf[:ThreadNameRecordLen-RecordHeaderLen]
	return ThreadNameRecord{
		ThreadID: ThreadID(binary.LittleEndian.Uint64(buf[0:8])),
		NameLen:  binary.LittleEndian.Uint16(buf[8:10]),
	}
}
