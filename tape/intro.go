package tape

import "encoding/binary"

// Magic is the byte sequence identifying a tape file.
var Magic = [8]byte{'T', 'A', 'P', 'E', 'F', 'I', 'L', 'E'}

// VersionMajor and VersionMinor are the tape format version written
// by this package. Parsers must accept any version whose major
// matches and whose minor is >= their own; unknown record kinds
// within that range are skipped using the record header's length
// field. tapeparser compares only the major version, so it reads files
// of any minor version.
const (
	VersionMajor = 0
	VersionMinor = 0
)

// IntroLen is the fixed, 32-byte size of the intro header.
const IntroLen = 32

// Intro is the fixed 32-byte header at the start of every tape file.
//
//	bytes 0..8   magic "TAPEFILE"
//	byte  8      version major
//	byte  9      version minor
//	byte  10     chapter_size_log2
//	bytes 11..16 reserved, zero
//	bytes 16..32 timestamp_base, i128 LE
type Intro struct {
	VersionMajor    uint8
	VersionMinor    uint8
	ChapterSizeLog2 uint8
	TimestampBaseLo uint64 // low 64 bits of the i128 timestamp_base
	TimestampBaseHi int64  // high 64 bits (sign-extended) of the i128 timestamp_base
}

// NewIntro builds an Intro for a tape whose chapters are
// 1<<chapterSizeLog2 bytes and whose wall-clock origin is
// timestampBase nanoseconds since the Unix epoch.
func NewIntro(chapterSizeLog2 uint8, timestampBase int64) Intro {
	return Intro{
		VersionMajor:    VersionMajor,
		VersionMinor:    VersionMinor,
		ChapterSizeLog2: chapterSizeLog2,
		TimestampBaseLo: uint64(timestampBase),
		TimestampBaseHi: timestampBase >> 63, // sign-extend a 64-bit base into the i128 slot
	}
}

// ChapterSize returns 1 << ChapterSizeLog2.
func (in Intro) ChapterSize() uint32 {
	return 1 << in.ChapterSizeLog2
}

// TimestampBase returns the wall-clock origin as nanoseconds since
// the Unix epoch, truncated to 64 bits. The format carries a full
// i128 for forward compatibility with timestamps outside the 64-bit
// range; this package, like the recorder, only ever produces bases
// that fit in 64 bits.
func (in Intro) TimestampBase() int64 {
	return int64(in.TimestampBaseLo)
}

// Marshal encodes the intro into a 32-byte buffer.
func (in Intro) Marshal() [IntroLen]byte {
	var buf [IntroLen]byte
	copy(buf[0:8], Magic[:])
	buf[8] = in.VersionMajor
	buf[9] = in.VersionMinor
	buf[10] = in.ChapterSizeLog2
	// bytes 11..16 stay zero (reserved)
	binary.LittleEndian.PutUint64(buf[16:24], in.TimestampBaseLo)
	binary.LittleEndian.PutUint64(buf[24:32], uint64(in.TimestampBaseHi))
	return buf
}

// ParseIntro decodes the 32-byte intro header from the start of buf.
// It does not validate the magic or version; callers that need strict
// validation should use tapeparser.ParseStrict.
func ParseIntro(buf []byte) Intro {
	_ = buf[:IntroLen] // bounds check hint
	return Intro{
		VersionMajor:    buf[8],
		VersionMinor:    buf[9],
		ChapterSizeLog2: buf[10],
		TimestampBaseLo: binary.LittleEndian.Uint64(buf[16:24]),
		TimestampBaseHi: int64(binary.LittleEndian.Uint64(buf[24:32])),
	}
}

// HasValidMagic reports whether buf starts with the tape magic.
func HasValidMagic(buf []byte) bool {
	return len(buf) >= 8 && [8]byte(buf[:8]) == Magic
}
