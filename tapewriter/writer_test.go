package tapewriter

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/abrander/tracetape/tape"
)

func openTest(t *testing.T, opts ...Option) (*Writer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.tape")
	w, err := Create(path, 1000, opts...)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return w, path
}

func writeU64(t *testing.T, w *Writer, v uint64) {
	t.Helper()
	err := w.Write(8, func(buf []byte) {
		binary.LittleEndian.PutUint64(buf, v)
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
}

func TestEmptyTapeFileSize(t *testing.T) {
	w, path := openTest(t)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != tape.IntroLen {
		t.Fatalf("file size = %d, want %d", info.Size(), tape.IntroLen)
	}
}

func TestWriteThenCloseRoundsUpToOneChapter(t *testing.T) {
	w, path := openTest(t, WithChapterSizeLog2(12)) // 4096-byte chapters
	writeU64(t, w, 0x0102030405060708)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	want := int64(tape.IntroLen) + 4096
	if info.Size() != want {
		t.Fatalf("file size = %d, want %d", info.Size(), want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	got := binary.LittleEndian.Uint64(data[tape.IntroLen : tape.IntroLen+8])
	if got != 0x0102030405060708 {
		t.Fatalf("first 8 bytes of chapter = %#x, want %#x", got, 0x0102030405060708)
	}
	// the rest of the chapter must be zero padding.
	for _, b := range data[tape.IntroLen+8:] {
		if b != 0 {
			t.Fatalf("expected zero padding after the single record")
		}
	}
}

func TestRecordExactlyFillingChapterFlushesInline(t *testing.T) {
	w, path := openTest(t, WithChapterSizeLog2(6)) // 64-byte chapters, max record 16 bytes
	writeU64(t, w, 1)
	writeU64(t, w, 2)
	writeU64(t, w, 3)
	writeU64(t, w, 4)
	writeU64(t, w, 5)
	writeU64(t, w, 6)
	writeU64(t, w, 7)
	writeU64(t, w, 8) // 8*8 = 64 bytes, exactly one chapter
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	want := int64(tape.IntroLen) + 64
	if info.Size() != want {
		t.Fatalf("file size = %d, want %d (no extra chapter from Close)", info.Size(), want)
	}
}

func TestStraddlingRecordMovesToNextChapter(t *testing.T) {
	w, path := openTest(t, WithChapterSizeLog2(5)) // 32-byte chapters, max record 8 bytes
	// 28 bytes of 4-byte writes leaves 4 bytes in chapter 0; an 8-byte
	// record can't fit there and must land in chapter 1.
	for i := 0; i < 7; i++ {
		if err := w.Write(4, func(buf []byte) { buf[0] = 0xAA }); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	straddleMarker := uint64(0xDEADBEEFCAFEF00D)
	writeU64(t, w, straddleMarker)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	chapter0 := data[tape.IntroLen : tape.IntroLen+32]
	for _, b := range chapter0[28:32] {
		if b != 0 {
			t.Fatalf("expected the abandoned tail of chapter 0 to be zero padding")
		}
	}
	// The abandoned prefix of the reservation that crossed into
	// chapter 1 (4 bytes, since 28 bytes were already used in chapter
	// 0 and the record is 8 bytes) is zero padding at the start of
	// chapter 1; the record itself lands right after it.
	chapter1 := data[tape.IntroLen+32 : tape.IntroLen+64]
	for _, b := range chapter1[0:4] {
		if b != 0 {
			t.Fatalf("expected the abandoned prefix of chapter 1 to be zero padding")
		}
	}
	got := binary.LittleEndian.Uint64(chapter1[4:12])
	if got != straddleMarker {
		t.Fatalf("straddling record landed at %#x in chapter 1, want %#x", got, straddleMarker)
	}
}

func TestWriteAfterCloseFails(t *testing.T) {
	w, _ := openTest(t)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	err := w.Write(8, func(buf []byte) {})
	if err != ErrWriterClosed {
		t.Fatalf("Write after Close = %v, want ErrWriterClosed", err)
	}
}

func TestWriteOversizedRecordPanics(t *testing.T) {
	w, _ := openTest(t, WithChapterSizeLog2(6)) // max record 16 bytes
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic for an oversized record")
		}
		if _, ok := r.(*Error); !ok {
			t.Fatalf("panic value = %T, want *Error", r)
		}
	}()
	w.Write(w.MaxRecordSize()+1, func(buf []byte) {})
}

func TestConcurrentWritesAreAllAccountedFor(t *testing.T) {
	w, path := openTest(t, WithChapterSizeLog2(10)) // 1024-byte chapters
	const n = 2000
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := w.Write(8, func(buf []byte) {
				binary.LittleEndian.PutUint64(buf, uint64(i))
			}); err != nil {
				t.Errorf("Write: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	// Chapters are 1024 bytes and every record is 8 bytes, so no
	// reservation ever straddles a chapter boundary: the first n*8
	// bytes of the body are exactly the n records, in some order, with
	// zero padding only after them in the final chapter.
	seen := make([]bool, n)
	body := data[tape.IntroLen : tape.IntroLen+n*8]
	for off := 0; off+8 <= len(body); off += 8 {
		v := binary.LittleEndian.Uint64(body[off : off+8])
		seen[v] = true
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("value %d from a concurrent writer was never found in the tape", i)
		}
	}
}
