// Package tapewriter implements the wait-free concurrent writer for
// the tape file format: callers reserve a byte range with a single
// atomic fetch-add, fill it in place, and a background-free protocol
// flushes each chapter to disk as soon as it fills.
package tapewriter

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/abrander/tracetape/tape"
)

// Writer appends records to a tape file. The zero value is not usable;
// construct one with Create. A *Writer is safe for concurrent use by
// multiple goroutines calling Write.
type Writer struct {
	file            *os.File
	introSize       int64
	chapterSize     uint32
	chapterSizeLog2 uint8
	chapterMask     uint64
	logger          *zap.SugaredLogger

	offset   atomic.Uint64
	closed   atomic.Bool
	chapters [2]*chapter
}

// Create creates path exclusively (it must not already exist), writes
// the tape intro header, and returns a Writer ready to accept records.
// timestampBase is the wall-clock origin, in nanoseconds since the
// Unix epoch, that the record timestamps are relative to; it is stored
// in the intro's i128 timestamp_base field.
func Create(path string, timestampBase int64, opts ...Option) (*Writer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, wrapFileIO("create", err)
	}

	intro := tape.NewIntro(o.chapterSizeLog2, timestampBase)
	buf := intro.Marshal()
	if _, err := f.Write(buf[:]); err != nil {
		f.Close()
		return nil, wrapFileIO("write intro", err)
	}

	chapterSize := uint32(1) << o.chapterSizeLog2
	w := &Writer{
		file:            f,
		introSize:       tape.IntroLen,
		chapterSize:     chapterSize,
		chapterSizeLog2: o.chapterSizeLog2,
		chapterMask:     uint64(chapterSize) - 1,
		logger:          o.logger,
	}
	w.chapters[0] = newChapter(chapterSize, 0)
	w.chapters[1] = newChapter(chapterSize, 1)
	return w, nil
}

// MaxRecordSize is the largest record Write accepts for the writer's
// configured chapter size: chapter_size/4, so that a record can
// straddle at most one chapter boundary.
func (w *Writer) MaxRecordSize() int {
	return int(w.chapterSize / 4)
}

// Write reserves size bytes in the tape and calls fill to populate
// them, then publishes the reservation as complete. fill must write
// exactly size bytes and must not retain the slice it is given.
//
// Write panics if size exceeds MaxRecordSize; that is always a caller
// bug (a record type's own encoder building an oversized payload), not
// a condition that can occur from fill's own behavior.
//
// Write returns ErrWriterClosed if Close has already been called. It
// is the caller's responsibility not to call Write concurrently with
// or after Close returns; a Write that is already in flight when Close
// is called is still accounted for.
func (w *Writer) Write(size int, fill func([]byte)) error {
	if size > w.MaxRecordSize() {
		panic(&Error{Code: CodeRecordTooLarge, Op: "write", Err: fmt.Errorf("record of %d bytes exceeds max %d", size, w.MaxRecordSize())})
	}
	if w.closed.Load() {
		return ErrWriterClosed
	}

	n := uint64(size)
	end := w.offset.Add(n)
	start := end - n

	startChapter := start >> w.chapterSizeLog2
	endChapter := (end - 1) >> w.chapterSizeLog2

	if startChapter == endChapter {
		c := w.chapterFor(startChapter)
		off := start & w.chapterMask
		fill(c.buf[off : off+n])
		c.bytesWritten.Add(n)

		if end&w.chapterMask == 0 {
			if err := c.finish(w.file, w.introSize, w.chapterSize, startChapter+2); err != nil {
				return wrapFileIO("flush chapter", err)
			}
			w.chapterFor(startChapter + 1).dataOffset.Store(0)
		}
		return nil
	}

	// The reservation straddles the boundary between startChapter and
	// endChapter. Records never span a chapter boundary, so this
	// reservation's bytes are abandoned: the start chapter is closed
	// out early, the overlap into the next chapter is zeroed as
	// padding, and the record is retried, landing entirely past the
	// padding in the chapter that is now current.
	c := w.chapterFor(startChapter)
	inChapterOffset := uint32(start & w.chapterMask)
	if err := c.finish(w.file, w.introSize, inChapterOffset, startChapter+2); err != nil {
		return wrapFileIO("flush chapter", err)
	}

	next := w.chapterFor(startChapter + 1)
	nextOffset := end & w.chapterMask
	clear(next.buf[:nextOffset])
	next.dataOffset.Store(nextOffset)

	return w.Write(size, fill)
}

// chapterFor blocks until the slot currently holding logical chapter
// index becomes ready, then returns it. Chapter indices are handed out
// to slots in order, so this never blocks longer than the time for the
// chapter currently occupying the slot to fill and flush.
func (w *Writer) chapterFor(index uint64) *chapter {
	c := w.chapters[index&1]
	for c.index.Load() != index {
		runtime.Gosched()
	}
	return c
}

// Close flushes any partially filled active chapter and closes the
// underlying file. After Close returns, Write always returns
// ErrWriterClosed. Close does not wait for Writes that begin after it
// is called; callers must stop calling Write before calling Close.
func (w *Writer) Close() error {
	w.closed.Store(true)

	offset := w.offset.Load()
	if offset&w.chapterMask != 0 {
		chapterIndex := offset >> w.chapterSizeLog2
		endOffset := uint32(offset & w.chapterMask)
		c := w.chapterFor(chapterIndex)
		if err := c.finish(w.file, w.introSize, endOffset, chapterIndex+2); err != nil {
			w.logger.Errorw("flush on close failed", "error", err)
			w.file.Close()
			return wrapFileIO("flush on close", err)
		}
	}

	if err := w.file.Close(); err != nil {
		return wrapFileIO("close", err)
	}
	return nil
}
