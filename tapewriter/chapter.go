package tapewriter

import (
	"math"
	"os"
	"runtime"
	"sync/atomic"
)

// noDataOffset marks a chapter slot that has been flushed (or never
// used) and currently holds no live reservation.
const noDataOffset = math.MaxUint64

// chapter is one slot of the two-slot chapter-buffer ring. Its index
// field publishes which logical chapter number currently occupies the
// slot; a writer destined for chapter N spins on chapterFor until the
// slot carrying N is ready, which is how the ring hands off a reused
// buffer between chapters without reallocating.
//
// Writers copy their record bytes into disjoint byte ranges of buf
// without synchronization; the atomic fetch-add that hands out those
// ranges, together with the atomic bytesWritten count a flush waits
// on, is what makes the plain byte writes safe to observe once a
// flush reads buf.
type chapter struct {
	size         uint32
	index        atomic.Uint64
	dataOffset   atomic.Uint64
	bytesWritten atomic.Uint64
	buf          []byte
}

func newChapter(size uint32, index uint64) *chapter {
	c := &chapter{size: size, buf: make([]byte, size)}
	c.index.Store(index)
	return c
}

// finish zero-fills the unwritten tail of the chapter, waits for every
// writer that reserved space in it to finish its copy, writes the
// chapter to disk at its chapter-aligned offset, and republishes the
// slot under nextIndex for reuse.
func (c *chapter) finish(file *os.File, introSize int64, endOffset uint32, nextIndex uint64) error {
	clear(c.buf[endOffset:])

	expected := uint64(endOffset) - c.dataOffset.Load()
	for c.bytesWritten.Load() != expected {
		runtime.Gosched()
	}

	at := introSize + int64(c.index.Load())*int64(c.size)
	if _, err := file.WriteAt(c.buf, at); err != nil {
		return err
	}

	c.bytesWritten.Store(0)
	c.dataOffset.Store(noDataOffset)
	c.index.Store(nextIndex)
	return nil
}
