// Package taperecorder is the producer front end for the tape format:
// it turns a tracing framework's callbacks (new callsite, event fired,
// span opened/entered/exited/closed, value recorded, causal
// follows-from edge) into encoded records and hands them to a
// tapewriter.Writer. It does not itself depend on any particular
// tracing framework; a framework integration binds its own callback
// shape to these nine methods.
package taperecorder

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abrander/tracetape/internal/ids"
	"github.com/abrander/tracetape/tape"
	"github.com/abrander/tracetape/tapewriter"
)

// Recorder adapts a tracing framework's callbacks to the tape wire
// format. A *Recorder is safe for concurrent use; its methods are
// typically called from many framework callback sites at once.
type Recorder struct {
	w     *tapewriter.Writer
	keyer *ids.Keyer
	start time.Time
}

// New wraps an already-open Writer. start is the instant the writer's
// timestamp_base corresponds to; elapsed record timestamps are
// computed relative to it.
func New(w *tapewriter.Writer, start time.Time) *Recorder {
	return &Recorder{w: w, keyer: ids.NewKeyer(), start: start}
}

// WithFile creates a tape file named after the running executable and
// the current time, in dir, and returns a Recorder writing to it. The
// naming scheme is <exe>_<date>_<weekday>_<time>.tape, matching the
// convention of dropping one tape per process run into a shared
// directory without collisions.
func WithFile(dir string, opts ...tapewriter.Option) (*Recorder, error) {
	now := time.Now()
	name := defaultFileName(now)
	w, err := tapewriter.Create(filepath.Join(dir, name), now.UnixNano(), opts...)
	if err != nil {
		return nil, fmt.Errorf("taperecorder: %w", err)
	}
	return New(w, now), nil
}

func defaultFileName(now time.Time) string {
	exe := filepath.Base(os.Args[0])
	return fmt.Sprintf("%s_%s_%s_%s.tape",
		exe,
		now.Format("2006-01-02"),
		now.Format("Monday"),
		now.Format("15-04-05"),
	)
}

// Close flushes and closes the underlying tape file.
func (r *Recorder) Close() error {
	return r.w.Close()
}

func (r *Recorder) elapsed() int64 {
	return int64(time.Since(r.start))
}

// CallsiteID derives the stable id for a callsite from token, a value
// that must be stable for the lifetime of the process and unique per
// distinct callsite (a static metadata pointer, or the program counter
// returned by runtime.Caller, both satisfy this).
func (r *Recorder) CallsiteID(token uint64) tape.CallsiteID {
	return tape.CallsiteID(r.keyer.HashUint64(token))
}

// FieldID derives the stable id for one of a callsite's declared
// fields.
func (r *Recorder) FieldID(callsite tape.CallsiteID, fieldName string) tape.FieldID {
	return tape.FieldID(r.keyer.HashString(fmt.Sprintf("%d:%s", callsite, fieldName)))
}

// ThreadID derives the stable id for a thread of execution from
// token, typically an OS thread id or goroutine-local identifier
// supplied by the framework integration.
func (r *Recorder) ThreadID(token uint64) tape.ThreadID {
	return tape.ThreadID(r.keyer.HashUint64(token))
}

// SpanID derives the stable id for a span instance from token, a
// value unique for the lifetime of that one span (a span handle's
// address or sequence number).
func (r *Recorder) SpanID(token uint64) tape.SpanID {
	return tape.SpanID(r.keyer.HashUint64(token))
}

// RegisterCallsite announces a callsite's static metadata. It must be
// called once per distinct callsite before any event or span record
// referencing it is emitted. fieldNames declares the callsite's fields
// in order; tapeparser sorts an event or span's values into this
// order, whatever order they were recorded in.
func (r *Recorder) RegisterCallsite(id tape.CallsiteID, kind tape.Kind, hint bool, level tape.Level, name, target, modulePath, file string, line uint32, fieldNames []string) error {
	nameB, targetB, moduleB, fileB := []byte(name), []byte(target), []byte(modulePath), []byte(file)
	tail := len(nameB) + len(targetB) + len(moduleB) + len(fileB)
	size := tape.CallsiteRecordLen + tail

	rec := tape.CallsiteRecord{
		Info:          tape.NewCallsiteInfo(kind, hint, level),
		FieldCount:    uint16(len(fieldNames)),
		NameLen:       uint16(len(nameB)),
		TargetLen:     uint16(len(targetB)),
		ModulePathLen: uint16(len(moduleB)),
		FileLen:       uint16(len(fileB)),
		Line:          line,
		ID:            id,
	}
	if err := r.w.Write(size, func(buf []byte) {
		rec.Marshal(buf, uint16(size))
		off := tape.CallsiteRecordLen
		off += copy(buf[off:], nameB)
		off += copy(buf[off:], targetB)
		off += copy(buf[off:], moduleB)
		copy(buf[off:], fileB)
	}); err != nil {
		return err
	}

	for _, fieldName := range fieldNames {
		fieldNameB := []byte(fieldName)
		fsize := tape.CallsiteFieldRecordLen + len(fieldNameB)
		fieldRec := tape.CallsiteFieldRecord{
			FieldNameLen: uint16(len(fieldNameB)),
			CallsiteID:   id,
			FieldID:      r.FieldID(id, fieldName),
		}
		if err := r.w.Write(fsize, func(buf []byte) {
			fieldRec.Marshal(buf, uint16(fsize))
			copy(buf[tape.CallsiteFieldRecordLen:], fieldNameB)
		}); err != nil {
			return err
		}
	}
	return nil
}

// OnEvent records a fired event and its values.
func (r *Recorder) OnEvent(callsite tape.CallsiteID, thread tape.ThreadID, values []Value) error {
	rec := tape.EventRecord{
		ValueCount: uint16(len(values)),
		Timestamp:  r.elapsed(),
		CallsiteID: callsite,
		ThreadID:   thread,
	}
	if err := r.w.Write(tape.EventRecordLen, func(buf []byte) { rec.Marshal(buf) }); err != nil {
		return err
	}
	for _, v := range values {
		if err := r.writeEventValue(callsite, thread, v); err != nil {
			return err
		}
	}
	return nil
}

// OnNewSpan records a span's creation.
func (r *Recorder) OnNewSpan(id tape.SpanID, parentKind tape.ParentKind, parentID tape.SpanID, callsite tape.CallsiteID, values []Value) error {
	rec := tape.SpanOpenRecord{
		ID:         id,
		ParentKind: parentKind,
		ParentID:   parentID,
		CallsiteID: callsite,
		Timestamp:  r.elapsed(),
	}
	if err := r.w.Write(tape.SpanOpenRecordExtendedLen, rec.Marshal); err != nil {
		return err
	}
	for _, v := range values {
		if err := r.writeSpanValue(callsite, id, v); err != nil {
			return err
		}
	}
	return nil
}

// OnEnter records a thread entering a span.
func (r *Recorder) OnEnter(id tape.SpanID, thread tape.ThreadID) error {
	rec := tape.SpanEnterRecord{ID: id, Timestamp: r.elapsed(), ThreadID: thread}
	return r.w.Write(tape.SpanEnterRecordLen, rec.Marshal)
}

// OnExit records a thread exiting a span it previously entered.
func (r *Recorder) OnExit(id tape.SpanID) error {
	rec := tape.SpanExitRecord{ID: id, Timestamp: r.elapsed()}
	return r.w.Write(tape.SpanExitRecordLen, rec.Marshal)
}

// OnClose records a span becoming permanently closed.
func (r *Recorder) OnClose(id tape.SpanID) error {
	rec := tape.SpanCloseRecord{ID: id, Timestamp: r.elapsed()}
	return r.w.Write(tape.SpanCloseRecordLen, rec.Marshal)
}

// OnRecord records a value attached to an already-open span, outside
// of its creation. callsite must be the same callsite the span was
// created with, since a value's field id is derived from the pair of
// callsite and field name.
func (r *Recorder) OnRecord(callsite tape.CallsiteID, id tape.SpanID, v Value) error {
	return r.writeSpanValue(callsite, id, v)
}

// OnFollowsFrom records a causal edge from span id to an earlier span
// it follows, without nesting under it.
func (r *Recorder) OnFollowsFrom(id, follows tape.SpanID) error {
	rec := tape.SpanFollowsRecord{SpanID: id, FollowsID: follows}
	return r.w.Write(tape.SpanFollowsRecordLen, rec.Marshal)
}

// RecordThreadName associates a human-readable name with a thread id.
// It may be called at any point in the thread's lifetime, including
// more than once.
func (r *Recorder) RecordThreadName(id tape.ThreadID, name string) error {
	nameB := []byte(name)
	size := tape.ThreadNameRecordLen + len(nameB)
	rec := tape.ThreadNameRecord{ThreadID: id, NameLen: uint16(len(nameB))}
	return r.w.Write(size, func(buf []byte) {
		rec.Marshal(buf, uint16(size))
		copy(buf[tape.ThreadNameRecordLen:], nameB)
	})
}
