// Package tapeparser turns the bytes of a tape file into an immutable,
// queryable in-memory model: callsites, events, threads, and spans
// with their nesting, causal edges, and recorded values resolved.
package tapeparser

import "github.com/abrander/tracetape/tape"

// Field is one declared field of a callsite.
type Field struct {
	ID   tape.FieldID
	Name string
}

// Callsite is a tracing callsite's static metadata, plus the fields it
// declared, in declaration order.
type Callsite struct {
	ID         tape.CallsiteID
	Kind       tape.Kind
	Hint       bool
	Level      tape.Level
	Name       string
	Target     string
	ModulePath string
	File       string
	Line       uint32
	Fields     []Field
}

// fieldIndex returns the position of fieldID in c.Fields, or -1 if it
// never appeared in this callsite's CALLSITE_FIELD records.
func (c *Callsite) fieldIndex(fieldID tape.FieldID) int {
	for i, f := range c.Fields {
		if f.ID == fieldID {
			return i
		}
	}
	return -1
}

// Value is one field value attached to an event or span, resolved
// against its callsite's declared fields.
type Value struct {
	// FieldIndex is the value's position in its callsite's Fields
	// slice, or -1 if the field id does not match any declared field
	// (a tape truncated between a CALLSITE and its CALLSITE_FIELD
	// records can produce this).
	FieldIndex int
	Kind       tape.ValueKind

	Bool bool
	I64  int64
	U64  uint64
	I128 tape.Int128
	U128 tape.Uint128
	F64  float64
	Str  string
	Err  string
}

// Thread is a thread of execution, identified by its stable id and
// the most recently recorded name, if any.
type Thread struct {
	ID   tape.ThreadID
	Name string
}

// Event is a single fired event.
type Event struct {
	Timestamp int64
	Callsite  int // index into Tape.Callsites
	Thread    int // index into Tape.Threads
	Values    []Value
}

// Entrance is one interval during which some thread held a span open.
type Entrance struct {
	Thread int // index into Tape.Threads
	Enter  int64
	Exit   int64 // -1 if the span was never observed to exit
}

// Span is a span's full lifecycle: its creation, every thread's
// enter/exit intervals within it, the values recorded on it, and its
// causal follows-from edges.
type Span struct {
	ID         tape.SpanID
	Callsite   int // index into Tape.Callsites
	ParentKind tape.ParentKind
	Parent     int // index into Tape.Spans, or -1
	Opened     int64
	Closed     int64 // -1 if the span was never observed to close
	Entrances  []Entrance
	Values     []Value
	Follows    []tape.SpanID
}

// Tape is the fully parsed, immutable contents of a tape file.
type Tape struct {
	TimestampBase int64
	ChapterSize   uint32
	MinTimestamp  int64
	MaxTimestamp  int64
	Callsites     []Callsite
	Threads       []Thread
	Events        []Event
	Spans         []Span
	spanIndexByID map[tape.SpanID]int
}

// Callsite looks up a callsite by its compact index.
func (t *Tape) Callsite(index int) *Callsite { return &t.Callsites[index] }

// ThreadAt looks up a thread by its compact index.
func (t *Tape) ThreadAt(index int) *Thread { return &t.Threads[index] }

// Span looks up a span by its compact index.
func (t *Tape) Span(index int) *Span { return &t.Spans[index] }

// SpanByID looks up a span by its wire id, returning (index, true) if
// found.
func (t *Tape) SpanByID(id tape.SpanID) (int, bool) {
	i, ok := t.spanIndexByID[id]
	return i, ok
}

// TimeRange returns the absolute epoch range of every event and span
// boundary in the tape: TimestampBase plus the minimum and maximum
// timestamp observed. A tape with no timestamped records at all
// returns (TimestampBase, TimestampBase).
func (t *Tape) TimeRange() (min, max int64) {
	return t.TimestampBase + t.MinTimestamp, t.TimestampBase + t.MaxTimestamp
}

// TimestampRange returns the minimum and maximum timestamp observed
// across every event and span boundary in the tape, relative to
// TimestampBase. A tape with no timestamped records at all returns
// (0, 0).
func (t *Tape) TimestampRange() (min, max int64) {
	return t.MinTimestamp, t.MaxTimestamp
}
