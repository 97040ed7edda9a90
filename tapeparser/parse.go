package tapeparser

import (
	"sort"

	"go.uber.org/zap"

	"github.com/abrander/tracetape/tape"
)

// Parse decodes data into a Tape, recovering as much as possible. Any
// malformed trailing data (an unknown version, a header that claims
// more bytes than remain, a record cut off mid-payload) stops parsing
// at that point rather than failing outright; everything decoded
// before it is still returned. Parse never returns nil.
func Parse(data []byte) *Tape {
	t, _ := parse(data, false, zap.NewNop().Sugar())
	return t
}

// ParseStrict decodes data into a Tape like Parse, but returns an
// error instead of silently truncating when the file is malformed.
func ParseStrict(data []byte, logger *zap.SugaredLogger) (*Tape, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return parse(data, true, logger)
}

func parse(data []byte, strict bool, logger *zap.SugaredLogger) (*Tape, error) {
	t := &Tape{spanIndexByID: map[tape.SpanID]int{}}

	if len(data) < tape.IntroLen || !tape.HasValidMagic(data) {
		if strict {
			return t, ErrInvalidMagic
		}
		return t, nil
	}
	intro := tape.ParseIntro(data)
	if intro.VersionMajor != tape.VersionMajor {
		if strict {
			return t, ErrUnknownVersion
		}
		return t, nil
	}
	t.TimestampBase = intro.TimestampBase()
	t.ChapterSize = intro.ChapterSize()

	p := &pass1{
		tape:          t,
		logger:        logger,
		callsiteByID:  map[tape.CallsiteID]int{},
		threadByID:    map[tape.ThreadID]int{},
		pendingEvents: map[tape.ThreadID]*partialEvent{},
		spans:         map[tape.SpanID]*spanBuilder{},
	}
	if err := p.run(data, strict); err != nil {
		return t, err
	}
	p.finish()

	sort.SliceStable(t.Events, func(i, j int) bool { return t.Events[i].Timestamp < t.Events[j].Timestamp })
	finalizeTimestamps(t)
	sortValues(t)

	return t, nil
}

// finalizeTimestamps computes MinTimestamp/MaxTimestamp across every
// event and span boundary observed.
func finalizeTimestamps(t *Tape) {
	first := true
	observe := func(ts int64) {
		if first {
			t.MinTimestamp, t.MaxTimestamp = ts, ts
			first = false
			return
		}
		if ts < t.MinTimestamp {
			t.MinTimestamp = ts
		}
		if ts > t.MaxTimestamp {
			t.MaxTimestamp = ts
		}
	}
	for _, e := range t.Events {
		observe(e.Timestamp)
	}
	for _, s := range t.Spans {
		observe(s.Opened)
		if s.Closed >= 0 {
			observe(s.Closed)
		}
		for _, en := range s.Entrances {
			observe(en.Enter)
			if en.Exit >= 0 {
				observe(en.Exit)
			}
		}
	}
}

// sortValues stably sorts each event's and span's values by their
// callsite's declared field order, so readers see values in a
// consistent order regardless of the order the recorder happened to
// emit them in.
func sortValues(t *Tape) {
	for i := range t.Events {
		e := &t.Events[i]
		stableSortValuesByFieldIndex(e.Values)
	}
	for i := range t.Spans {
		s := &t.Spans[i]
		stableSortValuesByFieldIndex(s.Values)
	}
}

func stableSortValuesByFieldIndex(values []Value) {
	// Insertion sort: event and span value counts are small, and this
	// keeps equal FieldIndex values (including all-unresolved -1s) in
	// their original relative order.
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && values[j].FieldIndex < values[j-1].FieldIndex; j-- {
			values[j], values[j-1] = values[j-1], values[j]
		}
	}
}
