package tapeparser

import (
	"go.uber.org/zap"

	"github.com/abrander/tracetape/tape"
)

// partialEvent accumulates an EVENT record's declared value count
// until that many EVENT_VALUE records for the same thread have
// arrived.
type partialEvent struct {
	event    Event
	wanted   int // declared EVENT_VALUE count
	received int // EVENT_VALUE records actually seen, kept or dropped
}

// spanBuilder accumulates everything observed about one span across
// its SPAN_OPEN, SPAN_ENTER, SPAN_EXIT, SPAN_CLOSE, SPAN_VALUE, and
// SPAN_FOLLOWS records, in the order they're seen.
type spanBuilder struct {
	span     Span
	openIdx  []int // stack of Entrances indices still awaiting a SPAN_EXIT
}

// pass1 performs the single streaming left-to-right scan over a tape's
// chapters, dispatching each record kind to build up the callsite
// registry, thread registry, completed events, and in-progress spans.
type pass1 struct {
	tape   *Tape
	logger *zap.SugaredLogger

	callsiteByID   map[tape.CallsiteID]int
	threadByID     map[tape.ThreadID]int
	pendingEvents  map[tape.ThreadID]*partialEvent
	spans          map[tape.SpanID]*spanBuilder
	spanOrder      []tape.SpanID
	pendingParents []pendingParent
}

func (p *pass1) threadIndex(id tape.ThreadID) int {
	if i, ok := p.threadByID[id]; ok {
		return i
	}
	i := len(p.tape.Threads)
	p.tape.Threads = append(p.tape.Threads, Thread{ID: id})
	p.threadByID[id] = i
	return i
}

func (p *pass1) spanBuilderFor(id tape.SpanID) *spanBuilder {
	b, ok := p.spans[id]
	if !ok {
		b = &spanBuilder{span: Span{ID: id, Parent: -1, Closed: -1}}
		p.spans[id] = b
		p.spanOrder = append(p.spanOrder, id)
	}
	return b
}

func (p *pass1) run(data []byte, strict bool) error {
	pos := tape.IntroLen
	for pos < len(data) {
		kind := data[pos]
		if kind == tape.KindNoop {
			pos++
			continue
		}

		if pos+tape.RecordHeaderLen > len(data) {
			p.logger.Warnw("truncated record header", "pos", pos)
			if strict {
				return ErrTruncatedRecord
			}
			return nil
		}
		hdr := tape.ParseRecordHeader(data[pos:])
		if int(hdr.Len) < tape.RecordHeaderLen {
			p.logger.Warnw("inconsistent record length", "pos", pos, "kind", hdr.Kind, "len", hdr.Len)
			if strict {
				return ErrInconsistentLengths
			}
			return nil
		}
		if pos+int(hdr.Len) > len(data) {
			p.logger.Warnw("truncated record", "pos", pos, "kind", hdr.Kind, "len", hdr.Len)
			if strict {
				return ErrTruncatedRecord
			}
			return nil
		}

		body := data[pos+tape.RecordHeaderLen : pos+int(hdr.Len)]
		p.dispatch(hdr, body)
		pos += int(hdr.Len)
	}
	return nil
}

func (p *pass1) dispatch(hdr tape.RecordHeader, body []byte) {
	switch hdr.Kind {
	case tape.KindThreadName:
		p.onThreadName(body)
	case tape.KindCallsite:
		p.onCallsite(body)
	case tape.KindCallsiteField:
		p.onCallsiteField(body)
	case tape.KindEvent:
		p.onEvent(body)
	case tape.KindEventValue:
		p.onEventValue(hdr, body)
	case tape.KindSpanOpen:
		p.onSpanOpen(hdr, body)
	case tape.KindSpanEnter:
		p.onSpanEnter(body)
	case tape.KindSpanExit:
		p.onSpanExit(body)
	case tape.KindSpanClose:
		p.onSpanClose(body)
	case tape.KindSpanValue:
		p.onSpanValue(hdr, body)
	case tape.KindSpanFollows:
		p.onSpanFollows(body)
	default:
		p.logger.Warnw("unknown record kind", "kind", hdr.Kind)
	}
}

func (p *pass1) onThreadName(body []byte) {
	if len(body) < tape.ThreadNameRecordLen-tape.RecordHeaderLen {
		p.logger.Warnw("short THREAD_NAME record")
		return
	}
	rec := tape.ParseThreadNameRecord(body)
	name := string(body[tape.ThreadNameRecordLen-tape.RecordHeaderLen:])
	idx := p.threadIndex(rec.ThreadID)
	p.tape.Threads[idx].Name = name
}

func (p *pass1) onCallsite(body []byte) {
	const fixed = tape.CallsiteRecordLen - tape.RecordHeaderLen
	if len(body) < fixed {
		p.logger.Warnw("short CALLSITE record")
		return
	}
	rec := tape.ParseCallsiteRecord(body)
	tail := body[fixed:]

	off := 0
	take := func(n uint16) string {
		n2 := int(n)
		if off+n2 > len(tail) {
			n2 = len(tail) - off
			if n2 < 0 {
				n2 = 0
			}
		}
		s := string(tail[off : off+n2])
		off += n2
		return s
	}
	name := take(rec.NameLen)
	target := take(rec.TargetLen)
	modulePath := take(rec.ModulePathLen)
	file := take(rec.FileLen)

	cs := Callsite{
		ID:         rec.ID,
		Kind:       rec.Info.Kind(),
		Hint:       rec.Info.Hint(),
		Level:      rec.Info.Level(),
		Name:       name,
		Target:     target,
		ModulePath: modulePath,
		File:       file,
		Line:       rec.Line,
		Fields:     make([]Field, 0, rec.FieldCount),
	}
	if idx, ok := p.callsiteByID[rec.ID]; ok {
		p.tape.Callsites[idx] = cs
		return
	}
	idx := len(p.tape.Callsites)
	p.tape.Callsites = append(p.tape.Callsites, cs)
	p.callsiteByID[rec.ID] = idx
}

func (p *pass1) onCallsiteField(body []byte) {
	const fixed = tape.CallsiteFieldRecordLen - tape.RecordHeaderLen
	if len(body) < fixed {
		p.logger.Warnw("short CALLSITE_FIELD record")
		return
	}
	rec := tape.ParseCallsiteFieldRecord(body)
	name := string(body[fixed:])

	idx, ok := p.callsiteByID[rec.CallsiteID]
	if !ok {
		p.logger.Warnw("field for unknown callsite", "callsite", rec.CallsiteID)
		return
	}
	p.tape.Callsites[idx].Fields = append(p.tape.Callsites[idx].Fields, Field{ID: rec.FieldID, Name: name})
}

func (p *pass1) onEvent(body []byte) {
	if len(body) < tape.EventRecordLen-tape.RecordHeaderLen {
		p.logger.Warnw("short EVENT record")
		return
	}
	rec := tape.ParseEventRecord(body)
	if _, ok := p.pendingEvents[rec.ThreadID]; ok {
		p.logger.Warnw("event truncated by a new event on the same thread before all its values arrived", "thread", rec.ThreadID)
	}

	callsite, ok := p.callsiteByID[rec.CallsiteID]
	if !ok {
		p.logger.Warnw("event for unknown callsite", "callsite", rec.CallsiteID)
		callsite = -1
	}

	pe := &partialEvent{
		event: Event{
			Timestamp: rec.Timestamp,
			Callsite:  callsite,
			Thread:    p.threadIndex(rec.ThreadID),
		},
		wanted: int(rec.ValueCount),
	}
	if pe.wanted == 0 {
		p.finishEvent(pe)
		return
	}
	p.pendingEvents[rec.ThreadID] = pe
}

func (p *pass1) finishEvent(pe *partialEvent) {
	p.tape.Events = append(p.tape.Events, pe.event)
}

func (p *pass1) onEventValue(hdr tape.RecordHeader, body []byte) {
	const fixed = tape.EventValueRecordLen - tape.RecordHeaderLen
	if len(body) < fixed {
		p.logger.Warnw("short EVENT_VALUE record")
		return
	}
	rec := tape.ParseEventValueRecord(body)
	payload := body[fixed:]

	pe, ok := p.pendingEvents[rec.ThreadID]
	if !ok {
		p.logger.Warnw("value for an event that was never opened", "thread", rec.ThreadID)
		return
	}

	fieldIndex := -1
	if pe.event.Callsite >= 0 {
		fieldIndex = p.tape.Callsites[pe.event.Callsite].fieldIndex(rec.FieldID)
	}
	if v, ok := decodeValue(p.logger, rec.Kind, fieldIndex, payload); ok {
		pe.event.Values = append(pe.event.Values, v)
	}
	pe.received++

	if pe.received >= pe.wanted {
		delete(p.pendingEvents, rec.ThreadID)
		p.finishEvent(pe)
	}
}

func (p *pass1) onSpanOpen(hdr tape.RecordHeader, body []byte) {
	if len(body) < tape.SpanOpenRecordLen-tape.RecordHeaderLen {
		p.logger.Warnw("short SPAN_OPEN record")
		return
	}
	rec := tape.ParseSpanOpenRecord(body, hdr.Len)
	b := p.spanBuilderFor(rec.ID)

	callsite, ok := p.callsiteByID[rec.CallsiteID]
	if !ok {
		p.logger.Warnw("span for unknown callsite", "callsite", rec.CallsiteID)
		callsite = -1
	}

	b.span.Callsite = callsite
	b.span.ParentKind = rec.ParentKind
	b.span.Opened = rec.Timestamp
	if rec.ParentKind == tape.ParentExplicit {
		b.span.Parent = -1 // resolved in finish, once every span exists
		p.pendingParents = append(p.pendingParents, pendingParent{span: rec.ID, parent: rec.ParentID})
	}
}

func (p *pass1) onSpanEnter(body []byte) {
	if len(body) < tape.SpanEnterRecordLen-tape.RecordHeaderLen {
		p.logger.Warnw("short SPAN_ENTER record")
		return
	}
	rec := tape.ParseSpanEnterRecord(body)
	b := p.spanBuilderFor(rec.ID)
	idx := len(b.span.Entrances)
	b.span.Entrances = append(b.span.Entrances, Entrance{
		Thread: p.threadIndex(rec.ThreadID),
		Enter:  rec.Timestamp,
		Exit:   -1,
	})
	b.openIdx = append(b.openIdx, idx)
}

func (p *pass1) onSpanExit(body []byte) {
	if len(body) < tape.SpanExitRecordLen-tape.RecordHeaderLen {
		p.logger.Warnw("short SPAN_EXIT record")
		return
	}
	rec := tape.ParseSpanExitRecord(body)
	b := p.spanBuilderFor(rec.ID)
	if len(b.openIdx) == 0 {
		p.logger.Warnw("span exit without a matching enter", "span", rec.ID)
		return
	}
	top := b.openIdx[len(b.openIdx)-1]
	b.openIdx = b.openIdx[:len(b.openIdx)-1]
	b.span.Entrances[top].Exit = rec.Timestamp
}

func (p *pass1) onSpanClose(body []byte) {
	if len(body) < tape.SpanCloseRecordLen-tape.RecordHeaderLen {
		p.logger.Warnw("short SPAN_CLOSE record")
		return
	}
	rec := tape.ParseSpanCloseRecord(body)
	b := p.spanBuilderFor(rec.ID)
	b.span.Closed = rec.Timestamp
}

func (p *pass1) onSpanValue(hdr tape.RecordHeader, body []byte) {
	const fixed = tape.SpanValueRecordLen - tape.RecordHeaderLen
	if len(body) < fixed {
		p.logger.Warnw("short SPAN_VALUE record")
		return
	}
	rec := tape.ParseSpanValueRecord(body)
	payload := body[fixed:]

	b := p.spanBuilderFor(rec.SpanID)
	fieldIndex := -1
	if b.span.Callsite >= 0 {
		fieldIndex = p.tape.Callsites[b.span.Callsite].fieldIndex(rec.FieldID)
	}
	if v, ok := decodeValue(p.logger, rec.Kind, fieldIndex, payload); ok {
		b.span.Values = append(b.span.Values, v)
	}
}

func (p *pass1) onSpanFollows(body []byte) {
	if len(body) < tape.SpanFollowsRecordLen-tape.RecordHeaderLen {
		p.logger.Warnw("short SPAN_FOLLOWS record")
		return
	}
	rec := tape.ParseSpanFollowsRecord(body)
	b := p.spanBuilderFor(rec.SpanID)
	b.span.Follows = append(b.span.Follows, rec.FollowsID)
}

// pendingParent resolves a span's ParentExplicit parent id to a
// compact index once every span has been built, since a span's parent
// may appear later in the tape than the span itself (e.g. reconstructed
// from a later chapter written by a different thread).
type pendingParent struct {
	span   tape.SpanID
	parent tape.SpanID
}

// finish materializes every accumulated span into the Tape in
// first-seen order and resolves ParentExplicit parent links.
func (p *pass1) finish() {
	for _, id := range p.spanOrder {
		b := p.spans[id]
		idx := len(p.tape.Spans)
		p.tape.Spans = append(p.tape.Spans, b.span)
		p.tape.spanIndexByID[id] = idx
	}
	for _, pp := range p.pendingParents {
		childIdx, ok := p.tape.spanIndexByID[pp.span]
		if !ok {
			continue
		}
		parentIdx, ok := p.tape.spanIndexByID[pp.parent]
		if !ok {
			p.logger.Warnw("span parent never observed", "span", pp.span, "parent", pp.parent)
			continue
		}
		p.tape.Spans[childIdx].Parent = parentIdx
	}
}
