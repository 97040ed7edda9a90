package tapestats_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abrander/tracetape/tape"
	"github.com/abrander/tracetape/taperecorder"
	"github.com/abrander/tracetape/tapeparser"
	"github.com/abrander/tracetape/tapestats"
	"github.com/abrander/tracetape/tapewriter"
)

func TestStatisticsFlagsAnOutlier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spans.tape")
	now := time.Now()
	w, err := tapewriter.Create(path, now.UnixNano())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	rec := taperecorder.New(w, now)

	callsite := rec.CallsiteID(1)
	if err := rec.RegisterCallsite(callsite, tape.KindSpanCallsite, false, tape.LevelInfo,
		"work", "t", "m", "f.go", 1, nil); err != nil {
		t.Fatalf("RegisterCallsite: %v", err)
	}

	// Record several spans with synthetic Opened/Closed timestamps
	// directly through the writer records, since durations need to be
	// controlled precisely for the outlier assertion.
	durations := []int64{10, 11, 9, 10, 12, 10, 11, 1000}
	for i, d := range durations {
		id := rec.SpanID(uint64(i + 1))
		if err := w.Write(tape.SpanOpenRecordExtendedLen, tape.SpanOpenRecord{
			ID: id, ParentKind: tape.ParentRoot, CallsiteID: callsite, Timestamp: 0,
		}.Marshal); err != nil {
			t.Fatalf("open: %v", err)
		}
		if err := w.Write(tape.SpanCloseRecordLen, tape.SpanCloseRecord{
			ID: id, Timestamp: d,
		}.Marshal); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data := readFile(t, path)
	tp := tapeparser.Parse(data)
	if len(tp.Spans) != len(durations) {
		t.Fatalf("Spans = %d, want %d", len(tp.Spans), len(durations))
	}

	stat, err := tapestats.Statistics(tp, 0)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stat.Count != len(durations) {
		t.Fatalf("Count = %d, want %d", stat.Count, len(durations))
	}
	if len(stat.Outliers) != 1 {
		t.Fatalf("Outliers = %v, want exactly the 1000ns span", stat.Outliers)
	}
	if stat.Outliers[0].Nanos != 1000 {
		t.Fatalf("Outliers[0].Nanos = %v, want 1000", stat.Outliers[0].Nanos)
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return data
}
