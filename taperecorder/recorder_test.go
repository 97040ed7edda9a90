package taperecorder_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/abrander/tracetape/tape"
	"github.com/abrander/tracetape/taperecorder"
	"github.com/abrander/tracetape/tapewriter"
)

func newTestRecorder(t *testing.T) *taperecorder.Recorder {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.tape")
	now := time.Now()
	w, err := tapewriter.Create(path, now.UnixNano())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return taperecorder.New(w, now)
}

func TestCallsiteIDIsStablePerToken(t *testing.T) {
	rec := newTestRecorder(t)
	a1 := rec.CallsiteID(42)
	a2 := rec.CallsiteID(42)
	b := rec.CallsiteID(43)
	if a1 != a2 {
		t.Fatalf("CallsiteID(42) not stable: %v != %v", a1, a2)
	}
	if a1 == b {
		t.Fatalf("CallsiteID(42) == CallsiteID(43), want distinct ids")
	}
}

func TestFieldIDDependsOnCallsite(t *testing.T) {
	rec := newTestRecorder(t)
	cs1 := rec.CallsiteID(1)
	cs2 := rec.CallsiteID(2)
	f1 := rec.FieldID(cs1, "status")
	f2 := rec.FieldID(cs2, "status")
	if f1 == f2 {
		t.Fatalf("same field name on different callsites produced the same id")
	}
}

func TestRegisterCallsiteThenEventSucceeds(t *testing.T) {
	rec := newTestRecorder(t)
	id := rec.CallsiteID(1)
	if err := rec.RegisterCallsite(id, tape.KindEventCallsite, false, tape.LevelWarn,
		"name", "target", "module", "file.go", 1, []string{"a", "b", "c"}); err != nil {
		t.Fatalf("RegisterCallsite: %v", err)
	}
	thread := rec.ThreadID(1)
	err := rec.OnEvent(id, thread, []taperecorder.Value{
		taperecorder.BoolValue("a", true),
		taperecorder.U64Value("b", 7),
		taperecorder.F64Value("c", 3.5),
	})
	if err != nil {
		t.Fatalf("OnEvent: %v", err)
	}
}
