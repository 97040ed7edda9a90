package tapequery_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abrander/tracetape/tape"
	"github.com/abrander/tracetape/taperecorder"
	"github.com/abrander/tracetape/tapeparser"
	"github.com/abrander/tracetape/tapequery"
	"github.com/abrander/tracetape/tapewriter"
)

func recordOneCallsite(t *testing.T, name string) *tapeparser.Tape {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.tape")
	now := time.Now()
	w, err := tapewriter.Create(path, now.UnixNano())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	rec := taperecorder.New(w, now)
	id := rec.CallsiteID(1)
	if err := rec.RegisterCallsite(id, tape.KindEventCallsite, false, tape.LevelInfo,
		name, "shared::target", "shared", "shared.go", 7, nil); err != nil {
		t.Fatalf("RegisterCallsite: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return tapeparser.Parse(data)
}

func TestJoinMatchesAcrossTapes(t *testing.T) {
	a := recordOneCallsite(t, "handled")
	b := recordOneCallsite(t, "handled")
	c := recordOneCallsite(t, "different")

	tapes := []*tapeparser.Tape{a, b, c}
	ref := tapequery.Join(tapes, 0, 0)

	if ref.Indices[0] != 0 {
		t.Fatalf("Indices[0] = %d, want 0", ref.Indices[0])
	}
	if ref.Indices[1] != 0 {
		t.Fatalf("Indices[1] = %d, want 0 (same source identity across processes)", ref.Indices[1])
	}
	if ref.Indices[2] != -1 {
		t.Fatalf("Indices[2] = %d, want -1 (different name)", ref.Indices[2])
	}
}
