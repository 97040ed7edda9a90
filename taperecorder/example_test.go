package taperecorder_test

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abrander/tracetape/tape"
	"github.com/abrander/tracetape/taperecorder"
	"github.com/abrander/tracetape/tapewriter"
)

// Example shows binding a minimal set of framework callbacks to a
// Recorder without depending on any particular tracing crate: a
// callsite token (here, a constant standing in for a static metadata
// pointer) is registered once, then an event referencing it is
// recorded with one field.
func Example() {
	dir, err := os.MkdirTemp("", "tracetape-example")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer os.RemoveAll(dir)

	now := time.Now()
	w, err := tapewriter.Create(filepath.Join(dir, "example.tape"), now.UnixNano())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	rec := taperecorder.New(w, now)

	const requestHandledCallsite = 0x1001
	callsite := rec.CallsiteID(requestHandledCallsite)
	if err := rec.RegisterCallsite(callsite, tape.KindEventCallsite, false, tape.LevelInfo,
		"request handled", "myapp::http", "myapp", "http.go", 42,
		[]string{"status", "path"},
	); err != nil {
		fmt.Println("error:", err)
		return
	}

	thread := rec.ThreadID(1)
	err = rec.OnEvent(callsite, thread, []taperecorder.Value{
		taperecorder.I64Value("status", 200),
		taperecorder.StrValue("path", "/healthz"),
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if err := rec.Close(); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("recorded")
	// Output: recorded
}
