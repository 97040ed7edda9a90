// Package tapequery joins the same logical callsite across multiple
// tape files, the way comparing two profiling runs requires matching
// up the same call site between two separately captured profiles.
package tapequery

import "github.com/abrander/tracetape/tapeparser"

// CallsiteRef identifies one callsite by its source identity (target,
// file, line, and name) and resolves that identity to a compact index
// within each of a set of tapes.
type CallsiteRef struct {
	Target string
	File   string
	Line   uint32
	Name   string

	// Indices[i] is the matching callsite's index within the i'th
	// tape passed to Join, or -1 if that tape has no matching
	// callsite.
	Indices []int
}

// Join resolves the callsite at tapes[tapeIndex].Callsites[callsiteIndex]
// to its matching index within every tape in tapes, matching by
// (Target, File, Line, Name) rather than by the process-keyed
// CallsiteID, which is not comparable across processes.
func Join(tapes []*tapeparser.Tape, tapeIndex, callsiteIndex int) *CallsiteRef {
	key := tapes[tapeIndex].Callsite(callsiteIndex)
	ref := &CallsiteRef{
		Target:  key.Target,
		File:    key.File,
		Line:    key.Line,
		Name:    key.Name,
		Indices: make([]int, len(tapes)),
	}
	for i, t := range tapes {
		ref.Indices[i] = -1
		for j := range t.Callsites {
			c := &t.Callsites[j]
			if c.Target == ref.Target && c.File == ref.File && c.Line == ref.Line && c.Name == ref.Name {
				ref.Indices[i] = j
				break
			}
		}
	}
	return ref
}
