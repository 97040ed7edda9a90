package tapeparser

import "errors"

// These errors are returned only by ParseStrict; Parse treats the
// same conditions as a truncation point and returns the model built
// from everything before it.
var (
	// ErrInvalidMagic means the file does not begin with the tape
	// magic bytes.
	ErrInvalidMagic = errors.New("tapeparser: invalid magic")

	// ErrUnknownVersion means the file's major version is not one
	// this package understands.
	ErrUnknownVersion = errors.New("tapeparser: unknown version")

	// ErrTruncatedRecord means a record header or body was cut off
	// before the file ended.
	ErrTruncatedRecord = errors.New("tapeparser: truncated record")

	// ErrInconsistentLengths means a record's declared length is
	// smaller than its own header.
	ErrInconsistentLengths = errors.New("tapeparser: inconsistent record length")
)
