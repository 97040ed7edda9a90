// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tape defines the on-disk tape file format: the intro
// header, the chapter layout, and the record family written by a
// recorder and read back by a parser.
//
// The format is little-endian and unaligned throughout. Nothing in
// this package performs I/O; it only describes byte layouts and
// provides encode/decode helpers shared by tapewriter and
// tapeparser.
package tape // import "github.com/abrander/tracetape/tape"
