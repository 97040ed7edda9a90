// Package ids provides the process-keyed 64-bit hash used to derive
// stable identifiers for callsites, fields, threads, and spans (see
// tracetape's design notes on stable identifiers without pointer
// identity).
//
// The hash is keyed per process, not per default-seeded, because the
// resulting ids escape into a tape file shared by concurrent
// producers: two processes hashing the same token must not be
// relied on to collide or not collide in any particular way, but two
// distinct tokens within one process must collide only by chance of
// the hash itself, not by a fixed, guessable seed.
package ids

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Keyer derives 64-bit identifiers from stable tokens (a callsite's
// static metadata pointer, an OS thread id, a span handle, ...) by
// hashing the token together with a per-process random seed. A Keyer
// is safe for concurrent use.
type Keyer struct {
	seed [8]byte
}

// NewKeyer returns a Keyer seeded from a cryptographically random
// 64-bit value, so ids derived by different processes sharing a tape
// format are not reproducible across processes.
func NewKeyer() *Keyer {
	var k Keyer
	if _, err := rand.Read(k.seed[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable on any
		// supported platform; fall back to a fixed seed rather than
		// a nil Keyer that would panic on first use.
		binary.LittleEndian.PutUint64(k.seed[:], 0x9e3779b97f4a7c15)
	}
	return &k
}

// HashString hashes name under the process key.
func (k *Keyer) HashString(name string) uint64 {
	d := xxhash.New()
	d.Write(k.seed[:])
	d.Write([]byte(name))
	return d.Sum64()
}

// HashUint64 hashes a stable 64-bit token (such as an OS thread id or
// an opaque span handle already reduced to a uint64) under the
// process key.
func (k *Keyer) HashUint64(token uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], token)
	d := xxhash.New()
	d.Write(k.seed[:])
	d.Write(buf[:])
	return d.Sum64()
}

// HashBytes hashes an arbitrary stable token under the process key.
func (k *Keyer) HashBytes(token []byte) uint64 {
	d := xxhash.New()
	d.Write(k.seed[:])
	d.Write(token)
	return d.Sum64()
}
