// Package digest provides the fixed-width content hash used to address
// persisted HAMT nodes. It is deliberately the only place in the module
// that knows about the concrete hash algorithm; everything above this
// package treats a Digest as an opaque, comparable, byte-serialisable
// value.
package digest

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Size is the width, in bytes, of a Digest.
const Size = blake2b.Size256

// Digest is the content hash of a persisted node body. Two Digests are
// equal iff the bytes they were derived from are equal, so Digest is a
// plain comparable array rather than a slice.
type Digest [Size]byte

// Zero is the all-zero Digest, the zero value of the type. Sum does not
// produce it, not even for empty input.
var Zero Digest

// Sum hashes b and returns the resulting Digest.
func Sum(b []byte) Digest {
	return Digest(blake2b.Sum256(b))
}

// Bytes returns d as a byte slice aliasing its backing array.
func (d *Digest) Bytes() []byte {
	return d[:]
}

// IsZero reports whether d is the zero digest.
func (d Digest) IsZero() bool {
	return d == Zero
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}
