// Package content provides ready-made Content/Keyer implementations for
// the primitive key and value types used throughout the tests and
// examples: fixed-width integers and a length-prefixed byte string. Real
// callers are free to supply their own Content types; these exist so the
// hamt package's own tests do not need a bespoke codec for every case.
package content

import (
	"encoding/binary"

	"github.com/jaiminpan/kvhamt/blob"
)

// Uint64 is an 8-byte unsigned integer key or value.
type Uint64 uint64

// Persist implements blob.Content.
func (u Uint64) Persist(sink *blob.Sink) error {
	sink.Uint64(uint64(u))
	return nil
}

// Bytes implements the Keyer contract's hashing/ordering source.
func (u Uint64) Bytes() []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(u))
	return tmp[:]
}

// DecodeUint64 is the blob.Decoder for Uint64.
func DecodeUint64(source *blob.Source) (Uint64, error) {
	v, err := source.Uint64()
	if err != nil {
		return 0, err
	}
	return Uint64(v), nil
}

// Uint32 is a 4-byte unsigned integer key or value.
type Uint32 uint32

// Persist implements blob.Content.
func (u Uint32) Persist(sink *blob.Sink) error {
	sink.Uint32(uint32(u))
	return nil
}

// Bytes implements the Keyer contract's hashing/ordering source.
func (u Uint32) Bytes() []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(u))
	return tmp[:]
}

// DecodeUint32 is the blob.Decoder for Uint32.
func DecodeUint32(source *blob.Source) (Uint32, error) {
	v, err := source.Uint32()
	if err != nil {
		return 0, err
	}
	return Uint32(v), nil
}

// Bytes is a variable-length byte string key or value. It is comparable
// via its string conversion so it may be used as a map key and a
// generic comparable type argument.
type Bytes string

// Persist implements blob.Content.
func (b Bytes) Persist(sink *blob.Sink) error {
	sink.VarBytes([]byte(b))
	return nil
}

// Bytes implements the Keyer contract's hashing/ordering source.
func (b Bytes) Bytes() []byte {
	return []byte(b)
}

// DecodeBytes is the blob.Decoder for Bytes.
func DecodeBytes(source *blob.Source) (Bytes, error) {
	p, err := source.VarBytes()
	if err != nil {
		return "", err
	}
	return Bytes(p), nil
}
