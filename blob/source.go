package blob

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/jaiminpan/kvhamt/digest"
	"github.com/jaiminpan/kvhamt/store"
)

// ErrShortBuffer is returned when a Source is asked to read more bytes
// than remain.
var ErrShortBuffer = errors.New("blob: short buffer")

// Source reads back the byte representation written by a Sink. A Source
// also carries the backing store, so that a digest read out of a parent
// body can be turned into a nested Source over the child's bytes on
// demand, mirroring Sink.Nested.
type Source struct {
	st  store.Store
	buf []byte
	pos int
}

// NewSource wraps buf for reading, backed by st for resolving nested
// digests.
func NewSource(st store.Store, buf []byte) *Source {
	return &Source{st: st, buf: buf}
}

// Open loads the blob stored under d and returns a Source over it.
func Open(st store.Store, d digest.Digest) (*Source, error) {
	buf, err := st.Get(d)
	if err != nil {
		return nil, errors.Wrapf(err, "blob: opening %s", d)
	}
	return NewSource(st, buf), nil
}

func (s *Source) take(n int) ([]byte, error) {
	if s.pos+n > len(s.buf) {
		return nil, ErrShortBuffer
	}
	p := s.buf[s.pos : s.pos+n]
	s.pos += n
	return p, nil
}

// Bytes reads exactly n raw bytes.
func (s *Source) Bytes(n int) ([]byte, error) {
	return s.take(n)
}

// Byte reads a single byte.
func (s *Source) Byte() (byte, error) {
	p, err := s.take(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// Uint16 reads a big-endian uint16.
func (s *Source) Uint16() (uint16, error) {
	p, err := s.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p), nil
}

// Uint32 reads a big-endian uint32.
func (s *Source) Uint32() (uint32, error) {
	p, err := s.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p), nil
}

// Uint64 reads a big-endian uint64.
func (s *Source) Uint64() (uint64, error) {
	p, err := s.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(p), nil
}

// VarBytes reads a uint32-length-prefixed byte slice.
func (s *Source) VarBytes() ([]byte, error) {
	n, err := s.Uint32()
	if err != nil {
		return nil, err
	}
	return s.take(int(n))
}

// Digest reads a fixed-width digest.Digest.
func (s *Source) Digest() (digest.Digest, error) {
	p, err := s.take(digest.Size)
	if err != nil {
		return digest.Digest{}, err
	}
	var d digest.Digest
	copy(d[:], p)
	return d, nil
}

// Open loads the blob stored under d, using the Source's backing store,
// and returns a Source over it. It is the read-side counterpart of
// Sink.Nested/Sink.Finish: a digest decoded from the parent body is
// turned into a Source over the child's bytes.
func (s *Source) Open(d digest.Digest) (*Source, error) {
	return Open(s.st, d)
}

// Decode reads a T from s using dec.
func Decode[T any](s *Source, dec Decoder[T]) (T, error) {
	return dec(s)
}

// Remaining reports how many unread bytes are left in the source.
func (s *Source) Remaining() int {
	return len(s.buf) - s.pos
}
