package blob

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/jaiminpan/kvhamt/digest"
	"github.com/jaiminpan/kvhamt/store"
)

// Sink accumulates the byte representation of one persisted node body. A
// Sink is backed by any store.Writer: child subtrees are written through
// Nested sinks and collapsed into digests via Finish before the parent
// body is itself finished, so the bytes that ever reach the writer for
// one key are exactly one node's worth - children are referenced by
// digest, never inlined. Passing a store.Batch as the writer lets a
// whole tree's worth of node bodies accumulate and commit in one Submit.
type Sink struct {
	st  store.Writer
	buf []byte
}

// NewSink returns a Sink that persists into w.
func NewSink(w store.Writer) *Sink {
	return &Sink{st: w}
}

// Nested returns a fresh Sink sharing the same backing store, for
// encoding a child value whose digest (not its bytes) belongs in the
// parent body.
func (s *Sink) Nested() *Sink {
	return NewSink(s.st)
}

// Bytes writes raw bytes to the sink with no length prefix.
func (s *Sink) Bytes(p []byte) {
	s.buf = append(s.buf, p...)
}

// Byte writes a single byte to the sink.
func (s *Sink) Byte(b byte) {
	s.buf = append(s.buf, b)
}

// Uint16 writes v in big-endian order.
func (s *Sink) Uint16(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	s.buf = append(s.buf, tmp[:]...)
}

// Uint32 writes v in big-endian order.
func (s *Sink) Uint32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	s.buf = append(s.buf, tmp[:]...)
}

// Uint64 writes v in big-endian order.
func (s *Sink) Uint64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	s.buf = append(s.buf, tmp[:]...)
}

// VarBytes writes p prefixed with its length as a uint32.
func (s *Sink) VarBytes(p []byte) {
	s.Uint32(uint32(len(p)))
	s.Bytes(p)
}

// Digest writes d verbatim; a digest has fixed width so it needs no
// length prefix.
func (s *Sink) Digest(d digest.Digest) {
	s.buf = append(s.buf, d[:]...)
}

// Persist writes c's byte representation into the sink.
func (s *Sink) Persist(c Content) error {
	return c.Persist(s)
}

// Finish hashes the bytes accumulated so far, stores them under that
// digest in the backing store, resets the sink for reuse and returns the
// digest. Finish is how a child subtree is replaced by a reference in
// its parent's body.
func (s *Sink) Finish() (digest.Digest, error) {
	d := digest.Sum(s.buf)
	if err := s.st.Put(d, s.buf); err != nil {
		return digest.Digest{}, errors.Wrap(err, "blob: finishing sink")
	}
	s.buf = s.buf[:0]
	return d, nil
}

// Peek returns the bytes accumulated so far without finishing the sink.
func (s *Sink) Peek() []byte {
	return s.buf
}
