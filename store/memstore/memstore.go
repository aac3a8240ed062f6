// Package memstore provides an in-memory store.Store, adapted from the
// teacher's accdb/memorydb package, for tests and for callers that do not
// need persistence across process restarts.
package memstore

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/jaiminpan/kvhamt/digest"
	"github.com/jaiminpan/kvhamt/store"
)

// ErrNotFound is returned by Get when the requested digest is absent.
var ErrNotFound = errors.New("memstore: digest not found")

// MemStore is an ephemeral, map-backed store.Store safe for concurrent
// use.
type MemStore struct {
	mu db
}

type db struct {
	sync.RWMutex
	m map[digest.Digest][]byte
}

// New returns an empty MemStore.
func New() *MemStore {
	return &MemStore{mu: db{m: make(map[digest.Digest][]byte)}}
}

// Has implements store.Reader.
func (s *MemStore) Has(key digest.Digest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.mu.m[key]
	return ok, nil
}

// Get implements store.Reader.
func (s *MemStore) Get(key digest.Digest) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.mu.m[key]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s", key)
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

// Put implements store.Writer.
func (s *MemStore) Put(key digest.Digest, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.mu.m[key] = cp
	return nil
}

// Len reports the number of blobs currently stored.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.mu.m)
}

// NewBatch implements store.Batcher.
func (s *MemStore) NewBatch() store.Batch {
	return &batch{host: s}
}

type keyedValue struct {
	key   digest.Digest
	value []byte
}

// batch buffers writes until Submit is called, mirroring the teacher's
// memoryBatch pattern of replaying queued writes against the host store.
type batch struct {
	host *MemStore
	rows []keyedValue
	size int
}

// Put implements store.Writer.
func (b *batch) Put(key digest.Digest, value []byte) error {
	b.rows = append(b.rows, keyedValue{key: key, value: append([]byte(nil), value...)})
	b.size += len(value)
	return nil
}

// ValueSize implements store.Batch.
func (b *batch) ValueSize() int {
	return b.size
}

// Submit implements store.Batch.
func (b *batch) Submit() error {
	for _, row := range b.rows {
		if err := b.host.Put(row.key, row.value); err != nil {
			return err
		}
	}
	return nil
}

// Reset implements store.Batch.
func (b *batch) Reset() {
	b.rows = b.rows[:0]
	b.size = 0
}
