// Package store defines the content-addressable blob storage abstraction
// that the hamt package persists nodes through. It mirrors the
// key-value database interfaces of the teacher's accdb package, narrowed
// to the write-once, content-addressed shape a Merkle-DAG needs: keys
// are always digests of the values stored under them, so there is no
// Delete and no notion of overwriting an existing key.
package store

import "github.com/jaiminpan/kvhamt/digest"

// Reader wraps the Has and Get methods of a backing blob store.
type Reader interface {
	// Has retrieves if a digest is present in the store.
	Has(key digest.Digest) (bool, error)

	// Get retrieves the blob stored under key. It returns an error if
	// the key is not present.
	Get(key digest.Digest) ([]byte, error)
}

// Writer wraps the Put method of a backing blob store.
type Writer interface {
	// Put inserts value under key. Put is idempotent: storing the same
	// key twice with the same value is a no-op, and the store is free
	// to assume callers never store two different values under the
	// same key.
	Put(key digest.Digest, value []byte) error
}

// Store is the full read/write blob store interface consumed by the hamt
// package.
type Store interface {
	Reader
	Writer
}

// IdealBatchSize is the size of data a Batch should ideally accumulate
// before being submitted, mirroring the teacher's accdb.IdealBatchSize.
const IdealBatchSize = 100 * 1024

// Batch is a write-only accumulator that commits its contents to a host
// Store when Submit is called. A Batch is not safe for concurrent use.
type Batch interface {
	Writer

	// ValueSize retrieves the amount of data queued up for writing.
	ValueSize() int

	// Submit flushes any accumulated writes to the host store.
	Submit() error

	// Reset clears the batch for reuse.
	Reset()
}

// Batcher is implemented by stores that can produce batched writers. The
// hamt package type-asserts for this interface when persisting a tree and
// falls back to unbatched Puts when a Store does not implement it.
type Batcher interface {
	NewBatch() Batch
}
