package hamt

import (
	"github.com/pkg/errors"

	"github.com/jaiminpan/kvhamt/blob"
	"github.com/jaiminpan/kvhamt/digest"
	"github.com/jaiminpan/kvhamt/store"
)

// persist writes this node's body to sink: a 16-bit presence mask
// (big-endian; bit i set iff slot i is non-None) followed by each
// present handle in slot order. Because slot order is canonical, two
// semantically equal trees produce byte-identical bodies and thus
// identical digests, given deterministic leaf serialisation.
func (t *HAMT[K, V, A]) persist(sink *blob.Sink, c codec[K, V, A]) error {
	var mask uint16
	for i := range t.handles {
		if !t.handles[i].IsNone() {
			mask |= 1 << uint(i)
		}
	}
	sink.Uint16(mask)
	for i := range t.handles {
		if t.handles[i].IsNone() {
			continue
		}
		if err := t.handles[i].Persist(sink, c); err != nil {
			return err
		}
	}
	return nil
}

// decodeHAMT reads back a node body previously written by persist.
// Absent slots are left as their zero value, which is already None.
func decodeHAMT[K Keyer, V blob.Content, A Annotation[A, K, V]](source *blob.Source, c codec[K, V, A]) (*HAMT[K, V, A], error) {
	mask, err := source.Uint16()
	if err != nil {
		return nil, err
	}
	node := newEmpty(c)
	for i := 0; i < slotsPerNode; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		h, err := decodeHandle(source, c)
		if err != nil {
			return nil, err
		}
		node.handles[i] = h
	}
	return node, nil
}

// Persist implements blob.Content, so a HAMT can itself be used as the
// leaf key or value type of an enclosing HAMT (the nested-tree
// scenario). It writes this node's body, faulting nothing: any child
// already Shared is written as its digest, and any inline Node child is
// persisted into a nested sink exactly as Snapshot does for the root.
func (t *HAMT[K, V, A]) Persist(sink *blob.Sink) error {
	return t.persist(sink, t.c)
}

// Snapshot writes the whole tree rooted at t to its backing store,
// returning the content digest of the root body. Every Node handle
// reachable from the root is persisted and rewritten to Shared as a
// side effect; re-snapshotting an unmutated tree is cheap, since
// already-Shared handles cost only their digest bytes.
func (t *HAMT[K, V, A]) Snapshot() (digest.Digest, error) {
	sink := blob.NewSink(t.c.store)
	if err := t.Persist(sink); err != nil {
		return digest.Digest{}, err
	}
	return sink.Finish()
}

// SnapshotBatched behaves like Snapshot, but if the backing store
// implements store.Batcher, every node body produced by the traversal is
// accumulated into a single store.Batch and submitted in one call,
// rather than issued as one store.Put per node.
func (t *HAMT[K, V, A]) SnapshotBatched() (digest.Digest, error) {
	batcher, ok := t.c.store.(store.Batcher)
	if !ok {
		return t.Snapshot()
	}
	batch := batcher.NewBatch()
	sink := blob.NewSink(batch)
	if err := t.Persist(sink); err != nil {
		return digest.Digest{}, err
	}
	d, err := sink.Finish()
	if err != nil {
		return digest.Digest{}, err
	}
	if err := batch.Submit(); err != nil {
		return digest.Digest{}, errors.Wrap(err, "hamt: submitting persist batch")
	}
	return d, nil
}

// Restore rebuilds a tree's root node from the digest previously
// returned by Snapshot, reading from st. The returned tree is restored
// lazily: non-root subtrees remain Shared until first accessed.
func Restore[K Keyer, V blob.Content, A Annotation[A, K, V]](
	st store.Store,
	d digest.Digest,
	keyDec blob.Decoder[K],
	valDec blob.Decoder[V],
	annDec blob.Decoder[A],
) (*HAMT[K, V, A], error) {
	c := codec[K, V, A]{store: st, keyDec: keyDec, valDec: valDec, annDec: annDec}
	source, err := blob.Open(st, d)
	if err != nil {
		return nil, errors.Wrap(err, "hamt: restoring root")
	}
	return decodeHAMT(source, c)
}

// Decoder returns the blob.Decoder for a *HAMT[K,V,A], so that a HAMT
// can serve as the value (or key) type of an enclosing HAMT: the nested
// tree's own store and leaf/annotation codecs are supplied once here,
// then threaded through automatically whenever the outer tree faults in
// or restores a leaf of this type.
func Decoder[K Keyer, V blob.Content, A Annotation[A, K, V]](
	st store.Store,
	keyDec blob.Decoder[K],
	valDec blob.Decoder[V],
	annDec blob.Decoder[A],
) blob.Decoder[*HAMT[K, V, A]] {
	c := codec[K, V, A]{store: st, keyDec: keyDec, valDec: valDec, annDec: annDec}
	return func(source *blob.Source) (*HAMT[K, V, A], error) {
		return decodeHAMT(source, c)
	}
}
