// Package hamt implements a persistent, content-addressed Hash Array
// Mapped Trie: a 16-way branching associative map whose nodes can be
// snapshotted to, and lazily reloaded from, a content-addressable blob
// store.
package hamt

import (
	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/jaiminpan/kvhamt/blob"
	"github.com/jaiminpan/kvhamt/store"
)

// slotsPerNode is the branching factor: 16 children per node, selected
// by 4 bits of hash per level.
const slotsPerNode = 16

// rehashDepth is how many levels of the trie one hash value can drive
// before it is exhausted and must be rehashed, tolerating arbitrarily
// deep collision chains without a dedicated collision-leaf node.
const rehashDepth = 16

// HAMT is a node of the trie: a fixed array of 16 Handles. A HAMT value
// is only ever meaningfully used via a pointer, since Insert/Remove
// mutate slots in place.
type HAMT[K Keyer, V blob.Content, A Annotation[A, K, V]] struct {
	handles [slotsPerNode]Handle[K, V, A]
	c       codec[K, V, A]
}

// New returns an empty HAMT backed by st, using keyDec/valDec/annDec to
// restore leaves and annotations faulted in from the store.
func New[K Keyer, V blob.Content, A Annotation[A, K, V]](
	st store.Store,
	keyDec blob.Decoder[K],
	valDec blob.Decoder[V],
	annDec blob.Decoder[A],
) *HAMT[K, V, A] {
	return newEmpty(codec[K, V, A]{store: st, keyDec: keyDec, valDec: valDec, annDec: annDec})
}

func newEmpty[K Keyer, V blob.Content, A Annotation[A, K, V]](c codec[K, V, A]) *HAMT[K, V, A] {
	return &HAMT[K, V, A]{c: c}
}

// hashKey computes the fast, non-cryptographic hash used for slot
// selection. It is unrelated to the content digest used for persistence
// and is never itself persisted.
func hashKey[K Keyer](k K) uint64 {
	return xxhash.Sum64(k.Bytes())
}

// calculateSlot implements the spec's slot-selection algorithm: consume
// 4 bits of h per level, rehashing every 16 levels so a hash value never
// runs out no matter how deep a collision chain goes.
func calculateSlot(h uint64, depth int) (slot int, rehashed uint64) {
	for depth >= rehashDepth {
		h = rehash(h)
		depth -= rehashDepth
	}
	return int((h >> uint(depth*4)) & 0xF), h
}

// rehash derives a fresh 64-bit value from an exhausted hash, by hashing
// its own big-endian byte representation.
func rehash(h uint64) uint64 {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(h >> (8 * uint(7-i)))
	}
	return xxhash.Sum64(buf[:])
}

// Insert places v under k, returning the previous value and true if k
// was already present (last-write-wins).
func (t *HAMT[K, V, A]) Insert(k K, v V) (prev V, hadPrev bool, err error) {
	h := hashKey(k)
	return t.subInsert(0, h, k, v)
}

// subInsert implements the insert action table: Insert/Replace/Split/
// Recurse, keyed off the current state of the child at the computed
// slot.
func (t *HAMT[K, V, A]) subInsert(depth int, h uint64, k K, v V) (prev V, hadPrev bool, err error) {
	// calculateSlot is stateless: it always takes the key's true,
	// never-rehashed hash plus the absolute depth, and re-derives
	// however many rehash cycles that depth implies. h is therefore
	// passed down to every deeper call unchanged; only depth advances.
	slot, _ := calculateSlot(h, depth)
	handle := &t.handles[slot]

	switch handle.Type() {
	case None:
		*handle = NewLeafHandle[K, V, A](KV[K, V]{Key: k, Val: v})
		return prev, false, nil

	case Leaf:
		existing, _ := handle.Leaf()
		if existing.Key == k {
			*handle = NewLeafHandle[K, V, A](KV[K, V]{Key: k, Val: v})
			return existing.Val, true, nil
		}
		// Split: displace the existing leaf into a fresh child node,
		// re-hashing its key from scratch rather than reusing h, since
		// h belongs to the incoming pair, not the displaced one.
		child := newEmpty(t.c)
		*handle = NewNodeHandle[K, V, A](child)

		displacedHash := hashKey(existing.Key)
		if _, _, err := child.subInsert(depth+1, displacedHash, existing.Key, existing.Val); err != nil {
			return prev, false, err
		}
		if _, _, err := child.subInsert(depth+1, h, k, v); err != nil {
			return prev, false, err
		}
		return prev, false, nil

	case Node, Shared:
		child, err := handle.Inner(t.c)
		if err != nil {
			return prev, false, err
		}
		prev, hadPrev, err = child.subInsert(depth+1, h, k, v)
		if err != nil {
			return prev, hadPrev, err
		}
		handle.invalidateAnnotation()
		return prev, hadPrev, nil

	default:
		return prev, false, errors.Wrap(ErrUnreachable, "hamt: insert found handle with invalid type")
	}
}

// Get looks up k, returning its value and true if present.
func (t *HAMT[K, V, A]) Get(k K) (V, bool, error) {
	var zero V
	branch, err := t.search(NewHAMTSearch[K, V, A](k))
	if err != nil {
		return zero, false, err
	}
	if branch == nil {
		return zero, false, nil
	}
	kv, ok := branch.Leaf()
	if !ok {
		return zero, false, errors.Wrap(ErrUnreachable, "hamt: search produced a branch with no leaf")
	}
	return kv.Val, true, nil
}

// removed is the outcome of sub_remove: either nothing was removed, a
// leaf was removed with no further structural change needed, or a leaf
// was removed and the caller must replace the child subtree with
// reinsert because it collapsed to a singleton.
type removed[K Keyer, V blob.Content] struct {
	state    removedState
	leaf     KV[K, V]
	reinsert KV[K, V]
}

type removedState int

const (
	removedNone removedState = iota
	removedLeaf
	removedCollapse
)

// Remove deletes k, returning its prior value and true if it was
// present.
func (t *HAMT[K, V, A]) Remove(k K) (V, bool, error) {
	var zero V
	h := hashKey(k)
	r, err := t.subRemove(0, h, k)
	if err != nil {
		return zero, false, err
	}
	switch r.state {
	case removedNone:
		return zero, false, nil
	case removedLeaf:
		return r.leaf.Val, true, nil
	default:
		// A Collapse escaping the root would mean the depth>0 guard in
		// subRemove was violated; this is a structural bug, not a data
		// condition, so it is fatal per the core's error handling design.
		return zero, false, errors.Wrap(ErrUnreachable, "hamt: Collapse escaped to root")
	}
}

// subRemove implements the remove action table together with
// remove_singleton: after handling the targeted slot, a non-root node
// scans for the post-removal singleton shape (exactly one Leaf child and
// no Node children) and collapses itself into that Leaf if found.
func (t *HAMT[K, V, A]) subRemove(depth int, h uint64, k K) (removed[K, V], error) {
	// See subInsert: calculateSlot is stateless, so h is forwarded to
	// deeper calls unchanged rather than threading its rehashed return.
	slot, _ := calculateSlot(h, depth)
	handle := &t.handles[slot]

	var out removed[K, V]

	switch handle.Type() {
	case None:
		return removed[K, V]{state: removedNone}, nil

	case Leaf:
		existing, _ := handle.Leaf()
		if existing.Key != k {
			return removed[K, V]{state: removedNone}, nil
		}
		*handle = NewEmptyHandle[K, V, A]()
		out = removed[K, V]{state: removedLeaf, leaf: existing}

	case Node, Shared:
		child, err := handle.Inner(t.c)
		if err != nil {
			return removed[K, V]{}, err
		}
		r, err := child.subRemove(depth+1, h, k)
		if err != nil {
			return removed[K, V]{}, err
		}
		switch r.state {
		case removedNone:
			return r, nil
		case removedLeaf:
			handle.invalidateAnnotation()
			out = r
		case removedCollapse:
			*handle = NewLeafHandle[K, V, A](r.reinsert)
			out = removed[K, V]{state: removedLeaf, leaf: r.leaf}
		default:
			return removed[K, V]{}, errors.Wrap(ErrUnreachable, "hamt: child reported invalid remove state")
		}

	default:
		return removed[K, V]{}, errors.Wrap(ErrUnreachable, "hamt: remove found handle with invalid type")
	}

	if depth == 0 {
		return out, nil
	}
	return t.removeSingleton(out)
}

// removeSingleton scans all 16 slots for the post-removal singleton
// shape and collapses this node into its lone leaf if found, restoring
// the no-singleton invariant for non-root nodes.
func (t *HAMT[K, V, A]) removeSingleton(out removed[K, V]) (removed[K, V], error) {
	var lone KV[K, V]
	var loneSlot = -1
	nodes := 0
	leaves := 0

	for i := range t.handles {
		switch t.handles[i].Type() {
		case Leaf:
			leaves++
			lone, _ = t.handles[i].Leaf()
			loneSlot = i
		case Node, Shared:
			nodes++
		}
	}

	if leaves == 1 && nodes == 0 {
		t.handles[loneSlot] = NewEmptyHandle[K, V, A]()
		return removed[K, V]{state: removedCollapse, leaf: out.leaf, reinsert: lone}, nil
	}
	return removed[K, V]{state: removedLeaf, leaf: out.leaf}, nil
}

// annotation folds this node's child annotations via Combine, deriving
// each child's annotation first (recursively, for Leaf/Node children;
// from cache for Shared children).
func (t *HAMT[K, V, A]) annotation(c codec[K, V, A]) (A, error) {
	var zero A
	parts := make([]A, 0, slotsPerNode)
	for i := range t.handles {
		ann, ok, err := t.handles[i].Annotation(c)
		if err != nil {
			return zero, err
		}
		if ok {
			parts = append(parts, ann)
		}
	}
	return zero.Combine(parts), nil
}

// Annotation returns the root's summary value.
func (t *HAMT[K, V, A]) Annotation() (A, error) {
	return t.annotation(t.c)
}
