package hamt

import "github.com/jaiminpan/kvhamt/blob"

// HAMTSearch is the Method that drives key lookup. It carries the
// target key's hash and the key itself, consuming 4 bits of hash and
// advancing depth on every Select call, exactly mirroring the slot
// selection insert uses.
type HAMTSearch[K Keyer, V blob.Content, A Annotation[A, K, V]] struct {
	hash  uint64
	key   K
	depth int
}

// NewHAMTSearch returns a Method that locates k.
func NewHAMTSearch[K Keyer, V blob.Content, A Annotation[A, K, V]](k K) *HAMTSearch[K, V, A] {
	return &HAMTSearch[K, V, A]{hash: hashKey(k), key: k}
}

// Select implements Method. It always descends (ResultPath) unless the
// slot already holds the target leaf; a None slot still yields
// ResultPath, leaving the walker itself to detect the resulting
// terminal failure.
func (s *HAMTSearch[K, V, A]) Select(handles []Handle[K, V, A]) (SearchResult, int) {
	// calculateSlot is stateless given the key's true hash and the
	// absolute depth, so s.hash is never overwritten with its rehashed
	// return; only depth advances between calls (see subInsert).
	slot, _ := calculateSlot(s.hash, s.depth)
	s.depth++

	if kv, ok := handles[slot].Leaf(); ok && kv.Key == s.key {
		return ResultLeaf, slot
	}
	return ResultPath, slot
}

// First selects the lowest-indexed slot at or after Start that is
// Leaf-or-Node, used to drive full, in-order (slot 0 through 15,
// depth-first) iteration.
type First[K Keyer, V blob.Content, A Annotation[A, K, V]] struct {
	Start int
}

// Select implements Method.
func (f *First[K, V, A]) Select(handles []Handle[K, V, A]) (SearchResult, int) {
	for i := f.Start; i < len(handles); i++ {
		switch handles[i].Type() {
		case Leaf:
			return ResultLeaf, i
		case Node, Shared:
			return ResultPath, i
		}
	}
	return ResultNone, 0
}
