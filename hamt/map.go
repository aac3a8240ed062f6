package hamt

import (
	"github.com/jaiminpan/kvhamt/blob"
	"github.com/jaiminpan/kvhamt/store"
)

// Map is the associative-container facade over a HAMT: Get/Insert/
// Remove keyed by K, with HAMTSearch as the fixed KeySearch method. It
// adds no state of its own beyond the tree; it exists so callers reason
// in terms of the map contract rather than the trie's internal
// operations.
type Map[K Keyer, V blob.Content, A Annotation[A, K, V]] struct {
	tree *HAMT[K, V, A]
}

// NewMap wraps a fresh, empty HAMT as a Map.
func NewMap[K Keyer, V blob.Content, A Annotation[A, K, V]](
	st store.Store,
	keyDec blob.Decoder[K],
	valDec blob.Decoder[V],
	annDec blob.Decoder[A],
) *Map[K, V, A] {
	return &Map[K, V, A]{tree: New[K, V, A](st, keyDec, valDec, annDec)}
}

// MapOver wraps an already-built HAMT as a Map.
func MapOver[K Keyer, V blob.Content, A Annotation[A, K, V]](tree *HAMT[K, V, A]) *Map[K, V, A] {
	return &Map[K, V, A]{tree: tree}
}

// Tree returns the underlying HAMT.
func (m *Map[K, V, A]) Tree() *HAMT[K, V, A] {
	return m.tree
}

// Get locates k and returns a ValPath wrapper over the branch leading to
// it, or ok=false if k is absent.
func (m *Map[K, V, A]) Get(k K) (path *ValPath[K, V, A], ok bool, err error) {
	branch, err := m.tree.search(NewHAMTSearch[K, V, A](k))
	if err != nil {
		return nil, false, err
	}
	if branch == nil {
		return nil, false, nil
	}
	return &ValPath[K, V, A]{branch: branch}, true, nil
}

// Insert places v under k, returning the previous value and true if k
// was already present.
func (m *Map[K, V, A]) Insert(k K, v V) (prev V, hadPrev bool, err error) {
	return m.tree.Insert(k, v)
}

// Remove deletes k, returning its prior value and true if it was
// present.
func (m *Map[K, V, A]) Remove(k K) (V, bool, error) {
	return m.tree.Remove(k)
}

// ValPath is a reference wrapper that owns the Branch leading to a
// located leaf and dereferences to its value. It keeps the branch (and
// transitively, any nodes it faulted in) alive for as long as the
// ValPath itself is alive.
type ValPath[K Keyer, V blob.Content, A Annotation[A, K, V]] struct {
	branch *Branch[K, V, A]
}

// Value returns the value at the end of the branch.
func (p *ValPath[K, V, A]) Value() V {
	kv, _ := p.branch.Leaf()
	return kv.Val
}

// Key returns the key at the end of the branch.
func (p *ValPath[K, V, A]) Key() K {
	kv, _ := p.branch.Leaf()
	return kv.Key
}

// ProjectValPath maps a ValPath to a sub-field of its value via a
// user-supplied projection, while keeping the underlying branch (and any
// subtrees it faulted in) alive for the duration of the call. This is a
// free function, not a method, because Go method declarations cannot
// introduce a new type parameter (R) beyond those already bound on
// ValPath.
func ProjectValPath[K Keyer, V blob.Content, A Annotation[A, K, V], R any](p *ValPath[K, V, A], project func(V) R) R {
	return project(p.Value())
}
