package hamt

import "github.com/jaiminpan/kvhamt/blob"

// iterFrame is one level of an Iterator's traversal stack: the node
// being scanned and the next slot to try there.
type iterFrame[K Keyer, V blob.Content, A Annotation[A, K, V]] struct {
	node *HAMT[K, V, A]
	next int
}

// Iterator is a lazy, finite, non-restartable depth-first traversal of
// a HAMT, driven by First. It owns a fixed-depth stack of frames plus
// the Method, per the core's no-parent-pointers iteration design.
//
// Iterator is poisoned by an I/O error: once Next returns an error,
// subsequent calls keep returning that same error rather than resuming.
type Iterator[K Keyer, V blob.Content, A Annotation[A, K, V]] struct {
	stack []iterFrame[K, V, A]
	c     codec[K, V, A]
	err   error
	done  bool
}

// newIterator returns an Iterator starting at root.
func newIterator[K Keyer, V blob.Content, A Annotation[A, K, V]](root *HAMT[K, V, A]) *Iterator[K, V, A] {
	return &Iterator[K, V, A]{
		stack: []iterFrame[K, V, A]{{node: root, next: 0}},
		c:     root.c,
	}
}

// Next returns the next leaf in traversal order, or ok=false once the
// traversal is exhausted.
func (it *Iterator[K, V, A]) Next() (kv KV[K, V], ok bool, err error) {
	if it.done {
		return KV[K, V]{}, false, it.err
	}
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		m := &First[K, V, A]{Start: top.next}
		result, slot := m.Select(top.node.handles[:])

		switch result {
		case ResultNone:
			it.stack = it.stack[:len(it.stack)-1]
			continue
		case ResultLeaf:
			top.next = slot + 1
			kv, _ := top.node.handles[slot].Leaf()
			return kv, true, nil
		case ResultPath:
			top.next = slot + 1
			child, ferr := top.node.handles[slot].Inner(it.c)
			if ferr != nil {
				it.err = ferr
				it.done = true
				return KV[K, V]{}, false, ferr
			}
			it.stack = append(it.stack, iterFrame[K, V, A]{node: child, next: 0})
		}
	}
	it.done = true
	return KV[K, V]{}, false, nil
}

// Values returns an iterator over t's values in traversal order.
func (t *HAMT[K, V, A]) Values() *ValueIterator[K, V, A] {
	return &ValueIterator[K, V, A]{it: newIterator(t)}
}

// ValueIterator yields values only.
type ValueIterator[K Keyer, V blob.Content, A Annotation[A, K, V]] struct {
	it *Iterator[K, V, A]
}

// Next returns the next value, or ok=false once exhausted.
func (vi *ValueIterator[K, V, A]) Next() (V, bool, error) {
	kv, ok, err := vi.it.Next()
	return kv.Val, ok, err
}

// Keys returns an iterator over t's keys in traversal order.
func (t *HAMT[K, V, A]) Keys() *KeyIterator[K, V, A] {
	return &KeyIterator[K, V, A]{it: newIterator(t)}
}

// KeyIterator yields keys only.
type KeyIterator[K Keyer, V blob.Content, A Annotation[A, K, V]] struct {
	it *Iterator[K, V, A]
}

// Next returns the next key, or ok=false once exhausted.
func (ki *KeyIterator[K, V, A]) Next() (K, bool, error) {
	kv, ok, err := ki.it.Next()
	return kv.Key, ok, err
}
