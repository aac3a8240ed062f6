package hamt

import "github.com/jaiminpan/kvhamt/blob"

// frame is one step of a root-to-leaf path: the node visited and the
// slot selected within it.
type frame[K Keyer, V blob.Content, A Annotation[A, K, V]] struct {
	node *HAMT[K, V, A]
	slot int
}

// Branch is a materialised root-to-leaf path produced by driving a
// Method across nested HAMT nodes. It holds no parent pointers; the
// path is recorded explicitly as the walker descends, so the tree
// remains acyclic by construction.
type Branch[K Keyer, V blob.Content, A Annotation[A, K, V]] struct {
	frames []frame[K, V, A]
}

// Leaf returns the leaf the branch terminates at, if any.
func (b *Branch[K, V, A]) Leaf() (KV[K, V], bool) {
	if len(b.frames) == 0 {
		return KV[K, V]{}, false
	}
	last := b.frames[len(b.frames)-1]
	return last.node.handles[last.slot].Leaf()
}

// Depth reports how many nodes the branch passed through.
func (b *Branch[K, V, A]) Depth() int {
	return len(b.frames)
}

// search drives m across the tree rooted at t, returning the resulting
// Branch, or nil if m never selects a Leaf (ResultNone at some node, or
// ResultPath into an empty slot).
func (t *HAMT[K, V, A]) search(m Method[K, V, A]) (*Branch[K, V, A], error) {
	branch := &Branch[K, V, A]{}
	node := t
	for {
		result, slot := m.Select(node.handles[:])
		switch result {
		case ResultNone:
			return nil, nil
		case ResultLeaf:
			branch.frames = append(branch.frames, frame[K, V, A]{node: node, slot: slot})
			return branch, nil
		case ResultPath:
			// A Method is free to select unconditionally, without first
			// checking what occupies the slot (see HAMTSearch): a
			// None slot means the key is absent, and a Leaf slot means
			// the leaf that's there doesn't match (Select already
			// checked for a matching Leaf and would have returned
			// ResultLeaf if it found one). Either way that's this
			// walker's own terminal-failure detection; only a Node or
			// Shared slot is worth faulting in and descending.
			switch node.handles[slot].Type() {
			case None, Leaf:
				return nil, nil
			}
			branch.frames = append(branch.frames, frame[K, V, A]{node: node, slot: slot})
			child, err := node.handles[slot].Inner(node.c)
			if err != nil {
				return nil, err
			}
			node = child
		}
	}
}
