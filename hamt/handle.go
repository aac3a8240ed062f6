package hamt

import (
	"github.com/pkg/errors"

	"github.com/jaiminpan/kvhamt/blob"
	"github.com/jaiminpan/kvhamt/digest"
	"github.com/jaiminpan/kvhamt/store"
)

// HandleType classifies the four states a Handle may be in. It is the
// result of a non-faulting inspection: a Shared handle reports Shared
// even though it will become Node once materialised.
type HandleType int

const (
	// None is an empty slot.
	None HandleType = iota
	// Leaf holds one KV inline.
	Leaf
	// Node holds a fully materialised child subtree inline.
	Node
	// Shared names a child subtree that lives only in the blob store,
	// plus an optional cached annotation.
	Shared
)

func (t HandleType) String() string {
	switch t {
	case None:
		return "None"
	case Leaf:
		return "Leaf"
	case Node:
		return "Node"
	case Shared:
		return "Shared"
	default:
		return "Unknown"
	}
}

// ErrUnreachable marks an internal invariant violation: a structural
// state the algorithm proved could not occur. Per the core's error
// handling design these are fatal; callers should not attempt recovery.
var ErrUnreachable = errors.New("hamt: unreachable structural state")

// Handle is the polymorphic child cell of a HAMT node: it owns nothing,
// an inline leaf, an inline subtree, or only a digest (plus cached
// annotation) referring to a subtree persisted in the blob store.
//
// Node subtrees are held directly in HAMT's wire-format invariant: a
// Shared handle, for a HAMT, only ever arises from a persisted Node
// (never a persisted Leaf, since leaves are always serialised inline).
// That lets Leaf() be a pure, non-faulting inspection, while only the
// Node-reading path (Inner) ever needs to fault in from the store.
type Handle[K Keyer, V blob.Content, A Annotation[A, K, V]] struct {
	typ HandleType

	leaf KV[K, V]
	node *HAMT[K, V, A]

	digest digest.Digest
	ann    A
	hasAnn bool
}

// NewEmptyHandle returns a None handle.
func NewEmptyHandle[K Keyer, V blob.Content, A Annotation[A, K, V]]() Handle[K, V, A] {
	return Handle[K, V, A]{typ: None}
}

// NewLeafHandle returns a handle holding kv inline.
func NewLeafHandle[K Keyer, V blob.Content, A Annotation[A, K, V]](kv KV[K, V]) Handle[K, V, A] {
	return Handle[K, V, A]{typ: Leaf, leaf: kv}
}

// NewNodeHandle returns a handle holding node inline.
func NewNodeHandle[K Keyer, V blob.Content, A Annotation[A, K, V]](node *HAMT[K, V, A]) Handle[K, V, A] {
	return Handle[K, V, A]{typ: Node, node: node}
}

// Type reports the handle's state without performing any I/O.
func (h *Handle[K, V, A]) Type() HandleType {
	return h.typ
}

// IsNone reports whether the slot is empty.
func (h *Handle[K, V, A]) IsNone() bool {
	return h.typ == None
}

// Leaf returns the inline leaf and true if the handle is a Leaf. This
// never faults: a Shared handle never represents a leaf (see the type
// doc comment), so inspecting for a leaf never needs the store.
func (h *Handle[K, V, A]) Leaf() (KV[K, V], bool) {
	if h.typ != Leaf {
		return KV[K, V]{}, false
	}
	return h.leaf, true
}

// codec bundles the out-of-band collaborators a Handle needs to fault a
// Shared child in from the store: the store itself and the decoders for
// this tree's leaf key, leaf value and annotation types. It is threaded
// through explicitly rather than stored on the Handle, since every
// Handle in a tree shares the same codec and the owning HAMT node
// already holds one.
type codec[K Keyer, V blob.Content, A Annotation[A, K, V]] struct {
	store  store.Store
	keyDec blob.Decoder[K]
	valDec blob.Decoder[V]
	annDec blob.Decoder[A]
}

// fault materialises a Shared handle into a Node handle by reading its
// body from the store. It is a no-op if the handle is not Shared.
func (h *Handle[K, V, A]) fault(c codec[K, V, A]) error {
	if h.typ != Shared {
		return nil
	}
	source, err := blob.Open(c.store, h.digest)
	if err != nil {
		return errors.Wrap(err, "hamt: faulting in node")
	}
	node, err := decodeHAMT(source, c)
	if err != nil {
		return errors.Wrap(err, "hamt: decoding faulted node")
	}
	h.node = node
	h.typ = Node
	return nil
}

// Inner returns the handle's child node, faulting it in from the store
// if the handle is currently Shared. It returns nil, nil for a None
// handle and an error if asked of a Leaf handle.
func (h *Handle[K, V, A]) Inner(c codec[K, V, A]) (*HAMT[K, V, A], error) {
	switch h.typ {
	case None:
		return nil, nil
	case Leaf:
		return nil, errors.Wrap(ErrUnreachable, "hamt: Inner called on Leaf handle")
	case Node:
		return h.node, nil
	case Shared:
		if err := h.fault(c); err != nil {
			return nil, err
		}
		return h.node, nil
	default:
		return nil, errors.Wrap(ErrUnreachable, "hamt: handle has invalid type")
	}
}

// Replace atomically swaps h's contents with other, returning the prior
// contents by value.
func (h *Handle[K, V, A]) Replace(other Handle[K, V, A]) Handle[K, V, A] {
	prev := *h
	*h = other
	return prev
}

// invalidateAnnotation drops a Node/Shared handle's cached annotation.
// Callers must invoke this on any handle whose child subtree they just
// mutated (insert/remove descending through it), since the cache would
// otherwise keep reporting the pre-mutation summary.
func (h *Handle[K, V, A]) invalidateAnnotation() {
	h.hasAnn = false
}

// Annotation returns the handle's summary value: for Leaf it is derived
// on demand, for Node/Shared the cached value is returned (computing and
// caching it first if necessary, which for a Shared handle requires no
// fault-in since the annotation travels with the digest), and for None
// it reports false.
func (h *Handle[K, V, A]) Annotation(c codec[K, V, A]) (A, bool, error) {
	var zero A
	switch h.typ {
	case None:
		return zero, false, nil
	case Leaf:
		return zero.FromLeaf(h.leaf), true, nil
	case Shared:
		if h.hasAnn {
			return h.ann, true, nil
		}
		// No cached annotation travelled with this digest (e.g. it was
		// restored from an older format); fault in and derive it.
		if err := h.fault(c); err != nil {
			return zero, false, err
		}
		fallthrough
	case Node:
		if h.hasAnn {
			return h.ann, true, nil
		}
		ann, err := h.node.annotation(c)
		if err != nil {
			return zero, false, err
		}
		h.ann = ann
		h.hasAnn = true
		return ann, true, nil
	default:
		return zero, false, errors.Wrap(ErrUnreachable, "hamt: handle has invalid type")
	}
}

// Persist writes the handle's wire representation to sink: a tag byte,
// followed by the leaf body (Leaf), or a digest plus cached annotation
// (Shared). A Node handle is first persisted into a nested sink and
// replaced in place with the resulting Shared handle, so that
// re-persisting an already-Shared handle costs only the digest bytes.
func (h *Handle[K, V, A]) Persist(sink *blob.Sink, c codec[K, V, A]) error {
	switch h.typ {
	case None:
		sink.Byte(0)
		return nil
	case Leaf:
		sink.Byte(1)
		return h.leaf.Persist(sink)
	case Node:
		ann, _, err := h.Annotation(c)
		if err != nil {
			return err
		}
		nested := sink.Nested()
		if err := h.node.persist(nested, c); err != nil {
			return err
		}
		d, err := nested.Finish()
		if err != nil {
			return err
		}
		h.digest = d
		h.ann = ann
		h.hasAnn = true
		h.typ = Shared
		h.node = nil
		fallthrough
	case Shared:
		ann, _, err := h.Annotation(c)
		if err != nil {
			return err
		}
		sink.Byte(2)
		sink.Digest(h.digest)
		return ann.Persist(sink)
	default:
		return errors.Wrap(ErrUnreachable, "hamt: handle has invalid type")
	}
}

// decodeHandle reads back a Handle previously written by Persist. Shared
// handles are left Shared (not eagerly faulted); the tree is restored
// lazily just as insert/lookup expect.
func decodeHandle[K Keyer, V blob.Content, A Annotation[A, K, V]](source *blob.Source, c codec[K, V, A]) (Handle[K, V, A], error) {
	tag, err := source.Byte()
	if err != nil {
		return Handle[K, V, A]{}, err
	}
	switch tag {
	case 0:
		return NewEmptyHandle[K, V, A](), nil
	case 1:
		kv, err := decodeKV(c.keyDec, c.valDec)(source)
		if err != nil {
			return Handle[K, V, A]{}, err
		}
		return NewLeafHandle[K, V, A](kv), nil
	case 2:
		d, err := source.Digest()
		if err != nil {
			return Handle[K, V, A]{}, err
		}
		ann, err := c.annDec(source)
		if err != nil {
			return Handle[K, V, A]{}, err
		}
		return Handle[K, V, A]{typ: Shared, digest: d, ann: ann, hasAnn: true}, nil
	default:
		return Handle[K, V, A]{}, errors.Errorf("hamt: invalid handle tag %d", tag)
	}
}
