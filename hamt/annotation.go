package hamt

import (
	"cmp"

	"github.com/jaiminpan/kvhamt/blob"
)

// Annotation is a summary value derivable from a single leaf and
// combinable over a slice of sibling annotations. A is bound to its own
// interface (the curiously recurring generic pattern) so that
// HAMT[K,V,A] can require "A annotates (K,V)" without an associated-type
// mechanism: Go methods cannot introduce new type parameters, so the
// combining logic lives on the concrete annotation type itself rather
// than on a non-generic Annotation interface with a generic method.
type Annotation[A any, K Keyer, V blob.Content] interface {
	blob.Content

	// FromLeaf derives an annotation describing a single leaf.
	FromLeaf(kv KV[K, V]) A

	// Combine folds a node's child annotations into one. Combine is
	// called on the zero value of A and must not depend on any state
	// beyond its argument; combining an empty slice returns the zero
	// element of A.
	Combine(parts []A) A
}

// Cardinality annotates a subtree with the number of leaves beneath it.
type Cardinality[K Keyer, V blob.Content] uint64

// FromLeaf implements Annotation.
func (Cardinality[K, V]) FromLeaf(KV[K, V]) Cardinality[K, V] {
	return 1
}

// Combine implements Annotation.
func (Cardinality[K, V]) Combine(parts []Cardinality[K, V]) Cardinality[K, V] {
	var sum Cardinality[K, V]
	for _, p := range parts {
		sum += p
	}
	return sum
}

// Persist implements blob.Content.
func (c Cardinality[K, V]) Persist(sink *blob.Sink) error {
	sink.Uint64(uint64(c))
	return nil
}

// DecodeCardinality is the blob.Decoder for Cardinality.
func DecodeCardinality[K Keyer, V blob.Content](source *blob.Source) (Cardinality[K, V], error) {
	v, err := source.Uint64()
	if err != nil {
		return 0, err
	}
	return Cardinality[K, V](v), nil
}

// OrderedKeyer is the stronger key constraint MaxKey needs: a Keyer
// whose underlying type also supports ordering comparisons.
type OrderedKeyer interface {
	Keyer
	cmp.Ordered
}

// MaxKey annotates a subtree with the greatest key beneath it, along
// with whether the subtree is non-empty (a HAMT holding the zero key is
// otherwise indistinguishable from an absent subtree).
type MaxKey[K OrderedKeyer, V blob.Content] struct {
	Key   K
	Valid bool
}

// FromLeaf implements Annotation.
func (MaxKey[K, V]) FromLeaf(kv KV[K, V]) MaxKey[K, V] {
	return MaxKey[K, V]{Key: kv.Key, Valid: true}
}

// Combine implements Annotation.
func (MaxKey[K, V]) Combine(parts []MaxKey[K, V]) MaxKey[K, V] {
	var max MaxKey[K, V]
	for _, p := range parts {
		if !p.Valid {
			continue
		}
		if !max.Valid || p.Key > max.Key {
			max = p
		}
	}
	return max
}

// Persist implements blob.Content.
func (m MaxKey[K, V]) Persist(sink *blob.Sink) error {
	if !m.Valid {
		sink.Byte(0)
		return nil
	}
	sink.Byte(1)
	return m.Key.Persist(sink)
}

// DecodeMaxKey builds the blob.Decoder for MaxKey out of a key decoder.
func DecodeMaxKey[K OrderedKeyer, V blob.Content](keyDec blob.Decoder[K]) blob.Decoder[MaxKey[K, V]] {
	return func(source *blob.Source) (MaxKey[K, V], error) {
		tag, err := source.Byte()
		if err != nil {
			return MaxKey[K, V]{}, err
		}
		if tag == 0 {
			return MaxKey[K, V]{}, nil
		}
		k, err := keyDec(source)
		if err != nil {
			return MaxKey[K, V]{}, err
		}
		return MaxKey[K, V]{Key: k, Valid: true}, nil
	}
}

// Pair composes two annotations into their product, the standard way to
// annotate a tree with more than one summary value at once.
type Pair[K Keyer, V blob.Content, A1 Annotation[A1, K, V], A2 Annotation[A2, K, V]] struct {
	First  A1
	Second A2
}

// FromLeaf implements Annotation.
func (p Pair[K, V, A1, A2]) FromLeaf(kv KV[K, V]) Pair[K, V, A1, A2] {
	return Pair[K, V, A1, A2]{
		First:  p.First.FromLeaf(kv),
		Second: p.Second.FromLeaf(kv),
	}
}

// Combine implements Annotation.
func (p Pair[K, V, A1, A2]) Combine(parts []Pair[K, V, A1, A2]) Pair[K, V, A1, A2] {
	firsts := make([]A1, len(parts))
	seconds := make([]A2, len(parts))
	for i, part := range parts {
		firsts[i] = part.First
		seconds[i] = part.Second
	}
	return Pair[K, V, A1, A2]{
		First:  p.First.Combine(firsts),
		Second: p.Second.Combine(seconds),
	}
}

// Persist implements blob.Content.
func (p Pair[K, V, A1, A2]) Persist(sink *blob.Sink) error {
	if err := p.First.Persist(sink); err != nil {
		return err
	}
	return p.Second.Persist(sink)
}

// DecodePair builds the blob.Decoder for a Pair out of its component
// decoders.
func DecodePair[K Keyer, V blob.Content, A1 Annotation[A1, K, V], A2 Annotation[A2, K, V]](
	dec1 blob.Decoder[A1], dec2 blob.Decoder[A2],
) blob.Decoder[Pair[K, V, A1, A2]] {
	return func(source *blob.Source) (Pair[K, V, A1, A2], error) {
		a1, err := dec1(source)
		if err != nil {
			return Pair[K, V, A1, A2]{}, err
		}
		a2, err := dec2(source)
		if err != nil {
			return Pair[K, V, A1, A2]{}, err
		}
		return Pair[K, V, A1, A2]{First: a1, Second: a2}, nil
	}
}
