package hamt

import "github.com/jaiminpan/kvhamt/blob"

// KV is the leaf type stored at the bottom of the trie: a key paired
// with its value. Both key and value are themselves persisted values.
type KV[K Keyer, V blob.Content] struct {
	Key K
	Val V
}

// Persist implements blob.Content by writing key then value in order.
func (kv KV[K, V]) Persist(sink *blob.Sink) error {
	if err := kv.Key.Persist(sink); err != nil {
		return err
	}
	return kv.Val.Persist(sink)
}

// decodeKV builds the blob.Decoder for a KV out of its key and value
// decoders.
func decodeKV[K Keyer, V blob.Content](keyDec blob.Decoder[K], valDec blob.Decoder[V]) blob.Decoder[KV[K, V]] {
	return func(source *blob.Source) (KV[K, V], error) {
		k, err := keyDec(source)
		if err != nil {
			return KV[K, V]{}, err
		}
		v, err := valDec(source)
		if err != nil {
			return KV[K, V]{}, err
		}
		return KV[K, V]{Key: k, Val: v}, nil
	}
}

// Keyer is satisfied by any type usable as a HAMT key: it must be
// comparable (so leaves can test key equality directly), persistable,
// and able to produce the byte string the key hasher consumes. The wire
// format writes keys through Persist, not Bytes.
type Keyer interface {
	comparable
	blob.Content
	Bytes() []byte
}
