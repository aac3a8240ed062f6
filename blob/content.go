// Package blob defines the persistence primitives shared by every type
// that can appear as a HAMT key, value or annotation: a byte-oriented
// Sink/Source pair for serialising into and out of the content-addressed
// store, and the Content interface that connects a Go type to that
// machinery.
//
// Restoring a value is deliberately not a method on Content: Go cannot
// express "a type whose zero value can decode itself" without either a
// pointer-receiver method-set constraint (which forces every caller to
// carry pointers, including for small leaf keys that are happier as
// plain values) or reflection. Instead callers supply a Decoder
// function value alongside the type parameter, matching the way the
// HAMT's key and value codecs are described as external collaborators
// rather than something the tree itself knows how to construct.
package blob

// Content is implemented by any type that can be written into a Sink as
// part of a persisted node: leaf keys, leaf values and annotations.
type Content interface {
	// Persist writes the receiver's byte representation to sink.
	Persist(sink *Sink) error
}

// Decoder reads a T back out of a Source. A Decoder is the Restore half
// of a Content type, supplied explicitly by callers rather than declared
// as a method, since Go interfaces cannot name the type parameter of
// their own implementing type.
type Decoder[T any] func(source *Source) (T, error)
