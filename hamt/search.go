package hamt

import "github.com/jaiminpan/kvhamt/blob"

// SearchResult is returned by a Method's Select call to direct the
// branch walker.
type SearchResult int

const (
	// ResultNone means no match exists anywhere under this node; the
	// walker terminates without a branch.
	ResultNone SearchResult = iota
	// ResultLeaf means the target leaf is the Leaf at the returned
	// slot; the walker terminates with a branch ending there.
	ResultLeaf
	// ResultPath means the walker should descend through the returned
	// slot and recurse.
	ResultPath
)

// Method is a stateful descent strategy. A branch walker asks a Method
// to Select a slot at every node it visits; the Method may depend on
// and update its own internal state (e.g. remaining hash bits, depth)
// between calls, but must be deterministic given the same sequence of
// inputs.
type Method[K Keyer, V blob.Content, A Annotation[A, K, V]] interface {
	// Select inspects handles, a read-only view of one node's Handle
	// array, and decides how the walker should proceed.
	Select(handles []Handle[K, V, A]) (SearchResult, int)
}
