package hamt_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jaiminpan/kvhamt/content"
	"github.com/jaiminpan/kvhamt/hamt"
	"github.com/jaiminpan/kvhamt/store"
	"github.com/jaiminpan/kvhamt/store/memstore"
)

type u32ann = hamt.Cardinality[content.Uint32, content.Uint32]

func newTree(st store.Store) *hamt.HAMT[content.Uint32, content.Uint32, u32ann] {
	return hamt.New[content.Uint32, content.Uint32, u32ann](
		st, content.DecodeUint32, content.DecodeUint32, hamt.DecodeCardinality[content.Uint32, content.Uint32],
	)
}

// Scenario 1: trivial.
func TestTrivialInsertGetRemove(t *testing.T) {
	tree := newTree(memstore.New())

	_, hadPrev, err := tree.Insert(28, 28)
	require.NoError(t, err)
	require.False(t, hadPrev)

	v, ok, err := tree.Get(28)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, content.Uint32(28), v)

	prev, ok, err := tree.Remove(28)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, content.Uint32(28), prev)

	_, ok, err = tree.Get(28)
	require.NoError(t, err)
	require.False(t, ok)
}

// Scenario 2: dense.
func TestDenseInsertGet(t *testing.T) {
	tree := newTree(memstore.New())
	const n = 1024

	for i := 0; i < n; i++ {
		_, hadPrev, err := tree.Insert(content.Uint32(i), content.Uint32(i))
		require.NoError(t, err)
		require.False(t, hadPrev)
	}
	for i := 0; i < n; i++ {
		v, ok, err := tree.Get(content.Uint32(i))
		require.NoError(t, err)
		require.True(t, ok, "missing key %d", i)
		require.Equal(t, content.Uint32(i), v)
	}

	ann, err := tree.Annotation()
	require.NoError(t, err)
	require.EqualValues(t, n, ann)
}

// Scenario 3: nested HAMT-of-HAMT.
func TestNestedHAMTOfHAMT(t *testing.T) {
	st := memstore.New()
	innerDec := hamt.Decoder[content.Uint32, content.Uint32, u32ann](
		st, content.DecodeUint32, content.DecodeUint32, hamt.DecodeCardinality[content.Uint32, content.Uint32],
	)

	type outerAnn = hamt.Cardinality[content.Uint32, *hamt.HAMT[content.Uint32, content.Uint32, u32ann]]
	outer := hamt.New[content.Uint32, *hamt.HAMT[content.Uint32, content.Uint32, u32ann], outerAnn](
		st, content.DecodeUint32, innerDec, hamt.DecodeCardinality[content.Uint32, *hamt.HAMT[content.Uint32, content.Uint32, u32ann]],
	)

	for i := 0; i < 128; i++ {
		inner := newTree(st)
		for o := 0; o < 128; o++ {
			_, _, err := inner.Insert(content.Uint32(o), content.Uint32(o))
			require.NoError(t, err)
		}
		_, _, err := outer.Insert(content.Uint32(i), inner)
		require.NoError(t, err)
	}

	for i := 0; i < 128; i++ {
		inner, ok, err := outer.Get(content.Uint32(i))
		require.NoError(t, err)
		require.True(t, ok)
		for o := 0; o < 100; o++ {
			v, ok, err := inner.Get(content.Uint32(o))
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, content.Uint32(o), v)
		}
	}
}

// Scenario 6: persist round-trip.
func TestPersistRoundTrip(t *testing.T) {
	st := memstore.New()
	tree := newTree(st)

	rng := rand.New(rand.NewSource(42))
	type pair struct{ k, v content.Uint32 }
	var pairs []pair
	seen := map[content.Uint32]bool{}
	for len(pairs) < 256 {
		k := content.Uint32(rng.Uint32())
		if seen[k] {
			continue
		}
		seen[k] = true
		v := content.Uint32(rng.Uint32())
		pairs = append(pairs, pair{k, v})
		_, _, err := tree.Insert(k, v)
		require.NoError(t, err)
	}

	rootDigest, err := tree.Snapshot()
	require.NoError(t, err)

	restored, err := hamt.Restore[content.Uint32, content.Uint32, u32ann](
		st, rootDigest, content.DecodeUint32, content.DecodeUint32, hamt.DecodeCardinality[content.Uint32, content.Uint32],
	)
	require.NoError(t, err)

	for _, p := range pairs {
		v, ok, err := restored.Get(p.k)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, p.v, v)
	}

	restoredDigest, err := restored.Snapshot()
	require.NoError(t, err)
	require.Equal(t, rootDigest, restoredDigest)
}

func TestPersistBatchedMatchesUnbatchedDigest(t *testing.T) {
	st1, st2 := memstore.New(), memstore.New()
	tree1, tree2 := newTree(st1), newTree(st2)
	for i := 0; i < 300; i++ {
		_, _, err := tree1.Insert(content.Uint32(i), content.Uint32(i*2))
		require.NoError(t, err)
		_, _, err = tree2.Insert(content.Uint32(i), content.Uint32(i*2))
		require.NoError(t, err)
	}

	d1, err := tree1.Snapshot()
	require.NoError(t, err)
	d2, err := tree2.SnapshotBatched()
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}

// Shape canonicity: two trees built from the same pairs in different
// orders must produce equal content digests.
func TestShapeCanonicity(t *testing.T) {
	pairs := make([]struct{ k, v content.Uint32 }, 200)
	for i := range pairs {
		pairs[i].k = content.Uint32(i)
		pairs[i].v = content.Uint32(i)
	}

	forward := newTree(memstore.New())
	for _, p := range pairs {
		_, _, err := forward.Insert(p.k, p.v)
		require.NoError(t, err)
	}

	reversed := newTree(memstore.New())
	for i := len(pairs) - 1; i >= 0; i-- {
		_, _, err := reversed.Insert(pairs[i].k, pairs[i].v)
		require.NoError(t, err)
	}

	d1, err := forward.Snapshot()
	require.NoError(t, err)
	d2, err := reversed.Snapshot()
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}

// Last-write-wins.
func TestLastWriteWins(t *testing.T) {
	tree := newTree(memstore.New())
	_, hadPrev, err := tree.Insert(5, 100)
	require.NoError(t, err)
	require.False(t, hadPrev)

	prev, hadPrev, err := tree.Insert(5, 200)
	require.NoError(t, err)
	require.True(t, hadPrev)
	require.EqualValues(t, 100, prev)

	v, ok, err := tree.Get(5)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 200, v)
}

// Remove of absent key.
func TestRemoveOfAbsentKey(t *testing.T) {
	tree := newTree(memstore.New())
	_, ok, err := tree.Remove(999)
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = tree.Insert(999, 1)
	require.NoError(t, err)
	_, ok, err = tree.Remove(999)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = tree.Remove(999)
	require.NoError(t, err)
	require.False(t, ok)
}

// Iteration coverage.
func TestIterationCoverage(t *testing.T) {
	tree := newTree(memstore.New())
	want := map[content.Uint32]content.Uint32{}
	for i := 0; i < 500; i++ {
		k, v := content.Uint32(i), content.Uint32(i*7)
		want[k] = v
		_, _, err := tree.Insert(k, v)
		require.NoError(t, err)
	}

	got := map[content.Uint32]content.Uint32{}
	values := tree.Values()
	keys := tree.Keys()
	for {
		v, ok, err := values.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		k, ok2, err := keys.Next()
		require.NoError(t, err)
		require.True(t, ok2)
		got[k] = v
	}
	require.Equal(t, want, got)
}

// Cached annotations must not survive the mutation of the subtree they
// summarise: reading Annotation() once (which caches it on every
// ancestor Node handle) must not pin a stale value across a later
// insert or remove.
func TestAnnotationInvalidatedByLaterMutation(t *testing.T) {
	tree := newTree(memstore.New())
	for i := 0; i < 10; i++ {
		_, _, err := tree.Insert(content.Uint32(i), content.Uint32(i))
		require.NoError(t, err)
	}

	ann, err := tree.Annotation()
	require.NoError(t, err)
	require.EqualValues(t, 10, ann)

	_, _, err = tree.Insert(content.Uint32(999), content.Uint32(999))
	require.NoError(t, err)

	ann, err = tree.Annotation()
	require.NoError(t, err)
	require.EqualValues(t, 11, ann)

	_, ok, err := tree.Remove(content.Uint32(5))
	require.NoError(t, err)
	require.True(t, ok)

	ann, err = tree.Annotation()
	require.NoError(t, err)
	require.EqualValues(t, 10, ann)
}

// Map facade and ValPath projection.
func TestMapFacadeAndProjection(t *testing.T) {
	m := hamt.NewMap[content.Uint32, content.Uint32, u32ann](
		memstore.New(), content.DecodeUint32, content.DecodeUint32, hamt.DecodeCardinality[content.Uint32, content.Uint32],
	)
	_, _, err := m.Insert(1, 42)
	require.NoError(t, err)

	path, ok, err := m.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 42, path.Value())
	require.EqualValues(t, 1, path.Key())

	doubled := hamt.ProjectValPath[content.Uint32, content.Uint32, u32ann, int](path, func(v content.Uint32) int {
		return int(v) * 2
	})
	require.Equal(t, 84, doubled)
}
