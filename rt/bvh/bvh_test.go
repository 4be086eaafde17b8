package bvh

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomTris(rng *rand.Rand, n int) []Tri {
	tris := make([]Tri, n)
	for i := range tris {
		v0 := randVec(rng, 5)
		tris[i] = NewTri(v0, v0.Add(randVec(rng, 1)), v0.Add(randVec(rng, 1)))
	}
	return tris
}

func randomRay(rng *rand.Rand) Ray {
	origin := randVec(rng, 12)
	target := randVec(rng, 4)
	return NewRay(origin, target.Sub(origin))
}

func bruteForce(tris []Tri, r Ray) (Hit, bool) {
	for i := range tris {
		r.IntersectTriangle(&tris[i], uint32(i))
	}
	return r.Hit()
}

func TestBVHRootContainsAllVertices(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{1, 2, 10, 500} {
		tris := randomTris(rng, n)
		b := New(tris)
		root := b.Bounds()
		for _, tri := range tris {
			assert.True(t, root.Contains(tri.Vertex0))
			assert.True(t, root.Contains(tri.Vertex1))
			assert.True(t, root.Contains(tri.Vertex2))
		}
	}
}

func TestBVHTriIndicesArePermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	b := New(randomTris(rng, 1000))

	seen := make([]bool, len(b.Tris))
	for _, idx := range b.TriIndices {
		require.Less(t, int(idx), len(seen))
		require.False(t, seen[idx], "index %d appears twice", idx)
		seen[idx] = true
	}
	for i, ok := range seen {
		assert.True(t, ok, "index %d missing", i)
	}
}

func TestBVHLeavesCoverEveryTriangleOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	b := New(randomTris(rng, 777))

	covered := 0
	for i := range b.Nodes {
		n := &b.Nodes[i]
		if !n.IsLeaf() {
			continue
		}
		covered += int(n.TriCount)
		for k := n.LeftFirst; k < n.LeftFirst+n.TriCount; k++ {
			tri := b.Tris[b.TriIndices[k]]
			assert.True(t, n.Bounds().Contains(tri.Vertex0))
			assert.True(t, n.Bounds().Contains(tri.Vertex2))
		}
	}
	assert.Equal(t, len(b.Tris), covered)
	assert.LessOrEqual(t, len(b.Nodes), 2*len(b.Tris)-1)

	st := b.Stats()
	assert.Equal(t, len(b.Nodes), st.Nodes)
	assert.Equal(t, (st.Nodes+1)/2, st.Leaves)
}

func TestBVHMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, n := range []int{0, 1, 2, 17, 300, 2000} {
		tris := randomTris(rng, n)
		b := New(tris)

		hits := 0
		for i := 0; i < 500; i++ {
			r := randomRay(rng)
			want, wantOK := bruteForce(tris, r)
			got, gotOK := r.IntersectBVH(b)

			require.Equal(t, wantOK, gotOK, "n=%d ray=%d", n, i)
			if !wantOK {
				continue
			}
			hits++
			assert.InDelta(t, want.T, got.T, 1e-5, "n=%d ray=%d", n, i)
			assert.Equal(t, want.TriIndex, got.TriIndex, "n=%d ray=%d", n, i)
		}
		if n >= 300 {
			assert.Greater(t, hits, 0, "rays should reach the geometry")
		}
	}
}

func TestBVHEmpty(t *testing.T) {
	b := New(nil)
	require.Len(t, b.Nodes, 1)
	assert.True(t, b.Bounds().IsEmpty())

	r := NewRay(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1})
	_, ok := r.IntersectBVH(b)
	assert.False(t, ok)
	assert.Equal(t, Stats{Nodes: 1, Leaves: 1}, b.Stats())
}

func TestBVHSingleTriangle(t *testing.T) {
	b := New([]Tri{NewTri(mgl32.Vec3{-1, -1, 0}, mgl32.Vec3{1, -1, 0}, mgl32.Vec3{0, 1, 0})})
	require.Len(t, b.Nodes, 1)
	assert.True(t, b.Nodes[0].IsLeaf())

	r := NewRay(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1})
	hit, ok := r.IntersectBVH(b)
	require.True(t, ok)
	assert.InDelta(t, 5, hit.T, 1e-5)
}

func TestBVHCoincidentCentroidsStayOneLeaf(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	c := mgl32.Vec3{1, 2, 3}
	tris := make([]Tri, 50)
	for i := range tris {
		a := randVec(rng, 2)
		b := randVec(rng, 2)
		tris[i] = NewTri(c.Add(a), c.Add(b), c.Sub(a.Add(b)))
	}
	// NewTri divides by three, so pin the centroid exactly
	for i := range tris {
		tris[i].Centroid = c
	}

	b := New(tris)
	require.Len(t, b.Nodes, 1)
	assert.True(t, b.Nodes[0].IsLeaf())
	assert.Equal(t, uint32(50), b.Nodes[0].TriCount)
}

func TestBVHSplitRequiresStrictlyLowerCost(t *testing.T) {
	// both triangles span the same unit square, so any split costs exactly
	// as much as the leaf
	tris := []Tri{
		NewTri(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}),
		NewTri(mgl32.Vec3{1, 1, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}),
	}
	b := New(tris)
	require.Len(t, b.Nodes, 1)
	assert.Equal(t, uint32(2), b.Nodes[0].TriCount)
}

func TestBVHSplitsSeparatedClusters(t *testing.T) {
	tris := []Tri{
		NewTri(mgl32.Vec3{-100, 0, 0}, mgl32.Vec3{-99, 0, 0}, mgl32.Vec3{-100, 1, 0}),
		NewTri(mgl32.Vec3{100, 0, 0}, mgl32.Vec3{101, 0, 0}, mgl32.Vec3{100, 1, 0}),
	}
	b := New(tris)
	require.Len(t, b.Nodes, 3)
	root := b.Nodes[0]
	require.False(t, root.IsLeaf())

	left, right := b.Nodes[root.LeftFirst], b.Nodes[root.LeftFirst+1]
	assert.True(t, left.IsLeaf())
	assert.True(t, right.IsLeaf())
	assert.Less(t, left.Cost()+right.Cost(), root.Bounds().Area()*2)
}

func TestBVHRespectsMaxDistance(t *testing.T) {
	b := New([]Tri{NewTri(mgl32.Vec3{-1, -1, 0}, mgl32.Vec3{1, -1, 0}, mgl32.Vec3{0, 1, 0})})
	r := NewRay(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1})
	r.SetMaxDistance(4)
	_, ok := r.IntersectBVH(b)
	assert.False(t, ok)
}

func BenchmarkBVHBuild(b *testing.B) {
	tris := randomTris(rand.New(rand.NewSource(1)), 10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		New(tris)
	}
}

func BenchmarkBVHIntersect(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	tree := New(randomTris(rng, 10000))
	rays := make([]Ray, 1024)
	for i := range rays {
		rays[i] = randomRay(rng)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := rays[i%len(rays)]
		tree.Intersect(&r)
	}
}
