package asset

import (
	"math/rand"
	"testing"

	"github.com/gekko3d/raybvh/rt/bvh"
	"github.com/gekko3d/raybvh/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomTrianglesStayInRange(t *testing.T) {
	tris := RandomTriangles(500, rand.New(rand.NewSource(1)))
	require.Len(t, tris, 500)

	bounds := bvh.EmptyAABB()
	for i := range tris {
		bounds.GrowAABB(tris[i].Bounds())
	}
	for k := 0; k < 3; k++ {
		assert.GreaterOrEqual(t, bounds.Min[k], float32(-6))
		assert.LessOrEqual(t, bounds.Max[k], float32(6))
	}
}

func TestPopulateGrid(t *testing.T) {
	s := core.NewScene(nil)
	require.NoError(t, PopulateGrid(s, rand.New(rand.NewSource(1)), 3, 10))
	s.Commit()

	assert.Equal(t, 9, s.MeshCount())
	assert.Len(t, s.Objects, 9)
	assert.Len(t, s.TLAS.Nodes, 17)

	root := s.TLAS.Nodes[0].Bounds
	// centres at -12, 0 and 12 on x and z, meshes reach at most 6 units out
	for k := 0; k < 3; k += 2 {
		assert.GreaterOrEqual(t, root.Min[k], float32(-18))
		assert.Less(t, root.Min[k], float32(-12))
		assert.LessOrEqual(t, root.Max[k], float32(18))
		assert.Greater(t, root.Max[k], float32(12))
	}
}

// renderHits casts a width x height grid of camera rays against a seeded
// grid scene.
func renderHits(seed int64, side, trisPerMesh, size int) []bvh.Hit {
	s := core.NewScene(nil)
	if err := PopulateGrid(s, rand.New(rand.NewSource(seed)), side, trisPerMesh); err != nil {
		panic(err)
	}
	s.Commit()

	cam := core.NewCamera(size, size)
	cam.LookAt(mgl32.Vec3{0, 40, 100}, mgl32.Vec3{0, 0, 0})

	hits := make([]bvh.Hit, 0, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r := cam.PixelRay(x, y)
			hit, _ := r.IntersectTLAS(s.TLAS)
			hits = append(hits, hit)
		}
	}
	return hits
}

func TestGridRenderIsDeterministic(t *testing.T) {
	if testing.Short() {
		t.Skip("builds 100 meshes of 1000 triangles")
	}
	first := renderHits(0, 10, 1000, 256)
	second := renderHits(0, 10, 1000, 256)
	require.Equal(t, len(first), len(second))

	hits := 0
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("pixel %d differs: %+v vs %+v", i, first[i], second[i])
		}
		if first[i].T > 0 {
			hits++
		}
	}
	assert.Greater(t, hits, len(first)/20, "the grid should cover a good part of the frame")
}
