package asset

import (
	"math/rand"

	"github.com/gekko3d/raybvh/rt/bvh"
	"github.com/gekko3d/raybvh/rt/core"

	"github.com/go-gl/mathgl/mgl32"
)

// Spacing between grid instances.
const GridOffset float32 = 12

// RandomTriangles returns n small triangles scattered in a 10 unit cube
// around the origin.
func RandomTriangles(n int, rng *rand.Rand) []bvh.Tri {
	tris := make([]bvh.Tri, n)
	for i := range tris {
		r0 := randomVec3(rng)
		r1 := randomVec3(rng)
		r2 := randomVec3(rng)

		v0 := r0.Mul(5)
		tris[i] = bvh.NewTri(v0, v0.Add(r1), v0.Add(r2))
	}
	return tris
}

func randomVec3(rng *rand.Rand) mgl32.Vec3 {
	return mgl32.Vec3{
		rng.Float32()*2 - 1,
		rng.Float32()*2 - 1,
		rng.Float32()*2 - 1,
	}
}

// PopulateGrid adds side*side objects on the XZ plane, centred on the origin
// and GridOffset apart, each with its own random mesh of trisPerMesh
// triangles. Ids are drawn from rng too, so a seeded rng reproduces the scene
// exactly. The scene still needs a Commit.
func PopulateGrid(s *core.Scene, rng *rand.Rand, side, trisPerMesh int) error {
	s.SetIDSource(rng)
	half := float32(side) * GridOffset * 0.5
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			mesh := s.AddMesh(RandomTriangles(trisPerMesh, rng))

			tr := core.NewTransform()
			tr.SetPosition(mgl32.Vec3{
				float32(i)*GridOffset - half + GridOffset*0.5,
				0,
				float32(j)*GridOffset - half + GridOffset*0.5,
			})
			if _, err := s.AddObject(mesh, tr); err != nil {
				return err
			}
		}
	}
	return nil
}
