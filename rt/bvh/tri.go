package bvh

import "github.com/go-gl/mathgl/mgl32"

// Tri is a triangle with its centroid cached for the SAH builder.
type Tri struct {
	Vertex0  mgl32.Vec3
	Vertex1  mgl32.Vec3
	Vertex2  mgl32.Vec3
	Centroid mgl32.Vec3
}

func NewTri(v0, v1, v2 mgl32.Vec3) Tri {
	return Tri{
		Vertex0:  v0,
		Vertex1:  v1,
		Vertex2:  v2,
		Centroid: v0.Add(v1).Add(v2).Mul(1.0 / 3.0),
	}
}

func (t *Tri) Bounds() AABB {
	b := EmptyAABB()
	b.Grow(t.Vertex0)
	b.Grow(t.Vertex1)
	b.Grow(t.Vertex2)
	return b
}
