package bvh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Instance places a BVH in world space.
//
// Transforms are expected to be rigid or uniformly scaled. Bounds is a loose
// 8-corner fit and the triangle epsilons are applied in the mesh's local
// units, so under a non-uniform scale the hit distances are not guaranteed to
// be metric in world space.
type Instance struct {
	Owner    uuid.UUID
	BVHIndex int

	// InvTransform maps world space into the mesh's local space.
	InvTransform mgl32.Mat4
	// Bounds is the world space box of the BVH root.
	Bounds AABB

	singular bool
}

func NewInstance(owner uuid.UUID, bvhIndex int) Instance {
	return Instance{
		Owner:        owner,
		BVHIndex:     bvhIndex,
		InvTransform: mgl32.Ident4(),
		Bounds:       EmptyAABB(),
	}
}

// Update recomputes the inverse transform and world bounds from the current
// object-to-world matrix and the BVH's local root box. A singular matrix keeps
// the bounds but makes the instance unhittable.
func (in *Instance) Update(world mgl32.Mat4, local AABB) {
	in.singular = world.Det() == 0
	if in.singular {
		in.InvTransform = mgl32.Mat4{}
	} else {
		in.InvTransform = world.Inv()
	}
	in.Bounds = local.Transform(world)
}

// Intersect traverses the instance's BVH with the ray moved into local space.
// The ray's world origin and direction are restored afterwards; the hit
// record and best distance carry over. The direction is not renormalized, so
// a local hit distance is the same ray parameter in world space.
func (in *Instance) Intersect(ray *Ray, bvhs []*BVH) {
	if in.singular || in.BVHIndex < 0 || in.BVHIndex >= len(bvhs) {
		return
	}
	origin, dir, invDir := ray.Origin, ray.Direction, ray.InvDirection
	prev := ray.T

	ray.Origin = in.InvTransform.Mul4x1(origin.Vec4(1.0)).Vec3()
	ray.SetDirection(in.InvTransform.Mul4x1(dir.Vec4(0.0)).Vec3())
	bvhs[in.BVHIndex].Intersect(ray)

	ray.Origin, ray.Direction, ray.InvDirection = origin, dir, invDir
	if ray.T < prev {
		ray.hit.Instance = in.Owner
	}
}
