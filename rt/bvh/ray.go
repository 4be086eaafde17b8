package bvh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Rays whose direction is this close to the triangle plane are treated as
// parallel, and hits closer than this are ignored.
const triEpsilon float32 = 0.0001

// Hit is the nearest intersection found along a ray.
type Hit struct {
	T        float32
	U        float32
	V        float32
	TriIndex uint32

	// Instance and InstanceIndex are only set for hits found through a TLAS.
	Instance      uuid.UUID
	InstanceIndex int
}

// Ray is the per-query state. Traversal only ever mutates the ray, so any
// number of rays may be cast against the same BVH or TLAS concurrently.
type Ray struct {
	Origin       mgl32.Vec3
	Direction    mgl32.Vec3
	InvDirection mgl32.Vec3

	// T is the current best distance. Only intersections strictly closer
	// than T are accepted, so seeding it bounds the query.
	T float32

	hit    Hit
	hasHit bool
}

// NewRay returns an unbounded ray. The direction is normalized.
func NewRay(origin, dir mgl32.Vec3) Ray {
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1.0 / l)
	}
	r := Ray{Origin: origin, T: math32.Inf(1)}
	r.SetDirection(dir)
	return r
}

// SetDirection replaces the direction as given, without normalizing, and
// refreshes the reciprocal used by the slab test.
func (r *Ray) SetDirection(dir mgl32.Vec3) {
	r.Direction = dir
	r.InvDirection = mgl32.Vec3{1 / dir.X(), 1 / dir.Y(), 1 / dir.Z()}
}

func (r *Ray) SetMaxDistance(t float32) {
	r.T = t
}

// Reset clears the hit record and makes the ray unbounded again.
func (r *Ray) Reset() {
	r.T = math32.Inf(1)
	r.hit = Hit{}
	r.hasHit = false
}

func (r *Ray) Hit() (Hit, bool) {
	return r.hit, r.hasHit
}

// HitPoint returns the world position of the current hit.
func (r *Ray) HitPoint() (mgl32.Vec3, bool) {
	if !r.hasHit {
		return mgl32.Vec3{}, false
	}
	return r.Origin.Add(r.Direction.Mul(r.hit.T)), true
}

// IntersectAABB runs the slab test. It reports the entry distance when the
// box is entered before the current best distance and exited in front of the
// origin. The entry distance is negative when the origin is inside the box.
func (r *Ray) IntersectAABB(bmin, bmax mgl32.Vec3) (float32, bool) {
	tx1 := (bmin.X() - r.Origin.X()) * r.InvDirection.X()
	tx2 := (bmax.X() - r.Origin.X()) * r.InvDirection.X()
	tmin := minf(tx1, tx2)
	tmax := maxf(tx1, tx2)
	ty1 := (bmin.Y() - r.Origin.Y()) * r.InvDirection.Y()
	ty2 := (bmax.Y() - r.Origin.Y()) * r.InvDirection.Y()
	tmin = maxf(tmin, minf(ty1, ty2))
	tmax = minf(tmax, maxf(ty1, ty2))
	tz1 := (bmin.Z() - r.Origin.Z()) * r.InvDirection.Z()
	tz2 := (bmax.Z() - r.Origin.Z()) * r.InvDirection.Z()
	tmin = maxf(tmin, minf(tz1, tz2))
	tmax = minf(tmax, maxf(tz1, tz2))
	if tmax >= tmin && tmin < r.T && tmax > 0 {
		return tmin, true
	}
	return 0, false
}

// IntersectTriangle is Möller–Trumbore. On a hit strictly closer than the
// current best distance it records the hit under triIndex and returns true.
func (r *Ray) IntersectTriangle(tri *Tri, triIndex uint32) bool {
	edge1 := tri.Vertex1.Sub(tri.Vertex0)
	edge2 := tri.Vertex2.Sub(tri.Vertex0)
	h := r.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -triEpsilon && a < triEpsilon {
		return false
	}
	f := 1 / a
	s := r.Origin.Sub(tri.Vertex0)
	u := f * s.Dot(h)
	if !(u >= 0 && u <= 1) {
		return false
	}
	q := s.Cross(edge1)
	v := f * r.Direction.Dot(q)
	if !(v >= 0 && u+v <= 1) {
		return false
	}
	t := f * edge2.Dot(q)
	if !(t > triEpsilon && t < r.T) {
		return false
	}
	r.T = t
	r.hit = Hit{T: t, U: u, V: v, TriIndex: triIndex}
	r.hasHit = true
	return true
}

func (r *Ray) IntersectBVH(b *BVH) (Hit, bool) {
	b.Intersect(r)
	return r.Hit()
}

// IntersectTLAS returns the nearest hit across every instance of t.
func (r *Ray) IntersectTLAS(t *TLAS) (Hit, bool) {
	t.Intersect(r)
	return r.Hit()
}
