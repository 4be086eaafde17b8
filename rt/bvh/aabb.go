package bvh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box. The zero value is a degenerate box at
// the origin; use EmptyAABB for a box that can be grown from nothing.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns the inverted (+inf, -inf) box that any Grow turns valid.
func EmptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

func (b *AABB) Grow(p mgl32.Vec3) {
	b.Min = minVec(b.Min, p)
	b.Max = maxVec(b.Max, p)
}

// GrowAABB extends b to enclose o. Growing by an empty box is a no-op.
func (b *AABB) GrowAABB(o AABB) {
	b.Min = minVec(b.Min, o.Min)
	b.Max = maxVec(b.Max, o.Max)
}

func (b AABB) IsEmpty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// Area returns half the surface area of the box. Both the SAH split cost and
// the TLAS clustering cost are expressed in this unit. Empty boxes have zero area.
func (b AABB) Area() float32 {
	if b.IsEmpty() {
		return 0
	}
	e := b.Max.Sub(b.Min)
	return e.X()*e.Y() + e.Y()*e.Z() + e.Z()*e.X()
}

func (b AABB) Contains(p mgl32.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

func (b AABB) Corners() [8]mgl32.Vec3 {
	return [8]mgl32.Vec3{
		{b.Min.X(), b.Min.Y(), b.Min.Z()},
		{b.Max.X(), b.Min.Y(), b.Min.Z()},
		{b.Min.X(), b.Max.Y(), b.Min.Z()},
		{b.Max.X(), b.Max.Y(), b.Min.Z()},
		{b.Min.X(), b.Min.Y(), b.Max.Z()},
		{b.Max.X(), b.Min.Y(), b.Max.Z()},
		{b.Min.X(), b.Max.Y(), b.Max.Z()},
		{b.Max.X(), b.Max.Y(), b.Max.Z()},
	}
}

// Transform returns the box enclosing all 8 corners of b mapped through m.
// The result is loose under rotation but never misses a point of the
// transformed box.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	out := EmptyAABB()
	if b.IsEmpty() {
		return out
	}
	for _, c := range b.Corners() {
		out.Grow(m.Mul4x1(c.Vec4(1.0)).Vec3())
	}
	return out
}

// Union returns the smallest box enclosing a and b.
func Union(a, b AABB) AABB {
	a.GrowAABB(b)
	return a
}

func minVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{minf(a.X(), b.X()), minf(a.Y(), b.Y()), minf(a.Z(), b.Z())}
}

func maxVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{maxf(a.X(), b.X()), maxf(a.Y(), b.Y()), maxf(a.Z(), b.Z())}
}

// minf/maxf return the other operand when one is NaN. The slab test produces
// 0*Inf when a ray starts on a slab plane with a zero direction component.
func minf(a, b float32) float32 {
	if a < b || b != b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b || b != b {
		return a
	}
	return b
}
