package core

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/raybvh/rt/bvh"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a pinhole camera producing primary rays for an image of
// Width x Height pixels. FOV is vertical, in degrees.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	FOV      float32
	Width    int
	Height   int
}

func NewCamera(width, height int) *Camera {
	return &Camera{
		Position: mgl32.Vec3{0, 0, 0},
		Target:   mgl32.Vec3{0, 0, -1},
		Up:       mgl32.Vec3{0, 1, 0},
		FOV:      45,
		Width:    width,
		Height:   height,
	}
}

func (c *Camera) LookAt(eye, target mgl32.Vec3) {
	c.Position = eye
	c.Target = target
}

// Basis returns the normalized forward, right and up vectors.
func (c *Camera) Basis() (forward, right, up mgl32.Vec3) {
	forward = c.Target.Sub(c.Position).Normalize()
	right = forward.Cross(c.Up)
	if right.Len() < 1e-6 {
		// looking straight along Up; borrow whichever world axis is furthest
		// from forward
		alt := mgl32.Vec3{0, 0, -1}
		if math32.Abs(forward.Z()) > 0.9 {
			alt = mgl32.Vec3{1, 0, 0}
		}
		right = forward.Cross(alt)
	}
	right = right.Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

// Ray returns the primary ray through viewport coordinates (u, v), where
// (0, 0) is the bottom left corner and (1, 1) the top right.
func (c *Camera) Ray(u, v float32) bvh.Ray {
	aspect := float32(1)
	if c.Height > 0 {
		aspect = float32(c.Width) / float32(c.Height)
	}
	halfHeight := math32.Tan(mgl32.DegToRad(c.FOV) / 2)
	halfWidth := aspect * halfHeight

	forward, right, up := c.Basis()
	dir := forward.
		Add(right.Mul((2*u - 1) * halfWidth)).
		Add(up.Mul((2*v - 1) * halfHeight))
	return bvh.NewRay(c.Position, dir)
}

// PixelRay returns the ray through the centre of pixel (x, y), with y
// growing downwards as in image coordinates.
func (c *Camera) PixelRay(x, y int) bvh.Ray {
	u := (float32(x) + 0.5) / float32(c.Width)
	v := 1 - (float32(y)+0.5)/float32(c.Height)
	return c.Ray(u, v)
}
