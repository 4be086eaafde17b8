package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform places an object in the world. Dirty marks a change that the
// next Scene.Commit has not picked up yet; the setters keep it current, and
// callers editing the fields directly must set it themselves.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Dirty    bool
}

func NewTransform() *Transform {
	return &Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Dirty:    true,
	}
}

func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.Position = p
	t.Dirty = true
}

func (t *Transform) Translate(d mgl32.Vec3) {
	t.SetPosition(t.Position.Add(d))
}

func (t *Transform) SetRotation(q mgl32.Quat) {
	t.Rotation = q.Normalize()
	t.Dirty = true
}

// SetUniformScale is the only scale setter: instance hit distances are only
// metric under rigid or uniformly scaled transforms.
func (t *Transform) SetUniformScale(s float32) {
	t.Scale = mgl32.Vec3{s, s, s}
	t.Dirty = true
}

// ObjectToWorld returns translate * rotate * scale, built directly from the
// rotation basis with each axis scaled.
func (t *Transform) ObjectToWorld() mgl32.Mat4 {
	basis := t.Rotation.Mat4()
	var m mgl32.Mat4
	for col := 0; col < 3; col++ {
		axis := basis.Col(col).Vec3().Mul(t.Scale[col])
		m.SetCol(col, axis.Vec4(0))
	}
	m.SetCol(3, t.Position.Vec4(1))
	return m
}
