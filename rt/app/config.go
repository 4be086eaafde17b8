package app

import (
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
)

// Config holds everything needed to build the benchmark scene and render it.
type Config struct {
	Width   int
	Height  int
	Workers int

	Eye    mgl32.Vec3
	Target mgl32.Vec3
	FOV    float32

	// Scene. When TriFiles is set every file becomes one mesh placed on the
	// grid instead of the random meshes.
	Seed        int64
	GridSide    int
	TrisPerMesh int
	TriFiles    []string

	Output string
}

func DefaultConfig() Config {
	return Config{
		Width:       256,
		Height:      256,
		Workers:     runtime.NumCPU(),
		Eye:         mgl32.Vec3{0, 40, 100},
		Target:      mgl32.Vec3{0, 0, 0},
		FOV:         45,
		Seed:        0,
		GridSide:    10,
		TrisPerMesh: 1000,
		Output:      "frame.png",
	}
}

// Normalize replaces unusable values with their defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.FOV <= 0 || c.FOV >= 180 {
		c.FOV = def.FOV
	}
	if c.GridSide <= 0 {
		c.GridSide = def.GridSide
	}
	if c.TrisPerMesh <= 0 {
		c.TrisPerMesh = def.TrisPerMesh
	}
	if c.Output == "" {
		c.Output = def.Output
	}
}
