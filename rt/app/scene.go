package app

import (
	"fmt"
	"math/rand"

	"github.com/gekko3d/raybvh"
	"github.com/gekko3d/raybvh/rt/asset"
	"github.com/gekko3d/raybvh/rt/bvh"
	"github.com/gekko3d/raybvh/rt/core"

	"github.com/go-gl/mathgl/mgl32"
)

// BuildScene creates and commits the scene described by cfg, recording the
// build times in prof.
func BuildScene(cfg Config, logger raybvh.Logger, prof *Profiler) (*core.Scene, error) {
	s := core.NewScene(logger)
	rng := rand.New(rand.NewSource(cfg.Seed))

	endBLAS := prof.Begin(ScopeBLAS)
	var err error
	if len(cfg.TriFiles) > 0 {
		err = placeTriFiles(s, rng, cfg)
	} else {
		err = asset.PopulateGrid(s, rng, cfg.GridSide, cfg.TrisPerMesh)
	}
	endBLAS()
	if err != nil {
		return nil, err
	}

	endTLAS := prof.Begin(ScopeTLAS)
	s.Commit()
	endTLAS()
	return s, nil
}

// placeTriFiles loads each file as a mesh and lays the meshes out in a row
// along X, GridOffset apart.
func placeTriFiles(s *core.Scene, rng *rand.Rand, cfg Config) error {
	s.SetIDSource(rng)
	meshes := make([]core.MeshID, 0, len(cfg.TriFiles))
	for _, path := range cfg.TriFiles {
		tris, err := asset.LoadTriFile(path)
		if err != nil {
			return err
		}
		meshes = append(meshes, s.AddMesh(tris))
	}

	half := float32(len(meshes)-1) * asset.GridOffset * 0.5
	for i, mesh := range meshes {
		tr := core.NewTransform()
		tr.SetPosition(mgl32.Vec3{float32(i)*asset.GridOffset - half, 0, 0})
		if _, err := s.AddObject(mesh, tr); err != nil {
			return fmt.Errorf("place %s: %w", cfg.TriFiles[i], err)
		}
	}
	return nil
}

// NewCamera returns the camera described by cfg.
func NewCamera(cfg Config) *core.Camera {
	cam := core.NewCamera(cfg.Width, cfg.Height)
	cam.FOV = cfg.FOV
	cam.LookAt(cfg.Eye, cfg.Target)
	return cam
}

// MeshStats returns the shape of every mesh BVH in the scene, in insertion order.
func MeshStats(s *core.Scene) []bvh.Stats {
	stats := make([]bvh.Stats, len(s.TLAS.BVHs))
	for i, b := range s.TLAS.BVHs {
		stats[i] = b.Stats()
	}
	return stats
}
