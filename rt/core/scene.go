package core

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gekko3d/raybvh"
	"github.com/gekko3d/raybvh/rt/bvh"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

var ErrUnknownMesh = errors.New("unknown mesh")

type (
	MeshID     = uuid.UUID
	InstanceID = uuid.UUID
)

type Object struct {
	Mesh      MeshID
	Transform *Transform
}

// Scene owns one BVH per distinct mesh and one TLAS over the placed objects.
//
// Mutation (AddMesh, AddObject, RemoveObject, transform edits, Commit) is a
// single writer phase that must finish before Raycast is called from any
// number of goroutines. Scene does no locking of its own.
type Scene struct {
	TLAS    *bvh.TLAS
	Objects map[InstanceID]*Object

	meshes map[MeshID]int
	ids    io.Reader
	logger raybvh.Logger
}

func NewScene(logger raybvh.Logger) *Scene {
	return &Scene{
		TLAS:    bvh.NewTLAS(),
		Objects: make(map[InstanceID]*Object),
		meshes:  make(map[MeshID]int),
		logger:  raybvh.OrNop(logger),
	}
}

// SetIDSource makes mesh and instance ids draw their randomness from r, so a
// seeded reader yields the same ids on every run.
func (s *Scene) SetIDSource(r io.Reader) {
	s.ids = r
}

func (s *Scene) newID() uuid.UUID {
	if s.ids != nil {
		id, err := uuid.NewRandomFromReader(s.ids)
		if err == nil {
			return id
		}
		s.logger.Warnf("id source failed, falling back to crypto/rand: %v", err)
	}
	return uuid.New()
}

// AddMesh builds a BVH over tris and registers it. The slice is kept by the
// BVH and must not be modified afterwards.
func (s *Scene) AddMesh(tris []bvh.Tri) MeshID {
	start := time.Now()
	b := bvh.New(tris)
	id := s.newID()
	s.meshes[id] = s.TLAS.AddBVH(b)

	if s.logger.DebugEnabled() {
		st := b.Stats()
		s.logger.Debugf("mesh %s: %d tris, %d nodes, %d leaves, depth %d, built in %s",
			id, len(tris), st.Nodes, st.Leaves, st.MaxDepth, time.Since(start))
	}
	return id
}

func (s *Scene) Mesh(id MeshID) (*bvh.BVH, bool) {
	idx, ok := s.meshes[id]
	if !ok {
		return nil, false
	}
	return s.TLAS.BVHs[idx], true
}

func (s *Scene) MeshCount() int {
	return len(s.meshes)
}

// AddObject places mesh in the world. A nil transform means identity. The
// object is not hittable until the next Commit.
func (s *Scene) AddObject(mesh MeshID, tr *Transform) (InstanceID, error) {
	idx, ok := s.meshes[mesh]
	if !ok {
		return InstanceID{}, fmt.Errorf("add object: mesh %s: %w", mesh, ErrUnknownMesh)
	}
	if tr == nil {
		tr = NewTransform()
	}
	tr.Dirty = true

	id := s.newID()
	s.Objects[id] = &Object{Mesh: mesh, Transform: tr}
	s.TLAS.AddInstance(bvh.NewInstance(id, idx))
	return id, nil
}

func (s *Scene) Object(id InstanceID) (*Object, bool) {
	obj, ok := s.Objects[id]
	return obj, ok
}

func (s *Scene) RemoveObject(id InstanceID) bool {
	if _, ok := s.Objects[id]; !ok {
		return false
	}
	delete(s.Objects, id)
	s.TLAS.RemoveInstance(id)
	return true
}

// Commit pushes changed transforms into the instances and rebuilds the TLAS.
// Dirty flags are cleared only after every instance has been refreshed, so
// objects sharing a Transform all move together.
func (s *Scene) Commit() {
	start := time.Now()
	dirty := make(map[*Transform]struct{})
	for _, obj := range s.Objects {
		if obj.Transform.Dirty {
			dirty[obj.Transform] = struct{}{}
		}
	}

	updated := 0
	s.TLAS.UpdateInstances(func(owner uuid.UUID) (mgl32.Mat4, bool) {
		obj, ok := s.Objects[owner]
		if !ok {
			return mgl32.Mat4{}, false
		}
		if _, changed := dirty[obj.Transform]; !changed {
			return mgl32.Mat4{}, false
		}
		updated++
		return obj.Transform.ObjectToWorld(), true
	})
	for tr := range dirty {
		tr.Dirty = false
	}

	s.TLAS.Build()
	s.logger.Debugf("commit: %d instances (%d moved), %d tlas nodes in %s",
		len(s.TLAS.Instances), updated, len(s.TLAS.Nodes), time.Since(start))
}

// Raycast returns the nearest hit closer than maxDist. Pass +Inf for an
// unbounded query.
func (s *Scene) Raycast(origin, dir mgl32.Vec3, maxDist float32) (bvh.Hit, bool) {
	r := bvh.NewRay(origin, dir)
	r.SetMaxDistance(maxDist)
	return r.IntersectTLAS(s.TLAS)
}
