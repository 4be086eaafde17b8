package bvh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type NodeKind uint8

const (
	LeafNode NodeKind = iota
	InteriorNode
)

// TLASNode is a top level node. Leaves reference Instances[Instance];
// interior nodes reference Nodes[Left] and Nodes[Right].
type TLASNode struct {
	Bounds   AABB
	Kind     NodeKind
	Left     uint32
	Right    uint32
	Instance uint32
}

func (n *TLASNode) IsLeaf() bool {
	return n.Kind == LeafNode
}

// TransformLookup returns the current object-to-world matrix of an instance
// owner, or false if the owner has none.
type TransformLookup func(owner uuid.UUID) (mgl32.Mat4, bool)

// TLAS is the top level structure over BVH instances. After Build, Nodes[0]
// is the root and there are exactly 2N-1 nodes for N instances.
//
// Build and UpdateInstances must not run concurrently with queries; once
// built, any number of rays may be cast against it concurrently.
type TLAS struct {
	Nodes     []TLASNode
	Instances []Instance
	BVHs      []*BVH
}

func NewTLAS() *TLAS {
	return &TLAS{}
}

func (t *TLAS) AddBVH(b *BVH) int {
	t.BVHs = append(t.BVHs, b)
	return len(t.BVHs) - 1
}

// AddInstance appends an instance and returns its index. If the instance
// bounds are still empty they are initialized from an identity transform.
func (t *TLAS) AddInstance(in Instance) int {
	if in.Bounds.IsEmpty() && in.BVHIndex >= 0 && in.BVHIndex < len(t.BVHs) {
		in.Update(mgl32.Ident4(), t.BVHs[in.BVHIndex].Bounds())
	}
	t.Instances = append(t.Instances, in)
	return len(t.Instances) - 1
}

// RemoveInstance drops every instance owned by owner, keeping the order of
// the rest. The tree must be rebuilt afterwards.
func (t *TLAS) RemoveInstance(owner uuid.UUID) bool {
	kept := t.Instances[:0]
	for _, in := range t.Instances {
		if in.Owner != owner {
			kept = append(kept, in)
		}
	}
	removed := len(kept) != len(t.Instances)
	t.Instances = kept
	return removed
}

// UpdateInstances refreshes the inverse transform and world bounds of every
// instance whose owner has a transform in lookup.
func (t *TLAS) UpdateInstances(lookup TransformLookup) {
	for i := range t.Instances {
		in := &t.Instances[i]
		if in.BVHIndex < 0 || in.BVHIndex >= len(t.BVHs) {
			continue
		}
		world, ok := lookup(in.Owner)
		if !ok {
			continue
		}
		in.Update(world, t.BVHs[in.BVHIndex].Bounds())
	}
}

// Build regenerates the tree by agglomerative clustering: nodes are merged
// with their mutual best match, the pair whose union has the smallest area.
func (t *TLAS) Build() {
	n := len(t.Instances)
	t.Nodes = t.Nodes[:0]
	if n == 0 {
		return
	}
	if n == 1 {
		t.Nodes = append(t.Nodes, TLASNode{Bounds: t.Instances[0].Bounds, Kind: LeafNode})
		return
	}

	if cap(t.Nodes) < 2*n-1 {
		t.Nodes = make([]TLASNode, 0, 2*n-1)
	}
	// slot 0 is reserved for the root, written by the final merge
	t.Nodes = append(t.Nodes, TLASNode{})
	active := make([]uint32, n)
	for i := range t.Instances {
		active[i] = uint32(len(t.Nodes))
		t.Nodes = append(t.Nodes, TLASNode{
			Bounds:   t.Instances[i].Bounds,
			Kind:     LeafNode,
			Instance: uint32(i),
		})
	}

	count := n
	a := 0
	b := t.findBestMatch(active, count, a)
	for count > 1 {
		c := t.findBestMatch(active, count, b)
		if c != a {
			a, b = b, c
			continue
		}

		nodeA, nodeB := active[a], active[b]
		merged := TLASNode{
			Bounds: Union(t.Nodes[nodeA].Bounds, t.Nodes[nodeB].Bounds),
			Kind:   InteriorNode,
			Left:   nodeA,
			Right:  nodeB,
		}
		var idx uint32
		if count == 2 {
			t.Nodes[0] = merged
		} else {
			idx = uint32(len(t.Nodes))
			t.Nodes = append(t.Nodes, merged)
		}

		active[a] = idx
		active[b] = active[count-1]
		count--
		if a == count {
			// a was the last slot and has just been moved into b
			a = b
		}
		b = t.findBestMatch(active, count, a)
	}
}

// findBestMatch returns the active slot whose union with slot a has the
// smallest area, or -1 if a is the only active slot. Ties keep the lowest slot.
func (t *TLAS) findBestMatch(active []uint32, count, a int) int {
	best := -1
	var smallest float32
	boundsA := t.Nodes[active[a]].Bounds
	for b := 0; b < count; b++ {
		if b == a {
			continue
		}
		area := Union(boundsA, t.Nodes[active[b]].Bounds).Area()
		if best == -1 || area < smallest {
			smallest = area
			best = b
		}
	}
	return best
}

// Intersect finds the nearest hit across all instances, using the same near
// first traversal as BVH.Intersect with instance traversal at the leaves.
func (t *TLAS) Intersect(ray *Ray) {
	if len(t.Nodes) == 0 {
		return
	}
	var buf [64]stackEntry
	stack := buf[:0]
	node := &t.Nodes[0]
	for {
		if node.IsLeaf() {
			prev := ray.T
			t.Instances[node.Instance].Intersect(ray, t.BVHs)
			if ray.T < prev {
				ray.hit.InstanceIndex = int(node.Instance)
			}
		} else {
			near, far := node.Left, node.Right
			dNear, hitNear := ray.IntersectAABB(t.Nodes[near].Bounds.Min, t.Nodes[near].Bounds.Max)
			dFar, hitFar := ray.IntersectAABB(t.Nodes[far].Bounds.Min, t.Nodes[far].Bounds.Max)
			if !hitNear || (hitFar && dFar < dNear) {
				near, far = far, near
				dNear, dFar = dFar, dNear
				hitNear, hitFar = hitFar, hitNear
			}
			if hitNear {
				if hitFar {
					stack = append(stack, stackEntry{node: far, dist: dFar})
				}
				node = &t.Nodes[near]
				continue
			}
		}

		next, ok := popCloser(&stack, ray.T)
		if !ok {
			return
		}
		node = &t.Nodes[next]
	}
}
