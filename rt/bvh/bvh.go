package bvh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Number of SAH bins evaluated per axis.
const binCount = 8

// Node is a BVH node. Interior nodes have TriCount == 0 and their children at
// LeftFirst and LeftFirst+1. Leaves cover TriIndices[LeftFirst:LeftFirst+TriCount].
type Node struct {
	Min       mgl32.Vec3
	Max       mgl32.Vec3
	LeftFirst uint32
	TriCount  uint32
}

func (n *Node) IsLeaf() bool {
	return n.TriCount > 0
}

func (n *Node) Bounds() AABB {
	return AABB{Min: n.Min, Max: n.Max}
}

// Cost is the SAH cost of leaving the node unsplit.
func (n *Node) Cost() float32 {
	return float32(n.TriCount) * n.Bounds().Area()
}

// BVH is a bottom level hierarchy over one mesh. Node 0 is the root.
// Tris is referenced, not copied; it must not change after New.
type BVH struct {
	Nodes      []Node
	TriIndices []uint32
	Tris       []Tri
}

// Stats summarizes the shape of a built tree.
type Stats struct {
	Nodes       int
	Leaves      int
	MaxDepth    int
	MaxLeafTris int
}

type bin struct {
	bounds AABB
	count  uint32
}

// New builds a binned SAH hierarchy over tris. A node is split only when the
// best plane is strictly cheaper than leaving it as a leaf.
func New(tris []Tri) *BVH {
	capacity := 1
	if len(tris) > 1 {
		capacity = 2*len(tris) - 1
	}
	b := &BVH{
		Nodes:      make([]Node, 1, capacity),
		TriIndices: make([]uint32, len(tris)),
		Tris:       tris,
	}
	for i := range b.TriIndices {
		b.TriIndices[i] = uint32(i)
	}
	b.Nodes[0] = Node{LeftFirst: 0, TriCount: uint32(len(tris))}
	b.updateNodeBounds(0)
	b.subdivide(0)
	return b
}

// Bounds returns the root box in the mesh's local space.
func (b *BVH) Bounds() AABB {
	if len(b.Tris) == 0 {
		return EmptyAABB()
	}
	return b.Nodes[0].Bounds()
}

func (b *BVH) updateNodeBounds(idx uint32) {
	node := &b.Nodes[idx]
	bounds := EmptyAABB()
	for i := node.LeftFirst; i < node.LeftFirst+node.TriCount; i++ {
		tri := &b.Tris[b.TriIndices[i]]
		bounds.Grow(tri.Vertex0)
		bounds.Grow(tri.Vertex1)
		bounds.Grow(tri.Vertex2)
	}
	node.Min, node.Max = bounds.Min, bounds.Max
}

func (b *BVH) subdivide(idx uint32) {
	node := b.Nodes[idx]

	axis, splitPos, splitCost, ok := b.findBestSplitPlane(&node)
	if !ok || splitCost >= node.Cost() {
		return
	}

	// in-place partition
	i := int(node.LeftFirst)
	j := i + int(node.TriCount) - 1
	for i <= j {
		if b.Tris[b.TriIndices[i]].Centroid[axis] < splitPos {
			i++
		} else {
			b.TriIndices[i], b.TriIndices[j] = b.TriIndices[j], b.TriIndices[i]
			j--
		}
	}

	leftCount := uint32(i) - node.LeftFirst
	if leftCount == 0 || leftCount == node.TriCount {
		return
	}

	left := uint32(len(b.Nodes))
	right := left + 1
	b.Nodes = append(b.Nodes,
		Node{LeftFirst: node.LeftFirst, TriCount: leftCount},
		Node{LeftFirst: uint32(i), TriCount: node.TriCount - leftCount},
	)
	b.Nodes[idx].LeftFirst = left
	b.Nodes[idx].TriCount = 0

	b.updateNodeBounds(left)
	b.updateNodeBounds(right)
	b.subdivide(left)
	b.subdivide(right)
}

// findBestSplitPlane evaluates the binCount-1 planes between centroid bins on
// every axis. Axes whose centroids all coincide are skipped. Ties keep the
// lowest axis, then the lowest plane.
func (b *BVH) findBestSplitPlane(node *Node) (axis int, pos float32, cost float32, ok bool) {
	cost = math32.Inf(1)
	first, last := node.LeftFirst, node.LeftFirst+node.TriCount

	for a := 0; a < 3; a++ {
		boundsMin, boundsMax := math32.Inf(1), math32.Inf(-1)
		for i := first; i < last; i++ {
			c := b.Tris[b.TriIndices[i]].Centroid[a]
			boundsMin = minf(boundsMin, c)
			boundsMax = maxf(boundsMax, c)
		}
		if boundsMin == boundsMax {
			continue
		}

		var bins [binCount]bin
		for k := range bins {
			bins[k].bounds = EmptyAABB()
		}
		scale := binCount / (boundsMax - boundsMin)
		for i := first; i < last; i++ {
			tri := &b.Tris[b.TriIndices[i]]
			k := int((tri.Centroid[a] - boundsMin) * scale)
			if k > binCount-1 {
				k = binCount - 1
			}
			bins[k].count++
			bins[k].bounds.Grow(tri.Vertex0)
			bins[k].bounds.Grow(tri.Vertex1)
			bins[k].bounds.Grow(tri.Vertex2)
		}

		var leftArea, rightArea [binCount - 1]float32
		var leftCount, rightCount [binCount - 1]uint32
		leftBox, rightBox := EmptyAABB(), EmptyAABB()
		var leftSum, rightSum uint32
		for k := 0; k < binCount-1; k++ {
			leftSum += bins[k].count
			leftCount[k] = leftSum
			leftBox.GrowAABB(bins[k].bounds)
			leftArea[k] = leftBox.Area()

			rightSum += bins[binCount-1-k].count
			rightCount[binCount-2-k] = rightSum
			rightBox.GrowAABB(bins[binCount-1-k].bounds)
			rightArea[binCount-2-k] = rightBox.Area()
		}

		step := (boundsMax - boundsMin) / binCount
		for k := 0; k < binCount-1; k++ {
			planeCost := float32(leftCount[k])*leftArea[k] + float32(rightCount[k])*rightArea[k]
			if planeCost < cost {
				axis = a
				pos = boundsMin + step*float32(k+1)
				cost = planeCost
				ok = true
			}
		}
	}
	return axis, pos, cost, ok
}

type stackEntry struct {
	node uint32
	dist float32
}

// Intersect finds the nearest triangle hit closer than ray.T, in the mesh's
// local space. Children are visited near first and any pending subtree whose
// entry distance is no longer closer than ray.T is skipped.
func (b *BVH) Intersect(ray *Ray) {
	if len(b.Tris) == 0 {
		return
	}
	var buf [64]stackEntry
	stack := buf[:0]
	node := &b.Nodes[0]
	for {
		if node.IsLeaf() {
			for i := node.LeftFirst; i < node.LeftFirst+node.TriCount; i++ {
				triIdx := b.TriIndices[i]
				ray.IntersectTriangle(&b.Tris[triIdx], triIdx)
			}
		} else {
			near, far := node.LeftFirst, node.LeftFirst+1
			dNear, hitNear := ray.IntersectAABB(b.Nodes[near].Min, b.Nodes[near].Max)
			dFar, hitFar := ray.IntersectAABB(b.Nodes[far].Min, b.Nodes[far].Max)
			if !hitNear || (hitFar && dFar < dNear) {
				near, far = far, near
				dNear, dFar = dFar, dNear
				hitNear, hitFar = hitFar, hitNear
			}
			if hitNear {
				if hitFar {
					stack = append(stack, stackEntry{node: far, dist: dFar})
				}
				node = &b.Nodes[near]
				continue
			}
		}

		next, ok := popCloser(&stack, ray.T)
		if !ok {
			return
		}
		node = &b.Nodes[next]
	}
}

// popCloser pops until it finds an entry still closer than t.
func popCloser(stack *[]stackEntry, t float32) (uint32, bool) {
	s := *stack
	for len(s) > 0 {
		e := s[len(s)-1]
		s = s[:len(s)-1]
		if e.dist < t {
			*stack = s
			return e.node, true
		}
	}
	*stack = s
	return 0, false
}

// Stats walks the tree and reports its shape.
func (b *BVH) Stats() Stats {
	var st Stats
	if len(b.Nodes) == 0 {
		return st
	}
	type item struct {
		node  uint32
		depth int
	}
	pending := []item{{0, 0}}
	for len(pending) > 0 {
		it := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		n := &b.Nodes[it.node]
		st.Nodes++
		if it.depth > st.MaxDepth {
			st.MaxDepth = it.depth
		}
		if n.IsLeaf() || len(b.Nodes) == 1 {
			st.Leaves++
			if int(n.TriCount) > st.MaxLeafTris {
				st.MaxLeafTris = int(n.TriCount)
			}
			continue
		}
		pending = append(pending, item{n.LeftFirst, it.depth + 1}, item{n.LeftFirst + 1, it.depth + 1})
	}
	return st
}
