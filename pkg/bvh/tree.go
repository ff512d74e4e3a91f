package bvh

import "github.com/df07/go-raytracer-accel/pkg/core"

// Tree is an immutable bounding volume hierarchy over items of type P.
//
// Nodes are stored flattened as parallel slices. For a leaf, first is the
// offset of its run in items and count is the run length. For an internal
// node count is zero and first/second are the child node indices. The root
// is node 0. A built tree is read-only and safe for concurrent queries.
type Tree[P Item] struct {
	items []P

	minX, minY, minZ []float64
	maxX, maxY, maxZ []float64
	first            []int32
	second           []int32
	count            []int32

	wide bool
}

// Len returns the number of items in the tree
func (t *Tree[P]) Len() int {
	return len(t.items)
}

// NodeCount returns the number of nodes in the tree
func (t *Tree[P]) NodeCount() int {
	return len(t.count)
}

// Root returns the root node index, or -1 for an empty tree
func (t *Tree[P]) Root() int {
	if len(t.count) == 0 {
		return -1
	}
	return 0
}

// Wide reports whether queries use the paired-child fast path
func (t *Tree[P]) Wide() bool {
	return t.wide
}

// Bounds returns the root bounds; ok is false for an empty tree
func (t *Tree[P]) Bounds() (core.AABB, bool) {
	if len(t.count) == 0 {
		return core.AABB{}, false
	}
	return t.nodeBounds(0), true
}

// IsLeaf reports whether node i is a leaf
func (t *Tree[P]) IsLeaf(i int) bool {
	return t.count[i] > 0
}

// NodeBounds returns the bounds of node i
func (t *Tree[P]) NodeBounds(i int) core.AABB {
	return t.nodeBounds(int32(i))
}

// Children returns the child indices of internal node i
func (t *Tree[P]) Children(i int) (int, int) {
	return int(t.first[i]), int(t.second[i])
}

// LeafItems returns the items owned by leaf i, in storage order
func (t *Tree[P]) LeafItems(i int) []P {
	off := t.first[i]
	return t.items[off : off+t.count[i]]
}

// VisitLeaves calls fn for every leaf in depth-first, left-first order
func (t *Tree[P]) VisitLeaves(fn func(node int, items []P)) {
	if len(t.count) == 0 {
		return
	}
	var stack [MaxStackDepth]int32
	stack[0] = 0
	sp := 1
	for sp > 0 {
		sp--
		node := stack[sp]
		if t.count[node] > 0 {
			fn(int(node), t.LeafItems(int(node)))
			continue
		}
		stack[sp] = t.second[node]
		stack[sp+1] = t.first[node]
		sp += 2
	}
}

func (t *Tree[P]) nodeBounds(i int32) core.AABB {
	return core.AABB{
		Min: core.Vec3{X: t.minX[i], Y: t.minY[i], Z: t.minZ[i]},
		Max: core.Vec3{X: t.maxX[i], Y: t.maxY[i], Z: t.maxZ[i]},
	}
}

func (t *Tree[P]) setBounds(i int32, b core.AABB) {
	t.minX[i], t.minY[i], t.minZ[i] = b.Min.X, b.Min.Y, b.Min.Z
	t.maxX[i], t.maxY[i], t.maxZ[i] = b.Max.X, b.Max.Y, b.Max.Z
}

func (t *Tree[P]) allocNode() int32 {
	i := int32(len(t.count))
	t.minX = append(t.minX, 0)
	t.minY = append(t.minY, 0)
	t.minZ = append(t.minZ, 0)
	t.maxX = append(t.maxX, 0)
	t.maxY = append(t.maxY, 0)
	t.maxZ = append(t.maxZ, 0)
	t.first = append(t.first, 0)
	t.second = append(t.second, 0)
	t.count = append(t.count, 0)
	return i
}

// refit recomputes internal bounds bottom-up as the union of the children.
// Children are always allocated after their parent, so a reverse sweep
// visits every child before its parent.
func (t *Tree[P]) refit() {
	for i := int32(len(t.count) - 1); i >= 0; i-- {
		if t.count[i] > 0 {
			continue
		}
		t.setBounds(i, t.nodeBounds(t.first[i]).Union(t.nodeBounds(t.second[i])))
	}
}
