package bvh

import (
	"fmt"
	"math"
	"time"

	"github.com/df07/go-raytracer-accel/pkg/core"
)

// buildRef is the per-item working record the builder partitions in place.
type buildRef struct {
	bounds   core.AABB
	centroid core.Vec3
	index    int32
}

type buildTask struct {
	node       int32
	start, end int
	depth      int
}

type splitKind int

const (
	splitSAH splitKind = iota
	splitMedian
)

type builder[P Item] struct {
	opts  Options
	refs  []buildRef
	tree  *Tree[P]
	stats Stats

	// Scratch reused across every node of one build
	binCount   []int
	binBounds  []core.AABB
	rightArea  []float64
	rightCount []int
}

// Build constructs a tree over items using binned SAH splitting with a
// median-split fallback. The input slice is not modified; the tree keeps
// its own copy reordered so every leaf owns a contiguous run.
//
// Build fails with ErrUnbounded if any item cannot report finite bounds.
// An empty input produces an empty tree that never reports hits.
func Build[P Item](items []P, opts Options) (*Tree[P], Stats, error) {
	start := time.Now()

	opts, err := opts.withDefaults()
	if err != nil {
		return nil, Stats{}, err
	}

	tree := &Tree[P]{wide: opts.WideTraversal && wideSupported}
	if len(items) == 0 {
		return tree, Stats{BuildTime: time.Since(start)}, nil
	}

	refs := make([]buildRef, len(items))
	for i, item := range items {
		bounds, centroid, ok := item.TryGetBounds()
		if !ok || !bounds.IsFinite() || !centroid.IsFinite() {
			return nil, Stats{}, fmt.Errorf("item %d: %w", i, ErrUnbounded)
		}
		refs[i] = buildRef{bounds: bounds, centroid: centroid, index: int32(i)}
	}

	b := &builder[P]{
		opts:       opts,
		refs:       refs,
		tree:       tree,
		stats:      Stats{Items: len(items)},
		binCount:   make([]int, opts.Bins),
		binBounds:  make([]core.AABB, opts.Bins),
		rightArea:  make([]float64, opts.Bins),
		rightCount: make([]int, opts.Bins),
	}
	b.build()

	tree.items = make([]P, len(refs))
	for i, ref := range refs {
		tree.items[i] = items[ref.index]
	}
	tree.refit()

	b.stats.Nodes = tree.NodeCount()
	b.stats.BuildTime = time.Since(start)
	return tree, b.stats, nil
}

// build runs the top-down partition from an explicit worklist so the call
// stack depth never depends on the input.
func (b *builder[P]) build() {
	stack := []buildTask{{node: b.tree.allocNode(), start: 0, end: len(b.refs)}}

	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if task.end-task.start <= b.opts.LeafSize {
			b.makeLeaf(task)
			continue
		}
		if task.depth >= maxBuildDepth {
			b.stats.ForcedLeaves++
			b.makeLeaf(task)
			continue
		}

		mid, kind := b.split(task.start, task.end)
		if kind == splitSAH {
			b.stats.SAHSplits++
		} else {
			b.stats.MedianSplits++
		}

		left := b.tree.allocNode()
		right := b.tree.allocNode()
		b.tree.first[task.node] = left
		b.tree.second[task.node] = right

		stack = append(stack,
			buildTask{node: right, start: mid, end: task.end, depth: task.depth + 1},
			buildTask{node: left, start: task.start, end: mid, depth: task.depth + 1},
		)
	}
}

func (b *builder[P]) makeLeaf(task buildTask) {
	bounds := core.EmptyAABB()
	for i := task.start; i < task.end; i++ {
		bounds = bounds.Union(b.refs[i].bounds)
	}

	n := task.end - task.start
	b.tree.setBounds(task.node, bounds)
	b.tree.first[task.node] = int32(task.start)
	b.tree.count[task.node] = int32(n)

	b.stats.Leaves++
	b.stats.MaxLeafSize = max(b.stats.MaxLeafSize, n)
	b.stats.MaxDepth = max(b.stats.MaxDepth, task.depth)
}

// split partitions refs[start:end] and returns the first index of the right
// half. Both halves are always non-empty.
func (b *builder[P]) split(start, end int) (int, splitKind) {
	refs := b.refs[start:end]

	bounds := core.EmptyAABB()
	centroids := core.EmptyAABB()
	for i := range refs {
		bounds = bounds.Union(refs[i].bounds)
		centroids = centroids.UnionPoint(refs[i].centroid)
	}
	defaultAxis := centroids.LongestAxis()
	extent := centroids.Size()

	bestAxis, bestBoundary := -1, 0
	bestCost := bounds.SurfaceArea() * float64(len(refs))
	for axis := 0; axis < 3; axis++ {
		if extent.Axis(axis) <= 0 {
			continue
		}
		boundary, cost := b.sweep(refs, axis, centroids.Min.Axis(axis), extent.Axis(axis))
		if boundary > 0 && cost < bestCost {
			bestAxis, bestBoundary, bestCost = axis, boundary, cost
		}
	}

	if bestAxis >= 0 {
		mid := b.partition(refs, bestAxis, centroids.Min.Axis(bestAxis), extent.Axis(bestAxis), bestBoundary)
		if mid > 0 && mid < len(refs) {
			return start + mid, splitSAH
		}
	}

	mid := len(refs) / 2
	selectNth(refs, mid, defaultAxis)
	return start + mid, splitMedian
}

// sweep bins centroids along one axis and returns the cheapest bin boundary
// and its cost. Boundary i puts bins [0,i) left and [i,bins) right; 0 means
// no boundary had items on both sides.
func (b *builder[P]) sweep(refs []buildRef, axis int, lo, extent float64) (int, float64) {
	bins := b.opts.Bins
	for i := 0; i < bins; i++ {
		b.binCount[i] = 0
		b.binBounds[i] = core.EmptyAABB()
	}
	for i := range refs {
		bi := b.binIndex(refs[i].centroid.Axis(axis), lo, extent)
		b.binCount[bi]++
		b.binBounds[bi] = b.binBounds[bi].Union(refs[i].bounds)
	}

	acc := core.EmptyAABB()
	count := 0
	for i := bins - 1; i > 0; i-- {
		acc = acc.Union(b.binBounds[i])
		count += b.binCount[i]
		b.rightArea[i] = acc.SurfaceArea()
		b.rightCount[i] = count
	}

	bestBoundary, bestCost := 0, math.Inf(1)
	acc = core.EmptyAABB()
	count = 0
	for i := 1; i < bins; i++ {
		acc = acc.Union(b.binBounds[i-1])
		count += b.binCount[i-1]
		if count == 0 || b.rightCount[i] == 0 {
			continue
		}
		cost := acc.SurfaceArea()*float64(count) + b.rightArea[i]*float64(b.rightCount[i])
		if cost < bestCost {
			bestBoundary, bestCost = i, cost
		}
	}
	return bestBoundary, bestCost
}

func (b *builder[P]) binIndex(c, lo, extent float64) int {
	bi := int(float64(b.opts.Bins) * (c - lo) / extent)
	if bi >= b.opts.Bins {
		return b.opts.Bins - 1
	}
	if bi < 0 {
		return 0
	}
	return bi
}

// partition moves refs whose bin is left of boundary to the front and
// returns how many there are.
func (b *builder[P]) partition(refs []buildRef, axis int, lo, extent float64, boundary int) int {
	i, j := 0, len(refs)-1
	for i <= j {
		if b.binIndex(refs[i].centroid.Axis(axis), lo, extent) < boundary {
			i++
			continue
		}
		refs[i], refs[j] = refs[j], refs[i]
		j--
	}
	return i
}

func refLess(a, b *buildRef, axis int) bool {
	ca, cb := a.centroid.Axis(axis), b.centroid.Axis(axis)
	if ca != cb {
		return ca < cb
	}
	return a.index < b.index
}

// selectNth partially sorts refs so refs[nth] holds the element a full sort
// would put there, with smaller elements before it and larger after.
// Ties on the centroid are broken by original index, which keeps builds
// deterministic.
func selectNth(refs []buildRef, nth, axis int) {
	lo, hi := 0, len(refs)-1
	for hi-lo >= 16 {
		mid := lo + (hi-lo)/2
		if refLess(&refs[mid], &refs[lo], axis) {
			refs[mid], refs[lo] = refs[lo], refs[mid]
		}
		if refLess(&refs[hi], &refs[lo], axis) {
			refs[hi], refs[lo] = refs[lo], refs[hi]
		}
		if refLess(&refs[hi], &refs[mid], axis) {
			refs[hi], refs[mid] = refs[mid], refs[hi]
		}
		pivot := refs[mid]

		i, j := lo, hi
		for i <= j {
			for refLess(&refs[i], &pivot, axis) {
				i++
			}
			for refLess(&pivot, &refs[j], axis) {
				j--
			}
			if i <= j {
				refs[i], refs[j] = refs[j], refs[i]
				i++
				j--
			}
		}

		switch {
		case nth <= j:
			hi = j
		case nth >= i:
			lo = i
		default:
			return
		}
	}

	// Insertion sort the remaining short window
	for i := lo + 1; i <= hi; i++ {
		for k := i; k > lo && refLess(&refs[k], &refs[k-1], axis); k-- {
			refs[k], refs[k-1] = refs[k-1], refs[k]
		}
	}
}
