package bvh

import "github.com/df07/go-raytracer-accel/pkg/core"

type stackEntry struct {
	node  int32
	tNear float64
}

// Hit returns the closest intersection with t in [tMin, tMax].
//
// The traversal is iterative over a fixed-size stack. Each popped node is
// discarded if its entry distance is beyond the best hit found so far, so
// the search window shrinks as closer hits are found. When both children
// are hit the farther one is pushed first so the nearer one is visited
// next.
func (t *Tree[P]) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	var closest core.HitRecord
	if len(t.count) == 0 {
		return closest, false
	}

	inv := core.NewRayInv(ray)
	tNear, _, ok := t.nodeBounds(0).HitInv(ray, inv, tMin, tMax)
	if !ok {
		return closest, false
	}

	var stack [MaxStackDepth]stackEntry
	stack[0] = stackEntry{node: 0, tNear: tNear}
	sp := 1

	best := tMax
	found := false
	for sp > 0 {
		sp--
		entry := stack[sp]
		if entry.tNear > best {
			continue
		}

		node := entry.node
		if n := t.count[node]; n > 0 {
			off := t.first[node]
			for i := off; i < off+n; i++ {
				if rec, ok := t.items[i].Hit(ray, tMin, best); ok {
					closest = rec
					best = rec.T
					found = true
				}
			}
			continue
		}

		left, right := t.first[node], t.second[node]
		tl, okL, tr, okR := t.hitChildren(left, right, ray, inv, tMin, best)
		switch {
		case okL && okR:
			if tl <= tr {
				stack[sp] = stackEntry{right, tr}
				stack[sp+1] = stackEntry{left, tl}
			} else {
				stack[sp] = stackEntry{left, tl}
				stack[sp+1] = stackEntry{right, tr}
			}
			sp += 2
		case okL:
			stack[sp] = stackEntry{left, tl}
			sp++
		case okR:
			stack[sp] = stackEntry{right, tr}
			sp++
		}
	}

	return closest, found
}

// Occluded reports whether anything blocks the ray between core.RayEpsilon
// and maxDistance. Used for shadow rays.
func (t *Tree[P]) Occluded(ray core.Ray, maxDistance float64) bool {
	return t.OccludedRange(ray, core.RayEpsilon, maxDistance)
}

// OccludedRange is Occluded with an explicit interval. It returns on the
// first accepted hit, in no particular order.
func (t *Tree[P]) OccludedRange(ray core.Ray, tMin, tMax float64) bool {
	if len(t.count) == 0 {
		return false
	}

	inv := core.NewRayInv(ray)
	if _, _, ok := t.nodeBounds(0).HitInv(ray, inv, tMin, tMax); !ok {
		return false
	}

	var stack [MaxStackDepth]int32
	stack[0] = 0
	sp := 1
	for sp > 0 {
		sp--
		node := stack[sp]

		if n := t.count[node]; n > 0 {
			off := t.first[node]
			for i := off; i < off+n; i++ {
				if t.items[i].Occludes(ray, tMin, tMax) {
					return true
				}
			}
			continue
		}

		left, right := t.first[node], t.second[node]
		tl, okL, tr, okR := t.hitChildren(left, right, ray, inv, tMin, tMax)
		switch {
		case okL && okR:
			// Nearer first still tends to find a blocker sooner
			if tl <= tr {
				stack[sp], stack[sp+1] = right, left
			} else {
				stack[sp], stack[sp+1] = left, right
			}
			sp += 2
		case okL:
			stack[sp] = left
			sp++
		case okR:
			stack[sp] = right
			sp++
		}
	}
	return false
}

func (t *Tree[P]) hitChildren(left, right int32, ray core.Ray, inv core.RayInv, tMin, tMax float64) (float64, bool, float64, bool) {
	if t.wide {
		return t.hitChildrenWide(left, right, ray, inv, tMin, tMax)
	}
	tl, _, okL := t.nodeBounds(left).HitInv(ray, inv, tMin, tMax)
	tr, _, okR := t.nodeBounds(right).HitInv(ray, inv, tMin, tMax)
	return tl, okL, tr, okR
}
