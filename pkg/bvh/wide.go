package bvh

import (
	"golang.org/x/sys/cpu"

	"github.com/df07/go-raytracer-accel/pkg/core"
)

// wideSupported gates the paired-child slab test. The two-lane layout only
// pays off where the CPU has wide enough vector units for the compiler's
// scheduling to overlap both lanes.
var wideSupported = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD

// WideSupported reports whether trees built with Options.WideTraversal will
// actually take the paired-child path on this machine.
func WideSupported() bool {
	return wideSupported
}

// hitChildrenWide slab-tests both children in one pass, two lanes per axis.
// The arithmetic per lane is identical to AABB.HitInv, so results match the
// scalar path exactly.
func (t *Tree[P]) hitChildrenWide(left, right int32, ray core.Ray, inv core.RayInv, tMin, tMax float64) (float64, bool, float64, bool) {
	lo := [2]float64{tMin, tMin}
	hi := [2]float64{tMax, tMax}
	nodes := [2]int32{left, right}

	sx, sy, sz := inv.Sign[0], inv.Sign[1], inv.Sign[2]
	for lane := 0; lane < 2; lane++ {
		n := nodes[lane]

		xs := [2]float64{t.minX[n], t.maxX[n]}
		t0 := (xs[sx] - ray.Origin.X) * inv.Inv.X
		t1 := (xs[1-sx] - ray.Origin.X) * inv.Inv.X
		if t0 > lo[lane] {
			lo[lane] = t0
		}
		if t1 < hi[lane] {
			hi[lane] = t1
		}

		ys := [2]float64{t.minY[n], t.maxY[n]}
		t0 = (ys[sy] - ray.Origin.Y) * inv.Inv.Y
		t1 = (ys[1-sy] - ray.Origin.Y) * inv.Inv.Y
		if t0 > lo[lane] {
			lo[lane] = t0
		}
		if t1 < hi[lane] {
			hi[lane] = t1
		}

		zs := [2]float64{t.minZ[n], t.maxZ[n]}
		t0 = (zs[sz] - ray.Origin.Z) * inv.Inv.Z
		t1 = (zs[1-sz] - ray.Origin.Z) * inv.Inv.Z
		if t0 > lo[lane] {
			lo[lane] = t0
		}
		if t1 < hi[lane] {
			hi[lane] = t1
		}
	}

	return lo[0], lo[0] <= hi[0], lo[1], lo[1] <= hi[1]
}
