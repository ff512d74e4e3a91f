package geometry

import (
	"math"

	"github.com/df07/go-raytracer-accel/pkg/core"
)

// Rect is an axis-aligned rectangle lying in the plane axis(normal) = K,
// spanning [A0,A1] on its first in-plane axis and [B0,B1] on the second.
//
//	XY: a=x b=y normal=z
//	XZ: a=x b=z normal=y
//	YZ: a=y b=z normal=x
type Rect struct {
	A0, A1   float64
	B0, B1   float64
	K        float64
	Material core.Material

	kind    Kind
	axisA   int
	axisB   int
	axisN   int
	outward float64 // +1 or -1 along axisN
}

func newRect(kind Kind, axisA, axisB, axisN int, a0, a1, b0, b1, k float64, material core.Material) *Rect {
	return &Rect{
		A0: math.Min(a0, a1), A1: math.Max(a0, a1),
		B0: math.Min(b0, b1), B1: math.Max(b0, b1),
		K:        k,
		Material: material,
		kind:     kind,
		axisA:    axisA,
		axisB:    axisB,
		axisN:    axisN,
		outward:  1,
	}
}

// NewRectXY creates a rectangle in the plane z = k
func NewRectXY(x0, x1, y0, y1, k float64, material core.Material) *Rect {
	return newRect(KindRectXY, 0, 1, 2, x0, x1, y0, y1, k, material)
}

// NewRectXZ creates a rectangle in the plane y = k
func NewRectXZ(x0, x1, z0, z1, k float64, material core.Material) *Rect {
	return newRect(KindRectXZ, 0, 2, 1, x0, x1, z0, z1, k, material)
}

// NewRectYZ creates a rectangle in the plane x = k
func NewRectYZ(y0, y1, z0, z1, k float64, material core.Material) *Rect {
	return newRect(KindRectYZ, 1, 2, 0, y0, y1, z0, z1, k, material)
}

// Flipped returns a copy whose outward normal points along the negative axis
func (r *Rect) Flipped() *Rect {
	c := *r
	c.outward = -r.outward
	return &c
}

func (r *Rect) isShape() {}

// Primitive wraps the rectangle for use in a scene or tree
func (r *Rect) Primitive() Primitive {
	return Primitive{kind: r.kind, shape: r}
}

// Normal returns the outward normal
func (r *Rect) Normal() core.Vec3 {
	return core.Vec3{}.WithAxis(r.axisN, r.outward)
}

// Hit tests if a ray intersects with the rectangle
func (r *Rect) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	dn := ray.Direction.Axis(r.axisN)
	if parallel(dn, ray.Direction) {
		return core.HitRecord{}, false
	}

	t := (r.K - ray.Origin.Axis(r.axisN)) / dn
	if t < tMin || t > tMax {
		return core.HitRecord{}, false
	}

	a := ray.Origin.Axis(r.axisA) + t*ray.Direction.Axis(r.axisA)
	b := ray.Origin.Axis(r.axisB) + t*ray.Direction.Axis(r.axisB)
	if a < r.A0 || a > r.A1 || b < r.B0 || b > r.B1 {
		return core.HitRecord{}, false
	}

	rec := core.HitRecord{
		T:        t,
		Point:    ray.At(t),
		Material: r.Material,
		U:        unitFraction(a, r.A0, r.A1),
		V:        unitFraction(b, r.B0, r.B1),
	}
	rec.SetFaceNormal(ray, r.Normal())
	return rec, true
}

// BoundingBox returns the rectangle's box, padded on the normal axis
func (r *Rect) BoundingBox() (core.AABB, bool) {
	var lo, hi core.Vec3
	lo = lo.WithAxis(r.axisA, r.A0).WithAxis(r.axisB, r.B0).WithAxis(r.axisN, r.K)
	hi = hi.WithAxis(r.axisA, r.A1).WithAxis(r.axisB, r.B1).WithAxis(r.axisN, r.K)
	box := core.AABB{Min: lo, Max: hi}
	if !box.IsFinite() {
		return core.AABB{}, false
	}
	return box.Pad(core.BoundsEpsilon), true
}

// unitFraction maps v in [lo,hi] to [0,1]; a zero-width range maps to 0
func unitFraction(v, lo, hi float64) float64 {
	w := hi - lo
	if w <= 0 {
		return 0
	}
	return (v - lo) / w
}
