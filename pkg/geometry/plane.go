package geometry

import (
	"math"

	"github.com/df07/go-raytracer-accel/pkg/core"
)

const (
	// planeExtent bounds an unbounded plane so it can live in a tree
	planeExtent = 1e6
	// planeSlab is the half-thickness of an axis-aligned plane's box
	planeSlab = 1e-3
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point    core.Vec3     // A point on the plane
	Normal   core.Vec3     // Unit normal
	Material core.Material // Material of the plane
}

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3, material core.Material) *Plane {
	return &Plane{
		Point:    point,
		Normal:   normal.Normalize(),
		Material: material,
	}
}

func (p *Plane) isShape() {}

// Primitive wraps the plane for use in a scene or tree
func (p *Plane) Primitive() Primitive {
	return Primitive{kind: KindPlane, shape: p}
}

// Hit tests if a ray intersects with the plane
func (p *Plane) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	denominator := ray.Direction.Dot(p.Normal)

	// Parallel to the plane, or the normal was zero
	if parallel(denominator, ray.Direction) {
		return core.HitRecord{}, false
	}

	t := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if t < tMin || t > tMax {
		return core.HitRecord{}, false
	}

	rec := core.HitRecord{
		T:        t,
		Point:    ray.At(t),
		Material: p.Material,
	}
	rec.SetFaceNormal(ray, p.Normal)
	return rec, true
}

// BoundingBox returns a large finite box. A plane close to an axis gets a
// slab on that axis wide enough to hold its tilt across the box; an exactly
// aligned plane gets a thin slab so the tree can still separate it.
func (p *Plane) BoundingBox() (core.AABB, bool) {
	if !p.Point.IsFinite() || !p.Normal.IsFinite() {
		return core.AABB{}, false
	}

	lo := core.NewVec3(-planeExtent, -planeExtent, -planeExtent)
	hi := core.NewVec3(planeExtent, planeExtent, planeExtent)
	axis := dominantAxis(p.Normal)
	if half := planeHalfWidth(p.Normal, axis); half < planeExtent {
		k := p.Point.Axis(axis)
		lo = lo.WithAxis(axis, k-half)
		hi = hi.WithAxis(axis, k+half)
	}
	return core.AABB{Min: lo, Max: hi}, true
}

// planeHalfWidth bounds how far the plane strays along axis while the other
// two coordinates stay within planeExtent
func planeHalfWidth(n core.Vec3, axis int) float64 {
	a, b := (axis+1)%3, (axis+2)%3
	off := math.Abs(n.Axis(a)) + math.Abs(n.Axis(b))
	if off == 0 {
		return planeSlab
	}
	return planeExtent*off/math.Abs(n.Axis(axis)) + planeSlab
}
