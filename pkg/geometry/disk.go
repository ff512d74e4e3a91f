package geometry

import (
	"math"

	"github.com/df07/go-raytracer-accel/pkg/core"
)

// Disk is a flat circle defined by center, normal and radius
type Disk struct {
	Center   core.Vec3
	Normal   core.Vec3 // Unit normal
	Radius   float64
	Material core.Material

	// In-plane orthonormal basis, used for UV
	right core.Vec3
	up    core.Vec3
}

// NewDisk creates a new disk
func NewDisk(center, normal core.Vec3, radius float64, material core.Material) *Disk {
	n := normal.Normalize()

	// Pick the world axis least aligned with the normal
	helper := core.NewVec3(1, 0, 0)
	if math.Abs(n.X) > 0.9 {
		helper = core.NewVec3(0, 1, 0)
	}
	right := helper.Cross(n).Normalize()
	up := n.Cross(right)

	return &Disk{
		Center:   center,
		Normal:   n,
		Radius:   radius,
		Material: material,
		right:    right,
		up:       up,
	}
}

func (d *Disk) isShape() {}

// Primitive wraps the disk for use in a scene or tree
func (d *Disk) Primitive() Primitive {
	return Primitive{kind: KindDisk, shape: d}
}

// Hit tests if a ray intersects with the disk
func (d *Disk) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	if d.Radius <= 0 {
		return core.HitRecord{}, false
	}

	denominator := ray.Direction.Dot(d.Normal)
	if parallel(denominator, ray.Direction) {
		return core.HitRecord{}, false
	}

	t := d.Center.Subtract(ray.Origin).Dot(d.Normal) / denominator
	if t < tMin || t > tMax {
		return core.HitRecord{}, false
	}

	point := ray.At(t)
	offset := point.Subtract(d.Center)
	distSq := offset.LengthSquared()
	if distSq > d.Radius*d.Radius {
		return core.HitRecord{}, false
	}

	// Polar UV: u is the angle around the normal, v the normalized radius
	angle := math.Atan2(offset.Dot(d.up), offset.Dot(d.right))
	if angle < 0 {
		angle += 2 * math.Pi
	}

	rec := core.HitRecord{
		T:        t,
		Point:    point,
		Material: d.Material,
		U:        angle / (2 * math.Pi),
		V:        math.Sqrt(distSq) / d.Radius,
	}
	rec.SetFaceNormal(ray, d.Normal)
	return rec, true
}

// BoundingBox returns the tight box of the disk: along each axis the extent
// is radius·sqrt(1 - n²) for that normal component.
func (d *Disk) BoundingBox() (core.AABB, bool) {
	if !d.Center.IsFinite() || !d.Normal.IsFinite() || math.IsNaN(d.Radius) {
		return core.AABB{}, false
	}
	r := math.Abs(d.Radius)
	extent := core.NewVec3(
		r*math.Sqrt(math.Max(0, 1-d.Normal.X*d.Normal.X)),
		r*math.Sqrt(math.Max(0, 1-d.Normal.Y*d.Normal.Y)),
		r*math.Sqrt(math.Max(0, 1-d.Normal.Z*d.Normal.Z)),
	)
	return core.NewAABB(d.Center.Subtract(extent), d.Center.Add(extent)).Pad(core.BoundsEpsilon), true
}
