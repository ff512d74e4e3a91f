package geometry

import (
	"math"

	"github.com/df07/go-raytracer-accel/pkg/core"
)

// Cylinder is a Y-aligned cylinder whose axis passes through Center's X and
// Z coordinates and spans [YMin, YMax]. Capped cylinders are closed by two
// disks; open ones show their inner wall.
type Cylinder struct {
	Center   core.Vec3
	Radius   float64
	YMin     float64
	YMax     float64
	Capped   bool
	Material core.Material
}

// NewCylinder creates a new cylinder. The Y range may be given in any order.
func NewCylinder(center core.Vec3, radius, yMin, yMax float64, capped bool, material core.Material) *Cylinder {
	if yMin > yMax {
		yMin, yMax = yMax, yMin
	}
	return &Cylinder{
		Center:   center,
		Radius:   radius,
		YMin:     yMin,
		YMax:     yMax,
		Capped:   capped,
		Material: material,
	}
}

func (c *Cylinder) isShape() {}

// Primitive wraps the cylinder for use in a scene or tree
func (c *Cylinder) Primitive() Primitive {
	return Primitive{kind: KindCylinder, shape: c}
}

// Hit returns the nearest of the lateral surface and the caps
func (c *Cylinder) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	if c.Radius <= 0 {
		return core.HitRecord{}, false
	}

	rec, found := c.hitLateral(ray, tMin, tMax)
	if found {
		tMax = rec.T
	}
	if c.Capped {
		if capRec, ok := c.hitCap(ray, c.YMin, -1, tMin, tMax); ok {
			rec, found, tMax = capRec, true, capRec.T
		}
		if capRec, ok := c.hitCap(ray, c.YMax, 1, tMin, tMax); ok {
			rec, found = capRec, true
		}
	}
	return rec, found
}

// hitLateral solves the circle equation in the XZ projection and keeps the
// smaller root inside both the t interval and the Y range
func (c *Cylinder) hitLateral(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	ox := ray.Origin.X - c.Center.X
	oz := ray.Origin.Z - c.Center.Z
	dx, dz := ray.Direction.X, ray.Direction.Z

	a := dx*dx + dz*dz
	if a <= parallelEpsilon*ray.Direction.LengthSquared() {
		// Parallel to the axis: only the caps can be hit
		return core.HitRecord{}, false
	}
	halfB := ox*dx + oz*dz
	cc := ox*ox + oz*oz - c.Radius*c.Radius

	discriminant := halfB*halfB - a*cc
	if discriminant < 0 {
		return core.HitRecord{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	for _, t := range [2]float64{(-halfB - sqrtD) / a, (-halfB + sqrtD) / a} {
		if t < tMin || t > tMax {
			continue
		}
		y := ray.Origin.Y + t*ray.Direction.Y
		if y < c.YMin || y > c.YMax {
			continue
		}

		point := ray.At(t)
		outward := core.NewVec3((point.X-c.Center.X)/c.Radius, 0, (point.Z-c.Center.Z)/c.Radius)
		rec := core.HitRecord{
			T:        t,
			Point:    point,
			Material: c.Material,
			U:        (math.Atan2(-outward.Z, outward.X) + math.Pi) / (2 * math.Pi),
			V:        unitFraction(y, c.YMin, c.YMax),
		}
		rec.SetFaceNormal(ray, outward)
		return rec, true
	}
	return core.HitRecord{}, false
}

// hitCap intersects the cap disk at height y with outward normal (0,sign,0)
func (c *Cylinder) hitCap(ray core.Ray, y, sign, tMin, tMax float64) (core.HitRecord, bool) {
	if parallel(ray.Direction.Y, ray.Direction) {
		return core.HitRecord{}, false
	}
	t := (y - ray.Origin.Y) / ray.Direction.Y
	if t < tMin || t > tMax {
		return core.HitRecord{}, false
	}

	point := ray.At(t)
	px, pz := point.X-c.Center.X, point.Z-c.Center.Z
	if px*px+pz*pz > c.Radius*c.Radius {
		return core.HitRecord{}, false
	}

	rec := core.HitRecord{
		T:        t,
		Point:    point,
		Material: c.Material,
		U:        (px/c.Radius + 1) / 2,
		V:        (pz/c.Radius + 1) / 2,
	}
	rec.SetFaceNormal(ray, core.NewVec3(0, sign, 0))
	return rec, true
}

// BoundingBox returns the axis-aligned bounding box for this cylinder
func (c *Cylinder) BoundingBox() (core.AABB, bool) {
	if math.IsNaN(c.Radius) || math.IsNaN(c.YMin) || math.IsNaN(c.YMax) || !c.Center.IsFinite() {
		return core.AABB{}, false
	}
	r := math.Abs(c.Radius)
	box := core.NewAABB(
		core.NewVec3(c.Center.X-r, c.YMin, c.Center.Z-r),
		core.NewVec3(c.Center.X+r, c.YMax, c.Center.Z+r),
	)
	if !box.IsFinite() {
		return core.AABB{}, false
	}
	return box.Pad(core.BoundsEpsilon), true
}
