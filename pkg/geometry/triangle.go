package geometry

import (
	"github.com/df07/go-raytracer-accel/pkg/core"
)

// triangleEpsilon rejects rays parallel to the triangle plane (|det| below
// it, per unit of direction length)
const triangleEpsilon = 1e-8

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3     // The three vertices
	Material   core.Material // Material of the triangle
	edge1      core.Vec3     // V1 - V0
	edge2      core.Vec3     // V2 - V0
	normal     core.Vec3     // Cached unit normal
	bbox       core.AABB     // Cached bounding box
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3, material core.Material) *Triangle {
	t := &Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		Material: material,
		edge1:    v1.Subtract(v0),
		edge2:    v2.Subtract(v0),
	}
	t.normal = t.edge1.Cross(t.edge2).Normalize()
	t.bbox = core.NewAABBFromPoints(v0, v1, v2).Pad(core.BoundsEpsilon)
	return t
}

// NewTriangleWithNormal creates a triangle with a custom shading normal
func NewTriangleWithNormal(v0, v1, v2, normal core.Vec3, material core.Material) *Triangle {
	t := NewTriangle(v0, v1, v2, material)
	if n := normal.Normalize(); n.LengthSquared() > 0 {
		t.normal = n
	}
	return t
}

func (t *Triangle) isShape() {}

// Primitive wraps the triangle for use in a scene or tree
func (t *Triangle) Primitive() Primitive {
	return Primitive{kind: KindTriangle, shape: t}
}

// Hit tests if a ray intersects with the triangle using the Möller–Trumbore
// algorithm. U and V of the record are the barycentric weights of V1 and V2.
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	h := ray.Direction.Cross(t.edge2)
	det := t.edge1.Dot(h)

	// Ray lies in (or is parallel to) the triangle plane, or the triangle
	// has no area
	if det*det <= triangleEpsilon*triangleEpsilon*ray.Direction.LengthSquared() {
		return core.HitRecord{}, false
	}

	f := 1.0 / det
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return core.HitRecord{}, false
	}

	q := s.Cross(t.edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return core.HitRecord{}, false
	}

	tHit := f * t.edge2.Dot(q)
	if tHit < tMin || tHit > tMax {
		return core.HitRecord{}, false
	}

	rec := core.HitRecord{
		T:        tHit,
		Point:    ray.At(tHit),
		Material: t.Material,
		U:        u,
		V:        v,
	}
	rec.SetFaceNormal(ray, t.normal)
	return rec, true
}

// Occludes implements bvh.Item for triangles stored directly in a mesh tree
func (t *Triangle) Occludes(ray core.Ray, tMin, tMax float64) bool {
	_, ok := t.Hit(ray, tMin, tMax)
	return ok
}

// TryGetBounds implements bvh.Item
func (t *Triangle) TryGetBounds() (core.AABB, core.Vec3, bool) {
	if !t.bbox.IsFinite() {
		return core.AABB{}, core.Vec3{}, false
	}
	return t.bbox, t.Centroid(), true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() (core.AABB, bool) {
	return t.bbox, t.bbox.IsFinite()
}

// Centroid returns the vertex average
func (t *Triangle) Centroid() core.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Multiply(1.0 / 3.0)
}

// Normal returns the triangle's cached unit normal
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}
