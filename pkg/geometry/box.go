package geometry

import (
	"github.com/df07/go-raytracer-accel/pkg/core"
)

// Box represents an axis-aligned box made up of 6 rectangles
type Box struct {
	Min, Max core.Vec3
	Material core.Material
	faces    [6]*Rect
	bbox     core.AABB
}

// NewAxisAlignedBox creates a box spanning the two corners. The corners may
// be given in any order.
func NewAxisAlignedBox(min, max core.Vec3, material core.Material) *Box {
	bounds := core.NewAABB(min, max)
	b := &Box{
		Min:      bounds.Min,
		Max:      bounds.Max,
		Material: material,
		bbox:     bounds.Pad(core.BoundsEpsilon),
	}
	b.generateFaces()
	return b
}

// generateFaces creates the 6 faces with outward normals
func (b *Box) generateFaces() {
	lo, hi := b.Min, b.Max

	// Z faces
	b.faces[0] = NewRectXY(lo.X, hi.X, lo.Y, hi.Y, hi.Z, b.Material)
	b.faces[1] = NewRectXY(lo.X, hi.X, lo.Y, hi.Y, lo.Z, b.Material).Flipped()

	// Y faces
	b.faces[2] = NewRectXZ(lo.X, hi.X, lo.Z, hi.Z, hi.Y, b.Material)
	b.faces[3] = NewRectXZ(lo.X, hi.X, lo.Z, hi.Z, lo.Y, b.Material).Flipped()

	// X faces
	b.faces[4] = NewRectYZ(lo.Y, hi.Y, lo.Z, hi.Z, hi.X, b.Material)
	b.faces[5] = NewRectYZ(lo.Y, hi.Y, lo.Z, hi.Z, lo.X, b.Material).Flipped()
}

func (b *Box) isShape() {}

// Primitive wraps the box for use in a scene or tree
func (b *Box) Primitive() Primitive {
	return Primitive{kind: KindBox, shape: b}
}

// Hit tests if a ray intersects with any face of the box
func (b *Box) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	if !b.bbox.Hit(ray, tMin, tMax) {
		return core.HitRecord{}, false
	}

	var closest core.HitRecord
	hitAnything := false
	closestSoFar := tMax

	for _, face := range b.faces {
		if rec, ok := face.Hit(ray, tMin, closestSoFar); ok {
			hitAnything = true
			closestSoFar = rec.T
			closest = rec
		}
	}

	return closest, hitAnything
}

// BoundingBox returns the axis-aligned bounding box for this box
func (b *Box) BoundingBox() (core.AABB, bool) {
	return b.bbox, b.bbox.IsFinite()
}

// Faces returns the six face rectangles (+Z, -Z, +Y, -Y, +X, -X)
func (b *Box) Faces() [6]*Rect {
	return b.faces
}
