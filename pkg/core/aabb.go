package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from two corners, ordering them per axis
func NewAABB(a, b Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	box := AABB{Min: points[0], Max: points[0]}
	for _, point := range points[1:] {
		box.Min = box.Min.Min(point)
		box.Max = box.Max.Max(point)
	}
	return box
}

// EmptyAABB returns an inverted box that acts as the identity for Union
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{Min: aabb.Min.Min(other.Min), Max: aabb.Max.Max(other.Max)}
}

// UnionPoint grows the box to include a point
func (aabb AABB) UnionPoint(p Vec3) AABB {
	return AABB{Min: aabb.Min.Min(p), Max: aabb.Max.Max(p)}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// SurfaceArea returns the surface area of the AABB; empty boxes have none
func (aabb AABB) SurfaceArea() float64 {
	size := aabb.Size()
	if size.X < 0 || size.Y < 0 || size.Z < 0 {
		return 0
	}
	return 2.0 * (size.X*size.Y + size.Y*size.Z + size.Z*size.X)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return 0
	}
	if size.Y > size.Z {
		return 1
	}
	return 2
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// IsFinite reports whether both corners are finite numbers
func (aabb AABB) IsFinite() bool {
	return aabb.Min.IsFinite() && aabb.Max.IsFinite()
}

// Expand returns an AABB expanded by the given amount in all directions
func (aabb AABB) Expand(amount float64) AABB {
	expansion := NewVec3(amount, amount, amount)
	return AABB{
		Min: aabb.Min.Subtract(expansion),
		Max: aabb.Max.Add(expansion),
	}
}

// Pad thickens any axis thinner than 2*amount so the box is never flat
func (aabb AABB) Pad(amount float64) AABB {
	for axis := 0; axis < 3; axis++ {
		if aabb.Max.Axis(axis)-aabb.Min.Axis(axis) < 2*amount {
			aabb.Min = aabb.Min.WithAxis(axis, aabb.Min.Axis(axis)-amount)
			aabb.Max = aabb.Max.WithAxis(axis, aabb.Max.Axis(axis)+amount)
		}
	}
	return aabb
}

// Contains reports whether p lies inside the box, allowing tolerance
func (aabb AABB) Contains(p Vec3, tolerance float64) bool {
	return p.X >= aabb.Min.X-tolerance && p.X <= aabb.Max.X+tolerance &&
		p.Y >= aabb.Min.Y-tolerance && p.Y <= aabb.Max.Y+tolerance &&
		p.Z >= aabb.Min.Z-tolerance && p.Z <= aabb.Max.Z+tolerance
}

// Hit tests if a ray intersects with this AABB using the slab method
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	_, _, ok := aabb.HitInv(ray, NewRayInv(ray), tMin, tMax)
	return ok
}

// HitInv is the slab test with precomputed inverse direction. The near and
// far face of each slab are chosen by the direction sign so the loop never
// branches on it. It returns the clipped entry and exit distances.
//
// Comparisons are written so a NaN (origin exactly on a slab plane of a
// parallel ray) leaves the interval unchanged.
func (aabb AABB) HitInv(ray Ray, inv RayInv, tMin, tMax float64) (float64, float64, bool) {
	corners := [2]Vec3{aabb.Min, aabb.Max}

	t0 := (corners[inv.Sign[0]].X - ray.Origin.X) * inv.Inv.X
	t1 := (corners[1-inv.Sign[0]].X - ray.Origin.X) * inv.Inv.X
	if t0 > tMin {
		tMin = t0
	}
	if t1 < tMax {
		tMax = t1
	}
	if tMin > tMax {
		return tMin, tMax, false
	}

	t0 = (corners[inv.Sign[1]].Y - ray.Origin.Y) * inv.Inv.Y
	t1 = (corners[1-inv.Sign[1]].Y - ray.Origin.Y) * inv.Inv.Y
	if t0 > tMin {
		tMin = t0
	}
	if t1 < tMax {
		tMax = t1
	}
	if tMin > tMax {
		return tMin, tMax, false
	}

	t0 = (corners[inv.Sign[2]].Z - ray.Origin.Z) * inv.Inv.Z
	t1 = (corners[1-inv.Sign[2]].Z - ray.Origin.Z) * inv.Inv.Z
	if t0 > tMin {
		tMin = t0
	}
	if t1 < tMax {
		tMax = t1
	}
	return tMin, tMax, tMin <= tMax
}
