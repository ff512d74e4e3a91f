package geometry

import (
	"errors"
	"fmt"

	"github.com/df07/go-raytracer-accel/pkg/core"
)

// Kind identifies which variant a Primitive holds
type Kind uint8

const (
	KindSphere Kind = iota
	KindTriangle
	KindBox
	KindRectXY
	KindRectXZ
	KindRectYZ
	KindCylinder
	KindDisk
	KindPlane
	KindMesh
	KindVoxelGrid
)

var kindNames = [...]string{
	KindSphere:    "sphere",
	KindTriangle:  "triangle",
	KindBox:       "box",
	KindRectXY:    "rect_xy",
	KindRectXZ:    "rect_xz",
	KindRectYZ:    "rect_yz",
	KindCylinder:  "cylinder",
	KindDisk:      "disk",
	KindPlane:     "plane",
	KindMesh:      "mesh",
	KindVoxelGrid: "voxel_grid",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

var (
	// ErrInvalidMesh is returned for malformed mesh vertex/face input
	ErrInvalidMesh = errors.New("geometry: invalid mesh")

	// ErrInvalidGrid is returned for malformed voxel grid parameters
	ErrInvalidGrid = errors.New("geometry: invalid voxel grid")
)

// shape is implemented only by the variant types in this package, which
// keeps the variant set closed.
type shape interface {
	isShape()
}

// Primitive is a tagged union over the closed set of geometric variants.
// Dispatch is a single switch on the tag, so adding a variant without
// handling it everywhere panics in tests instead of silently missing.
//
// Primitives are immutable; construct a new one to change geometry.
type Primitive struct {
	kind  Kind
	shape shape
}

// Kind returns the variant tag
func (p Primitive) Kind() Kind {
	return p.kind
}

// Hit returns the closest intersection with t in [tMin, tMax]
func (p Primitive) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	switch p.kind {
	case KindSphere:
		return p.shape.(*Sphere).Hit(ray, tMin, tMax)
	case KindTriangle:
		return p.shape.(*Triangle).Hit(ray, tMin, tMax)
	case KindBox:
		return p.shape.(*Box).Hit(ray, tMin, tMax)
	case KindRectXY, KindRectXZ, KindRectYZ:
		return p.shape.(*Rect).Hit(ray, tMin, tMax)
	case KindCylinder:
		return p.shape.(*Cylinder).Hit(ray, tMin, tMax)
	case KindDisk:
		return p.shape.(*Disk).Hit(ray, tMin, tMax)
	case KindPlane:
		return p.shape.(*Plane).Hit(ray, tMin, tMax)
	case KindMesh:
		return p.shape.(*TriangleMesh).Hit(ray, tMin, tMax)
	case KindVoxelGrid:
		return p.shape.(*VoxelGrid).Hit(ray, tMin, tMax)
	}
	panic(fmt.Sprintf("geometry: unhandled primitive %v", p.kind))
}

// Occludes reports whether any intersection exists in [tMin, tMax].
// Meshes answer from their own tree without searching for the closest hit.
func (p Primitive) Occludes(ray core.Ray, tMin, tMax float64) bool {
	if p.kind == KindMesh {
		return p.shape.(*TriangleMesh).Occludes(ray, tMin, tMax)
	}
	_, ok := p.Hit(ray, tMin, tMax)
	return ok
}

// TryGetBounds returns the bounding box and centroid. ok is false when the
// primitive has no finite extent, which is a configuration error for any
// bounded acceleration structure.
func (p Primitive) TryGetBounds() (core.AABB, core.Vec3, bool) {
	var bounds core.AABB
	var ok bool
	switch p.kind {
	case KindSphere:
		bounds, ok = p.shape.(*Sphere).BoundingBox()
	case KindTriangle:
		bounds, ok = p.shape.(*Triangle).BoundingBox()
	case KindBox:
		bounds, ok = p.shape.(*Box).BoundingBox()
	case KindRectXY, KindRectXZ, KindRectYZ:
		bounds, ok = p.shape.(*Rect).BoundingBox()
	case KindCylinder:
		bounds, ok = p.shape.(*Cylinder).BoundingBox()
	case KindDisk:
		bounds, ok = p.shape.(*Disk).BoundingBox()
	case KindPlane:
		bounds, ok = p.shape.(*Plane).BoundingBox()
	case KindMesh:
		bounds, ok = p.shape.(*TriangleMesh).BoundingBox()
	case KindVoxelGrid:
		bounds, ok = p.shape.(*VoxelGrid).BoundingBox()
	default:
		panic(fmt.Sprintf("geometry: unhandled primitive %v", p.kind))
	}
	if !ok || !bounds.IsFinite() {
		return core.AABB{}, core.Vec3{}, false
	}
	return bounds, bounds.Center(), true
}

// TriangleCount returns the number of triangles this primitive contributes
func (p Primitive) TriangleCount() int {
	switch p.kind {
	case KindTriangle:
		return 1
	case KindMesh:
		return p.shape.(*TriangleMesh).TriangleCount()
	}
	return 0
}

// Mesh returns the underlying mesh for KindMesh primitives
func (p Primitive) Mesh() (*TriangleMesh, bool) {
	m, ok := p.shape.(*TriangleMesh)
	return m, ok
}

// VoxelGrid returns the underlying grid for KindVoxelGrid primitives
func (p Primitive) VoxelGrid() (*VoxelGrid, bool) {
	g, ok := p.shape.(*VoxelGrid)
	return g, ok
}

// HitList is the brute-force reference: a linear scan keeping the closest hit
func HitList(prims []Primitive, ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	var closest core.HitRecord
	found := false
	for _, p := range prims {
		if rec, ok := p.Hit(ray, tMin, tMax); ok {
			closest = rec
			tMax = rec.T
			found = true
		}
	}
	return closest, found
}

// OccludedList is the brute-force any-hit reference
func OccludedList(prims []Primitive, ray core.Ray, tMin, tMax float64) bool {
	for _, p := range prims {
		if p.Occludes(ray, tMin, tMax) {
			return true
		}
	}
	return false
}

const (
	// parallelEpsilon rejects rays nearly parallel to a plane, measured
	// against the direction's length so short directions still work
	parallelEpsilon = 1e-8
	// zeroDirectionEpsilon is the smallest squared direction length accepted
	zeroDirectionEpsilon = 1e-24
)

// parallel reports whether dn, the dot of direction d with a unit normal, is
// too small relative to |d| to intersect. Zero directions are parallel.
func parallel(dn float64, d core.Vec3) bool {
	return dn*dn <= parallelEpsilon*parallelEpsilon*d.LengthSquared()
}
