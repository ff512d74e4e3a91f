package geometry

import (
	"fmt"

	"github.com/df07/go-raytracer-accel/pkg/bvh"
	"github.com/df07/go-raytracer-accel/pkg/core"
)

// TriangleMesh represents a collection of triangles with efficient ray intersection.
// It owns a triangle-only tree, so a scene tree leaf holding a mesh descends
// into a second tree.
type TriangleMesh struct {
	triangles []*Triangle
	tree      *bvh.Tree[*Triangle]
	stats     bvh.Stats
	bbox      core.AABB
}

// TriangleMeshOptions contains optional parameters for triangle mesh creation
type TriangleMeshOptions struct {
	Normals   []core.Vec3     // Optional custom normals (one per triangle)
	Materials []core.Material // Optional per-triangle materials
	Rotation  *core.Vec3      // Optional rotation to apply to vertices
	Center    *core.Vec3      // Optional center point for rotation
	BVH       bvh.Options     // Options for the internal tree
}

// NewTriangleMesh creates a new triangle mesh from vertices and face indices.
// Each group of 3 face indices forms a triangle. options may be nil.
func NewTriangleMesh(vertices []core.Vec3, faces []int, material core.Material, options *TriangleMeshOptions) (*TriangleMesh, error) {
	if len(faces) == 0 {
		return nil, fmt.Errorf("%w: no faces", ErrInvalidMesh)
	}
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("%w: %d face indices is not a multiple of 3", ErrInvalidMesh, len(faces))
	}
	numTriangles := len(faces) / 3

	var opts TriangleMeshOptions
	if options != nil {
		opts = *options
	}
	if opts.Normals != nil && len(opts.Normals) != numTriangles {
		return nil, fmt.Errorf("%w: %d normals for %d triangles", ErrInvalidMesh, len(opts.Normals), numTriangles)
	}
	if opts.Materials != nil && len(opts.Materials) != numTriangles {
		return nil, fmt.Errorf("%w: %d materials for %d triangles", ErrInvalidMesh, len(opts.Materials), numTriangles)
	}

	workingVertices := vertices
	if opts.Rotation != nil {
		workingVertices = make([]core.Vec3, len(vertices))
		for i, vertex := range vertices {
			// Translate to center, rotate, then translate back
			if opts.Center != nil {
				vertex = vertex.Subtract(*opts.Center)
			}
			vertex = vertex.Rotate(*opts.Rotation)
			if opts.Center != nil {
				vertex = vertex.Add(*opts.Center)
			}
			workingVertices[i] = vertex
		}
	}

	triangles := make([]*Triangle, numTriangles)
	for i := 0; i < numTriangles; i++ {
		i0, i1, i2 := faces[i*3], faces[i*3+1], faces[i*3+2]
		for _, idx := range [3]int{i0, i1, i2} {
			if idx < 0 || idx >= len(workingVertices) {
				return nil, fmt.Errorf("%w: face %d index %d out of range [0,%d)", ErrInvalidMesh, i, idx, len(workingVertices))
			}
		}

		triangleMaterial := material
		if opts.Materials != nil {
			triangleMaterial = opts.Materials[i]
		}

		if opts.Normals != nil {
			triangles[i] = NewTriangleWithNormal(workingVertices[i0], workingVertices[i1], workingVertices[i2], opts.Normals[i], triangleMaterial)
		} else {
			triangles[i] = NewTriangle(workingVertices[i0], workingVertices[i1], workingVertices[i2], triangleMaterial)
		}
	}

	return newMeshFromTriangles(triangles, opts.BVH)
}

// NewTriangleMeshFromTriangles wraps already-built triangles in a mesh
func NewTriangleMeshFromTriangles(triangles []*Triangle, opts bvh.Options) (*TriangleMesh, error) {
	if len(triangles) == 0 {
		return nil, fmt.Errorf("%w: no triangles", ErrInvalidMesh)
	}
	return newMeshFromTriangles(triangles, opts)
}

func newMeshFromTriangles(triangles []*Triangle, opts bvh.Options) (*TriangleMesh, error) {
	tree, stats, err := bvh.Build(triangles, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMesh, err)
	}
	bbox, _ := tree.Bounds()
	return &TriangleMesh{
		triangles: triangles,
		tree:      tree,
		stats:     stats,
		bbox:      bbox,
	}, nil
}

func (tm *TriangleMesh) isShape() {}

// Primitive wraps the mesh for use in a scene or tree
func (tm *TriangleMesh) Primitive() Primitive {
	return Primitive{kind: KindMesh, shape: tm}
}

// Hit tests if a ray intersects with any triangle in the mesh
func (tm *TriangleMesh) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	return tm.tree.Hit(ray, tMin, tMax)
}

// Occludes reports whether any triangle blocks the ray within [tMin, tMax]
func (tm *TriangleMesh) Occludes(ray core.Ray, tMin, tMax float64) bool {
	return tm.tree.OccludedRange(ray, tMin, tMax)
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (tm *TriangleMesh) BoundingBox() (core.AABB, bool) {
	return tm.bbox, tm.bbox.IsFinite()
}

// TriangleCount returns the number of triangles in this mesh
func (tm *TriangleMesh) TriangleCount() int {
	return len(tm.triangles)
}

// Triangles returns the individual triangles in input order
func (tm *TriangleMesh) Triangles() []*Triangle {
	return tm.triangles
}

// BuildStats returns the statistics of the internal tree build
func (tm *TriangleMesh) BuildStats() bvh.Stats {
	return tm.stats
}
