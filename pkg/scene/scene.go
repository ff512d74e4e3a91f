package scene

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/df07/go-raytracer-accel/pkg/bvh"
	"github.com/df07/go-raytracer-accel/pkg/core"
	"github.com/df07/go-raytracer-accel/pkg/geometry"
)

// Scene owns a primitive list and the tree built over it.
//
// Queries run against the last published snapshot and never block. Add
// only stages geometry; it becomes visible to queries after RebuildBVH
// swaps in a new tree. Add and RebuildBVH may be called while queries are
// in flight.
type Scene struct {
	Name string

	logger  *zap.Logger
	options bvh.Options

	mu      sync.Mutex // guards pending and stale
	pending []geometry.Primitive
	stale   bool

	current atomic.Pointer[snapshot]
}

// snapshot is an immutable tree plus the primitive list it was built from
type snapshot struct {
	tree      *bvh.Tree[geometry.Primitive]
	shapes    []geometry.Primitive
	stats     bvh.Stats
	triangles int
}

// New creates an empty scene. A nil logger discards log output.
func New(name string, options bvh.Options, logger *zap.Logger) *Scene {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scene{
		Name:    name,
		logger:  logger.With(zap.String("scene", name)),
		options: options,
	}
}

// Add stages primitives for the next rebuild
func (s *Scene) Add(prims ...geometry.Primitive) {
	if len(prims) == 0 {
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, prims...)
	s.stale = true
	s.mu.Unlock()
}

// Stale reports whether Add was called since the last successful rebuild
func (s *Scene) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

// RebuildBVH builds a fresh tree over all added primitives and publishes
// it. On failure the previously published tree stays in place.
func (s *Scene) RebuildBVH() (bvh.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shapes := make([]geometry.Primitive, len(s.pending))
	copy(shapes, s.pending)

	start := time.Now()
	tree, stats, err := bvh.Build(shapes, s.options)
	if err != nil {
		instrumentRebuildError(s.Name, time.Since(start))
		s.logger.Error("bvh rebuild failed",
			zap.Int("primitives", len(shapes)),
			zap.Error(err),
		)
		return bvh.Stats{}, fmt.Errorf("rebuild scene %q: %w", s.Name, err)
	}

	triangles := 0
	for _, p := range shapes {
		triangles += p.TriangleCount()
	}

	s.current.Store(&snapshot{
		tree:      tree,
		shapes:    shapes,
		stats:     stats,
		triangles: triangles,
	})
	s.stale = false

	instrumentRebuild(s.Name, stats, triangles)
	s.logger.Info("bvh rebuilt",
		zap.Int("primitives", stats.Items),
		zap.Int("triangles", triangles),
		zap.Int("nodes", stats.Nodes),
		zap.Int("leaves", stats.Leaves),
		zap.Int("max_depth", stats.MaxDepth),
		zap.Int("sah_splits", stats.SAHSplits),
		zap.Int("median_splits", stats.MedianSplits),
		zap.Bool("wide", tree.Wide()),
		zap.Duration("took", stats.BuildTime),
	)
	return stats, nil
}

// Hit returns the closest intersection in the published tree
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	snap := s.current.Load()
	if snap == nil {
		return core.HitRecord{}, false
	}
	return snap.tree.Hit(ray, tMin, tMax)
}

// Occluded reports whether anything in the published tree blocks the ray
// before maxDistance
func (s *Scene) Occluded(ray core.Ray, maxDistance float64) bool {
	snap := s.current.Load()
	if snap == nil {
		return false
	}
	return snap.tree.Occluded(ray, maxDistance)
}

// HitBruteForce answers Hit by scanning every published primitive. It is
// the reference the tree is verified against.
func (s *Scene) HitBruteForce(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	snap := s.current.Load()
	if snap == nil {
		return core.HitRecord{}, false
	}
	return geometry.HitList(snap.shapes, ray, tMin, tMax)
}

// HitsAt scans every published primitive and returns each one's hit within
// tolerance of t. Coincident surfaces all show up here, so a caller can
// tell a tie from a wrong answer.
func (s *Scene) HitsAt(ray core.Ray, t, tolerance float64) []core.HitRecord {
	snap := s.current.Load()
	if snap == nil {
		return nil
	}
	var hits []core.HitRecord
	for _, p := range snap.shapes {
		if rec, ok := p.Hit(ray, t-tolerance, t+tolerance); ok {
			hits = append(hits, rec)
		}
	}
	return hits
}

// OccludedBruteForce is the linear-scan counterpart of Occluded
func (s *Scene) OccludedBruteForce(ray core.Ray, maxDistance float64) bool {
	snap := s.current.Load()
	if snap == nil {
		return false
	}
	return geometry.OccludedList(snap.shapes, ray, core.RayEpsilon, maxDistance)
}

// Stats returns the statistics of the published tree
func (s *Scene) Stats() bvh.Stats {
	if snap := s.current.Load(); snap != nil {
		return snap.stats
	}
	return bvh.Stats{}
}

// PrimitiveCount returns the number of top-level primitives in the published tree
func (s *Scene) PrimitiveCount() int {
	if snap := s.current.Load(); snap != nil {
		return len(snap.shapes)
	}
	return 0
}

// TriangleCount returns the number of triangles in the published tree,
// counting every triangle of every mesh
func (s *Scene) TriangleCount() int {
	if snap := s.current.Load(); snap != nil {
		return snap.triangles
	}
	return 0
}

// Bounds returns the bounds of the published tree
func (s *Scene) Bounds() (core.AABB, bool) {
	snap := s.current.Load()
	if snap == nil {
		return core.AABB{}, false
	}
	return snap.tree.Bounds()
}

// Wide reports whether the published tree uses the paired-child traversal
func (s *Scene) Wide() bool {
	if snap := s.current.Load(); snap != nil {
		return snap.tree.Wide()
	}
	return false
}
