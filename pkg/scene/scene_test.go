package scene

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/df07/go-raytracer-accel/pkg/bvh"
	"github.com/df07/go-raytracer-accel/pkg/core"
	"github.com/df07/go-raytracer-accel/pkg/geometry"
)

func sphereAt(x, y, z, r float64, mat string) geometry.Primitive {
	return geometry.NewSphere(core.NewVec3(x, y, z), r, mat).Primitive()
}

func randomRays(n int, seed int64, spread float64) []core.Ray {
	random := rand.New(rand.NewSource(seed))
	rays := make([]core.Ray, n)
	for i := range rays {
		origin := core.NewVec3(
			(random.Float64()*2-1)*spread,
			random.Float64()*spread,
			(random.Float64()*2-1)*spread,
		)
		dir := core.NewVec3(random.NormFloat64(), random.NormFloat64(), random.NormFloat64())
		rays[i] = core.NewRay(origin, dir)
	}
	return rays
}

func TestScene_EmptySceneNeverHits(t *testing.T) {
	s := New("empty", bvh.DefaultOptions(), nil)
	rays := randomRays(100, 1, 10)

	check := func() {
		for _, ray := range rays {
			_, hit := s.Hit(ray, 0.001, math.Inf(1))
			assert.False(t, hit)
			assert.False(t, s.Occluded(ray, math.Inf(1)))
		}
		_, ok := s.Bounds()
		assert.False(t, ok)
	}

	// Before any rebuild there is no published tree
	check()

	stats, err := s.RebuildBVH()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Items)
	assert.Equal(t, 0, s.PrimitiveCount())
	check()
}

func TestScene_AddIsInvisibleUntilRebuild(t *testing.T) {
	s := New("staging", bvh.DefaultOptions(), nil)
	assert.False(t, s.Stale())

	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	s.Add(sphereAt(0, 0, 0, 1, "first"))
	assert.True(t, s.Stale())
	_, hit := s.Hit(ray, 0.001, math.Inf(1))
	assert.False(t, hit)

	_, err := s.RebuildBVH()
	require.NoError(t, err)
	assert.False(t, s.Stale())

	rec, hit := s.Hit(ray, 0.001, math.Inf(1))
	require.True(t, hit)
	assert.InDelta(t, 4.0, rec.T, 1e-9)

	// A closer sphere is staged but the published tree still answers
	s.Add(sphereAt(0, 0, 2, 0.5, "second"))
	assert.True(t, s.Stale())
	rec, _ = s.Hit(ray, 0.001, math.Inf(1))
	assert.Equal(t, "first", rec.Material)

	_, err = s.RebuildBVH()
	require.NoError(t, err)
	rec, _ = s.Hit(ray, 0.001, math.Inf(1))
	assert.Equal(t, "second", rec.Material)
	assert.InDelta(t, 2.5, rec.T, 1e-9)
	assert.Equal(t, 2, s.PrimitiveCount())
}

func TestScene_FailedRebuildKeepsPublishedTree(t *testing.T) {
	obs, logs := observer.New(zapcore.InfoLevel)
	s := New("failing-rebuild", bvh.DefaultOptions(), zap.New(obs))

	s.Add(sphereAt(0, 0, 0, 1, "good"))
	_, err := s.RebuildBVH()
	require.NoError(t, err)
	before := s.Stats()

	s.Add(sphereAt(math.NaN(), 0, 0, 1, "bad"))
	_, err = s.RebuildBVH()
	require.Error(t, err)
	assert.ErrorIs(t, err, bvh.ErrUnbounded)

	assert.True(t, s.Stale())
	assert.Equal(t, before, s.Stats())
	assert.Equal(t, 1, s.PrimitiveCount())
	assert.True(t, s.Occluded(rayFrom(0, 0, 5), 10))

	failures := logs.FilterMessage("bvh rebuild failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, zapcore.ErrorLevel, failures[0].Level)
	assert.Equal(t, "failing-rebuild", failures[0].ContextMap()["scene"])
	assert.EqualValues(t, 2, failures[0].ContextMap()["primitives"])

	assert.Equal(t, 1.0, metricValue(t, "bvh_rebuild_errors", "failing-rebuild"))
	assert.Equal(t, 1.0, metricValue(t, "bvh_rebuild_total", "failing-rebuild"))
}

func rayFrom(x, y, z float64) core.Ray {
	return core.NewRay(core.NewVec3(x, y, z), core.NewVec3(0, 0, -1))
}

func TestScene_RebuildLogsAndRecordsMetrics(t *testing.T) {
	obs, logs := observer.New(zapcore.InfoLevel)

	gen, err := Generate("meshes", 1, bvh.DefaultOptions())
	require.NoError(t, err)
	s, err := Build("metrics-meshes", gen.Primitives, bvh.DefaultOptions(), zap.New(obs))
	require.NoError(t, err)

	entries := logs.FilterMessage("bvh rebuilt").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, len(gen.Primitives), fields["primitives"])
	assert.EqualValues(t, s.TriangleCount(), fields["triangles"])
	assert.EqualValues(t, s.Stats().Nodes, fields["nodes"])

	assert.Equal(t, 1.0, metricValue(t, "bvh_rebuild_total", "metrics-meshes"))
	assert.Equal(t, float64(s.Stats().Nodes), metricValue(t, "bvh_nodes", "metrics-meshes"))
	assert.Equal(t, float64(s.TriangleCount()), metricValue(t, "scene_triangles", "metrics-meshes"))
	assert.Equal(t, float64(len(gen.Primitives)), metricValue(t, "scene_primitives", "metrics-meshes"))
}

func TestScene_TriangleCountIncludesMeshes(t *testing.T) {
	box, err := BoxMesh(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0), "box", bvh.DefaultOptions())
	require.NoError(t, err)

	s, err := Build("triangles", []geometry.Primitive{
		box.Primitive(),
		geometry.NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), "tri").Primitive(),
		sphereAt(3, 0, 0, 1, "sphere"),
	}, bvh.DefaultOptions(), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, s.PrimitiveCount())
	assert.Equal(t, 13, s.TriangleCount())
}

func TestScene_ConcurrentQueriesDuringRebuild(t *testing.T) {
	gen, err := Generate("spheregrid", 3, bvh.DefaultOptions())
	require.NoError(t, err)
	s, err := Build("concurrent", gen.Primitives, bvh.DefaultOptions(), nil)
	require.NoError(t, err)

	rays := randomRays(500, 5, 10)
	var wg sync.WaitGroup
	errs := make(chan string, 8)

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(rays); i += 4 {
				// Spheres added below the ground plane are unreachable
				// from these rays, so every snapshot answers the same
				rec, hit := s.Hit(rays[i], 0.001, math.Inf(1))
				ref, refHit := s.HitBruteForce(rays[i], 0.001, math.Inf(1))
				if hit != refHit || (hit && math.Abs(rec.T-ref.T) > 1e-9) {
					errs <- "mismatch"
					return
				}
			}
		}(w)
	}

	for i := 0; i < 5; i++ {
		s.Add(sphereAt(float64(i), -100, 0, 0.5, "buried"))
		_, err := s.RebuildBVH()
		require.NoError(t, err)
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
	assert.Equal(t, len(gen.Primitives)+5, s.PrimitiveCount())
}

func findMetric(t *testing.T, name, scene string) (float64, bool) {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == sceneLabel && label.GetValue() == scene {
					if m.GetCounter() != nil {
						return m.GetCounter().GetValue(), true
					}
					return m.GetGauge().GetValue(), true
				}
			}
		}
	}
	return 0, false
}

func metricValue(t *testing.T, name, scene string) float64 {
	v, ok := findMetric(t, name, scene)
	require.True(t, ok, "metric %s{scene=%q} not found", name, scene)
	return v
}
