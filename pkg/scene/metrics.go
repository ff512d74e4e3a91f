package scene

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/df07/go-raytracer-accel/pkg/bvh"
)

const (
	sceneLabel = "scene"
)

var (
	bvhBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bvh_build_duration_seconds",
		Help:    "The time to build a scene tree.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{sceneLabel})

	bvhNodes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bvh_nodes",
		Help: "The number of nodes in the current scene tree.",
	}, []string{sceneLabel})

	bvhLeaves = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bvh_leaves",
		Help: "The number of leaves in the current scene tree.",
	}, []string{sceneLabel})

	bvhDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bvh_max_depth",
		Help: "The depth of the deepest leaf in the current scene tree.",
	}, []string{sceneLabel})

	scenePrimitives = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scene_primitives",
		Help: "The number of top-level primitives in the current scene tree.",
	}, []string{sceneLabel})

	sceneTriangles = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scene_triangles",
		Help: "The number of triangles, including mesh triangles, in the current scene tree.",
	}, []string{sceneLabel})

	bvhRebuildTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bvh_rebuild_total",
		Help: "The total number of successful scene tree rebuilds.",
	}, []string{sceneLabel})

	bvhRebuildErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bvh_rebuild_errors",
		Help: "The number of scene tree rebuilds that failed.",
	}, []string{sceneLabel})
)

func instrumentRebuild(scene string, stats bvh.Stats, triangles int) {
	labels := prometheus.Labels{sceneLabel: scene}
	bvhBuildDuration.With(labels).Observe(stats.BuildTime.Seconds())
	bvhNodes.With(labels).Set(float64(stats.Nodes))
	bvhLeaves.With(labels).Set(float64(stats.Leaves))
	bvhDepth.With(labels).Set(float64(stats.MaxDepth))
	scenePrimitives.With(labels).Set(float64(stats.Items))
	sceneTriangles.With(labels).Set(float64(triangles))
	bvhRebuildTotal.With(labels).Inc()
}

func instrumentRebuildError(scene string, took time.Duration) {
	labels := prometheus.Labels{sceneLabel: scene}
	bvhBuildDuration.With(labels).Observe(took.Seconds())
	bvhRebuildErrors.With(labels).Inc()
}
