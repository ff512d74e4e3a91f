package raycast

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindLabel = "kind"
)

var (
	raysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "raycast_rays_total",
		Help: "The total number of rays traced against a scene.",
	}, []string{kindLabel})

	castDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "raycast_cast_duration_seconds",
		Help:    "The wall time of a whole image cast.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})
)

func instrumentCast(stats BatchStats) {
	raysTotal.WithLabelValues("primary").Add(float64(stats.PrimaryRays))
	raysTotal.WithLabelValues("shadow").Add(float64(stats.ShadowRays))
	castDuration.Observe(stats.Elapsed.Seconds())
}
