// ABOUTME: Prometheus collectors for training runs, playback sessions, and image rendering.
// ABOUTME: Registered on the default registry via promauto and exposed at /metrics by the web server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TrainingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sapling_trainings_total",
		Help: "Training runs by dataset and outcome",
	}, []string{"dataset", "outcome"})

	TrainingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sapling_training_duration_seconds",
		Help:    "Time to generate a dataset and fit the tree",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	})

	HistorySteps = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sapling_history_steps",
		Help:    "Snapshots per successful training run",
		Buckets: []float64{1, 3, 7, 15, 31, 63, 127},
	})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sapling_playback_sessions_active",
		Help: "Currently connected playback websocket sessions",
	})

	PlaybackCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sapling_playback_commands_total",
		Help: "Playback commands received by type",
	}, []string{"command"})

	RenderCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sapling_render_cache_total",
		Help: "Image render cache lookups by result",
	}, []string{"result"})

	RenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sapling_render_duration_seconds",
		Help:    "Image render latency by chart and format",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
	}, []string{"chart", "format"})

	RunsArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sapling_runs_archived_total",
		Help: "Training runs written to the archive",
	})
)

// CacheHit and CacheMiss are render.WithHooks callbacks.
func CacheHit()  { RenderCache.WithLabelValues("hit").Inc() }
func CacheMiss() { RenderCache.WithLabelValues("miss").Inc() }
