package projectmap

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SyncMetrics records board synchronization activity on a private registry.
// A nil *SyncMetrics is valid and records nothing.
type SyncMetrics struct {
	registry     *prometheus.Registry
	syncsTotal   prometheus.Counter
	syncDuration prometheus.Histogram
	changes      *prometheus.CounterVec
	liveNodes    *prometheus.GaugeVec
	imageErrors  prometheus.Counter
}

// NewSyncMetrics creates a fresh registry with the board metrics registered.
func NewSyncMetrics() *SyncMetrics {
	registry := prometheus.NewRegistry()

	syncsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "projectmap",
		Name:      "syncs_total",
		Help:      "Total number of snapshot synchronizations applied to the board",
	})

	syncDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "projectmap",
		Name:      "sync_duration_seconds",
		Help:      "Duration of a single board synchronization",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	changes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "projectmap",
		Name:      "node_changes_total",
		Help:      "Nodes added, updated, or removed by synchronization",
	}, []string{"kind", "op"})

	liveNodes := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "projectmap",
		Name:      "live_nodes",
		Help:      "Top-level nodes currently on the board",
	}, []string{"kind"})

	imageErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "projectmap",
		Name:      "image_load_errors_total",
		Help:      "Avatar images that failed to load and fell back to the placeholder",
	})

	registry.MustRegister(syncsTotal, syncDuration, changes, liveNodes, imageErrors)

	return &SyncMetrics{
		registry:     registry,
		syncsTotal:   syncsTotal,
		syncDuration: syncDuration,
		changes:      changes,
		liveNodes:    liveNodes,
		imageErrors:  imageErrors,
	}
}

// ObserveSync records one completed synchronization.
func (m *SyncMetrics) ObserveSync(res SyncResult, projects, zones int, duration time.Duration) {
	if m == nil {
		return
	}
	m.syncsTotal.Inc()
	m.syncDuration.Observe(duration.Seconds())

	m.changes.WithLabelValues("project", "add").Add(float64(len(res.Added)))
	m.changes.WithLabelValues("project", "update").Add(float64(len(res.Updated)))
	m.changes.WithLabelValues("project", "remove").Add(float64(len(res.Removed)))
	m.changes.WithLabelValues("zone", "add").Add(float64(len(res.ZonesAdded)))
	m.changes.WithLabelValues("zone", "update").Add(float64(len(res.ZonesUpdated)))
	m.changes.WithLabelValues("zone", "remove").Add(float64(len(res.ZonesRemoved)))

	m.liveNodes.WithLabelValues("project").Set(float64(projects))
	m.liveNodes.WithLabelValues("zone").Set(float64(zones))
}

// IncImageError counts one failed avatar load.
func (m *SyncMetrics) IncImageError() {
	if m == nil {
		return
	}
	m.imageErrors.Inc()
}

// Handler exposes the registry over HTTP.
func (m *SyncMetrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
