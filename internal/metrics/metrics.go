package metrics

import (
	"log/slog"
	"time"

	"subvox/internal/meshing"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "subvox"

// Collector exports mesh pass statistics as Prometheus metrics.
type Collector struct {
	chunks   prometheus.Counter
	quads    prometheus.Counter
	faces    prometheus.Counter
	passes   prometheus.Counter
	duration prometheus.Histogram
}

var _ meshing.StatsRecorder = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg. A nil reg
// registers with the default Prometheus registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_meshed_total",
			Help:      "Chunks that produced a non-empty mesh.",
		}),
		quads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quads_emitted_total",
			Help:      "Quads emitted after greedy merging.",
		}),
		faces: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faces_visible_total",
			Help:      "Sub-voxel faces that survived culling.",
		}),
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mesh_passes_total",
			Help:      "Completed mesh passes.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mesh_pass_seconds",
			Help:      "Wall time of one mesh pass.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
	reg.MustRegister(c.chunks, c.quads, c.faces, c.passes, c.duration)
	return c
}

// ObservePass records one completed pass.
func (c *Collector) ObservePass(chunks, quads, faces int, elapsed time.Duration) {
	c.passes.Inc()
	c.chunks.Add(float64(chunks))
	c.quads.Add(float64(quads))
	c.faces.Add(float64(faces))
	c.duration.Observe(elapsed.Seconds())
}

// LogSnapshot writes the current value of every counter and histogram in g
// as one log line per metric.
func LogSnapshot(logger *slog.Logger, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				logger.Info("metric", "name", mf.GetName(), "value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				logger.Info("metric", "name", mf.GetName(),
					"count", h.GetSampleCount(),
					"sum", h.GetSampleSum())
			case m.GetGauge() != nil:
				logger.Info("metric", "name", mf.GetName(), "value", m.GetGauge().GetValue())
			}
		}
	}
	return nil
}
