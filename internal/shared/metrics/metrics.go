package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records analysis pipeline metrics.
type Collector struct {
	registry          *prometheus.Registry
	analysisStarted   prometheus.Counter
	analysisCompleted prometheus.Counter
	analysisDegraded  prometheus.Counter
	analysisRejected  *prometheus.CounterVec
	analysisDuration  prometheus.Histogram
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		analysisStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resume_analysis_started_total",
			Help: "Total analyses admitted past the quota gate.",
		}),
		analysisCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resume_analysis_completed_total",
			Help: "Total analyses completed with a genuine provider result.",
		}),
		analysisDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resume_analysis_degraded_total",
			Help: "Total analyses that fell back to the sentinel result.",
		}),
		analysisRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resume_analysis_rejected_total",
			Help: "Total requests rejected before the provider call, by reason.",
		}, []string{"reason"}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "resume_analysis_duration_seconds",
			Help:    "End-to-end analyze request duration in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
	}
	c.registry.MustRegister(
		c.analysisStarted,
		c.analysisCompleted,
		c.analysisDegraded,
		c.analysisRejected,
		c.analysisDuration,
	)
	return c
}

// RecordStarted counts an admitted analysis request.
func (c *Collector) RecordStarted() {
	if c == nil {
		return
	}
	c.analysisStarted.Inc()
}

// RecordCompleted counts a genuine provider result.
func (c *Collector) RecordCompleted() {
	if c == nil {
		return
	}
	c.analysisCompleted.Inc()
}

// RecordDegraded counts a fallback sentinel result.
func (c *Collector) RecordDegraded() {
	if c == nil {
		return
	}
	c.analysisDegraded.Inc()
}

// RecordRejected counts a pre-provider rejection by reason.
func (c *Collector) RecordRejected(reason string) {
	if c == nil {
		return
	}
	c.analysisRejected.WithLabelValues(reason).Inc()
}

// RecordDuration observes an end-to-end request duration.
func (c *Collector) RecordDuration(d time.Duration) {
	if c == nil {
		return
	}
	c.analysisDuration.Observe(d.Seconds())
}

// Handler exposes the registry in Prometheus text format.
func (c *Collector) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
	return func(ctx *gin.Context) {
		h.ServeHTTP(ctx.Writer, ctx.Request)
	}
}
