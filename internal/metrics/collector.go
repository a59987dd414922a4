package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all metrics for the console service
type Collector struct {
	readRequests     *prometheus.CounterVec
	writeRequests    *prometheus.CounterVec
	writeErrors      *prometheus.CounterVec
	fixtureFallbacks *prometheus.CounterVec
	staleResponses   *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	sessionRestores  prometheus.Counter
	sessionLogins    prometheus.Counter
	sessionLogouts   prometheus.Counter
}

// NewCollector creates a new metrics collector on the given registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		readRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "console",
			Name:      "read_requests_total",
			Help:      "Total number of data read operations",
		}, []string{"operation"}),
		writeRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "console",
			Name:      "write_requests_total",
			Help:      "Total number of data write operations",
		}, []string{"operation"}),
		writeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "console",
			Name:      "write_errors_total",
			Help:      "Total number of failed write operations",
		}, []string{"operation"}),
		fixtureFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "console",
			Name:      "fixture_fallbacks_total",
			Help:      "Total number of reads served from fixture data",
		}, []string{"operation"}),
		staleResponses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "console",
			Name:      "stale_responses_total",
			Help:      "Total number of upstream responses discarded as stale",
		}, []string{"operation"}),
		upstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sentinel",
			Subsystem: "console",
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of upstream platform calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		sessionRestores: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "console",
			Name:      "session_restores_total",
			Help:      "Total number of session restore attempts at startup",
		}),
		sessionLogins: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "console",
			Name:      "session_logins_total",
			Help:      "Total number of successful logins",
		}),
		sessionLogouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "console",
			Name:      "session_logouts_total",
			Help:      "Total number of logouts",
		}),
	}
}

func (c *Collector) RecordRead(operation string) {
	c.readRequests.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordWrite(operation string) {
	c.writeRequests.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordWriteError(operation string) {
	c.writeErrors.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordFallback(operation string) {
	c.fixtureFallbacks.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordStaleResponse(operation string) {
	c.staleResponses.WithLabelValues(operation).Inc()
}

func (c *Collector) ObserveUpstreamDuration(operation string, d time.Duration) {
	c.upstreamDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (c *Collector) RecordSessionRestore() {
	c.sessionRestores.Inc()
}

func (c *Collector) RecordLogin() {
	c.sessionLogins.Inc()
}

func (c *Collector) RecordLogout() {
	c.sessionLogouts.Inc()
}
