package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsInspected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waf_requests_inspected_total",
		Help: "Total number of requests run through the inspection engine",
	})
	requestsBlocked = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "waf_requests_blocked_total",
		Help: "Total number of requests blocked, labeled by reason",
	}, []string{"reason"})
	requestsForwarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waf_requests_forwarded_total",
		Help: "Total number of requests forwarded to the upstream backend",
	})
	upstreamErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waf_upstream_errors_total",
		Help: "Total number of upstream transport errors (502s)",
	})
	logWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waf_log_write_failures_total",
		Help: "Total number of attack log writes that failed",
	})
	subscriberCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "waf_realtime_subscribers",
		Help: "Current number of attached realtime log subscribers",
	})
)

// Register registers all collectors against the default Prometheus
// registry, which promhttp.Handler() serves. Call once at startup.
func Register() {
	prometheus.MustRegister(
		requestsInspected,
		requestsBlocked,
		requestsForwarded,
		upstreamErrors,
		logWriteFailures,
		subscriberCount,
	)
}

// IncRequestsInspected increments the inspected-requests counter.
func IncRequestsInspected() { requestsInspected.Inc() }

// IncRequestsBlocked increments the blocked-requests counter for the given reason
// ("ip_blocklist" or "rule_match").
func IncRequestsBlocked(reason string) { requestsBlocked.WithLabelValues(reason).Inc() }

// IncRequestsForwarded increments the forwarded-requests counter.
func IncRequestsForwarded() { requestsForwarded.Inc() }

// IncUpstreamErrors increments the upstream transport error counter.
func IncUpstreamErrors() { upstreamErrors.Inc() }

// IncLogWriteFailures increments the failed log write counter.
func IncLogWriteFailures() { logWriteFailures.Inc() }

// SetSubscriberCount sets the current realtime subscriber gauge.
func SetSubscriberCount(n int) { subscriberCount.Set(float64(n)) }
