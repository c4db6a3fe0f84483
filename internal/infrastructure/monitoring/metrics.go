package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	latencyHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
	agentUpGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fingerprint_agent_up",
			Help: "Whether the fingerprint device agent responded to the last probe",
		},
	)
	reportCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issue_reports_total",
			Help: "Issue reports submitted, by final status",
		},
		[]string{"status"},
	)
)

// Init registers custom collectors.
func Init() {
	prometheus.MustRegister(requestCounter, latencyHistogram, agentUpGauge, reportCounter)
}

// ObserveRequest records metrics.
func ObserveRequest(path, method, status string, seconds float64) {
	requestCounter.WithLabelValues(path, method, status).Inc()
	latencyHistogram.WithLabelValues(path, method).Observe(seconds)
}

// SetAgentUp records the outcome of an agent health probe.
func SetAgentUp(up bool) {
	if up {
		agentUpGauge.Set(1)
	} else {
		agentUpGauge.Set(0)
	}
}

// ReportSubmitted counts a finished report submission.
func ReportSubmitted(status string) {
	reportCounter.WithLabelValues(status).Inc()
}
