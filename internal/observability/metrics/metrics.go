package metrics

import "github.com/prometheus/client_golang/prometheus"

// ContactMetrics exposes counters/histograms for the contact pipeline.
type ContactMetrics struct {
	submissionsTotal *prometheus.CounterVec
	sendTotal        *prometheus.CounterVec
	sendLatency      *prometheus.HistogramVec
	requestLatency   *prometheus.HistogramVec
}

func NewContactMetrics(reg prometheus.Registerer) *ContactMetrics {
	m := &ContactMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Contact submissions by final outcome",
		}, []string{"outcome"}),
		sendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "contact",
			Name:      "email_send_total",
			Help:      "Provider calls per email kind",
		}, []string{"kind", "status"}),
		sendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portfolio",
			Subsystem: "contact",
			Name:      "email_send_latency_seconds",
			Help:      "Latency of a single provider call",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portfolio",
			Subsystem: "contact",
			Name:      "request_latency_seconds",
			Help:      "Latency of send-email requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.sendTotal, m.sendLatency, m.requestLatency)
	return m
}

// ObserveSubmission counts one handled submission.
func (m *ContactMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveSend records one provider call.
func (m *ContactMetrics) ObserveSend(kind, status string, seconds float64) {
	if m == nil {
		return
	}
	m.sendTotal.WithLabelValues(kind, status).Inc()
	m.sendLatency.WithLabelValues(kind).Observe(seconds)
}

func (m *ContactMetrics) ObserveRequestLatency(status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestLatency.WithLabelValues(status).Observe(seconds)
}
