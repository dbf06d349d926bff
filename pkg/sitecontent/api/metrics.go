package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Upload outcomes recorded by the upload handler.
const (
	UploadSucceeded = "success"
	UploadRejected  = "rejected"
	UploadFailed    = "failed"
)

// Metrics holds the collectors the HTTP layer reports to.
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	uploads     *prometheus.CounterVec
	uploadBytes prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "site_console",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "site_console",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "site_console",
				Subsystem: "media",
				Name:      "uploads_total",
				Help:      "Media uploads by outcome.",
			},
			[]string{"outcome"},
		),
		uploadBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "site_console",
				Subsystem: "media",
				Name:      "upload_bytes_total",
				Help:      "Bytes of media stored.",
			},
		),
	}
	reg.MustRegister(m.requests, m.duration, m.uploads, m.uploadBytes)
	return m
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveUpload records one upload attempt.
func (m *Metrics) ObserveUpload(outcome string, size int64) {
	m.uploads.WithLabelValues(outcome).Inc()
	if outcome == UploadSucceeded && size > 0 {
		m.uploadBytes.Add(float64(size))
	}
}
