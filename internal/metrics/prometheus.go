package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestCount counts HTTP requests
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	// DocumentsFingerprinted counts ingested documents
	DocumentsFingerprinted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_fingerprinted_total",
			Help: "Total number of fingerprinted documents",
		},
		[]string{"source"},
	)

	// FingerprintsPerDocument observes fingerprint set sizes
	FingerprintsPerDocument = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fingerprints_per_document",
			Help:    "Number of winnowed fingerprints per document",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// ScansTotal counts self-plagiarism scans
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scans_total",
			Help: "Total number of self-plagiarism scans",
		},
		[]string{"status"},
	)

	// ScanDuration measures scan duration
	ScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "scan_duration_seconds",
			Help: "Self-plagiarism scan duration in seconds",
		},
	)

	registerOnce sync.Once
)

// InitPrometheus registers the metrics with the default registry
func InitPrometheus() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCount,
			RequestDuration,
			DocumentsFingerprinted,
			FingerprintsPerDocument,
			ScansTotal,
			ScanDuration,
		)
	})
}

// GinMiddleware records request count and duration per route
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RequestCount.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}
