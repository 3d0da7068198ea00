package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadsTotal      *prometheus.CounterVec
	synthesizedTotal  *prometheus.CounterVec
	batchSizes        *prometheus.HistogramVec
	rateLimitedTotal  *prometheus.CounterVec
	backpressureTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dn",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dn",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dn",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dn",
			Subsystem: "files",
			Name:      "uploads_total",
			Help:      "Total accepted file uploads by input type.",
		},
		[]string{"service", "input_type"},
	)
	synthesizedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dn",
			Subsystem: "files",
			Name:      "synthesized_total",
			Help:      "Total synthesized filenames by document type.",
		},
		[]string{"service", "document_type"},
	)
	batchSizes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dn",
			Subsystem: "files",
			Name:      "batch_size",
			Help:      "Distribution of files per bulk submission.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service"},
	)
	rateLimitedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dn",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total requests rejected by the rate limiter.",
		},
		[]string{"service"},
	)
	backpressureTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dn",
			Subsystem: "http",
			Name:      "backpressure_rejections_total",
			Help:      "Total requests shed while the server was saturated.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadsTotal,
		synthesizedTotal,
		batchSizes,
		rateLimitedTotal,
		backpressureTotal,
	)

	return &HTTPServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		uploadsTotal:      uploadsTotal,
		synthesizedTotal:  synthesizedTotal,
		batchSizes:        batchSizes,
		rateLimitedTotal:  rateLimitedTotal,
		backpressureTotal: backpressureTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/files/"):
		return "/v1/files/{file_id}"
	case strings.HasPrefix(path, "/v1/queues/"):
		return "/v1/queues/{position}/stats"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordUpload(service, inputType string) {
	if inputType == "" {
		inputType = "unknown"
	}
	m.uploadsTotal.WithLabelValues(service, inputType).Inc()
}

func (m *HTTPServerMetrics) RecordSynthesizedName(service, documentType string) {
	if documentType == "" {
		documentType = "unknown"
	}
	m.synthesizedTotal.WithLabelValues(service, documentType).Inc()
}

func (m *HTTPServerMetrics) RecordBatchSize(service string, size int) {
	if size <= 0 {
		return
	}
	m.batchSizes.WithLabelValues(service).Observe(float64(size))
}

func (m *HTTPServerMetrics) RecordRateLimited(service string) {
	m.rateLimitedTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordBackpressure(service string) {
	m.backpressureTotal.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
