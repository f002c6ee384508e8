package service

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var codecHistogram = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "codec_duration_seconds",
	Help: "Duration of codec requests",
}, []string{"operation", "code"})

var codecCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "codec_total",
	Help: "Total number of codec requests",
}, []string{"operation", "code"})

var codecRequestBytes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "codec_request_bytes",
	Help: "Total number of bytes received by codec requests",
}, []string{"operation", "code"})

var codecResponseBytes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "codec_response_bytes",
	Help: "Total number of bytes sent in response to codec requests",
}, []string{"operation", "code"})

// RequestStats wraps a ResponseWriter for one codec operation and records
// what went in and out, so Observe can report it once the handler is done.
type RequestStats struct {
	operation    string
	statusCode   int
	started      time.Time
	bytesRead    int
	bytesWritten int
	inner        http.ResponseWriter
}

func NewRequestStats(operation string, inner http.ResponseWriter) *RequestStats {
	return &RequestStats{
		operation:  operation,
		statusCode: http.StatusOK,
		started:    time.Now(),
		inner:      inner,
	}
}

func (r *RequestStats) Header() http.Header {
	return r.inner.Header()
}

func (r *RequestStats) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.inner.WriteHeader(statusCode)
}

func (r *RequestStats) Write(b []byte) (int, error) {
	n, err := r.inner.Write(b)
	r.bytesWritten += n
	return n, err
}

type countingBody struct {
	io.ReadCloser
	stats *RequestStats
}

func (b *countingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.stats.bytesRead += n
	return n, err
}

// Body returns req's body, limited to limit bytes and counted.
func (r *RequestStats) Body(req *http.Request, limit int64) io.ReadCloser {
	return &countingBody{ReadCloser: http.MaxBytesReader(r, req.Body, limit), stats: r}
}

func (r *RequestStats) Observe() {
	code := strconv.Itoa(r.statusCode)
	codecHistogram.WithLabelValues(r.operation, code).Observe(time.Since(r.started).Seconds())
	codecCounter.WithLabelValues(r.operation, code).Inc()
	codecRequestBytes.WithLabelValues(r.operation, code).Add(float64(r.bytesRead))
	codecResponseBytes.WithLabelValues(r.operation, code).Add(float64(r.bytesWritten))
}
