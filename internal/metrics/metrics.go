package metrics

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/rail-data/internal/model"
)

const namespace = "raildata"

// Poll result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics holds every collector the gatherer exports.
type Metrics struct {
	PollsTotal          *prometheus.CounterVec
	PollDurationSeconds prometheus.Histogram
	SnapshotRecords     prometheus.Gauge
	LastPollTimestamp   prometheus.Gauge
	RecordsTotal        prometheus.Counter
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPDurationSeconds prometheus.Histogram
	gatherer            prometheus.Gatherer
}

// New creates the collectors and registers them with reg.
// A nil reg uses a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		PollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Total number of feed polls by result",
		}, []string{"result"}),
		PollDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Duration of one fetch-and-persist cycle in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		SnapshotRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_records",
			Help:      "Number of records in the last snapshot",
		}),
		LastPollTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_poll_timestamp_seconds",
			Help:      "Unix time of the last snapshot",
		}),
		RecordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Total number of position records collected",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of live server requests by path and status",
		}, []string{"path", "code"}),
		HTTPDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of live server requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.PollsTotal,
		m.PollDurationSeconds,
		m.SnapshotRecords,
		m.LastPollTimestamp,
		m.RecordsTotal,
		m.HTTPRequestsTotal,
		m.HTTPDurationSeconds,
	)

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// ObservePoll records the outcome of one poll.
func (m *Metrics) ObservePoll(duration time.Duration, err error) {
	if duration < 0 {
		duration = 0
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.PollsTotal.WithLabelValues(result).Inc()
	m.PollDurationSeconds.Observe(duration.Seconds())
}

// HandleSnapshot records the size and time of snap.
func (m *Metrics) HandleSnapshot(_ context.Context, snap model.Snapshot) error {
	m.SnapshotRecords.Set(float64(len(snap.Records)))
	m.RecordsTotal.Add(float64(len(snap.Records)))
	m.LastPollTimestamp.Set(float64(snap.PolledAt.Unix()))
	return nil
}

// Handler exposes the registry the metrics were registered with.
// It falls back to the default gatherer when the registerer cannot gather.
func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware instruments next with request counts and latency.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		defer func() {
			m.HTTPDurationSeconds.Observe(time.Since(start).Seconds())
			m.HTTPRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(recorder.status)).Inc()
		}()

		next.ServeHTTP(recorder, r)
	})
}

// statusRecorder captures the response status code for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets WebSocket upgrades pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
