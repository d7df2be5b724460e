// Package metrics records transport activity as Prometheus metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the metrics surface the transport and provider report to.
type Recorder interface {
	RecordRequest(method string, statusCode int, duration time.Duration)
	RecordRetry(method string)
	RecordSignIn(success bool)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	retries  *prometheus.CounterVec
	signIns  *prometheus.CounterVec
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_sdk_requests_total",
			Help: "Requests sent to the Bridge server, by method and response status. Status 0 means no response.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bridge_sdk_request_duration_seconds",
			Help:    "Latency of requests to the Bridge server, including retries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_sdk_retries_total",
			Help: "Idempotent requests re-sent after an I/O failure.",
		}, []string{"method"}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_sdk_sign_ins_total",
			Help: "Sign-in attempts by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(c.requests, c.duration, c.retries, c.signIns)
	return c
}

// RecordRequest counts one logical request and observes its latency.
func (c *Collector) RecordRequest(method string, statusCode int, duration time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.duration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordRetry counts one re-sent request.
func (c *Collector) RecordRetry(method string) {
	c.retries.WithLabelValues(method).Inc()
}

// RecordSignIn counts a sign-in attempt.
func (c *Collector) RecordSignIn(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.signIns.WithLabelValues(result).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRequest(string, int, time.Duration) {}
func (Nop) RecordRetry(string)                       {}
func (Nop) RecordSignIn(bool)                        {}

// WriteFile writes every metric gathered by g to path in the text
// exposition format.
func WriteFile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
