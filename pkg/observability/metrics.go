package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/varangian-core/magical-board/domain/events"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Bus metrics
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Queries         *prometheus.CounterVec
	QueryDuration   *prometheus.HistogramVec

	// Domain metrics
	DomainEvents *prometheus.CounterVec
}

// NewCollector creates a collector on its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Total number of commands handled",
			},
			[]string{"command", "status"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Command handling duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Total number of queries handled",
			},
			[]string{"query", "status"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query handling duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"query"},
		),
		DomainEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "domain_events_total",
				Help:      "Total number of domain events by type",
			},
			[]string{"type"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Commands,
		c.CommandDuration,
		c.Queries,
		c.QueryDuration,
		c.DomainEvents,
		collectors.NewGoCollector(),
	)
	return c
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordCommand records a handled command
func (c *Collector) RecordCommand(name string, duration time.Duration, err error) {
	c.Commands.WithLabelValues(name, status(err)).Inc()
	c.CommandDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordQuery records a handled query
func (c *Collector) RecordQuery(name string, duration time.Duration, err error) {
	c.Queries.WithLabelValues(name, status(err)).Inc()
	c.QueryDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordHTTP records a served request. route is the chi route pattern.
func (c *Collector) RecordHTTP(method, route string, code int, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Publish counts a domain event. It lets the collector observe the event stream.
func (c *Collector) Publish(_ context.Context, event events.DomainEvent) error {
	c.DomainEvents.WithLabelValues(event.GetEventType()).Inc()
	return nil
}

// PublishBatch counts each event
func (c *Collector) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	for _, e := range evts {
		_ = c.Publish(ctx, e)
	}
	return nil
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Recorder receives command and query timings
type Recorder interface {
	RecordCommand(name string, duration time.Duration, err error)
	RecordQuery(name string, duration time.Duration, err error)
}

// MultiRecorder fans timings out to several recorders
type MultiRecorder []Recorder

func (m MultiRecorder) RecordCommand(name string, duration time.Duration, err error) {
	for _, r := range m {
		r.RecordCommand(name, duration, err)
	}
}

func (m MultiRecorder) RecordQuery(name string, duration time.Duration, err error) {
	for _, r := range m {
		r.RecordQuery(name, duration, err)
	}
}
