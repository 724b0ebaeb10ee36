// Package metrics exposes Prometheus instrumentation for the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "promptgen"

// Recorder captures application events.
type Recorder interface {
	ObserveRequest(method, route string, status int, duration time.Duration)
	IncPromptGenerated(status string)
	IncTemplateChange(action string)
	IncPreviewMessage()
	SetPreviewConnections(delta int)
}

// Option configures a Prometheus recorder.
type Option func(*config)

type config struct {
	registry prometheus.Registerer
	gatherer prometheus.Gatherer
}

// WithRegistry registers collectors on registry instead of the default
// registerer. Tests pass a fresh prometheus.NewRegistry().
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *config) {
		c.registry = registry
		c.gatherer = registry
	}
}

// Prometheus implements Recorder with Prometheus collectors.
type Prometheus struct {
	gatherer         prometheus.Gatherer
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	promptsTotal     *prometheus.CounterVec
	templatesChanged *prometheus.CounterVec
	previewMessages  prometheus.Counter
	previewConns     prometheus.Gauge
}

// NewPrometheus registers the promptgen collectors.
func NewPrometheus(options ...Option) *Prometheus {
	cfg := config{
		registry: prometheus.DefaultRegisterer,
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	factory := promauto.With(cfg.registry)

	return &Prometheus{
		gatherer: cfg.gatherer,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		promptsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prompts_generated_total",
			Help:      "Prompts composed by outcome",
		}, []string{"status"}),
		templatesChanged: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "custom_templates_total",
			Help:      "Custom template changes by action",
		}, []string{"action"}),
		previewMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preview_messages_total",
			Help:      "Live preview messages processed",
		}),
		previewConns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "preview_connections",
			Help:      "Open live preview connections",
		}),
	}
}

func (p *Prometheus) ObserveRequest(method, route string, status int, duration time.Duration) {
	p.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (p *Prometheus) IncPromptGenerated(status string) {
	p.promptsTotal.WithLabelValues(status).Inc()
}

func (p *Prometheus) IncTemplateChange(action string) {
	p.templatesChanged.WithLabelValues(action).Inc()
}

func (p *Prometheus) IncPreviewMessage() {
	p.previewMessages.Inc()
}

func (p *Prometheus) SetPreviewConnections(delta int) {
	p.previewConns.Add(float64(delta))
}

// Handler serves the collected metrics.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

// Noop discards every event.
type Noop struct{}

// NewNoop returns a Recorder that does nothing.
func NewNoop() Noop { return Noop{} }

func (Noop) ObserveRequest(string, string, int, time.Duration) {}
func (Noop) IncPromptGenerated(string)                         {}
func (Noop) IncTemplateChange(string)                          {}
func (Noop) IncPreviewMessage()                                {}
func (Noop) SetPreviewConnections(int)                         {}
