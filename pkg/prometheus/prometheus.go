// Package prometheus provides a signalz.MetricsProvider backed by
// Prometheus collectors.
package prometheus

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zoobzio/signalz"
)

// Config configures the Prometheus metrics provider.
type Config struct {
	// Namespace is the metrics namespace (default: "signalz").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prom.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prom.Registerer
}

// Option configures the Prometheus metrics provider.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prom.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prom.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "signalz",
		Buckets:   prom.DefBuckets,
		Registry:  prom.DefaultRegisterer,
	}
}

// Provider records Signal and Feed activity. A Provider may be shared by any
// number of Signals; their series are aggregated.
type Provider struct {
	writes          prom.Counter
	writeDuration   prom.Histogram
	notifications   *prom.CounterVec
	observers       prom.Gauge
	selectorOps     *prom.CounterVec
	selectors       prom.Gauge
	feedState       *prom.GaugeVec
	feedProcessed   *prom.CounterVec
	feedDuration    prom.Histogram
	changesReceived prom.Counter
}

// New registers the collectors and returns a Provider.
// Registering twice against the same registry panics, as with promauto.
func New(opts ...Option) *Provider {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Provider{
		writes: factory.NewCounter(prom.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "writes_total",
			Help:        "Total number of state writes",
			ConstLabels: cfg.ConstLabels,
		}),
		writeDuration: factory.NewHistogram(prom.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "write_duration_seconds",
			Help:        "Time spent computing and storing new state",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),
		notifications: factory.NewCounterVec(prom.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "notifications_total",
			Help:        "Binding evaluations by outcome",
			ConstLabels: cfg.ConstLabels,
		}, []string{"outcome"}),
		observers: factory.NewGauge(prom.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "observers",
			Help:        "Registered observers on the most recently changed Signal",
			ConstLabels: cfg.ConstLabels,
		}),
		selectorOps: factory.NewCounterVec(prom.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "selector_operations_total",
			Help:        "Selector installs and deletions",
			ConstLabels: cfg.ConstLabels,
		}, []string{"op"}),
		selectors: factory.NewGauge(prom.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "selectors",
			Help:        "Installed selectors on the most recently changed Signal",
			ConstLabels: cfg.ConstLabels,
		}),
		feedState: factory.NewGaugeVec(prom.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "feed_state",
			Help:        "1 for the current feed state, 0 otherwise",
			ConstLabels: cfg.ConstLabels,
		}, []string{"state"}),
		feedProcessed: factory.NewCounterVec(prom.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "feed_documents_total",
			Help:        "Documents processed by feeds, by result",
			ConstLabels: cfg.ConstLabels,
		}, []string{"result"}),
		feedDuration: factory.NewHistogram(prom.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "feed_duration_seconds",
			Help:        "Time spent decoding and writing a document",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),
		changesReceived: factory.NewCounter(prom.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "feed_changes_received_total",
			Help:        "Raw documents received from feed sources",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// OnWrite implements signalz.MetricsProvider.
func (p *Provider) OnWrite(_ int, duration time.Duration) {
	p.writes.Inc()
	p.writeDuration.Observe(duration.Seconds())
}

// OnNotify implements signalz.MetricsProvider.
func (p *Provider) OnNotify(outcome string) {
	p.notifications.WithLabelValues(outcome).Inc()
}

// OnObserversChange implements signalz.MetricsProvider.
func (p *Provider) OnObserversChange(active int) {
	p.observers.Set(float64(active))
}

// OnSelectorChange implements signalz.MetricsProvider.
func (p *Provider) OnSelectorChange(op string, installed int) {
	p.selectorOps.WithLabelValues(op).Inc()
	p.selectors.Set(float64(installed))
}

// OnFeedStateChange implements signalz.MetricsProvider.
func (p *Provider) OnFeedStateChange(from, to signalz.State) {
	p.feedState.WithLabelValues(from.String()).Set(0)
	p.feedState.WithLabelValues(to.String()).Set(1)
}

// OnFeedSuccess implements signalz.MetricsProvider.
func (p *Provider) OnFeedSuccess(duration time.Duration) {
	p.feedProcessed.WithLabelValues("success").Inc()
	p.feedDuration.Observe(duration.Seconds())
}

// OnFeedFailure implements signalz.MetricsProvider.
func (p *Provider) OnFeedFailure(stage string, duration time.Duration) {
	p.feedProcessed.WithLabelValues(stage + "_failed").Inc()
	p.feedDuration.Observe(duration.Seconds())
}

// OnChangeReceived implements signalz.MetricsProvider.
func (p *Provider) OnChangeReceived() {
	p.changesReceived.Inc()
}

var _ signalz.MetricsProvider = (*Provider)(nil)
