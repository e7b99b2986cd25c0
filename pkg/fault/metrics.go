package fault

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus metrics recorded by a Router.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "faultline").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures MetricsConfig.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "faultline",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the counters for error propagation.
// A nil *Metrics records nothing.
type Metrics struct {
	routed         *prometheus.CounterVec
	suppressed     prometheus.Counter
	hookFailures   prometheus.Counter
	handlerFailure prometheus.Counter
	reported       *prometheus.CounterVec
	deferredWired  prometheus.Counter
}

// NewMetrics registers the propagation counters:
//   - faultline_routed_total: propagation passes by info
//   - faultline_suppressed_total: passes stopped by a capture hook
//   - faultline_capture_hook_failures_total: failing capture hooks
//   - faultline_handler_failures_total: failing global handler calls
//   - faultline_reported_total: fallback reports by outcome (channel, fatal)
//   - faultline_deferred_wired_total: futures wired for deferred failures
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		routed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routed_total",
			Help:        "Total number of error propagation passes",
			ConstLabels: config.ConstLabels,
		}, []string{"info"}),
		suppressed:     counter("suppressed_total", "Total number of errors stopped by a capture hook"),
		hookFailures:   counter("capture_hook_failures_total", "Total number of capture hooks that failed"),
		handlerFailure: counter("handler_failures_total", "Total number of global error handler failures"),
		reported: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "reported_total",
			Help:        "Total number of errors reported by the diagnostic fallback",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),
		deferredWired: counter("deferred_wired_total", "Total number of deferred values wired for failure routing"),
	}
}

func (m *Metrics) recordRouted(info string) {
	if m != nil {
		m.routed.WithLabelValues(info).Inc()
	}
}

func (m *Metrics) recordSuppressed() {
	if m != nil {
		m.suppressed.Inc()
	}
}

func (m *Metrics) recordHookFailure() {
	if m != nil {
		m.hookFailures.Inc()
	}
}

func (m *Metrics) recordHandlerFailure() {
	if m != nil {
		m.handlerFailure.Inc()
	}
}

func (m *Metrics) recordReported(outcome string) {
	if m != nil {
		m.reported.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) recordDeferredWired() {
	if m != nil {
		m.deferredWired.Inc()
	}
}
