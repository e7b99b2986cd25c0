package fault

import (
	"log/slog"
	"time"

	"github.com/vango-dev/faultline/pkg/host"
	"go.opentelemetry.io/otel/trace"
)

// Suspender is the reactive-tracking collaborator. *reactive.Gate implements it.
type Suspender interface {
	Suspend()
	Resume()
}

// Option configures a Router.
type Option func(*Router)

// WithGate sets the suspension gate shared with the reactive engine.
func WithGate(g Suspender) Option {
	return func(r *Router) {
		r.gate = g
	}
}

// WithConfig sets the externally owned configuration.
func WithConfig(c *Config) Option {
	return func(r *Router) {
		r.config = c
	}
}

// WithProduction disables development warnings.
func WithProduction(production bool) Option {
	return func(r *Router) {
		r.fallback.production = production
	}
}

// WithWarner sets the logging collaborator used outside production mode.
func WithWarner(w Warner) Option {
	return func(r *Router) {
		r.fallback.warner = w
	}
}

// WithLogger logs warnings through logger with component traces.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.fallback.warner = SlogWarner{Logger: logger, Tree: r.tracerOf()}
	}
}

// WithProbe sets the host-environment probe.
func WithProbe(p host.Probe) Option {
	return func(r *Router) {
		r.fallback.probe = p
	}
}

// WithChannel sets the host diagnostic channel.
func WithChannel(c host.Channel) Option {
	return func(r *Router) {
		r.fallback.channel = c
	}
}

// WithMetrics records propagation counters into m.
func WithMetrics(m *Metrics) Option {
	return func(r *Router) {
		r.metrics = m
	}
}

// WithTracer sets the OpenTelemetry tracer used for propagation spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Router) {
		r.tracer = t
	}
}

// WithLane sets the lane deferred failures and NextTick callbacks run on.
func WithLane(l *Lane) Option {
	return func(r *Router) {
		r.lane = l
	}
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		r.fallback.now = now
	}
}
