package fault

import (
	"context"
	"os"
	"time"

	"github.com/vango-dev/faultline/pkg/component"
	"github.com/vango-dev/faultline/pkg/host"
	"github.com/vango-dev/faultline/pkg/reactive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "faultline"

// Ancestry is the read-only view of the component tree a Router walks.
// *component.Tree implements it.
type Ancestry interface {
	Parent(h component.Handle) component.Handle
	CaptureHooks(h component.Handle) []component.CaptureHook
	Name(h component.Handle) string
}

// Router routes failures up the component tree.
type Router struct {
	tree     Ancestry
	gate     Suspender
	config   *Config
	sink     *Sink
	fallback *Fallback
	metrics  *Metrics
	tracer   trace.Tracer
	lane     *Lane
}

// New creates a Router over tree.
//
// Defaults: a fresh reactive.Gate, an empty Config, warnings through
// slog.Default, host.Detect as probe, a stderr console channel, a new Lane,
// no metrics and the global OpenTelemetry tracer.
func New(tree Ancestry, opts ...Option) *Router {
	r := &Router{
		tree:   tree,
		gate:   reactive.NewGate(),
		config: &Config{},
		tracer: otel.Tracer(defaultTracerName),
		lane:   NewLane(),
	}
	r.fallback = &Fallback{
		probe:   host.Detect(),
		channel: host.NewConsole(os.Stderr, false),
		names:   tree,
		now:     time.Now,
	}
	r.fallback.warner = SlogWarner{Tree: r.tracerOf()}

	for _, opt := range opts {
		opt(r)
	}

	r.fallback.metrics = r.metrics
	r.sink = &Sink{config: r.config, fallback: r.fallback, metrics: r.metrics}
	return r
}

func (r *Router) tracerOf() Tracer {
	if t, ok := r.tree.(Tracer); ok {
		return t
	}
	return nil
}

// Config returns the configuration the sink reads the global handler from.
func (r *Router) Config() *Config { return r.config }

// Lane returns the lane deferred failures are delivered on.
func (r *Router) Lane() *Lane { return r.lane }

// Sink returns the global sink.
func (r *Router) Sink() *Sink { return r.sink }

// Fallback returns the diagnostic fallback.
func (r *Router) Fallback() *Fallback { return r.fallback }

// Route propagates err raised at origin with call-site description info.
//
// Capture hooks of origin's ancestors run nearest-first, each ancestor's
// hooks in registration order. The first hook returning component.Stop
// ends the pass. Otherwise err reaches the Sink. Tracking is suspended for
// the whole pass and resumed on every exit, including a fatal re-raise.
func (r *Router) Route(err error, origin component.Handle, info string) {
	if err == nil {
		err = ErrNilFailure
	}

	r.gate.Suspend()
	defer r.gate.Resume()

	_, span := r.tracer.Start(context.Background(), "fault.route",
		trace.WithAttributes(
			attribute.String("fault.info", info),
			attribute.String("fault.origin", origin.String()),
		))
	defer span.End()
	span.RecordError(err)
	r.metrics.recordRouted(info)

	if r.capture(err, origin, info) {
		r.metrics.recordSuppressed()
		span.SetAttributes(attribute.String("fault.outcome", "suppressed"))
		return
	}

	span.SetAttributes(attribute.String("fault.outcome", "dispatched"))
	r.sink.Dispatch(err, origin, info)
}

// capture walks the ancestors of origin and reports whether a hook stopped err.
func (r *Router) capture(err error, origin component.Handle, info string) bool {
	if origin == component.None {
		return false
	}
	for cur := r.tree.Parent(origin); cur != component.None; cur = r.tree.Parent(cur) {
		for _, hook := range r.tree.CaptureHooks(cur) {
			verdict, failure := runHook(hook, cur, err, origin, info)
			if failure != nil {
				r.metrics.recordHookFailure()
				r.Route(failure, cur, InfoCaptureHook)
				continue
			}
			if verdict == component.Stop {
				return true
			}
		}
	}
	return false
}

func runHook(hook component.CaptureHook, self component.Handle, err error, origin component.Handle, info string) (verdict component.Verdict, failure error) {
	defer func() {
		if rec := recover(); rec != nil {
			verdict, failure = component.Continue, recovered(rec)
		}
	}()
	verdict, failure = hook(self, err, origin, info)
	if failure != nil {
		verdict = component.Continue
	}
	return verdict, failure
}
