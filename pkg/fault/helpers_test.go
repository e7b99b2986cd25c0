package fault

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/faultline/pkg/component"
	"github.com/vango-dev/faultline/pkg/host"
	"github.com/vango-dev/faultline/pkg/reactive"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var fixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// harness wires a Router to a recorder channel and a warning log.
type harness struct {
	tree     *component.Tree
	gate     *reactive.Gate
	recorder *host.Recorder
	router   *Router

	mu       sync.Mutex
	warnings []string
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		tree:     component.NewTree(),
		gate:     reactive.NewGate(),
		recorder: host.NewRecorder(32),
	}
	base := []Option{
		WithGate(h.gate),
		WithProbe(host.Env{InBrowser: true}),
		WithChannel(h.recorder),
		WithClock(func() time.Time { return fixedTime }),
		WithWarner(WarnerFunc(func(msg string, _ component.Handle) {
			h.mu.Lock()
			h.warnings = append(h.warnings, msg)
			h.mu.Unlock()
		})),
	}
	h.router = New(h.tree, append(base, opts...)...)
	return h
}

func (h *harness) mount(t *testing.T, parent component.Handle, name string, hooks ...component.CaptureHook) component.Handle {
	t.Helper()
	c, err := h.tree.Mount(parent, component.Options{Name: name, ErrorCaptured: hooks})
	if err != nil {
		t.Fatalf("Mount(%q) error: %v", name, err)
	}
	return c
}

func (h *harness) reports() []host.Report {
	return h.recorder.Reports()
}

func (h *harness) warningLog() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.warnings...)
}

// recordHook returns a capture hook that appends tag to calls.
func recordHook(calls *[]string, tag string, verdict component.Verdict) component.CaptureHook {
	return func(component.Handle, error, component.Handle, string) (component.Verdict, error) {
		*calls = append(*calls, tag)
		return verdict, nil
	}
}

// recordingTracer records span names and attributes.
type recordingTracer struct {
	noop.Tracer
	spans *[]*recordingSpan
}

func (t recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordingSpan{name: name, attrs: map[string]string{}}
	s.SetAttributes(cfg.Attributes()...)
	*t.spans = append(*t.spans, s)
	return ctx, s
}

type recordingSpan struct {
	noop.Span
	name   string
	attrs  map[string]string
	errors []error
	ended  bool
}

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[string(a.Key)] = a.Value.Emit()
	}
}

func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errors = append(s.errors, err)
}

func (s *recordingSpan) End(...trace.SpanEndOption) {
	s.ended = true
}
