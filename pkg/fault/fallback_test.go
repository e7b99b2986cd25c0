package fault

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/faultline/pkg/component"
	"github.com/vango-dev/faultline/pkg/host"
)

func TestFallbackWarnsOutsideProduction(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		want       []string
	}{
		{"development", false, []string{`Error in render function: "boom"`}},
		{"production", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, WithProduction(tt.production))
			h.router.Route(errors.New("boom"), component.None, "render function")

			got := h.warningLog()
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("warnings = %q, want %q", got, tt.want)
			}
			if len(h.reports()) != 1 {
				t.Errorf("got %d reports, want 1", len(h.reports()))
			}
		})
	}
}

func TestFallbackEmbeddedHostUsesChannel(t *testing.T) {
	h := newHarness(t, WithProbe(host.Env{InEmbedded: true}))
	h.router.Route(errors.New("boom"), component.None, "render")
	if len(h.reports()) != 1 {
		t.Errorf("got %d reports, want 1", len(h.reports()))
	}
}

func TestFallbackFatalWithoutChannel(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"headless probe", []Option{WithProbe(host.Headless)}},
		{"browser without channel", []Option{WithChannel(nil)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, append(tt.opts, WithProduction(true))...)
			boom := errors.New("boom")

			var raised any
			func() {
				defer func() { raised = recover() }()
				h.router.Route(boom, component.None, "render")
			}()

			err, ok := raised.(error)
			if !ok || !errors.Is(err, boom) {
				t.Errorf("re-raised %v, want %v", raised, boom)
			}
			if len(h.warningLog()) != 0 {
				t.Error("production mode should not warn")
			}
		})
	}
}

func TestFallbackReportCarriesPanicStack(t *testing.T) {
	h := newHarness(t)
	leaf := h.mount(t, component.None, "Leaf")
	h.router.Guard(leaf, "mounted hook", func() error {
		panic("kaboom")
	})

	last, err := h.recorder.Last()
	if err != nil {
		t.Fatal(err)
	}
	var pe *PanicError
	if !errors.As(last.Err, &pe) || pe.Value != "kaboom" {
		t.Fatalf("report error = %v, want PanicError(kaboom)", last.Err)
	}
	if last.Stack == "" || last.Message != "panic: kaboom" {
		t.Errorf("report = %+v", last)
	}
}

func TestSlogWarnerIncludesTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	tree := component.NewTree()
	root, _ := tree.Mount(component.None, component.Options{Name: "App"})
	leaf, _ := tree.Mount(root, component.Options{Name: "Counter"})

	SlogWarner{Logger: logger, Tree: tree}.Warn(`Error in render: "boom"`, leaf)

	out := buf.String()
	for _, want := range []string{"level=WARN", "[faultline warn] Error in render", "<Counter>", "<App> (root)"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestWithLoggerUsesSlog(t *testing.T) {
	var buf bytes.Buffer
	h := newHarness(t, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	h.router.Route(errors.New("boom"), component.None, "render")
	if !strings.Contains(buf.String(), `Error in render`) {
		t.Errorf("expected slog warning, got %q", buf.String())
	}
}
