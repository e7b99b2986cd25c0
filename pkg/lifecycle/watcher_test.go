package lifecycle

import (
	"errors"
	"testing"

	"github.com/vango-dev/faultline/pkg/component"
	"github.com/vango-dev/faultline/pkg/reactive"
)

func TestWatcherCallsBackOnChange(t *testing.T) {
	f := newFixture()
	h, _ := f.tree.Mount(component.None, component.Options{Name: "View"})
	count := reactive.NewSignal(f.gate, 1)

	var calls [][2]any
	w := f.runner.Watch(h, "count", func() (any, error) {
		return count.Get(), nil
	}, func(next, prev any) error {
		calls = append(calls, [2]any{next, prev})
		return nil
	}, WatchOptions{})

	if w.Value() != 1 || count.Subscribers() != 1 {
		t.Fatalf("Value() = %v, subscribers = %d", w.Value(), count.Subscribers())
	}

	count.Set(2)
	count.Set(3)
	if len(calls) != 0 {
		t.Fatal("watcher must re-run on a later lane turn")
	}
	f.router.Lane().Drain()

	if len(calls) != 1 || calls[0][0] != 3 || calls[0][1] != 1 {
		t.Errorf("calls = %v, want [[3 1]]", calls)
	}
}

func TestWatcherImmediateAndCallbackFailure(t *testing.T) {
	f := newFixture()
	h, _ := f.tree.Mount(component.None, component.Options{Name: "View"})
	count := reactive.NewSignal(f.gate, 0)

	f.runner.Watch(h, "count", func() (any, error) {
		return count.Get(), nil
	}, func(next, prev any) error {
		return errors.New("callback failed")
	}, WatchOptions{Immediate: true})

	count.Set(1)
	f.router.Lane().Drain()

	got := f.infos()
	want := []string{`callback for immediate watcher "count"`, `callback for watcher "count"`}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("infos = %v, want %v", got, want)
	}
}

func TestWatcherGetterFailure(t *testing.T) {
	f := newFixture()
	h, _ := f.tree.Mount(component.None, component.Options{Name: "View"})

	w := f.runner.Watch(h, "broken", func() (any, error) {
		panic("getter failed")
	}, func(any, any) error { return nil }, WatchOptions{})

	if w.Value() != nil {
		t.Errorf("Value() = %v, want nil", w.Value())
	}
	if got := f.infos(); len(got) != 1 || got[0] != `getter for watcher "broken"` {
		t.Errorf("infos = %v", got)
	}
	if f.gate.Depth() != 0 {
		t.Errorf("gate depth = %d, want 0", f.gate.Depth())
	}
}

func TestWatcherStop(t *testing.T) {
	f := newFixture()
	h, _ := f.tree.Mount(component.None, component.Options{Name: "View"})
	count := reactive.NewSignal(f.gate, 0)
	called := false
	w := f.runner.Watch(h, "count", func() (any, error) { return count.Get(), nil },
		func(any, any) error { called = true; return nil }, WatchOptions{})

	count.Set(1)
	w.Stop()
	f.router.Lane().Drain()
	if called {
		t.Error("stopped watcher must not call back")
	}
}

// A capture hook that reads a signal while a watcher getter is on the
// tracking stack must not make the watcher depend on that signal.
func TestCaptureHookReadsDoNotSubscribeWatcher(t *testing.T) {
	f := newFixture()
	diagnostics := reactive.NewSignal(f.gate, "ok")

	parent, _ := f.tree.Mount(component.None, component.Options{
		Name: "Parent",
		ErrorCaptured: []component.CaptureHook{
			func(component.Handle, error, component.Handle, string) (component.Verdict, error) {
				_ = diagnostics.Get()
				return component.Stop, nil
			},
		},
	})
	child, _ := f.tree.Mount(parent, component.Options{
		Name: "Child",
		Listeners: map[string][]component.EventHandler{
			"change": {func(component.Handle, []any) (any, error) { return nil, errors.New("bad change") }},
		},
	})

	source := reactive.NewSignal(f.gate, 0)
	f.runner.Watch(parent, "source", func() (any, error) {
		v := source.Get()
		f.runner.Emit(child, "change", v)
		return v, nil
	}, func(any, any) error { return nil }, WatchOptions{})

	if diagnostics.Subscribers() != 0 {
		t.Errorf("diagnostics subscribers = %d, want 0", diagnostics.Subscribers())
	}
	if source.Subscribers() != 1 {
		t.Errorf("source subscribers = %d, want 1", source.Subscribers())
	}
	if len(f.infos()) != 0 {
		t.Errorf("suppressed error was reported: %v", f.infos())
	}
}
