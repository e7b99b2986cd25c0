package lifecycle

import (
	"fmt"
	"reflect"

	"github.com/vango-dev/faultline/pkg/component"
	"github.com/vango-dev/faultline/pkg/reactive"
)

// WatchOptions configures a watcher.
type WatchOptions struct {
	// Immediate runs the callback once with the initial value.
	Immediate bool
}

// Watcher re-evaluates a getter whenever a signal it read changes and calls
// back when the value differs.
type Watcher struct {
	id     uint64
	runner *Runner
	owner  component.Handle
	expr   string
	getter func() (any, error)
	cb     func(next, prev any) error

	value  any
	queued bool
	active bool
}

// Watch creates a watcher on h. The getter runs immediately with the
// watcher as tracking target; failures are routed with info
// `getter for watcher "<expr>"` and callback failures with
// `callback for watcher "<expr>"`.
func (r *Runner) Watch(h component.Handle, expr string, getter func() (any, error), cb func(next, prev any) error, opts WatchOptions) *Watcher {
	w := &Watcher{
		id:     reactive.NextID(),
		runner: r,
		owner:  h,
		expr:   expr,
		getter: getter,
		cb:     cb,
		active: true,
	}
	w.value = w.get()

	if opts.Immediate {
		info := fmt.Sprintf("callback for immediate watcher %q", expr)
		w.invokeCallback(w.value, nil, info)
	}
	return w
}

// ID implements reactive.Listener.
func (w *Watcher) ID() uint64 { return w.id }

// MarkDirty implements reactive.Listener. Re-evaluation is queued on the
// router's lane so that it runs on a later turn.
func (w *Watcher) MarkDirty() {
	if !w.active || w.queued {
		return
	}
	w.queued = true
	w.runner.router.Lane().Post(w.run)
}

// Value returns the last value produced by the getter.
func (w *Watcher) Value() any { return w.value }

// Stop deactivates the watcher. Pending runs become no-ops.
func (w *Watcher) Stop() { w.active = false }

func (w *Watcher) run() {
	w.queued = false
	if !w.active {
		return
	}
	next := w.get()
	if reflect.DeepEqual(next, w.value) {
		return
	}
	prev := w.value
	w.value = next
	w.invokeCallback(next, prev, fmt.Sprintf("callback for watcher %q", w.expr))
}

func (w *Watcher) get() any {
	var value any
	w.runner.router.Guard(w.owner, fmt.Sprintf("getter for watcher %q", w.expr), func() error {
		var err error
		w.runner.gate.Track(w, func() {
			value, err = w.getter()
		})
		return err
	})
	return value
}

func (w *Watcher) invokeCallback(next, prev any, info string) {
	w.runner.router.Invoke(func(_ any, args []any) (any, error) {
		return nil, w.cb(args[0], args[1])
	}, w.owner, []any{next, prev}, w.owner, info)
}
