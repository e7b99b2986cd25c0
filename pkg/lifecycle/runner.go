package lifecycle

import (
	"fmt"

	"github.com/vango-dev/faultline/pkg/component"
	"github.com/vango-dev/faultline/pkg/fault"
	"github.com/vango-dev/faultline/pkg/reactive"
)

// Lifecycle stage names.
const (
	BeforeCreate  = "beforeCreate"
	Created       = "created"
	BeforeMount   = "beforeMount"
	Mounted       = "mounted"
	BeforeUpdate  = "beforeUpdate"
	Updated       = "updated"
	BeforeDestroy = "beforeDestroy"
	Destroyed     = "destroyed"
)

// Runner invokes component callbacks through a fault.Router.
type Runner struct {
	tree   *component.Tree
	router *fault.Router
	gate   *reactive.Gate
}

// NewRunner creates a runner. gate must be the gate the router suspends.
func NewRunner(tree *component.Tree, router *fault.Router, gate *reactive.Gate) *Runner {
	return &Runner{tree: tree, router: router, gate: gate}
}

// Router returns the router callbacks are invoked through.
func (r *Runner) Router() *fault.Router { return r.router }

// CallHook runs the hooks registered on h for stage, in order, with
// dependency tracking suspended. Each failure is routed with info
// "<stage> hook".
func (r *Runner) CallHook(h component.Handle, stage string) {
	r.gate.Suspend()
	defer r.gate.Resume()

	info := stage + " hook"
	for _, hook := range r.tree.LifecycleHooks(h, stage) {
		r.router.Invoke(func(receiver any, _ []any) (any, error) {
			return hook(receiver.(component.Handle))
		}, h, nil, h, info)
	}
}

// Emit runs the handlers registered on h for event with args and returns
// how many handlers ran.
func (r *Runner) Emit(h component.Handle, event string, args ...any) int {
	handlers := r.tree.Listeners(h, event)
	info := fmt.Sprintf("event handler for %q", event)
	for _, handler := range handlers {
		r.router.Invoke(func(receiver any, args []any) (any, error) {
			return handler(receiver.(component.Handle), args)
		}, h, args, h, info)
	}
	return len(handlers)
}

// Render runs a render function for h. It returns the rendered value, or
// nil when rendering failed.
func (r *Runner) Render(h component.Handle, fn func() (any, error)) any {
	return r.router.Invoke(func(any, []any) (any, error) {
		return fn()
	}, h, nil, h, "render")
}

// NextTick queues fn for the next lane turn.
func (r *Runner) NextTick(h component.Handle, fn func() error) {
	r.router.NextTick(h, fn)
}
