package fault

import (
	"github.com/vango-dev/faultline/pkg/component"
)

// Handler is a user-supplied callback. receiver is the value the callback
// is bound to and args its arguments (nil for none).
type Handler func(receiver any, args []any) (any, error)

// Invoke calls h and routes any failure from origin with info.
//
// A returned error or a panic is routed synchronously and Invoke returns
// nil. On success the handler's result is returned unchanged; if it is a
// *Future not yet wired, its rejection is routed on a later lane turn with
// DeferredSuffix appended to info. A fatal re-raise from the fallback
// propagates to the caller.
func (r *Router) Invoke(h Handler, receiver any, args []any, origin component.Handle, info string) any {
	res, err := call(h, receiver, args)
	if err != nil {
		r.Route(err, origin, info)
		return nil
	}
	if f, ok := res.(*Future); ok && f != nil && f.markWired() {
		r.metrics.recordDeferredWired()
		f.Catch(func(reason error) {
			r.Route(reason, origin, info+DeferredSuffix)
		})
	}
	return res
}

// Guard runs fn through Invoke with no receiver or arguments.
func (r *Router) Guard(origin component.Handle, info string, fn func() error) {
	r.Invoke(func(any, []any) (any, error) {
		return nil, fn()
	}, nil, nil, origin, info)
}

// NextTick queues fn for the next lane turn. Its failure is routed from
// origin with info InfoNextTick.
func (r *Router) NextTick(origin component.Handle, fn func() error) {
	r.lane.Post(func() {
		r.Guard(origin, InfoNextTick, fn)
	})
}

func call(h Handler, receiver any, args []any) (res any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res, err = nil, recovered(rec)
		}
	}()
	return h(receiver, args)
}
