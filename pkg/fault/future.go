package fault

import (
	"errors"
	"sync"
)

// FutureState is the settlement state of a Future.
type FutureState uint8

const (
	Pending FutureState = iota
	Resolved
	Rejected
)

// String returns a human-readable name for the state.
func (s FutureState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// ErrAlreadySettled is returned when settling a Future twice.
var ErrAlreadySettled = errors.New("fault: future already settled")

// Future is a deferred value that settles once, either resolved with a
// value or rejected with an error. Continuations run on the Future's lane.
//
// A callback that returns a *Future from Router.Invoke has its rejection
// routed like a synchronous failure, with DeferredSuffix appended to the
// info. The wiring happens once per Future no matter how many nested
// Invoke calls return it.
type Future struct {
	lane *Lane

	mu        sync.Mutex
	state     FutureState
	value     any
	reason    error
	onResolve []func(any)
	onReject  []func(error)

	// wired is set by the first Invoke that attaches failure routing.
	wired bool
}

// NewFuture creates a pending future whose continuations run on lane.
// With a nil lane, continuations run synchronously at settlement.
func NewFuture(lane *Lane) *Future {
	return &Future{lane: lane}
}

// State returns the current settlement state.
func (f *Future) State() FutureState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Result returns the value and reason once settled.
func (f *Future) Result() (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.reason
}

// Resolve settles the future with v.
func (f *Future) Resolve(v any) error {
	f.mu.Lock()
	if f.state != Pending {
		f.mu.Unlock()
		return ErrAlreadySettled
	}
	f.state = Resolved
	f.value = v
	callbacks := f.onResolve
	f.onResolve, f.onReject = nil, nil
	f.mu.Unlock()

	for _, cb := range callbacks {
		f.schedule(func() { cb(v) })
	}
	return nil
}

// Reject settles the future with err. A nil err is replaced by ErrNilFailure.
func (f *Future) Reject(err error) error {
	if err == nil {
		err = ErrNilFailure
	}
	f.mu.Lock()
	if f.state != Pending {
		f.mu.Unlock()
		return ErrAlreadySettled
	}
	f.state = Rejected
	f.reason = err
	callbacks := f.onReject
	f.onResolve, f.onReject = nil, nil
	f.mu.Unlock()

	for _, cb := range callbacks {
		f.schedule(func() { cb(err) })
	}
	return nil
}

// Then registers fn to run with the value once the future resolves.
func (f *Future) Then(fn func(any)) *Future {
	f.mu.Lock()
	switch f.state {
	case Pending:
		f.onResolve = append(f.onResolve, fn)
		f.mu.Unlock()
	case Resolved:
		v := f.value
		f.mu.Unlock()
		f.schedule(func() { fn(v) })
	default:
		f.mu.Unlock()
	}
	return f
}

// Catch registers fn to run with the reason once the future rejects.
func (f *Future) Catch(fn func(error)) *Future {
	f.mu.Lock()
	switch f.state {
	case Pending:
		f.onReject = append(f.onReject, fn)
		f.mu.Unlock()
	case Rejected:
		err := f.reason
		f.mu.Unlock()
		f.schedule(func() { fn(err) })
	default:
		f.mu.Unlock()
	}
	return f
}

// Wired reports whether failure routing has been attached.
func (f *Future) Wired() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wired
}

// markWired sets the wired flag and reports whether this call set it.
func (f *Future) markWired() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.wired {
		return false
	}
	f.wired = true
	return true
}

func (f *Future) schedule(fn func()) {
	if f.lane == nil {
		fn()
		return
	}
	f.lane.Post(fn)
}
