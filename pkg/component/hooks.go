package component

// Verdict is the value a capture hook returns to steer propagation.
type Verdict uint8

const (
	// Continue lets the error keep walking toward the root.
	Continue Verdict = iota

	// Stop ends propagation at the current ancestor.
	// Neither further ancestors nor the global handler see the error.
	Stop
)

// String returns a human-readable name for the verdict.
func (v Verdict) String() string {
	switch v {
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// CaptureHook is a local error handler registered on a component.
// self is the instance the hook belongs to, origin is the instance where the
// error was raised and info describes the failing call site.
//
// A non-nil returned error (or a panic) is treated as a failure of the hook
// itself; the returned verdict is then ignored.
type CaptureHook func(self Handle, err error, origin Handle, info string) (Verdict, error)

// LifecycleHook is a user callback run at a lifecycle stage
// ("created", "mounted", "destroyed", ...). It may return a deferred value.
type LifecycleHook func(self Handle) (any, error)

// EventHandler is a user callback bound to a named component event.
type EventHandler func(self Handle, args []any) (any, error)
