package reactive

import "sync/atomic"

// Listener is anything that can be notified when a dependency changes.
// Watchers and render computations implement it.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies has changed.
	MarkDirty()

	// ID returns a unique identifier for this listener.
	// Used to deduplicate subscriptions.
	ID() uint64
}

var idCounter atomic.Uint64

// NextID returns a process-unique identifier for listeners and signals.
func NextID() uint64 {
	return idCounter.Add(1)
}
