// Package reactive holds the small slice of the reactive engine that the
// error subsystem depends on: the tracking-target stack (the suspension
// gate) and a tracked Signal type that records reads against it.
//
// # Tracking Targets
//
// A Gate keeps a stack of tracking targets. The top of the stack is the
// Listener that receives a subscription whenever a Signal is read. Pushing
// nil makes reads inert until the matching Pop:
//
//	gate := reactive.NewGate()
//	count := reactive.NewSignal(gate, 0)
//
//	gate.Track(watcher, func() {
//	    count.Get() // watcher now depends on count
//	})
//
//	gate.Untracked(func() {
//	    count.Get() // no subscription recorded
//	})
//
// # Threading
//
// A Gate belongs to one cooperative scheduling lane and is not safe for
// concurrent use. Signals guard their own value and subscriber list.
package reactive
