// Package fault is the error-safety envelope around user callbacks.
//
// Every lifecycle hook, watcher callback, event handler and render function
// is run through Router.Invoke. A failure (returned error, panic, or the
// rejection of a returned Future) is handed to Router.Route, which walks the
// component ancestry nearest-first and runs each ancestor's capture hooks in
// registration order:
//
//   - a hook returning component.Stop ends propagation;
//   - a hook that fails is itself routed from that ancestor with the info
//     string "errorCaptured hook", then the walk continues;
//   - if nothing stops the error it reaches the Sink, which notifies the
//     configured global handler and always reports to the Fallback.
//
// The Fallback logs a warning outside production mode, then writes the error
// to the host diagnostic channel. With no channel (a headless host) the error
// is re-raised as a panic.
//
// Reactive dependency tracking is suspended for the whole pass so that
// hooks and handlers can read signals without subscribing the computation
// that happened to be running when the error occurred.
//
// # Usage
//
//	tree := component.NewTree()
//	router := fault.New(tree,
//	    fault.WithProbe(host.Env{InBrowser: true}),
//	    fault.WithChannel(host.NewConsole(os.Stderr, true)),
//	)
//
//	router.Invoke(func(_ any, _ []any) (any, error) {
//	    return nil, errors.New("boom")
//	}, nil, nil, counter, "render")
//
// # Threading
//
// A Router and its gate belong to a single cooperative lane. Deferred
// failures are delivered on a later turn of that Lane; run Lane.Drain or
// Lane.Run on the goroutine that owns the tree.
package fault
