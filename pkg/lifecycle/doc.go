// Package lifecycle runs user callbacks on behalf of component instances:
// lifecycle hooks, event handlers, render functions and watchers. Every call
// goes through fault.Router.Invoke with an info string naming the call site,
// so failures reach the instance's capture hooks and the global handler.
//
//	runner := lifecycle.NewRunner(tree, router, gate)
//	runner.CallHook(counter, lifecycle.Mounted)
//	runner.Emit(counter, "click", 1)
//	runner.Watch(counter, "count", getter, func(next, prev any) error { ... }, lifecycle.WatchOptions{})
package lifecycle
