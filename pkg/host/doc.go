// Package host describes the environment the runtime is embedded in and the
// diagnostic channels it can write errors to.
//
// A Probe answers two questions: is there a browser-like host (a devtools
// overlay, a wasm console) and is there an embedded alternate-renderer host.
// When either is true and a Channel is configured, unhandled errors are
// written to the channel. Otherwise the runtime treats them as fatal.
package host
