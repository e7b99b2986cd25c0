package fault

import (
	"sync"

	"github.com/vango-dev/faultline/pkg/component"
)

// ErrorHandler is the application-wide handler for errors that no capture
// hook stopped. Returning err itself means "not handled, do not report
// twice"; returning any other non-nil error reports that error as well.
type ErrorHandler func(err error, origin component.Handle, info string) error

// Config holds the externally owned settings the subsystem reads.
// It is safe to mutate from any goroutine.
type Config struct {
	mu           sync.RWMutex
	errorHandler ErrorHandler
}

// SetErrorHandler installs h as the global handler. nil removes it.
func (c *Config) SetErrorHandler(h ErrorHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorHandler = h
}

// ErrorHandler returns the installed global handler, or nil.
func (c *Config) ErrorHandler() ErrorHandler {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errorHandler
}
