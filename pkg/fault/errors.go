package fault

import (
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
)

// Info strings used by the subsystem itself.
const (
	// InfoCaptureHook is the info for failures raised by a capture hook.
	InfoCaptureHook = "errorCaptured hook"

	// InfoGlobalHandler is the info for failures raised by the global handler.
	InfoGlobalHandler = "config.errorHandler"

	// InfoNextTick is the info for failures in callbacks queued with NextTick.
	InfoNextTick = "nextTick"

	// DeferredSuffix is appended to the info of deferred failures.
	DeferredSuffix = " (deferred)"
)

// ErrNilFailure stands in for a failure that carried no error value.
var ErrNilFailure = errors.New("fault: nil error")

// PanicError wraps a recovered panic value that was not an error.
type PanicError struct {
	// Value is the value passed to panic().
	Value any

	// Stack is the goroutine stack at recovery time.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// recovered converts a recover() value into an error. Error values are
// returned as-is so that identity is preserved across re-raises.
func recovered(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r, Stack: string(debug.Stack())}
}

// sameError reports whether a and b are the same error value. Only
// reference identity counts; wrapping or equal messages do not.
// Slice and map errors cannot be compared with ==, so they are the same
// when they share backing storage (and, for slices, length and capacity).
func sameError(a, b error) (same bool) {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if !ta.Comparable() {
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		switch ta.Kind() {
		case reflect.Slice:
			return va.UnsafePointer() == vb.UnsafePointer() &&
				va.Len() == vb.Len() && va.Cap() == vb.Cap()
		case reflect.Map:
			return va.UnsafePointer() == vb.UnsafePointer()
		default:
			return false
		}
	}
	// == can still panic on interface fields holding uncomparable values.
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// stackOf returns the captured stack of a recovered panic, if any.
func stackOf(err error) string {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe.Stack
	}
	return ""
}
