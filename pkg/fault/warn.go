package fault

import (
	"log/slog"

	"github.com/vango-dev/faultline/pkg/component"
)

// Warner is the logging collaborator used outside production mode.
type Warner interface {
	Warn(msg string, origin component.Handle)
}

// WarnerFunc adapts a function to Warner.
type WarnerFunc func(msg string, origin component.Handle)

// Warn implements Warner.
func (f WarnerFunc) Warn(msg string, origin component.Handle) { f(msg, origin) }

// Tracer formats the component ancestry of an instance.
// *component.Tree implements it.
type Tracer interface {
	Trace(h component.Handle) string
}

// SlogWarner logs warnings through slog, attaching the component trace.
type SlogWarner struct {
	Logger *slog.Logger
	Tree   Tracer
}

// Warn implements Warner.
func (w SlogWarner) Warn(msg string, origin component.Handle) {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{"origin", origin.String()}
	if w.Tree != nil && origin != component.None {
		if trace := w.Tree.Trace(origin); trace != "" {
			attrs = append(attrs, "trace", trace)
		}
	}
	logger.Warn("[faultline warn] "+msg, attrs...)
}
