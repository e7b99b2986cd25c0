package fault

import (
	"github.com/vango-dev/faultline/pkg/component"
)

// Sink delivers errors that no capture hook stopped.
type Sink struct {
	config   *Config
	fallback *Fallback
	metrics  *Metrics
}

// Dispatch notifies the configured global handler, if any, and then always
// reports err to the fallback with the original origin and info.
//
// A handler failure is reported separately with info InfoGlobalHandler and
// no origin, unless the handler failed with err itself: re-raising the
// very same error value means "not handled" and is not reported twice.
func (s *Sink) Dispatch(err error, origin component.Handle, info string) {
	if h := s.config.ErrorHandler(); h != nil {
		if herr := callHandler(h, err, origin, info); herr != nil {
			s.metrics.recordHandlerFailure()
			if !sameError(herr, err) {
				s.fallback.Report(herr, component.None, InfoGlobalHandler)
			}
		}
	}
	s.fallback.Report(err, origin, info)
}

func callHandler(h ErrorHandler, err error, origin component.Handle, info string) (failure error) {
	defer func() {
		if r := recover(); r != nil {
			failure = recovered(r)
		}
	}()
	return h(err, origin, info)
}
