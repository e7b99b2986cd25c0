package fault

import (
	"time"

	"github.com/vango-dev/faultline/pkg/component"
	"github.com/vango-dev/faultline/pkg/host"
)

// Namer resolves display names of instances. *component.Tree implements it.
type Namer interface {
	Name(h component.Handle) string
}

// Fallback is the last-resort diagnostic path.
type Fallback struct {
	production bool
	warner     Warner
	probe      host.Probe
	channel    host.Channel
	names      Namer
	metrics    *Metrics
	now        func() time.Time
}

// Report records err. Outside production mode it first emits the warning
//
//	Error in {info}: "{err}"
//
// through the Warner. It then writes a host.Report to the diagnostic channel
// when the probe reports a browser-like or embedded host. With no such
// channel the error is re-raised with panic(err).
func (f *Fallback) Report(err error, origin component.Handle, info string) {
	if err == nil {
		err = ErrNilFailure
	}
	if !f.production && f.warner != nil {
		f.warner.Warn(`Error in `+info+`: "`+err.Error()+`"`, origin)
	}

	if host.HasChannel(f.probe) && f.channel != nil {
		f.metrics.recordReported("channel")
		f.channel.WriteError(f.report(err, origin, info))
		return
	}

	f.metrics.recordReported("fatal")
	panic(err)
}

func (f *Fallback) report(err error, origin component.Handle, info string) host.Report {
	r := host.Report{
		Time:    f.now(),
		Info:    info,
		Message: err.Error(),
		Stack:   stackOf(err),
		Err:     err,
	}
	if origin != component.None {
		r.Origin = origin.String()
		if f.names != nil {
			r.Component = f.names.Name(origin)
		}
	}
	return r
}
