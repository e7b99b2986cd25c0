package host

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Report is one error delivered to a diagnostic channel.
type Report struct {
	Time      time.Time `json:"time"`
	Info      string    `json:"info"`
	Origin    string    `json:"origin,omitempty"`
	Component string    `json:"component,omitempty"`
	Message   string    `json:"message"`
	Stack     string    `json:"stack,omitempty"`

	// Err is the error itself. It is not serialized.
	Err error `json:"-"`
}

// Channel is a host diagnostic surface that accepts error reports.
// Implementations must be safe for concurrent use.
type Channel interface {
	WriteError(r Report)
}

// ChannelFunc adapts a function to Channel.
type ChannelFunc func(r Report)

// WriteError implements Channel.
func (f ChannelFunc) WriteError(r Report) { f(r) }

// Console writes reports to a stream, the way a browser console would.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
}

// NewConsole creates a console channel writing to w (os.Stderr if nil).
// verbose includes stack traces.
func NewConsole(w io.Writer, verbose bool) *Console {
	if w == nil {
		w = os.Stderr
	}
	return &Console{w: w, verbose: verbose}
}

// WriteError implements Channel.
func (c *Console) WriteError(r Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r.Component != "" {
		fmt.Fprintf(c.w, "[faultline error] %s <%s>: %s\n", r.Info, r.Component, r.Message)
	} else {
		fmt.Fprintf(c.w, "[faultline error] %s: %s\n", r.Info, r.Message)
	}
	if c.verbose && r.Stack != "" {
		fmt.Fprintf(c.w, "Stack trace:\n%s\n", r.Stack)
	}
}

// Multi fans a report out to several channels in order.
type Multi []Channel

// WriteError implements Channel.
func (m Multi) WriteError(r Report) {
	for _, c := range m {
		if c != nil {
			c.WriteError(r)
		}
	}
}

// ErrEmptyRecorder is returned by Recorder.Last when nothing was recorded.
var ErrEmptyRecorder = errors.New("host: no reports recorded")

// Recorder keeps the most recent reports in a ring buffer.
type Recorder struct {
	mu    sync.RWMutex
	buf   []Report
	next  int
	full  bool
	total uint64
}

// NewRecorder creates a recorder holding up to size reports (minimum 1).
func NewRecorder(size int) *Recorder {
	if size < 1 {
		size = 1
	}
	return &Recorder{buf: make([]Report, size)}
}

// WriteError implements Channel.
func (r *Recorder) WriteError(rep Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = rep
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
	r.total++
}

// Reports returns the retained reports, oldest first.
func (r *Recorder) Reports() []Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.full {
		return append([]Report(nil), r.buf[:r.next]...)
	}
	out := make([]Report, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

// Last returns the most recent report.
func (r *Recorder) Last() (Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.total == 0 {
		return Report{}, ErrEmptyRecorder
	}
	i := r.next - 1
	if i < 0 {
		i = len(r.buf) - 1
	}
	return r.buf[i], nil
}

// Total returns how many reports were ever recorded.
func (r *Recorder) Total() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}
