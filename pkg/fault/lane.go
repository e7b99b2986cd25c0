package fault

import (
	"context"
	"sync"
)

// Lane is a single cooperative scheduling lane. Tasks are queued from any
// goroutine with Post and executed, in order, by whoever calls Drain or Run.
// Deferred failures and NextTick callbacks run on a later turn of the lane,
// never inside the call that scheduled them.
type Lane struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewLane creates an empty lane.
func NewLane() *Lane {
	return &Lane{wake: make(chan struct{}, 1)}
}

// Post queues fn for the next turn. Safe for concurrent use.
func (l *Lane) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued tasks.
func (l *Lane) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Drain runs queued tasks on the calling goroutine until the queue is empty,
// including tasks posted while draining. It returns how many ran.
// A panicking task propagates out of Drain; the remaining tasks stay queued.
func (l *Lane) Drain() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return n
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
		n++
	}
}

// Run drains the lane whenever work is posted, until ctx is done.
func (l *Lane) Run(ctx context.Context) error {
	for {
		l.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
