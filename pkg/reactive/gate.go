package reactive

// Gate is the stack of tracking targets consulted by Signal reads.
// The error subsystem only ever pushes the inert target (Suspend) and pops
// it again (Resume); other callers push real listeners with Track.
type Gate struct {
	// target is the listener that currently records dependencies.
	// nil means reads are not tracked.
	target Listener

	// stack holds the targets that were active before each Push.
	stack []Listener

	pushes uint64
	pops   uint64
}

// NewGate creates an empty gate with no active tracking target.
func NewGate() *Gate {
	return &Gate{}
}

// Current returns the listener that reads are recorded against,
// or nil when tracking is inactive or suspended.
func (g *Gate) Current() Listener {
	return g.target
}

// Push makes l the current tracking target. The previous target is
// restored by the matching Pop. Pushing nil suspends tracking.
func (g *Gate) Push(l Listener) {
	g.stack = append(g.stack, g.target)
	g.target = l
	g.pushes++
}

// Pop restores the tracking target that was active before the last Push.
// Pop without a matching Push is a programming error and panics.
func (g *Gate) Pop() {
	n := len(g.stack)
	if n == 0 {
		panic("reactive: Pop without matching Push")
	}
	g.target = g.stack[n-1]
	g.stack[n-1] = nil
	g.stack = g.stack[:n-1]
	g.pops++
}

// Suspend pushes the inert target so that subsequent reads are not recorded.
func (g *Gate) Suspend() {
	g.Push(nil)
}

// Resume pops exactly one target, undoing the matching Suspend.
func (g *Gate) Resume() {
	g.Pop()
}

// Depth returns the number of targets currently pushed.
func (g *Gate) Depth() int {
	return len(g.stack)
}

// Balance returns the total number of pushes and pops seen by the gate.
// A quiescent gate always has pushes == pops.
func (g *Gate) Balance() (pushes, pops uint64) {
	return g.pushes, g.pops
}

// Track runs fn with l as the current tracking target.
func (g *Gate) Track(l Listener, fn func()) {
	g.Push(l)
	defer g.Pop()
	fn()
}

// Untracked runs fn with tracking suspended.
//
// Example:
//
//	gate.Untracked(func() {
//	    log.Println(count.Get()) // read without subscribing
//	})
func (g *Gate) Untracked(fn func()) {
	g.Suspend()
	defer g.Resume()
	fn()
}
