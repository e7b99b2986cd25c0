package component

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownInstance is returned when a handle does not name a live instance.
var ErrUnknownInstance = errors.New("component: unknown instance")

// Handle identifies an instance in a Tree. The low 32 bits are the arena
// slot and the high 32 bits its generation, so a handle to an unmounted
// instance never aliases whatever later reuses the slot.
type Handle uint64

// None is the null handle. It is the parent of every root instance.
const None Handle = 0

func makeHandle(index, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index))
}

func (h Handle) index() uint32 { return uint32(h) }
func (h Handle) gen() uint32   { return uint32(h >> 32) }

// String renders the handle as slot#generation.
func (h Handle) String() string {
	if h == None {
		return "none"
	}
	return fmt.Sprintf("%d#%d", h.index(), h.gen())
}

// Options is the configuration an instance is created from.
type Options struct {
	// Name is the display name used in component traces.
	Name string

	// ErrorCaptured are the capture hooks, run in slice order.
	ErrorCaptured []CaptureHook

	// Lifecycle maps a stage name to the hooks registered for it.
	Lifecycle map[string][]LifecycleHook

	// Listeners maps an event name to its handlers.
	Listeners map[string][]EventHandler
}

type node struct {
	gen      uint32
	live     bool
	parent   Handle
	children []Handle
	opts     Options
}

// Tree is an arena of component instances.
type Tree struct {
	mu    sync.RWMutex
	nodes []node // slot 0 is reserved so that None never resolves
	free  []uint32
	live  int
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make([]node, 1)}
}

// Mount creates an instance under parent. Pass None to create a root.
func (t *Tree) Mount(parent Handle, opts Options) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if parent != None && t.lookup(parent) == nil {
		return None, fmt.Errorf("mount %q under %s: %w", opts.Name, parent, ErrUnknownInstance)
	}

	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.nodes = append(t.nodes, node{})
		idx = uint32(len(t.nodes) - 1)
	}

	n := &t.nodes[idx]
	n.gen++
	n.live = true
	n.parent = parent
	n.children = nil
	n.opts = opts

	h := makeHandle(idx, n.gen)
	if parent != None {
		p := t.lookup(parent)
		p.children = append(p.children, h)
	}
	t.live++
	return h, nil
}

// Unmount removes h and all of its descendants, children first.
func (t *Tree) Unmount(h Handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.lookup(h)
	if n == nil {
		return fmt.Errorf("unmount %s: %w", h, ErrUnknownInstance)
	}
	if p := t.lookup(n.parent); p != nil {
		for i, c := range p.children {
			if c == h {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	t.release(h)
	return nil
}

func (t *Tree) release(h Handle) {
	n := t.lookup(h)
	if n == nil {
		return
	}
	children := n.children
	for _, c := range children {
		t.release(c)
	}
	n = t.lookup(h)
	n.live = false
	n.parent = None
	n.children = nil
	n.opts = Options{}
	t.free = append(t.free, h.index())
	t.live--
}

// lookup returns the node for h, or nil if h is not live. Caller holds mu.
func (t *Tree) lookup(h Handle) *node {
	if h == None {
		return nil
	}
	idx := h.index()
	if int(idx) >= len(t.nodes) {
		return nil
	}
	n := &t.nodes[idx]
	if !n.live || n.gen != h.gen() {
		return nil
	}
	return n
}

// Contains reports whether h names a live instance.
func (t *Tree) Contains(h Handle) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lookup(h) != nil
}

// Len returns the number of live instances.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}

// Parent returns the parent of h, or None for roots and unknown handles.
func (t *Tree) Parent(h Handle) Handle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n := t.lookup(h); n != nil {
		return n.parent
	}
	return None
}

// Children returns a copy of h's child handles in mount order.
func (t *Tree) Children(h Handle) []Handle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := t.lookup(h)
	if n == nil {
		return nil
	}
	return append([]Handle(nil), n.children...)
}

// Name returns the display name of h.
func (t *Tree) Name(h Handle) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n := t.lookup(h); n != nil {
		return n.opts.Name
	}
	return ""
}

// CaptureHooks returns h's capture hooks in registration order.
// The returned slice is a copy; hooks may be invoked without holding the tree lock.
func (t *Tree) CaptureHooks(h Handle) []CaptureHook {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := t.lookup(h)
	if n == nil || len(n.opts.ErrorCaptured) == 0 {
		return nil
	}
	return append([]CaptureHook(nil), n.opts.ErrorCaptured...)
}

// AddCaptureHook appends a capture hook to h, after those from its Options.
func (t *Tree) AddCaptureHook(h Handle, hook CaptureHook) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.lookup(h)
	if n == nil {
		return fmt.Errorf("add capture hook to %s: %w", h, ErrUnknownInstance)
	}
	n.opts.ErrorCaptured = append(n.opts.ErrorCaptured, hook)
	return nil
}

// LifecycleHooks returns the hooks registered on h for stage.
func (t *Tree) LifecycleHooks(h Handle, stage string) []LifecycleHook {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := t.lookup(h)
	if n == nil {
		return nil
	}
	return append([]LifecycleHook(nil), n.opts.Lifecycle[stage]...)
}

// Listeners returns the handlers registered on h for event.
func (t *Tree) Listeners(h Handle, event string) []EventHandler {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := t.lookup(h)
	if n == nil {
		return nil
	}
	return append([]EventHandler(nil), n.opts.Listeners[event]...)
}

// Trace formats the ancestry of h, nearest first, for diagnostics:
//
//	found in
//
//	---> <Counter>
//	       <Panel>
//	         <App> (root)
func (t *Tree) Trace(h Handle) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.lookup(h) == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("found in\n\n")
	depth := 0
	for cur := h; cur != None; {
		n := t.lookup(cur)
		if n == nil {
			break
		}
		if depth == 0 {
			b.WriteString("---> ")
		} else {
			b.WriteString(strings.Repeat(" ", 5+depth*2))
		}
		b.WriteString(formatName(n.opts.Name))
		if n.parent == None {
			b.WriteString(" (root)")
		}
		b.WriteString("\n")
		cur = n.parent
		depth++
	}
	return b.String()
}

func formatName(name string) string {
	if name == "" {
		return "<Anonymous>"
	}
	return "<" + name + ">"
}
