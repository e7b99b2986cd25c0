package reactive

import (
	"reflect"
	"sync"
)

// Signal is a reactive value container.
// Reading a Signal while the gate has a tracking target subscribes that
// target; Set notifies every subscriber when the value changes.
type Signal[T any] struct {
	id   uint64
	gate *Gate

	mu    sync.RWMutex
	value T

	subMu sync.RWMutex
	subs  []Listener

	// equal decides whether a Set is a change. nil uses reflect.DeepEqual.
	equal func(T, T) bool
}

// NewSignal creates a signal whose reads are tracked through gate.
func NewSignal[T any](gate *Gate, initial T) *Signal[T] {
	return &Signal[T]{
		id:    NextID(),
		gate:  gate,
		value: initial,
	}
}

// WithEquals sets a custom equality function and returns the signal.
func (s *Signal[T]) WithEquals(eq func(T, T) bool) *Signal[T] {
	s.equal = eq
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.id
}

// Get returns the current value and subscribes the current tracking target.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	if s.gate != nil {
		if l := s.gate.Current(); l != nil {
			s.subscribe(l)
		}
	}
	return value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the value and notifies subscribers if it changed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	if s.isEqual(s.value, value) {
		s.mu.Unlock()
		return
	}
	s.value = value
	s.mu.Unlock()

	s.notify()
}

// Update applies fn to the current value and stores the result.
func (s *Signal[T]) Update(fn func(T) T) {
	s.Set(fn(s.Peek()))
}

// Subscribers returns the number of listeners subscribed to this signal.
func (s *Signal[T]) Subscribers() int {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	return len(s.subs)
}

// Unsubscribe removes l from the subscriber list.
func (s *Signal[T]) Unsubscribe(l Listener) {
	if l == nil {
		return
	}
	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for i, existing := range s.subs {
		if existing.ID() == lid {
			s.subs[i] = s.subs[len(s.subs)-1]
			s.subs = s.subs[:len(s.subs)-1]
			return
		}
	}
}

func (s *Signal[T]) subscribe(l Listener) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for _, existing := range s.subs {
		if existing.ID() == lid {
			return
		}
	}
	s.subs = append(s.subs, l)
}

// notify uses copy-before-notify so listeners may resubscribe or unsubscribe.
func (s *Signal[T]) notify() {
	s.subMu.RLock()
	subs := make([]Listener, len(s.subs))
	copy(subs, s.subs)
	s.subMu.RUnlock()

	for _, sub := range subs {
		sub.MarkDirty()
	}
}

func (s *Signal[T]) isEqual(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return reflect.DeepEqual(a, b)
}
