// Package observable provides a single-value holder that notifies observers on change.
package observable

import (
	"sync"
	"sync/atomic"
)

// Slot holds the latest value of type T. Every Set overwrites the value and
// notifies the observers registered at that moment.
type Slot[T any] struct {
	value atomic.Pointer[T]

	// notifyMu serialises Set so observers see writes in the order they landed.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	nextID    uint64
	observers map[uint64]func(T)
	order     []uint64
}

// NewSlot returns an empty slot.
func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{observers: make(map[uint64]func(T))}
}

// Get returns the current value and whether one has been set.
func (s *Slot[T]) Get() (T, bool) {
	if p := s.value.Load(); p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}

// Set replaces the current value and notifies observers synchronously.
// Observers must not call Set on the same slot.
func (s *Slot[T]) Set(v T) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.value.Store(&v)
	for _, fn := range s.snapshot() {
		fn(v)
	}
}

// Observe registers fn and returns a function that removes it.
func (s *Slot[T]) Observe(fn func(T)) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	if s.observers == nil {
		s.observers = make(map[uint64]func(T))
	}
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

// Observers returns the number of registered observers.
func (s *Slot[T]) Observers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

func (s *Slot[T]) snapshot() []func(T) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]func(T), 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.observers[id])
	}
	return out
}

func (s *Slot[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.observers, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
