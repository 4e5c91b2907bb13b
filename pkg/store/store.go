// Package store provides a small observable state container: an explicit
// value, an update function, and an ordered observer list.
//
// The auth, cart, and toast state of the storefront are each held in one
// Store. Observers run synchronously after the state changes, in
// subscription order. Notifications of concurrent updates never interleave:
// observers see states in commit order.
package store

import "sync"

// Observer receives the state after every change.
type Observer[T any] func(state T)

// Store holds a value of type T and notifies observers when it changes.
type Store[T any] struct {
	// notify is held from commit through fan-out.
	notify sync.Mutex

	mu        sync.RWMutex
	state     T
	observers []subscription[T]
	nextID    int
}

type subscription[T any] struct {
	id int
	fn Observer[T]
}

// New creates a store holding initial.
func New[T any](initial T) *Store[T] {
	return &Store[T]{state: initial}
}

// Get returns the current state.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Set replaces the state and notifies observers.
func (s *Store[T]) Set(state T) {
	s.Update(func(T) T { return state })
}

// Update applies fn to the current state, stores the result, and notifies
// observers. fn runs under the write lock and must not call back into s;
// observers may call Get but not Set or Update.
func (s *Store[T]) Update(fn func(T) T) T {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	s.state = fn(s.state)
	next := s.state
	observers := make([]subscription[T], len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, sub := range observers {
		sub.fn(next)
	}
	return next
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store[T]) Subscribe(fn Observer[T]) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, subscription[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.observers {
				if sub.id == id {
					s.observers = append(s.observers[:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}
