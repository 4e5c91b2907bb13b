// Package toast holds the queue of short notifications shown to the visitor.
package toast

import (
	"sync/atomic"
	"time"

	"github.com/Sternrassler/storefront/pkg/store"
)

// Toast is one notification.
type Toast struct {
	ID      int64     `json:"id"`
	Message string    `json:"message"`
	ShownAt time.Time `json:"shownAt"`
}

// State is the list of visible toasts, oldest first.
type State struct {
	Toasts []Toast `json:"toasts"`
}

// Queue is the toast store.
type Queue struct {
	state  *store.Store[State]
	nextID atomic.Int64
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{state: store.New(State{})}
}

// Show appends a toast with message.
func (q *Queue) Show(message string) {
	t := Toast{
		ID:      q.nextID.Add(1),
		Message: message,
		ShownAt: time.Now(),
	}
	q.state.Update(func(s State) State {
		toasts := make([]Toast, len(s.Toasts), len(s.Toasts)+1)
		copy(toasts, s.Toasts)
		return State{Toasts: append(toasts, t)}
	})
}

// Dismiss removes the toast with id, if present.
func (q *Queue) Dismiss(id int64) {
	q.state.Update(func(s State) State {
		toasts := make([]Toast, 0, len(s.Toasts))
		for _, t := range s.Toasts {
			if t.ID != id {
				toasts = append(toasts, t)
			}
		}
		return State{Toasts: toasts}
	})
}

// Toasts returns the visible toasts.
func (q *Queue) Toasts() []Toast {
	return q.state.Get().Toasts
}

// Subscribe registers fn for every change.
func (q *Queue) Subscribe(fn store.Observer[State]) (unsubscribe func()) {
	return q.state.Subscribe(fn)
}
