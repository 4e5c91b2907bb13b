// Package operation wraps asynchronous data operations in an explicit
// lifecycle: Idle, then Pending, then Fulfilled with a payload or Rejected
// with a message.
//
// Failures are values, not control flow. A Rejected state carries only the
// failure's message so that states stay serializable; callers that need an
// error use State.Err, which also unwraps to the original failure.
package operation

import "fmt"

// Status is the lifecycle position of one operation invocation.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusRejected  Status = "rejected"
)

// State is the signal emitted for an operation invocation.
type State[T any] struct {
	// Operation is the runner name, e.g. "products/loadProducts".
	Operation string `json:"operation"`

	// RequestID identifies the invocation that produced this state.
	RequestID string `json:"requestId,omitempty"`

	Status Status `json:"status"`

	// Payload is set when Status is StatusFulfilled.
	Payload T `json:"payload,omitempty"`

	// Message is set when Status is StatusRejected.
	Message string `json:"message,omitempty"`

	cause error
}

// IsSettled reports whether the invocation has finished.
func (s State[T]) IsSettled() bool {
	return s.Status == StatusFulfilled || s.Status == StatusRejected
}

// Err returns a *Rejection for rejected states and nil otherwise.
func (s State[T]) Err() error {
	if s.Status != StatusRejected {
		return nil
	}
	return &Rejection{Operation: s.Operation, Message: s.Message, cause: s.cause}
}

// Rejection is the error form of a Rejected state.
type Rejection struct {
	Operation string
	Message   string

	cause error
}

// Error returns the rejection message unchanged.
func (r *Rejection) Error() string {
	return r.Message
}

// Unwrap returns the failure the operation returned, so errors.Is can
// match sentinels such as catalog.ErrInvalidProduct. It is nil for
// rejections built from a bare State.
func (r *Rejection) Unwrap() error {
	return r.cause
}

// String includes the operation name, for logs.
func (r *Rejection) String() string {
	return fmt.Sprintf("%s rejected: %s", r.Operation, r.Message)
}
