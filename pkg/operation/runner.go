package operation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/storefront/pkg/logging"
	"github.com/Sternrassler/storefront/pkg/store"
)

// Prometheus metrics for operation lifecycles.
var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_operations_total",
		Help: "Total settled operations by operation and status",
	}, []string{"operation", "status"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_operation_duration_seconds",
		Help:    "Operation duration from pending to settled",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"operation"})

	operationsInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "storefront_operations_in_flight",
		Help: "Operations currently pending",
	}, []string{"operation"})
)

// Func is the operation body. It may fail; the error's message becomes the
// Rejected state's message.
type Func[In, Out any] func(ctx context.Context, in In) (Out, error)

// Runner executes a Func and publishes its lifecycle to observers.
type Runner[In, Out any] struct {
	name   string
	fn     Func[In, Out]
	state  *store.Store[State[Out]]
	logger zerolog.Logger
}

// NewRunner creates a runner for fn. name labels states, logs, and metrics.
func NewRunner[In, Out any](name string, fn Func[In, Out]) *Runner[In, Out] {
	return &Runner[In, Out]{
		name:   name,
		fn:     fn,
		state:  store.New(State[Out]{Operation: name, Status: StatusIdle}),
		logger: logging.NewLogger(logging.ComponentOperation).With().Str("operation", name).Logger(),
	}
}

// Name returns the operation name.
func (r *Runner[In, Out]) Name() string {
	return r.name
}

// Run signals Pending, executes the operation, and signals Fulfilled or
// Rejected. The settled state is returned to the caller as well.
//
// When invocations overlap, State reflects the last emitted signal; the
// RequestID tells observers which invocation it belongs to.
func (r *Runner[In, Out]) Run(ctx context.Context, in In) State[Out] {
	requestID := uuid.NewString()

	r.publish(State[Out]{Operation: r.name, RequestID: requestID, Status: StatusPending})
	operationsInFlight.WithLabelValues(r.name).Inc()

	start := time.Now()
	out, err := r.fn(ctx, in)
	operationsInFlight.WithLabelValues(r.name).Dec()
	operationDuration.WithLabelValues(r.name).Observe(time.Since(start).Seconds())

	var settled State[Out]
	if err != nil {
		settled = State[Out]{
			Operation: r.name,
			RequestID: requestID,
			Status:    StatusRejected,
			Message:   err.Error(),
			cause:     err,
		}
		r.logger.Warn().
			Err(err).
			Str("request_id", requestID).
			Dur("duration", time.Since(start)).
			Msg("Operation rejected")
	} else {
		settled = State[Out]{
			Operation: r.name,
			RequestID: requestID,
			Status:    StatusFulfilled,
			Payload:   out,
		}
		r.logger.Debug().
			Str("request_id", requestID).
			Dur("duration", time.Since(start)).
			Msg("Operation fulfilled")
	}
	operationsTotal.WithLabelValues(r.name, string(settled.Status)).Inc()

	r.publish(settled)
	return settled
}

// State returns the last emitted state, or Idle before the first Run.
func (r *Runner[In, Out]) State() State[Out] {
	return r.state.Get()
}

// Subscribe registers an observer for every signal this runner emits.
func (r *Runner[In, Out]) Subscribe(fn store.Observer[State[Out]]) (unsubscribe func()) {
	return r.state.Subscribe(fn)
}

func (r *Runner[In, Out]) publish(s State[Out]) {
	r.state.Set(s)
}
