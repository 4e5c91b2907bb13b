package storefront

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/storefront/pkg/catalog"
	"github.com/Sternrassler/storefront/pkg/gate"
)

// CartAddedMessage is the notification shown after a cart-add.
const CartAddedMessage = "Added to cart!"

var gatedActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storefront_gated_actions_total",
	Help: "Gated actions by kind and outcome",
}, []string{"action", "outcome"})

// Navigator moves the visitor to a destination.
type Navigator interface {
	Navigate(dest gate.Destination)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(dest gate.Destination)

// Navigate calls f.
func (f NavigatorFunc) Navigate(dest gate.Destination) { f(dest) }

// Notifier shows a short notification.
type Notifier interface {
	Show(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Show calls f.
func (f NotifierFunc) Show(message string) { f(message) }

// CartMutator appends products to the cart.
type CartMutator interface {
	AddItem(product catalog.Product)
}

// ActionState is the lifecycle of one gated action.
type ActionState string

const (
	ActionIdle              ActionState = "idle"
	ActionDeciding          ActionState = "deciding"
	ActionPerformed         ActionState = "performed"
	ActionRedirectedToLogin ActionState = "redirected_to_login"
)

// Outcome reports what a gated action did.
type Outcome struct {
	Action   gate.ActionKind `json:"action"`
	Decision gate.Decision   `json:"decision"`
	State    ActionState     `json:"state"`

	// NavigatedTo is the destination navigated to, if any.
	NavigatedTo gate.Destination `json:"navigatedTo,omitempty"`

	// Notified is the notification shown, if any.
	Notified string `json:"notified,omitempty"`

	// CartMutated reports whether the product was added to the cart.
	CartMutated bool `json:"cartMutated"`
}

// ActionDispatcher applies the side effects of gate decisions.
type ActionDispatcher struct {
	cart      CartMutator
	navigator Navigator
	notifier  Notifier
	logger    zerolog.Logger
}

// NewActionDispatcher wires the side-effect collaborators.
func NewActionDispatcher(cart CartMutator, navigator Navigator, notifier Notifier, logger zerolog.Logger) *ActionDispatcher {
	return &ActionDispatcher{
		cart:      cart,
		navigator: navigator,
		notifier:  notifier,
		logger:    logger,
	}
}

// DecideAndAct runs one gated action to completion.
//
// When logged out it only navigates to login; the cart is never touched.
// When logged in a purchase adds the product and navigates to the cart,
// and a cart-add adds the product and shows CartAddedMessage.
func (d *ActionDispatcher) DecideAndAct(auth gate.AuthState, kind gate.ActionKind, product catalog.Product) Outcome {
	outcome := Outcome{Action: kind, State: ActionDeciding}

	decision := gate.Decide(auth, kind)
	outcome.Decision = decision

	if decision.Kind == gate.Redirect {
		d.navigator.Navigate(decision.Destination)
		outcome.NavigatedTo = decision.Destination
		outcome.State = ActionRedirectedToLogin

		gatedActionsTotal.WithLabelValues(string(kind), string(outcome.State)).Inc()
		d.logger.Debug().
			Str("action", string(kind)).
			Str("product_id", product.ID).
			Msg("Gated action redirected to login")
		return outcome
	}

	d.cart.AddItem(product)
	outcome.CartMutated = true

	switch kind {
	case gate.ActionCartAdd:
		d.notifier.Show(CartAddedMessage)
		outcome.Notified = CartAddedMessage
	default:
		if decision.Destination != gate.DestinationNone {
			d.navigator.Navigate(decision.Destination)
			outcome.NavigatedTo = decision.Destination
		}
	}
	outcome.State = ActionPerformed

	gatedActionsTotal.WithLabelValues(string(kind), string(outcome.State)).Inc()
	d.logger.Debug().
		Str("action", string(kind)).
		Str("product_id", product.ID).
		Str("destination", string(outcome.NavigatedTo)).
		Msg("Gated action performed")
	return outcome
}
