// Package gate decides whether a cart or purchase action may run for the
// current authentication state.
package gate

// AuthState is the visitor's authentication state. It is owned outside the
// storefront core and only read here.
type AuthState struct {
	IsLoggedIn bool `json:"isLoggedIn"`
}

// ActionKind names a gated user action.
type ActionKind string

const (
	// ActionCartAdd adds a product to the cart and confirms with a notification.
	ActionCartAdd ActionKind = "cart"

	// ActionPurchase adds a product to the cart and navigates to the cart.
	ActionPurchase ActionKind = "purchase"
)

// Destination is a navigation target.
type Destination string

const (
	// DestinationNone means no navigation.
	DestinationNone  Destination = ""
	DestinationLogin Destination = "/login"
	DestinationCart  Destination = "/cart"
	DestinationHome  Destination = "/"
)

// DecisionKind is the outcome category of Decide.
type DecisionKind string

const (
	Perform  DecisionKind = "perform"
	Redirect DecisionKind = "redirect"
)

// Decision tells the caller which side effects to apply.
type Decision struct {
	Kind        DecisionKind `json:"kind"`
	Destination Destination  `json:"destination,omitempty"`
}

// Decide is pure and synchronous.
//
// A logged-out visitor is always redirected to login, whatever the action.
// A logged-in purchase performs and navigates to the cart; a logged-in
// cart-add performs without navigation.
func Decide(auth AuthState, kind ActionKind) Decision {
	if !auth.IsLoggedIn {
		return Decision{Kind: Redirect, Destination: DestinationLogin}
	}

	switch kind {
	case ActionPurchase:
		return Decision{Kind: Perform, Destination: DestinationCart}
	default:
		return Decision{Kind: Perform, Destination: DestinationNone}
	}
}

// ParseActionKind maps a request token to an ActionKind.
func ParseActionKind(s string) (ActionKind, bool) {
	switch ActionKind(s) {
	case ActionCartAdd, ActionPurchase:
		return ActionKind(s), true
	default:
		return "", false
	}
}
