// Package cart holds the visitor's cart.
//
// The cart is append-only: AddItem never merges or deduplicates, so adding
// the same product twice yields two entries.
package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Sternrassler/storefront/pkg/catalog"
	"github.com/Sternrassler/storefront/pkg/store"
)

var cartItemsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "storefront_cart_items_added_total",
	Help: "Total products appended to carts",
})

// State is the cart contents in insertion order.
type State struct {
	Items []catalog.Product `json:"items"`
}

// Total returns the sum of item prices.
func (s State) Total() int {
	total := 0
	for _, item := range s.Items {
		total += item.Price
	}
	return total
}

// Cart is the single writer of its State.
type Cart struct {
	state *store.Store[State]
}

// New creates an empty cart.
func New() *Cart {
	return NewWithState(State{})
}

// NewWithState creates a cart holding initial, e.g. a persisted cart.
func NewWithState(initial State) *Cart {
	items := make([]catalog.Product, len(initial.Items))
	copy(items, initial.Items)
	return &Cart{state: store.New(State{Items: items})}
}

// AddItem appends product unconditionally.
func (c *Cart) AddItem(product catalog.Product) {
	c.state.Update(func(s State) State {
		items := make([]catalog.Product, len(s.Items), len(s.Items)+1)
		copy(items, s.Items)
		return State{Items: append(items, product)}
	})
	cartItemsAddedTotal.Inc()
}

// Items returns the cart contents.
func (c *Cart) Items() []catalog.Product {
	return c.state.Get().Items
}

// Len returns the number of items.
func (c *Cart) Len() int {
	return len(c.state.Get().Items)
}

// State returns the current cart state.
func (c *Cart) State() State {
	return c.state.Get()
}

// Subscribe registers fn for every change.
func (c *Cart) Subscribe(fn store.Observer[State]) (unsubscribe func()) {
	return c.state.Subscribe(fn)
}
