// Package storefront is the product-list surface of the shop: the paginated
// product listing with its "load more" control, product creation, and the
// auth-gated cart and purchase actions.
package storefront

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/storefront/pkg/catalog"
	"github.com/Sternrassler/storefront/pkg/logging"
	"github.com/Sternrassler/storefront/pkg/operation"
	"github.com/Sternrassler/storefront/pkg/pagination"
)

// Deps are the collaborators of a Storefront.
type Deps struct {
	Source     catalog.PageSource
	Creator    catalog.ProductCreator
	Cart       CartMutator
	Navigator  Navigator
	Notifier   Notifier
	Pagination pagination.Config
}

// Storefront exposes the product list queries and commands.
type Storefront struct {
	*ActionDispatcher

	products *pagination.Accumulator
	load     *operation.LoadProductsRunner
	create   *operation.AddProductRunner
	logger   zerolog.Logger
}

// New wires a Storefront. Creator may be nil, in which case CreateProduct
// is rejected.
func New(deps Deps) (*Storefront, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("page source is required")
	}
	if deps.Cart == nil {
		return nil, fmt.Errorf("cart is required")
	}
	if deps.Navigator == nil {
		return nil, fmt.Errorf("navigator is required")
	}
	if deps.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}

	creator := deps.Creator
	if creator == nil {
		creator = catalog.ProductCreatorFunc(func(context.Context, catalog.ProductInput) (*catalog.Product, error) {
			return nil, errors.New("product creation is not available")
		})
	}

	logger := logging.NewLogger(logging.ComponentStorefront)
	load := operation.NewLoadProductsRunner(deps.Source)

	return &Storefront{
		ActionDispatcher: NewActionDispatcher(deps.Cart, deps.Navigator, deps.Notifier, logger),
		products:         pagination.NewAccumulator(load, deps.Pagination),
		load:             load,
		create:           operation.NewAddProductRunner(creator),
		logger:           logger,
	}, nil
}

// FetchInitial loads the first page for filter, replacing the listing.
func (s *Storefront) FetchInitial(ctx context.Context, filter catalog.Filter, limit int) error {
	_, err := s.products.LoadInitial(ctx, filter, limit)
	if errors.Is(err, pagination.ErrSuperseded) {
		return nil
	}
	return err
}

// FetchNext loads the next page. It is a no-op when nothing more is
// available or a next-page load is already running.
func (s *Storefront) FetchNext(ctx context.Context) error {
	_, err := s.products.LoadNext(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pagination.ErrFetchInProgress),
		errors.Is(err, pagination.ErrNoMorePages),
		errors.Is(err, pagination.ErrSuperseded):
		s.logger.Debug().Err(err).Msg("FetchNext skipped")
		return nil
	default:
		return err
	}
}

// ProductList returns the accumulated products in fetch order.
func (s *Storefront) ProductList() []catalog.Product {
	return s.products.Products()
}

// HasMore reports whether another page is available.
func (s *Storefront) HasMore() bool {
	return s.products.HasMore()
}

// ShowLoadMore reports whether the "load more" control is rendered.
func (s *Storefront) ShowLoadMore() bool {
	return s.products.ShowLoadMore()
}

// IsFetchingNext reports whether a next-page load is running.
func (s *Storefront) IsFetchingNext() bool {
	return s.products.IsFetchingNext()
}

// Result returns the accumulated pages and their cursors.
func (s *Storefront) Result() pagination.Result {
	return s.products.Result()
}

// CreateProduct creates a product through the add-product operation.
func (s *Storefront) CreateProduct(ctx context.Context, input catalog.ProductInput) (catalog.Product, error) {
	state := s.create.Run(ctx, input)
	if err := state.Err(); err != nil {
		return catalog.Product{}, err
	}
	return state.Payload, nil
}

// LoadState returns the latest load-products signal.
func (s *Storefront) LoadState() operation.State[operation.LoadProductsResult] {
	return s.load.State()
}

// CreateState returns the latest add-product signal.
func (s *Storefront) CreateState() operation.State[catalog.Product] {
	return s.create.State()
}

// OnLoad subscribes fn to load-products signals.
func (s *Storefront) OnLoad(fn func(operation.State[operation.LoadProductsResult])) (unsubscribe func()) {
	return s.load.Subscribe(fn)
}

// OnCreate subscribes fn to add-product signals.
func (s *Storefront) OnCreate(fn func(operation.State[catalog.Product])) (unsubscribe func()) {
	return s.create.Subscribe(fn)
}
