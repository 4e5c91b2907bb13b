package catalog

import "context"

// PageSource fetches one page of products.
//
// A nil error means the page is complete; failures carry a human-readable
// message in Error().
type PageSource interface {
	FetchProducts(ctx context.Context, filter Filter, cursor Cursor, limit int) (*Page, error)
}

// ProductCreator creates a product and returns it as stored.
type ProductCreator interface {
	AddProduct(ctx context.Context, input ProductInput) (*Product, error)
}

// PageSourceFunc adapts a function to PageSource.
type PageSourceFunc func(ctx context.Context, filter Filter, cursor Cursor, limit int) (*Page, error)

// FetchProducts calls f.
func (f PageSourceFunc) FetchProducts(ctx context.Context, filter Filter, cursor Cursor, limit int) (*Page, error) {
	return f(ctx, filter, cursor, limit)
}

// ProductCreatorFunc adapts a function to ProductCreator.
type ProductCreatorFunc func(ctx context.Context, input ProductInput) (*Product, error)

// AddProduct calls f.
func (f ProductCreatorFunc) AddProduct(ctx context.Context, input ProductInput) (*Product, error) {
	return f(ctx, input)
}
