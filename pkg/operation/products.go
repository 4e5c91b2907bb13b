package operation

import (
	"context"
	"fmt"

	"github.com/Sternrassler/storefront/pkg/catalog"
)

// Operation names.
const (
	LoadProductsName = "products/loadProducts"
	AddProductName   = "products/addProduct"
)

// LoadProductsInput requests one page of products.
type LoadProductsInput struct {
	Filter catalog.Filter
	Limit  int

	// LastVisible is the cursor to resume from. Ignored when IsInitial.
	LastVisible catalog.Cursor

	// IsInitial requests the first page of a new listing.
	IsInitial bool
}

// LoadProductsResult is the fetched page with IsInitial echoed back, so a
// consumer can tell "replace list" from "append page".
type LoadProductsResult struct {
	catalog.Page
	IsInitial bool `json:"isInitial"`
}

// LoadProductsRunner runs LoadProducts.
type LoadProductsRunner = Runner[LoadProductsInput, LoadProductsResult]

// AddProductRunner runs AddProduct.
type AddProductRunner = Runner[catalog.ProductInput, catalog.Product]

// LoadProducts returns the page-loading operation over source.
func LoadProducts(source catalog.PageSource) Func[LoadProductsInput, LoadProductsResult] {
	return func(ctx context.Context, in LoadProductsInput) (LoadProductsResult, error) {
		cursor := in.LastVisible
		if in.IsInitial {
			cursor = catalog.InitialCursor
		}

		page, err := source.FetchProducts(ctx, in.Filter, cursor, in.Limit)
		if err != nil {
			return LoadProductsResult{}, err
		}
		if page == nil {
			return LoadProductsResult{}, fmt.Errorf("page source returned no page")
		}
		return LoadProductsResult{Page: *page, IsInitial: in.IsInitial}, nil
	}
}

// AddProduct returns the create-product operation over creator. Inputs
// that fail validation are rejected without calling creator.
func AddProduct(creator catalog.ProductCreator) Func[catalog.ProductInput, catalog.Product] {
	return func(ctx context.Context, in catalog.ProductInput) (catalog.Product, error) {
		if err := in.Validate(); err != nil {
			return catalog.Product{}, err
		}

		product, err := creator.AddProduct(ctx, in)
		if err != nil {
			return catalog.Product{}, err
		}
		if product == nil {
			return catalog.Product{}, fmt.Errorf("product creator returned no product")
		}
		return *product, nil
	}
}

// NewLoadProductsRunner creates the runner for LoadProducts.
func NewLoadProductsRunner(source catalog.PageSource) *LoadProductsRunner {
	return NewRunner(LoadProductsName, LoadProducts(source))
}

// NewAddProductRunner creates the runner for AddProduct.
func NewAddProductRunner(creator catalog.ProductCreator) *AddProductRunner {
	return NewRunner(AddProductName, AddProduct(creator))
}
