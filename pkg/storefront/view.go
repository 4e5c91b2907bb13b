package storefront

import "github.com/Sternrassler/storefront/pkg/catalog"

// ProductCard is the display form of a listed product.
type ProductCard struct {
	catalog.Product
	PriceLabel string `json:"priceLabel"`
	ImageAlt   string `json:"imageAlt"`
}

// ListView is everything a product list renders.
type ListView struct {
	Cards          []ProductCard `json:"cards"`
	TotalCount     int           `json:"totalCount"`
	HasMore        bool          `json:"hasMore"`
	ShowLoadMore   bool          `json:"showLoadMore"`
	IsFetchingNext bool          `json:"isFetchingNext"`
}

// NewProductCard builds the display form of p.
func NewProductCard(p catalog.Product) ProductCard {
	return ProductCard{
		Product:    p,
		PriceLabel: catalog.FormatPrice(p.Price),
		ImageAlt:   p.Title + " product image",
	}
}

// View returns the product list view.
func (s *Storefront) View() ListView {
	result := s.products.Result()
	products := result.Products()

	cards := make([]ProductCard, len(products))
	for i, p := range products {
		cards[i] = NewProductCard(p)
	}

	return ListView{
		Cards:          cards,
		TotalCount:     result.TotalCount(),
		HasMore:        result.HasMore(),
		ShowLoadMore:   result.HasMore(),
		IsFetchingNext: s.products.IsFetchingNext(),
	}
}
