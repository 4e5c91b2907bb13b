// Package catalog defines the storefront data model: products, pages of
// products, pagination cursors, and the collaborator contracts that fetch
// and create them.
package catalog

// Category groups products.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product is a catalog item. Products are immutable once fetched.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Price       int      `json:"price"`
	Category    Category `json:"category"`
	Image       string   `json:"image"`
	Description string   `json:"description,omitempty"`
}

// ProductInput is the payload for creating a product.
type ProductInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Price       int    `json:"price" validate:"min=0"`
	CategoryID  string `json:"categoryId" validate:"required"`
	Image       string `json:"image" validate:"omitempty,http_url"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}
