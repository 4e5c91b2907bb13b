package catalog

import (
	"net/url"
	"strconv"
)

// Cursor identifies where the next page resumes. It is page-number-like;
// the zero value is the initial (undefined) cursor.
type Cursor int

// InitialCursor is the cursor of the first page request.
const InitialCursor Cursor = 0

// IsZero reports whether c is the initial cursor.
func (c Cursor) IsZero() bool {
	return c == InitialCursor
}

// Page is one slice of a paginated product listing.
type Page struct {
	Products    []Product `json:"products"`
	HasNextPage bool      `json:"hasNextPage"`
	TotalCount  int       `json:"totalCount"`
	NextPage    Cursor    `json:"nextPage,omitempty"`
}

// Filter narrows a product listing. The zero Filter lists everything.
type Filter struct {
	CategoryID string `json:"categoryId,omitempty" yaml:"category_id"`
	Title      string `json:"title,omitempty" yaml:"title"`
	MinPrice   int    `json:"minPrice,omitempty" yaml:"min_price"`
	MaxPrice   int    `json:"maxPrice,omitempty" yaml:"max_price"`
}

// Values encodes the filter as query parameters. Unset fields are omitted.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.CategoryID != "" {
		v.Set("categoryId", f.CategoryID)
	}
	if f.Title != "" {
		v.Set("title", f.Title)
	}
	if f.MinPrice > 0 {
		v.Set("minPrice", strconv.Itoa(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		v.Set("maxPrice", strconv.Itoa(f.MaxPrice))
	}
	return v
}
