package pagination

import (
	"fmt"

	"github.com/Sternrassler/storefront/pkg/catalog"
)

// Result is the accumulated listing: every fetched page and the cursor that
// was used to request it.
//
// Invariants: len(Pages) == len(PageParams), PageParams[0] is the initial
// cursor, and PageParams[i+1] == Pages[i].NextPage.
type Result struct {
	Pages      []catalog.Page   `json:"pages"`
	PageParams []catalog.Cursor `json:"pageParams"`
}

// Products returns every page's products concatenated in page order.
func (r Result) Products() []catalog.Product {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Products)
	}

	products := make([]catalog.Product, 0, n)
	for _, p := range r.Pages {
		products = append(products, p.Products...)
	}
	return products
}

// HasMore reports the last page's hasNextPage; false when empty.
func (r Result) HasMore() bool {
	last, ok := r.LastPage()
	return ok && last.HasNextPage
}

// LastPage returns the most recently appended page.
func (r Result) LastPage() (catalog.Page, bool) {
	if len(r.Pages) == 0 {
		return catalog.Page{}, false
	}
	return r.Pages[len(r.Pages)-1], true
}

// TotalCount returns the total reported by the most recent page.
func (r Result) TotalCount() int {
	last, ok := r.LastPage()
	if !ok {
		return 0
	}
	return last.TotalCount
}

// Validate checks the Result invariants.
func (r Result) Validate() error {
	if len(r.Pages) != len(r.PageParams) {
		return fmt.Errorf("pages/pageParams length mismatch: %d != %d", len(r.Pages), len(r.PageParams))
	}
	if len(r.PageParams) > 0 && !r.PageParams[0].IsZero() {
		return fmt.Errorf("first page param must be the initial cursor, got %d", r.PageParams[0])
	}
	for i := 0; i+1 < len(r.Pages); i++ {
		if r.PageParams[i+1] != r.Pages[i].NextPage {
			return fmt.Errorf("page param %d is %d, want nextPage %d of page %d",
				i+1, r.PageParams[i+1], r.Pages[i].NextPage, i)
		}
	}
	return nil
}

// clone copies the slices so callers cannot alias accumulator state.
func (r Result) clone() Result {
	out := Result{
		Pages:      make([]catalog.Page, len(r.Pages)),
		PageParams: make([]catalog.Cursor, len(r.PageParams)),
	}
	copy(out.Pages, r.Pages)
	copy(out.PageParams, r.PageParams)
	return out
}

func singlePage(page catalog.Page) Result {
	return Result{
		Pages:      []catalog.Page{page},
		PageParams: []catalog.Cursor{catalog.InitialCursor},
	}
}

func (r Result) appendPage(cursor catalog.Cursor, page catalog.Page) Result {
	next := r.clone()
	next.Pages = append(next.Pages, page)
	next.PageParams = append(next.PageParams, cursor)
	return next
}
