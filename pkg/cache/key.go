package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Sternrassler/storefront/pkg/catalog"
)

// KeyPrefix prefixes every page cache key.
const KeyPrefix = "storefront:products"

// PageKey identifies one cached page.
type PageKey struct {
	Filter catalog.Filter
	Cursor catalog.Cursor
	Limit  int
}

// String generates a deterministic cache key string.
// Format: storefront:products:filter1=val1:filter2=val2:page=N:limit=M
//
// Example:
//
//	storefront:products:categoryId=1:page=2:limit=20
func (k PageKey) String() string {
	parts := []string{KeyPrefix}

	// Filter params, sorted for determinism
	values := k.Filter.Values()
	if len(values) > 0 {
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, values.Get(key)))
		}
	}

	parts = append(parts,
		fmt.Sprintf("page=%d", k.Cursor),
		fmt.Sprintf("limit=%d", k.Limit),
	)

	return strings.Join(parts, ":")
}
