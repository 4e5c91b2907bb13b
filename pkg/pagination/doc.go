// Package pagination accumulates cursor-paginated product pages into one
// ordered list.
//
// The catalog API returns pages of products, each carrying a hasNextPage flag
// and a nextPage cursor. An Accumulator folds those pages into a Result and
// exposes the concatenated product list plus a "load more" affordance.
//
// Example usage:
//
//	runner := operation.NewLoadProductsRunner(catalogClient)
//	acc := pagination.NewAccumulator(runner, pagination.DefaultConfig())
//	if _, err := acc.LoadInitial(ctx, catalog.Filter{CategoryID: "1"}, 20); err != nil {
//		return err
//	}
//	for acc.HasMore() {
//		if _, err := acc.LoadNext(ctx); err != nil {
//			return err
//		}
//	}
//
// The accumulator:
//   - Replaces the whole result on LoadInitial (filter change)
//   - Appends pages on LoadNext using the last page's nextPage cursor
//   - Runs at most one LoadNext at a time; extra calls return ErrFetchInProgress
//   - Leaves state untouched when a fetch fails
package pagination
