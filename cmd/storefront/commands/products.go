package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/storefront/pkg/catalog"
)

func productsCmd() *cobra.Command {
	var (
		filter catalog.Filter
		limit  int
		pages  int
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Print the product list, loading up to --pages pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg, "guest")
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.storefront.FetchInitial(cmd.Context(), filter, limit); err != nil {
				return err
			}
			for loaded := 1; loaded < pages && a.storefront.HasMore(); loaded++ {
				if err := a.storefront.FetchNext(cmd.Context()); err != nil {
					return err
				}
			}

			view := a.storefront.View()
			out := cmd.OutOrStdout()
			for _, card := range view.Cards {
				fmt.Fprintf(out, "%-6s %-40s %12s\n", card.ID, card.Title, card.PriceLabel)
			}
			fmt.Fprintf(out, "%d of %d products", len(view.Cards), view.TotalCount)
			if view.ShowLoadMore {
				fmt.Fprint(out, " (more available)")
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.CategoryID, "category", "", "category ID")
	cmd.Flags().StringVar(&filter.Title, "title", "", "title search")
	cmd.Flags().IntVar(&filter.MinPrice, "min-price", 0, "minimum price")
	cmd.Flags().IntVar(&filter.MaxPrice, "max-price", 0, "maximum price")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default from config)")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	return cmd
}
