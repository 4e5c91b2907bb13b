// Package commands implements the storefront command line.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sternrassler/storefront/internal/config"
	"github.com/Sternrassler/storefront/pkg/logging"
)

var (
	configPath string
	cfg        *config.Config
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Product listing with paginated loading, cart and purchase actions",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			logging.Setup(cfg.Log.Logging())
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (STOREFRONT_* env vars override it)")

	root.AddCommand(serveCmd(), productsCmd())
	return root
}
