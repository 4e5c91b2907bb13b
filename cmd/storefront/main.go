package main

import (
	"os"

	"github.com/Sternrassler/storefront/cmd/storefront/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
