package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Kohei075/local-photo-browser/internal/startup"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := &cobra.Command{
		Use:     "photo-indexer",
		Short:   "Index a photo library into a queryable store",
		Version: startup.Version + " (" + startup.Commit + ")",
	}

	root.AddCommand(newScanCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newThumbsCmd())
	root.AddCommand(newVacuumCmd())

	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
