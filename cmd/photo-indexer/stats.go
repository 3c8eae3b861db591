package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Kohei075/local-photo-browser/internal/database"
	"github.com/Kohei075/local-photo-browser/internal/startup"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print index statistics",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStats()
		},
	}
}

func runStats() error {
	cfg, err := startup.LoadConfig()
	if err != nil {
		return err
	}

	db, err := database.New(context.Background(), cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.CalculateStats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Photos:      %d\n", stats.TotalPhotos)
	fmt.Printf("Total size:  %s\n", humanize.Bytes(uint64(stats.TotalBytes)))
	fmt.Printf("Favorites:   %d\n", stats.TotalFavorites)
	fmt.Printf("Thumbnailed: %d\n", stats.Thumbnailed)

	if len(stats.ByExtension) > 0 {
		exts := make([]string, 0, len(stats.ByExtension))
		for ext := range stats.ByExtension {
			exts = append(exts, ext)
		}
		sort.Strings(exts)

		fmt.Println("By extension:")
		for _, ext := range exts {
			fmt.Printf("  %-6s %d\n", ext, stats.ByExtension[ext])
		}
	}

	return nil
}
