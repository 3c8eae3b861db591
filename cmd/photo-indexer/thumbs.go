package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kohei075/local-photo-browser/internal/database"
	"github.com/Kohei075/local-photo-browser/internal/media"
	"github.com/Kohei075/local-photo-browser/internal/startup"
)

func newThumbsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thumbs",
		Short: "Manage the thumbnail cache",
	}

	cmd.AddCommand(newThumbsWarmCmd())
	cmd.AddCommand(newThumbsClearCmd())

	return cmd
}

func newThumbsWarmCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Pre-generate thumbnails for photos missing one",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runThumbsWarm(limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 1000, "Maximum number of thumbnails to generate")

	return cmd
}

func runThumbsWarm(limit int) error {
	cfg, err := startup.LoadConfig()
	if err != nil {
		return err
	}

	db, err := database.New(context.Background(), cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	cache := media.NewThumbnailCache(cfg.ThumbnailDir)
	warmer := media.NewWarmer(db, cache, cfg.ThumbnailMaxSize)

	stats, err := warmer.Warm(context.Background(), limit)
	if err != nil {
		return err
	}

	fmt.Printf("Generated %d thumbnails, %d failed\n", stats.Generated, stats.Failed)
	return nil
}

func newThumbsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached thumbnails",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := startup.LoadConfig()
			if err != nil {
				return err
			}

			cache := media.NewThumbnailCache(cfg.ThumbnailDir)
			removed, err := cache.Clear()
			if err != nil {
				return err
			}

			fmt.Printf("Removed %d cached thumbnails\n", removed)
			return nil
		},
	}
}
