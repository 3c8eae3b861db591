package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kohei075/local-photo-browser/internal/database"
	"github.com/Kohei075/local-photo-browser/internal/startup"
)

func newVacuumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vacuum",
		Short: "Compact the index database",
		Long: `Rebuilds the SQLite database file, reclaiming space left behind by
deleted rows. Useful after large reconciliation runs.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runVacuum()
		},
	}
}

func runVacuum() error {
	cfg, err := startup.LoadConfig()
	if err != nil {
		return err
	}

	db, err := database.New(context.Background(), cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Vacuum(); err != nil {
		return err
	}

	fmt.Printf("Database compacted: %s\n", db.Path())
	return nil
}
