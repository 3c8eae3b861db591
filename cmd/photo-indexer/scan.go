package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Kohei075/local-photo-browser/internal/database"
	"github.com/Kohei075/local-photo-browser/internal/scanner"
	"github.com/Kohei075/local-photo-browser/internal/startup"
)

// pollInterval is how often the CLI samples scan status for the progress bar.
const pollInterval = 200 * time.Millisecond

func newScanCmd() *cobra.Command {
	var folders []string
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the photo library and reconcile the index",
		Long: `Walks the configured root (ROOT_DIR), indexes new and changed photos and
removes rows whose files are gone. With --folder the scan is restricted to
the given subfolders, bounding both I/O and deletion scope.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runScan(folders, noProgress)
		},
	}

	cmd.Flags().StringSliceVarP(&folders, "folder", "f", nil, "Restrict the scan to a subfolder (repeatable)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable progress output")

	return cmd
}

func runScan(folders []string, noProgress bool) error {
	cfg, err := startup.LoadConfig()
	if err != nil {
		return err
	}

	db, err := database.New(context.Background(), cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	coord := scanner.NewCoordinator(db, func() scanner.Config {
		return scanner.Config{
			Root:       cfg.RootDir,
			Extensions: cfg.Extensions,
			Excluded:   cfg.ExcludedDirs,
			BatchSize:  cfg.BatchSize,
		}
	})

	var scope []string
	if len(folders) > 0 {
		scope = folders
	}

	if err := coord.Start(scope); err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if !noProgress {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("scanning"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionClearOnFinish(),
		)
	}

	var last scanner.Status
	for {
		st := coord.Status()
		if bar != nil && st.TotalCandidates > 0 {
			bar.ChangeMax(st.TotalCandidates)
			_ = bar.Set(st.Processed)
		}
		last = st
		if !st.Active {
			break
		}
		time.Sleep(pollInterval)
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if last.LastError != "" {
		return errors.New(last.LastError)
	}

	stats := coord.LastStats()
	fmt.Printf("Scanned %d candidates in %v: %d new, %d updated, %d unchanged, %d skipped, %d removed\n",
		stats.Candidates, stats.Duration.Round(time.Millisecond),
		stats.Inserted, stats.Updated, stats.Unchanged, stats.Skipped, stats.Removed)
	return nil
}
