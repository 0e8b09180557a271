package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/michaelscutari/assetpath/internal/config"
	"github.com/michaelscutari/assetpath/internal/db"
	"github.com/michaelscutari/assetpath/internal/importer"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Record a directory of course files as assets",
	Long: `Import walks a directory and records one asset per file under the
given course. File names are flattened into asset names; raster images
also get a thumbnail location.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

var (
	importCourse    string
	importRoot      string
	importWorkers   int
	importExclude   []string
	importMaxErrors int
	importLocked    bool
	importThumbSize string
	importProgress  time.Duration
)

func init() {
	importCmd.Flags().StringVarP(&importCourse, "course", "c", "", "Course key to import into")
	importCmd.Flags().StringVarP(&importRoot, "root", "r", ".", "Directory to import")
	importCmd.Flags().IntVarP(&importWorkers, "workers", "w", 0, "Number of worker goroutines (default from config)")
	importCmd.Flags().StringSliceVarP(&importExclude, "exclude", "e", nil, "Regex patterns to exclude (can be repeated)")
	importCmd.Flags().IntVar(&importMaxErrors, "max-errors", 0, "Stop after N errors (0 = unlimited)")
	importCmd.Flags().BoolVar(&importLocked, "locked", false, "Lock every imported asset")
	importCmd.Flags().StringVar(&importThumbSize, "thumbnail-size", "", "Thumbnail dimensions WIDTHxHEIGHT folded into thumbnail names")
	importCmd.Flags().DurationVar(&importProgress, "progress-interval", 30*time.Second, "Emit progress lines to stderr at this interval when not a TTY (0 to disable)")
}

// importOptions merges config defaults with flags; flags win.
func importOptions(cmd *cobra.Command, ic config.ImportConfig) (*importer.Options, error) {
	opts := importer.DefaultOptions().WithLocked(importLocked)

	workers := ic.Workers
	if cmd.Flags().Changed("workers") {
		workers = importWorkers
	}
	if workers > 0 {
		opts.WithWorkers(workers)
	}

	maxErrors := ic.MaxErrors
	if cmd.Flags().Changed("max-errors") {
		maxErrors = importMaxErrors
	}
	opts.WithMaxErrors(maxErrors)

	size := ic.ThumbnailSize
	if cmd.Flags().Changed("thumbnail-size") {
		size = importThumbSize
	}
	width, height, err := config.ParseSize(size)
	if err != nil {
		return nil, err
	}
	opts.WithThumbnailSize(width, height)

	for _, pattern := range append(append([]string{}, ic.Exclude...), importExclude...) {
		if err := opts.AddExcludePattern(pattern); err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	return opts, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	course, err := parseCourse(importCourse)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(importRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve root path: %w", err)
	}

	opts, err := importOptions(cmd, cfg.Import)
	if err != nil {
		return err
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Importing %s into %s...\n", root, course)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nCanceling... (press Ctrl+C again to force)")
		cancel()
		<-sigCh
		os.Exit(130)
	}()
	startTime := time.Now()

	imp := importer.New(database, opts, logger)
	isTTY := isTerminal()

	progressDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		lastNonTTY := time.Now()
		spinnerIdx := 0
		for {
			select {
			case <-progressDone:
				return
			case <-ticker.C:
				p := imp.Progress()
				elapsed := time.Since(startTime).Round(time.Millisecond)
				rate := float64(0)
				if elapsed.Seconds() > 0 {
					rate = float64(p.Files) / elapsed.Seconds()
				}
				if isTTY {
					spinner := spinnerFrames[spinnerIdx%len(spinnerFrames)]
					spinnerIdx++
					errStr := ""
					if p.Errors > 0 {
						errStr = fmt.Sprintf(" | %d errors", p.Errors)
					}
					fmt.Fprintf(os.Stderr, "\r\033[K%s Importing... %s files | %s | %.0f/sec | %s%s",
						spinner, humanize.Comma(p.Files), humanize.Bytes(uint64(p.Bytes)), rate, elapsed, errStr)
				} else if importProgress > 0 && time.Since(lastNonTTY) >= importProgress {
					fmt.Fprintf(os.Stderr, "PROGRESS files=%d bytes=%s rate=%.0f/sec elapsed=%s errors=%d\n",
						p.Files, humanize.Bytes(uint64(p.Bytes)), rate, elapsed, p.Errors)
					lastNonTTY = time.Now()
				}
			}
		}
	}()

	progress, err := imp.Run(ctx, root, course)
	close(progressDone)

	if isTTY {
		fmt.Fprintf(os.Stderr, "\r\033[K")
	}

	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Import canceled.")
		return nil
	}
	for _, fileErr := range multierr.Errors(err) {
		if !errors.Is(fileErr, importer.ErrAborted) {
			logger.Warn("skipped file", zap.Error(fileErr))
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Import finished in %s\n", time.Since(startTime).Round(time.Millisecond))
	fmt.Fprintf(out, "\nSummary:\n")
	fmt.Fprintf(out, "  Files: %s\n", humanize.Comma(progress.Files))
	fmt.Fprintf(out, "  Size: %s\n", humanize.Bytes(uint64(progress.Bytes)))
	if progress.Errors > 0 {
		fmt.Fprintf(out, "  Errors: %s\n", humanize.Comma(progress.Errors))
	}
	if stats, statsErr := db.GetCourseStats(database, course); statsErr == nil {
		fmt.Fprintf(out, "  Course total: %s assets, %s\n",
			humanize.Comma(stats.AssetCount), humanize.Bytes(uint64(stats.TotalLength)))
	}

	if errors.Is(err, importer.ErrAborted) {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}
