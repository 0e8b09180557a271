package main

import (
	"fmt"

	"github.com/michaelscutari/assetpath/internal/canon"
	"github.com/michaelscutari/assetpath/internal/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var canonicalizeCmd = &cobra.Command{
	Use:   "canonicalize REF...",
	Short: "Print the canonical URL of asset references",
	Long: `Canonicalize rewrites each reference into the URL a browser should load.

The CDN base URL and asset lock states come from the database unless
--base-url, --locked or --no-store say otherwise.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCanonicalize,
}

var (
	canonCourse  string
	canonBaseURL string
	canonLocked  bool
	canonNoStore bool
)

func init() {
	canonicalizeCmd.Flags().StringVarP(&canonCourse, "course", "c", "", "Course key the references belong to")
	canonicalizeCmd.Flags().StringVar(&canonBaseURL, "base-url", "", "CDN host[:port] (overrides the stored configuration)")
	canonicalizeCmd.Flags().BoolVar(&canonLocked, "locked", false, "Treat every asset as locked")
	canonicalizeCmd.Flags().BoolVar(&canonNoStore, "no-store", false, "Do not consult the database")
}

func runCanonicalize(cmd *cobra.Command, args []string) error {
	course, err := parseCourse(canonCourse)
	if err != nil {
		return err
	}

	baseURL, err := canon.NormalizeBaseURL(canonBaseURL)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if canonNoStore {
		for _, ref := range args {
			fmt.Fprintln(out, canon.Canonicalize(course, ref, baseURL, canonLocked))
		}
		return nil
	}

	database, err := openReadDB()
	if err != nil {
		return err
	}
	defer database.Close()

	if !cmd.Flags().Changed("base-url") {
		baseURL, err = db.CurrentBaseURL(database)
		if err != nil {
			return fmt.Errorf("failed to read base URL: %w", err)
		}
	}

	var locks canon.LockChecker = db.Locks{DB: database}
	if cmd.Flags().Changed("locked") {
		locks = canon.FixedLocks(canonLocked)
	}
	c := canon.New(locks, canon.WithLogger(logger))

	logger.Debug("canonicalizing",
		zap.Stringer("course", course),
		zap.String("base_url", baseURL),
		zap.Int("refs", len(args)))
	for _, ref := range args {
		fmt.Fprintln(out, c.Canonicalize(cmd.Context(), course, ref, baseURL))
	}
	return nil
}
