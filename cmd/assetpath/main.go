package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/michaelscutari/assetpath/internal/config"
	"github.com/michaelscutari/assetpath/internal/coursekey"
	"github.com/michaelscutari/assetpath/internal/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "0.1.0"

var (
	cfgPath string
	dbPath  string
	verbose bool

	cfg    *config.Config
	logger = zap.NewNop()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "assetpath",
	Short: "Canonical URLs for course static assets",
	Long: `assetpath turns the asset references found in course content into
canonical, browser-resolvable URLs. It keeps an SQLite store of course
assets with their lock state and the CDN base URL history, and provides
a TUI browser for inspecting a course's assets.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("db") {
			cfg.Database = dbPath
		}

		logger, err = config.NewLogger(cfg.LogLevel, verbose)
		if err != nil {
			return err
		}
		logger.Debug("configuration loaded",
			zap.String("config", cfgPath),
			zap.String("database", cfg.Database))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to database file (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(canonicalizeCmd)
	rootCmd.AddCommand(baseURLCmd)
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(tuiCmd)
}

// openDB opens the configured asset store, creating it when missing.
func openDB() (*sql.DB, error) {
	return openWithPragmas(db.ApplyWritePragmas)
}

// openReadDB opens the configured asset store for lookups only.
func openReadDB() (*sql.DB, error) {
	return openWithPragmas(db.ApplyReadPragmas)
}

func openWithPragmas(apply func(*sql.DB) error) (*sql.DB, error) {
	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := apply(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	return database, nil
}

func parseCourse(s string) (coursekey.CourseKey, error) {
	if s == "" {
		return coursekey.CourseKey{}, fmt.Errorf("--course is required")
	}
	course, err := coursekey.ParseCourseKey(s)
	if err != nil {
		return coursekey.CourseKey{}, fmt.Errorf("invalid course %q: %w", s, err)
	}
	return course, nil
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
