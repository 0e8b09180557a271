package main

import (
	"fmt"
	"io"
	"os"

	"github.com/michaelscutari/assetpath/internal/canon"
	"github.com/michaelscutari/assetpath/internal/db"
	"github.com/michaelscutari/assetpath/internal/staticreplace"
	"github.com/spf13/cobra"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [FILE]",
	Short: "Rewrite quoted /static/ references in HTML, XML or JavaScript",
	Long: `Rewrite reads FILE (or stdin) and writes it to stdout with every quoted
"/static/..." reference replaced by its canonical URL.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRewrite,
}

var (
	rewriteCourse  string
	rewriteBaseURL string
)

func init() {
	rewriteCmd.Flags().StringVarP(&rewriteCourse, "course", "c", "", "Course key the content belongs to")
	rewriteCmd.Flags().StringVar(&rewriteBaseURL, "base-url", "", "CDN host[:port] (overrides the stored configuration)")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	course, err := parseCourse(rewriteCourse)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}
	text, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	database, err := openReadDB()
	if err != nil {
		return err
	}
	defer database.Close()

	baseURL, err := canon.NormalizeBaseURL(rewriteBaseURL)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("base-url") {
		baseURL, err = db.CurrentBaseURL(database)
		if err != nil {
			return fmt.Errorf("failed to read base URL: %w", err)
		}
	}

	r := &staticreplace.Replacer{
		Canonicalizer: canon.New(db.Locks{DB: database}, canon.WithLogger(logger)),
		Course:        course,
		BaseURL:       baseURL,
	}
	_, err = io.WriteString(cmd.OutOrStdout(), r.Replace(cmd.Context(), string(text)))
	return err
}
