package main

import (
	"fmt"
	"os/user"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/michaelscutari/assetpath/internal/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var baseURLCmd = &cobra.Command{
	Use:   "base-url",
	Short: "Manage the CDN base URL unlocked assets are served from",
}

var baseURLShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current base URL",
	Args:  cobra.NoArgs,
	RunE:  runBaseURLShow,
}

var baseURLSetCmd = &cobra.Command{
	Use:   "set HOST",
	Short: "Serve unlocked assets from HOST[:PORT]",
	Args:  cobra.ExactArgs(1),
	RunE:  runBaseURLSet,
}

var baseURLDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop prefixing asset URLs with a base URL",
	Args:  cobra.NoArgs,
	RunE:  runBaseURLDisable,
}

var baseURLHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List base URL changes, newest first",
	Args:  cobra.NoArgs,
	RunE:  runBaseURLHistory,
}

var (
	baseURLBy    string
	baseURLLimit int
)

func init() {
	baseURLSetCmd.Flags().StringVar(&baseURLBy, "by", "", "Who made the change (default: current user)")
	baseURLDisableCmd.Flags().StringVar(&baseURLBy, "by", "", "Who made the change (default: current user)")
	baseURLHistoryCmd.Flags().IntVarP(&baseURLLimit, "limit", "n", 20, "Maximum number of rows")

	baseURLCmd.AddCommand(baseURLShowCmd)
	baseURLCmd.AddCommand(baseURLSetCmd)
	baseURLCmd.AddCommand(baseURLDisableCmd)
	baseURLCmd.AddCommand(baseURLHistoryCmd)
}

func changedBy() string {
	if baseURLBy != "" {
		return baseURLBy
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}

func runBaseURLShow(cmd *cobra.Command, args []string) error {
	database, err := openReadDB()
	if err != nil {
		return err
	}
	defer database.Close()

	current, err := db.CurrentBaseURLConfig(database)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch {
	case current == nil:
		fmt.Fprintln(out, "(not configured)")
	case !current.Enabled || current.BaseURL == "":
		fmt.Fprintln(out, "(disabled)")
	default:
		fmt.Fprintln(out, current.BaseURL)
	}
	return nil
}

func runBaseURLSet(cmd *cobra.Command, args []string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	row, err := db.SetBaseURL(database, args[0], changedBy(), true)
	if err != nil {
		return err
	}
	logger.Info("base URL changed",
		zap.String("base_url", row.BaseURL),
		zap.String("changed_by", row.ChangedBy))
	fmt.Fprintln(cmd.OutOrStdout(), row.BaseURL)
	return nil
}

func runBaseURLDisable(cmd *cobra.Command, args []string) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	// Keep the last host on record so history shows what was switched off.
	var host string
	current, err := db.CurrentBaseURLConfig(database)
	if err != nil {
		return err
	}
	if current != nil {
		host = current.BaseURL
	}

	row, err := db.SetBaseURL(database, host, changedBy(), false)
	if err != nil {
		return err
	}
	logger.Info("base URL disabled", zap.String("changed_by", row.ChangedBy))
	return nil
}

func runBaseURLHistory(cmd *cobra.Command, args []string) error {
	database, err := openReadDB()
	if err != nil {
		return err
	}
	defer database.Close()

	history, err := db.BaseURLHistory(database, baseURLLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tCHANGED\tBY\tENABLED\tBASE URL\n")
	for _, row := range history {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\n",
			row.ID,
			humanize.Time(row.ChangeDate),
			row.ChangedBy,
			row.Enabled,
			row.BaseURL,
		)
	}
	w.Flush()

	return nil
}
