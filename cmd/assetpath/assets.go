package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/michaelscutari/assetpath/internal/canon"
	"github.com/michaelscutari/assetpath/internal/content"
	"github.com/michaelscutari/assetpath/internal/coursekey"
	"github.com/michaelscutari/assetpath/internal/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Inspect and change stored assets",
	Long: `Inspect and change stored assets.

KEY is a full asset key (asset-v1:... or /c4x/...). With --course it may
also be a path such as /static/images/logo.png.`,
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a course's assets, or all courses when --course is empty",
	Args:  cobra.NoArgs,
	RunE:  runAssetsList,
}

var assetsLockCmd = &cobra.Command{
	Use:   "lock KEY...",
	Short: "Lock assets so they are never served from the CDN",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setLocked(args, true)
	},
}

var assetsUnlockCmd = &cobra.Command{
	Use:   "unlock KEY...",
	Short: "Unlock assets",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setLocked(args, false)
	},
}

var assetsInfoCmd = &cobra.Command{
	Use:   "info KEY",
	Short: "Display one asset",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssetsInfo,
}

var assetsRmCmd = &cobra.Command{
	Use:   "rm KEY",
	Short: "Remove an asset from the store",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssetsRm,
}

var (
	assetsCourse string
	assetsSort   string
	assetsLimit  int
)

func init() {
	assetsCmd.PersistentFlags().StringVarP(&assetsCourse, "course", "c", "", "Course key")
	assetsListCmd.Flags().StringVarP(&assetsSort, "sort", "s", "name", "Sort by: name, size, type, date")
	assetsListCmd.Flags().IntVarP(&assetsLimit, "limit", "n", 0, "Maximum number of results (0 = all)")

	assetsCmd.AddCommand(assetsListCmd)
	assetsCmd.AddCommand(assetsLockCmd)
	assetsCmd.AddCommand(assetsUnlockCmd)
	assetsCmd.AddCommand(assetsInfoCmd)
	assetsCmd.AddCommand(assetsRmCmd)
}

// resolveAssetKey accepts a serialized asset key or, when --course is
// set, a path relative to the course.
func resolveAssetKey(arg string) (coursekey.AssetKey, error) {
	if key, err := content.LocationFromPath(arg); err == nil {
		return key, nil
	}
	if assetsCourse == "" {
		return coursekey.AssetKey{}, fmt.Errorf("%q is not an asset key (pass --course to use paths)", arg)
	}
	course, err := parseCourse(assetsCourse)
	if err != nil {
		return coursekey.AssetKey{}, err
	}
	return content.AssetKeyFromPath(course, arg), nil
}

func runAssetsList(cmd *cobra.Command, args []string) error {
	switch assetsSort {
	case "name", "size", "type", "date":
	default:
		return fmt.Errorf("invalid sort %q (expected name|size|type|date)", assetsSort)
	}

	database, err := openReadDB()
	if err != nil {
		return err
	}
	defer database.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	if assetsCourse == "" {
		courses, err := db.ListCourses(database)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "ASSETS\tLOCKED\tSIZE\tCOURSE\n")
		for _, s := range courses {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				humanize.Comma(s.AssetCount),
				humanize.Comma(s.LockedCount),
				humanize.Bytes(uint64(s.TotalLength)),
				s.Course,
			)
		}
		return nil
	}

	course, err := parseCourse(assetsCourse)
	if err != nil {
		return err
	}
	assets, err := db.ListAssets(database, course, assetsSort, assetsLimit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "SIZE\tLOCK\tTYPE\tNAME\tKEY\n")
	for _, c := range assets {
		lock := ""
		if c.Locked {
			lock = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			humanize.Bytes(uint64(c.Length)),
			lock,
			c.ContentType,
			c.Name,
			c.Location,
		)
	}
	return nil
}

func setLocked(args []string, locked bool) error {
	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	for _, arg := range args {
		key, err := resolveAssetKey(arg)
		if err != nil {
			return err
		}
		if err := db.SetLocked(database, key, locked); err != nil {
			return err
		}
		logger.Info("lock changed", zap.Stringer("asset", key), zap.Bool("locked", locked))
	}
	return nil
}

func runAssetsInfo(cmd *cobra.Command, args []string) error {
	key, err := resolveAssetKey(args[0])
	if err != nil {
		return err
	}

	database, err := openReadDB()
	if err != nil {
		return err
	}
	defer database.Close()

	c, err := db.GetAsset(database, key)
	if err != nil {
		return err
	}
	baseURL, err := db.CurrentBaseURL(database)
	if err != nil {
		return err
	}
	url := canon.New(db.Locks{DB: database}, canon.WithLogger(logger)).
		Canonicalize(cmd.Context(), key.Course, key.Path(), baseURL)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Asset Information\n")
	fmt.Fprintf(out, "=================\n\n")
	fmt.Fprintf(out, "Key:          %s\n", c.Location)
	fmt.Fprintf(out, "Course:       %s\n", c.Location.Course)
	fmt.Fprintf(out, "Name:         %s\n", c.Name)
	fmt.Fprintf(out, "Content Type: %s\n", c.ContentType)
	fmt.Fprintf(out, "Size:         %s (%s bytes)\n", humanize.Bytes(uint64(c.Length)), humanize.Comma(c.Length))
	fmt.Fprintf(out, "Locked:       %t\n", c.Locked)
	if !c.Created.IsZero() {
		fmt.Fprintf(out, "Created:      %s (%s)\n", c.Created.Format(time.RFC3339), humanize.Time(c.Created))
	}
	if c.Thumbnail != nil {
		fmt.Fprintf(out, "Thumbnail:    %s\n", c.Thumbnail)
	}
	if c.ImportPath != "" {
		fmt.Fprintf(out, "Imported:     %s\n", c.ImportPath)
	}
	fmt.Fprintf(out, "URL:          %s\n", url)

	return nil
}

func runAssetsRm(cmd *cobra.Command, args []string) error {
	key, err := resolveAssetKey(args[0])
	if err != nil {
		return err
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.DeleteAsset(database, key); err != nil {
		return err
	}
	logger.Info("asset removed", zap.Stringer("asset", key))
	return nil
}
