package content

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/michaelscutari/assetpath/internal/coursekey"
)

// StaticPrefix is the mount point under which authors reference course
// assets.
const StaticPrefix = "/static/"

const thumbnailExt = ".jpg"

// StaticContent describes one stored asset. Only metadata is kept; the
// bytes live elsewhere.
type StaticContent struct {
	Location    coursekey.AssetKey
	Name        string // Display name, usually the author's original path
	ContentType string
	Length      int64
	Locked      bool
	// Thumbnail is nil when the asset has no thumbnail.
	Thumbnail  *coursekey.AssetKey
	ImportPath string
	Created    time.Time
}

// Dimensions of a generated thumbnail.
type Dimensions struct {
	Width  int
	Height int
}

// IsImage reports whether the content type is a raster image that can
// be thumbnailed.
func (c *StaticContent) IsImage() bool {
	return strings.HasPrefix(c.ContentType, "image/") && c.ContentType != "image/svg+xml"
}

// ComputeLocation returns the asset key for a course-relative path.
// Directory separators become underscores and any other character that
// is not a letter, digit, '_', '.', '%' or '-' is replaced with '_'.
// Runs of underscores are kept as they are.
func ComputeLocation(course coursekey.CourseKey, p string) coursekey.AssetKey {
	return computeLocation(course, p, coursekey.CategoryAsset)
}

// ComputeThumbnailLocation is ComputeLocation in the thumbnail category.
func ComputeThumbnailLocation(course coursekey.CourseKey, p string) coursekey.AssetKey {
	return computeLocation(course, p, coursekey.CategoryThumbnail)
}

func computeLocation(course coursekey.CourseKey, p, category string) coursekey.AssetKey {
	return course.MakeAssetKey(category, cleanKeepingUnderscores(strings.ReplaceAll(p, "/", "_")))
}

func cleanKeepingUnderscores(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '.', r == '%', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// ThumbnailName derives the thumbnail file name from an asset name.
// A ".jpg" original keeps its name; any other extension is folded into
// the stem ("a.png" becomes "a-png.jpg"). Dimensions, when given, are
// appended as "-WxH".
func ThumbnailName(original string, dims *Dimensions) string {
	ext := path.Ext(original)
	root := strings.TrimSuffix(original, ext)
	if ext != thumbnailExt {
		root += strings.ReplaceAll(ext, ".", "-")
	}
	if dims != nil {
		root += fmt.Sprintf("-%dx%d", dims.Width, dims.Height)
	}
	return root + thumbnailExt
}

// ThumbnailLocation returns where the thumbnail of c is stored.
func ThumbnailLocation(c *StaticContent, dims *Dimensions) coursekey.AssetKey {
	return ComputeThumbnailLocation(c.Location.Course, ThumbnailName(c.Location.Name, dims))
}

// LocationFromPath parses an asset key, retrying once without a leading
// slash.
func LocationFromPath(p string) (coursekey.AssetKey, error) {
	key, err := coursekey.ParseAssetKey(p)
	if err == nil {
		return key, nil
	}
	if strings.HasPrefix(p, "/") {
		return coursekey.ParseAssetKey(p[1:])
	}
	return key, err
}

// StripStatic removes the static mount and any leading slashes.
func StripStatic(p string) string {
	p = strings.TrimPrefix(p, StaticPrefix)
	return strings.TrimLeft(p, "/")
}

// AssetKeyFromPath turns an author reference into an asset key. Paths
// that already are asset keys are parsed; anything else is treated as a
// file name relative to the course.
func AssetKeyFromPath(course coursekey.CourseKey, p string) coursekey.AssetKey {
	p = StripStatic(p)
	if key, err := coursekey.ParseAssetKey(p); err == nil {
		return key
	}
	return ComputeLocation(course, p)
}
