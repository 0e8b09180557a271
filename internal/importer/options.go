package importer

import (
	"regexp"

	"github.com/michaelscutari/assetpath/internal/content"
)

// Options configures an import.
type Options struct {
	// Workers is the number of concurrent file describers.
	Workers int

	// MaxErrors is the maximum number of per-file errors before aborting.
	// Zero means unlimited.
	MaxErrors int

	// ExcludePatterns are regular expressions matched against the
	// slash-separated path relative to the import root.
	ExcludePatterns []*regexp.Regexp

	// BatchSize is the number of assets to batch before flushing to DB.
	BatchSize int

	// FlushInterval is the maximum time between flushes in milliseconds.
	FlushIntervalMs int

	// Locked marks every imported asset as locked.
	Locked bool

	// Thumbnails records a thumbnail location for raster images.
	Thumbnails bool

	// ThumbnailSize is folded into thumbnail names when set.
	ThumbnailSize *content.Dimensions
}

// DefaultOptions returns sensible defaults for importing.
func DefaultOptions() *Options {
	opts := &Options{
		Workers:         4,
		MaxErrors:       0,
		ExcludePatterns: nil,
		BatchSize:       500,
		FlushIntervalMs: 1000,
		Thumbnails:      true,
	}
	// Skip dot-files and dot-directories by default
	opts.AddExcludePattern(`(^|/)\.`)
	return opts
}

// WithWorkers sets the number of workers.
func (o *Options) WithWorkers(n int) *Options {
	o.Workers = n
	return o
}

// WithMaxErrors sets the maximum error count.
func (o *Options) WithMaxErrors(n int) *Options {
	o.MaxErrors = n
	return o
}

// WithLocked sets whether imported assets are locked.
func (o *Options) WithLocked(locked bool) *Options {
	o.Locked = locked
	return o
}

// WithThumbnailSize sets the dimensions folded into thumbnail names.
func (o *Options) WithThumbnailSize(width, height int) *Options {
	if width <= 0 || height <= 0 {
		o.ThumbnailSize = nil
		return o
	}
	o.ThumbnailSize = &content.Dimensions{Width: width, Height: height}
	return o
}

// AddExcludePattern adds a pattern to exclude.
func (o *Options) AddExcludePattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	o.ExcludePatterns = append(o.ExcludePatterns, re)
	return nil
}

// ShouldExclude checks if a relative path matches any exclude pattern.
func (o *Options) ShouldExclude(rel string) bool {
	for _, re := range o.ExcludePatterns {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}
