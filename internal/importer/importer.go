// Package importer records a directory of course files in the asset
// store.
package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/michaelscutari/assetpath/internal/content"
	"github.com/michaelscutari/assetpath/internal/coursekey"
	"github.com/michaelscutari/assetpath/internal/db"
	"github.com/michaelscutari/assetpath/internal/pathutil"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrAborted marks an import that stopped before every file was
// considered: the root could not be read, a database write failed or
// the error budget ran out. Per-file errors alone do not carry it.
var ErrAborted = errors.New("import aborted")

// Progress holds current import progress.
type Progress struct {
	Files  int64
	Bytes  int64
	Errors int64
}

// Importer walks a directory and saves one asset per regular file.
type Importer struct {
	opts   *Options
	db     *sql.DB
	logger *zap.Logger

	files      int64
	bytes      int64
	errorCount int64

	mu   sync.Mutex
	errs error

	// detect returns the content type of a file.
	detect func(path string) (string, error)
}

// New creates an importer writing to database.
func New(database *sql.DB, opts *Options, logger *zap.Logger) *Importer {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}
	if opts.FlushIntervalMs < 1 {
		opts.FlushIntervalMs = 1000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{opts: opts, db: database, logger: logger, detect: detectContentType}
}

func detectContentType(p string) (string, error) {
	mt, err := mimetype.DetectFile(p)
	if err != nil {
		return "", err
	}
	contentType, _, _ := strings.Cut(mt.String(), ";")
	return strings.TrimSpace(contentType), nil
}

// Progress returns current import progress (safe for concurrent access).
func (im *Importer) Progress() Progress {
	return Progress{
		Files:  atomic.LoadInt64(&im.files),
		Bytes:  atomic.LoadInt64(&im.bytes),
		Errors: atomic.LoadInt64(&im.errorCount),
	}
}

// Run imports every regular file below root into course. Files that
// fail are skipped; their errors are combined into the returned error
// alongside the final progress. An unreadable root, a failed database
// write or reaching MaxErrors aborts the import; the returned error then
// matches ErrAborted.
func (im *Importer) Run(ctx context.Context, root string, course coursekey.CourseKey) (Progress, error) {
	root = pathutil.Normalize(root)
	info, err := os.Stat(root)
	if err != nil {
		return im.Progress(), fmt.Errorf("%w: failed to stat root: %w", ErrAborted, err)
	}
	if !info.IsDir() {
		return im.Progress(), fmt.Errorf("%w: %s is not a directory", ErrAborted, root)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	paths := make(chan string, im.opts.Workers*4)
	results := make(chan *content.StaticContent, im.opts.BatchSize)
	walkDone := make(chan struct{})

	go func() {
		defer close(walkDone)
		defer close(paths)
		walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				im.recordErr(fmt.Errorf("walk %s: %w", p, err), cancel)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := pathutil.Relative(root, p)
			if err != nil || rel == "." {
				return nil
			}
			if im.opts.ShouldExclude(rel) {
				im.logger.Debug("excluded", zap.String("path", rel))
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			select {
			case paths <- p:
				return nil
			case <-runCtx.Done():
				return runCtx.Err()
			}
		})
		if walkErr != nil && runCtx.Err() == nil {
			im.recordErr(walkErr, cancel)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < im.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range paths {
				c, err := im.describe(root, p, course)
				if err != nil {
					im.recordErr(err, cancel)
					continue
				}
				select {
				case results <- c:
				case <-runCtx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	writeErr := im.write(runCtx, results)
	cancel()
	for range results {
	}
	<-walkDone

	im.mu.Lock()
	errs := im.errs
	im.mu.Unlock()
	progress := im.Progress()

	if writeErr != nil {
		return progress, multierr.Append(fmt.Errorf("%w: %w", ErrAborted, writeErr), errs)
	}
	if err := ctx.Err(); err != nil {
		return progress, multierr.Append(err, errs)
	}
	if isMaxErrors(im.opts, progress.Errors) {
		return progress, multierr.Append(fmt.Errorf("%w: reached %d errors", ErrAborted, progress.Errors), errs)
	}
	return progress, errs
}

// write batches results into the database until results is closed.
func (im *Importer) write(ctx context.Context, results <-chan *content.StaticContent) error {
	ticker := time.NewTicker(time.Duration(im.opts.FlushIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	batch := make([]*content.StaticContent, 0, im.opts.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		start := time.Now()
		if err := db.SaveAssets(im.db, batch); err != nil {
			return err
		}
		for _, c := range batch {
			atomic.AddInt64(&im.files, 1)
			atomic.AddInt64(&im.bytes, c.Length)
		}
		im.logger.Debug("flushed assets", zap.Int("count", len(batch)), zap.Duration("took", time.Since(start)))
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case c, ok := <-results:
			if !ok {
				return flush()
			}
			batch = append(batch, c)
			if len(batch) >= im.opts.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		case <-ticker.C:
			if err := flush(); err != nil {
				return err
			}
		case <-ctx.Done():
			// Keep what was described before the cancellation.
			return flush()
		}
	}
}

func (im *Importer) describe(root, p string, course coursekey.CourseKey) (*content.StaticContent, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", p, err)
	}
	rel, err := pathutil.Relative(root, p)
	if err != nil {
		return nil, err
	}
	contentType, err := im.detect(p)
	if err != nil {
		return nil, fmt.Errorf("detect type of %s: %w", p, err)
	}

	c := &content.StaticContent{
		Location:    content.ComputeLocation(course, rel),
		Name:        rel,
		ContentType: contentType,
		Length:      info.Size(),
		Locked:      im.opts.Locked,
		ImportPath:  p,
		Created:     info.ModTime(),
	}
	if im.opts.Thumbnails && c.IsImage() {
		thumb := content.ThumbnailLocation(c, im.opts.ThumbnailSize)
		c.Thumbnail = &thumb
	}
	return c, nil
}

func (im *Importer) recordErr(err error, cancel context.CancelFunc) {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.errs = multierr.Append(im.errs, err)
	n := atomic.AddInt64(&im.errorCount, 1)
	im.logger.Warn("import error", zap.Error(err))
	if isMaxErrors(im.opts, n) {
		cancel()
	}
}

func isMaxErrors(opts *Options, n int64) bool {
	return opts.MaxErrors > 0 && n >= int64(opts.MaxErrors)
}
