// Package canon computes canonical, browser-resolvable URLs for course
// assets.
package canon

import (
	"context"
	"net/url"
	"strings"

	"github.com/michaelscutari/assetpath/internal/content"
	"github.com/michaelscutari/assetpath/internal/coursekey"
	"go.uber.org/zap"
)

// LockChecker reports whether an asset may only be served by the
// application itself.
type LockChecker interface {
	IsLocked(ctx context.Context, key coursekey.AssetKey) (bool, error)
}

// FixedLocks reports the same lock state for every asset.
type FixedLocks bool

// IsLocked implements LockChecker.
func (f FixedLocks) IsLocked(context.Context, coursekey.AssetKey) (bool, error) {
	return bool(f), nil
}

// Canonicalizer rewrites asset references. It holds no mutable state and
// is safe for concurrent use.
type Canonicalizer struct {
	locks  LockChecker
	logger *zap.Logger
}

// Option configures a Canonicalizer.
type Option func(*Canonicalizer)

// WithLogger sets the logger used for passthrough and lookup diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Canonicalizer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Canonicalizer that consults locks for every asset it
// emits. A nil locks treats every asset as unlocked.
func New(locks LockChecker, opts ...Option) *Canonicalizer {
	if locks == nil {
		locks = FixedLocks(false)
	}
	c := &Canonicalizer{locks: locks, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Canonicalize returns the canonical URL of raw with every asset reached
// from it sharing the given lock state.
func Canonicalize(course coursekey.CourseKey, raw, baseURL string, locked bool) string {
	return New(FixedLocks(locked)).Canonicalize(context.Background(), course, raw, baseURL)
}

// Canonicalize returns the canonical URL for raw within course. When
// baseURL is set and the asset is not locked the result is prefixed
// with "//baseURL"; otherwise it is root-relative. Lookup failures count
// as locked. References that cannot be classified come back unchanged.
func (c *Canonicalizer) Canonicalize(ctx context.Context, course coursekey.CourseKey, raw, baseURL string) string {
	ref := Classify(course, raw)
	if ref.Kind == KindPassthrough {
		c.logger.Debug("passing reference through", zap.String("ref", raw))
		return raw
	}

	var b strings.Builder
	if baseURL != "" && !c.isLocked(ctx, ref.Key) {
		b.WriteString("//")
		b.WriteString(baseURL)
	}
	b.WriteString(ref.Key.Path())
	if q := c.rewriteQuery(ctx, course, ref.Query, baseURL); q != "" {
		b.WriteByte('?')
		b.WriteString(q)
	}
	if ref.HasFragment {
		b.WriteByte('#')
		b.WriteString(ref.Fragment)
	}
	return b.String()
}

func (c *Canonicalizer) isLocked(ctx context.Context, key coursekey.AssetKey) bool {
	locked, err := c.locks.IsLocked(ctx, key)
	if err != nil {
		c.logger.Debug("lock lookup failed; serving from application",
			zap.Stringer("asset", key), zap.Error(err))
		return true
	}
	return locked
}

// rewriteQuery keeps parameter order, drops blank values and
// canonicalizes values that point at the static mount.
func (c *Canonicalizer) rewriteQuery(ctx context.Context, course coursekey.CourseKey, query, baseURL string) string {
	if query == "" {
		return ""
	}

	var params []string
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		rawName, rawValue, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(rawName)
		if err != nil {
			params = append(params, pair)
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			params = append(params, pair)
			continue
		}
		if value == "" {
			continue
		}
		if strings.HasPrefix(value, content.StaticPrefix) {
			value = c.Canonicalize(ctx, course, value, baseURL)
		}
		params = append(params, url.QueryEscape(name)+"="+url.QueryEscape(value))
	}
	return strings.Join(params, "&")
}
