// Package staticreplace rewrites quoted static-mount references inside
// HTML, XML or JavaScript to canonical asset URLs.
package staticreplace

import (
	"context"
	"regexp"
	"strings"

	"github.com/michaelscutari/assetpath/internal/canon"
	"github.com/michaelscutari/assetpath/internal/content"
	"github.com/michaelscutari/assetpath/internal/coursekey"
)

// A reference opens with a quote, optionally backslash-escaped, directly
// followed by the static mount. It closes at the first identical quote.
var openRE = regexp.MustCompile(`\\?["']` + regexp.QuoteMeta(content.StaticPrefix))

// Replace calls fn for every quoted reference in text and substitutes
// its result. Quotes are preserved. A reference without a closing quote
// ends the scan and the remainder is kept as is.
func Replace(text string, fn func(ref string) string) string {
	var b strings.Builder
	b.Grow(len(text))

	for {
		loc := openRE.FindStringIndex(text)
		if loc == nil {
			break
		}
		quote := text[loc[0] : loc[1]-len(content.StaticPrefix)]
		restStart := loc[1]
		end := strings.Index(text[restStart:], quote)
		if end < 0 {
			break
		}

		ref := content.StaticPrefix + text[restStart:restStart+end]
		b.WriteString(text[:loc[0]])
		b.WriteString(quote)
		b.WriteString(fn(ref))
		b.WriteString(quote)
		text = text[restStart+end+len(quote):]
	}

	b.WriteString(text)
	return b.String()
}

// Replacer rewrites references for one course.
type Replacer struct {
	Canonicalizer *canon.Canonicalizer
	Course        coursekey.CourseKey
	BaseURL       string
}

// Replace rewrites every static reference in text.
func (r *Replacer) Replace(ctx context.Context, text string) string {
	return Replace(text, func(ref string) string {
		return r.Canonicalizer.Canonicalize(ctx, r.Course, ref, r.BaseURL)
	})
}
