package staticreplace

import (
	"context"
	"strings"
	"testing"

	"github.com/michaelscutari/assetpath/internal/canon"
	"github.com/michaelscutari/assetpath/internal/coursekey"
	"github.com/stretchr/testify/assert"
)

func TestReplaceQuotes(t *testing.T) {
	upper := func(ref string) string { return strings.ToUpper(ref) }

	tests := []struct {
		in, want string
	}{
		{`<img src="/static/a.png">`, `<img src="/STATIC/A.PNG">`},
		{`<img src='/static/a.png'>`, `<img src='/STATIC/A.PNG'>`},
		{`var s = "<img src=\"/static/a.png\">";`, `var s = "<img src=\"/STATIC/A.PNG\">";`},
		{`"/static/a.png" and '/static/b.png'`, `"/STATIC/A.PNG" and '/STATIC/B.PNG'`},
		{`<a href="/course/static/x">`, `<a href="/course/static/x">`},
		{`<img src="/static/unterminated>`, `<img src="/static/unterminated>`},
		{`no references here`, `no references here`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Replace(tt.in, upper), tt.in)
	}
}

func TestReplacerCanonicalizes(t *testing.T) {
	course := coursekey.NewCourseKey("a", "b", "c")
	r := &Replacer{
		Canonicalizer: canon.New(canon.FixedLocks(false)),
		Course:        course,
		BaseURL:       "cdn.example.com",
	}

	html := `<img src="/static/images/logo.png"><script src='/static/js/app.js'></script>`
	want := `<img src="//cdn.example.com/asset-v1:a+b+c+type@asset+block@images_logo.png">` +
		`<script src='//cdn.example.com/asset-v1:a+b+c+type@asset+block@js_app.js'></script>`
	assert.Equal(t, want, r.Replace(context.Background(), html))
}

func TestReplacerIsIdempotent(t *testing.T) {
	r := &Replacer{
		Canonicalizer: canon.New(nil),
		Course:        coursekey.NewLegacyCourseKey("a", "b", "old"),
	}
	once := r.Replace(context.Background(), `<img src="/static/special/x.png">`)
	assert.Equal(t, `<img src="/c4x/a/b/asset/special_x.png">`, once)
	assert.Equal(t, once, r.Replace(context.Background(), once))
}
