package canon

import (
	"regexp"
	"strings"

	"github.com/michaelscutari/assetpath/internal/content"
	"github.com/michaelscutari/assetpath/internal/coursekey"
)

// Kind classifies an author-supplied asset reference.
type Kind uint8

const (
	// KindPassthrough references are emitted unchanged.
	KindPassthrough Kind = iota
	// KindAssetKey references already name an opaque asset key.
	KindAssetKey
	// KindLegacy references are c4x-style paths.
	KindLegacy
	// KindRelative references are file names relative to the course.
	KindRelative
)

func (k Kind) String() string {
	switch k {
	case KindAssetKey:
		return "asset-key"
	case KindLegacy:
		return "legacy"
	case KindRelative:
		return "relative"
	default:
		return "passthrough"
	}
}

var schemeRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*:`)

// Reference is a classified asset reference split into its URL parts.
type Reference struct {
	Raw  string
	Kind Kind
	// Key is set for every kind except KindPassthrough.
	Key         coursekey.AssetKey
	Query       string
	Fragment    string
	HasFragment bool
}

// Classify splits raw into path, query and fragment and decides how the
// path is to be canonicalized. Asset keys win over legacy paths, which
// win over relative names. Scheme-qualified and scheme-relative URLs,
// empty paths and paths that carry a key marker but do not parse are
// passthrough.
func Classify(course coursekey.CourseKey, raw string) Reference {
	ref := Reference{Raw: raw}

	rest := raw
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		ref.Fragment = rest[i+1:]
		ref.HasFragment = true
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		ref.Query = rest[i+1:]
		rest = rest[:i]
	}

	if strings.HasPrefix(rest, "//") {
		return ref
	}
	if schemeRE.MatchString(rest) && !coursekey.HasOpaqueMarker(rest) {
		return ref
	}

	p := content.StripStatic(rest)
	switch {
	case p == "":
		return ref
	case coursekey.HasOpaqueMarker(p):
		key, err := coursekey.ParseAssetKey(p)
		if err != nil {
			return ref
		}
		ref.Kind, ref.Key = KindAssetKey, key
	case coursekey.HasLegacyMarker(p):
		key, err := coursekey.ParseAssetKey(p)
		if err != nil {
			return ref
		}
		ref.Kind, ref.Key = KindLegacy, key
	default:
		ref.Kind, ref.Key = KindRelative, content.ComputeLocation(course, p)
	}
	return ref
}
