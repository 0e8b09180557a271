package coursekey

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	namePart = `[\p{L}\p{N}_\-~.:%]+`

	opaqueAssetRE = regexp.MustCompile(`^asset-v1:(` + keyPart + `)\+(` + keyPart + `)\+(` + keyPart +
		`)\+type@(asset|thumbnail)\+block@(` + namePart + `)$`)
	legacyAssetRE = regexp.MustCompile(`^/?c4x/([^/]+)/([^/]+)/(asset|thumbnail)/([^/]+)$`)
)

// AssetKey identifies one stored asset within a course.
type AssetKey struct {
	Course   CourseKey
	Category string
	Name     string
}

// ParseAssetKey parses an opaque "asset-v1:..." key or a legacy
// "/c4x/org/course/category/name" path. The leading slash of the legacy
// form is optional. Legacy paths carry no run, so the parsed course key
// has an empty Run.
func ParseAssetKey(s string) (AssetKey, error) {
	if m := opaqueAssetRE.FindStringSubmatch(s); m != nil {
		return AssetKey{
			Course:   NewCourseKey(m[1], m[2], m[3]),
			Category: m[4],
			Name:     m[5],
		}, nil
	}
	if m := legacyAssetRE.FindStringSubmatch(s); m != nil {
		return AssetKey{
			Course:   NewLegacyCourseKey(m[1], m[2], ""),
			Category: m[3],
			Name:     m[4],
		}, nil
	}
	return AssetKey{}, fmt.Errorf("%w: asset key %q", ErrInvalidKey, s)
}

// HasOpaqueMarker reports whether s claims to be an opaque asset key.
func HasOpaqueMarker(s string) bool {
	return strings.HasPrefix(s, assetNamespace+":")
}

// HasLegacyMarker reports whether s claims to be a legacy c4x path.
func HasLegacyMarker(s string) bool {
	return strings.HasPrefix(strings.TrimPrefix(s, "/"), legacyMount+"/")
}

// Deprecated reports whether the key belongs to the legacy era.
func (k AssetKey) Deprecated() bool {
	return k.Course.Deprecated
}

// String serializes the key. Legacy keys serialize to their c4x path,
// which starts with a slash; opaque keys do not.
func (k AssetKey) String() string {
	if k.Course.Deprecated {
		return "/" + strings.Join([]string{legacyMount, k.Course.Org, k.Course.Course, k.Category, k.Name}, "/")
	}
	return fmt.Sprintf("%s:%s+%s+%s+type@%s+block@%s",
		assetNamespace, k.Course.Org, k.Course.Course, k.Course.Run, k.Category, k.Name)
}

// Path returns the root-relative URL path of the asset.
func (k AssetKey) Path() string {
	s := k.String()
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	return s
}

// WithName returns a copy of k naming a different asset in the same
// course and category.
func (k AssetKey) WithName(name string) AssetKey {
	k.Name = name
	return k
}
