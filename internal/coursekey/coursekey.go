// Package coursekey implements course and asset identifiers in both of
// their representational eras: the legacy slash-separated form and the
// opaque composite-key form.
package coursekey

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidKey is returned when a string cannot be parsed as a key.
var ErrInvalidKey = errors.New("invalid key")

const (
	courseNamespace = "course-v1"
	assetNamespace  = "asset-v1"
	legacyMount     = "c4x"
)

// Category of an asset within a course.
const (
	CategoryAsset     = "asset"
	CategoryThumbnail = "thumbnail"
)

var (
	// org, course and run accept the same characters in both eras.
	keyPart = `[\w\-~.:]+`

	opaqueCourseRE = regexp.MustCompile(`^course-v1:(` + keyPart + `)\+(` + keyPart + `)\+(` + keyPart + `)$`)
	legacyCourseRE = regexp.MustCompile(`^(` + keyPart + `)/(` + keyPart + `)/(` + keyPart + `)$`)
)

// CourseKey identifies one course offering.
type CourseKey struct {
	Org    string
	Course string
	Run    string

	// Deprecated is set for keys of the legacy slash-separated era.
	Deprecated bool
}

// NewCourseKey returns an opaque-era course key.
func NewCourseKey(org, course, run string) CourseKey {
	return CourseKey{Org: org, Course: course, Run: run}
}

// NewLegacyCourseKey returns a slash-separated course key.
func NewLegacyCourseKey(org, course, run string) CourseKey {
	return CourseKey{Org: org, Course: course, Run: run, Deprecated: true}
}

// ParseCourseKey parses "course-v1:org+course+run" or "org/course/run".
func ParseCourseKey(s string) (CourseKey, error) {
	if m := opaqueCourseRE.FindStringSubmatch(s); m != nil {
		return NewCourseKey(m[1], m[2], m[3]), nil
	}
	if m := legacyCourseRE.FindStringSubmatch(s); m != nil {
		return NewLegacyCourseKey(m[1], m[2], m[3]), nil
	}
	return CourseKey{}, fmt.Errorf("%w: course key %q", ErrInvalidKey, s)
}

// IsZero reports whether k is the zero key.
func (k CourseKey) IsZero() bool {
	return k == CourseKey{}
}

func (k CourseKey) String() string {
	if k.Deprecated {
		return strings.Join([]string{k.Org, k.Course, k.Run}, "/")
	}
	return fmt.Sprintf("%s:%s+%s+%s", courseNamespace, k.Org, k.Course, k.Run)
}

// MakeAssetKey returns the key of the named asset in this course. The
// asset key shares the course key's era.
func (k CourseKey) MakeAssetKey(category, name string) AssetKey {
	return AssetKey{Course: k, Category: category, Name: name}
}
