package coursekey

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCourseKey(t *testing.T) {
	tests := []struct {
		in   string
		want CourseKey
	}{
		{"course-v1:a+b+split", NewCourseKey("a", "b", "split")},
		{"a/b/old", NewLegacyCourseKey("a", "b", "old")},
		{"course-v1:edX+Demo.X+2024_T1", NewCourseKey("edX", "Demo.X", "2024_T1")},
	}
	for _, tt := range tests {
		got, err := ParseCourseKey(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.in, got.String())
	}
}

func TestParseCourseKeyRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "a/b", "course-v1:a+b", "a/b/c/d", "course-v2:a+b+c"} {
		_, err := ParseCourseKey(in)
		assert.True(t, errors.Is(err, ErrInvalidKey), "expected ErrInvalidKey for %q", in)
	}
}

func TestAssetKeyString(t *testing.T) {
	split := NewCourseKey("a", "b", "split")
	old := NewLegacyCourseKey("a", "b", "old")

	assert.Equal(t, "asset-v1:a+b+split+type@asset+block@img.png", split.MakeAssetKey(CategoryAsset, "img.png").String())
	assert.Equal(t, "/asset-v1:a+b+split+type@asset+block@img.png", split.MakeAssetKey(CategoryAsset, "img.png").Path())
	assert.Equal(t, "/c4x/a/b/asset/img.png", old.MakeAssetKey(CategoryAsset, "img.png").String())
	assert.Equal(t, "/c4x/a/b/thumbnail/img.jpg", old.MakeAssetKey(CategoryThumbnail, "img.jpg").Path())
}

func TestParseAssetKey(t *testing.T) {
	key, err := ParseAssetKey("asset-v1:a+b+split+type@thumbnail+block@img-png-128x128.jpg")
	require.NoError(t, err)
	assert.Equal(t, AssetKey{Course: NewCourseKey("a", "b", "split"), Category: CategoryThumbnail, Name: "img-png-128x128.jpg"}, key)
	assert.False(t, key.Deprecated())

	key, err = ParseAssetKey("/c4x/a/b/asset/images_course_image.jpg")
	require.NoError(t, err)
	assert.Equal(t, AssetKey{Course: NewLegacyCourseKey("a", "b", ""), Category: CategoryAsset, Name: "images_course_image.jpg"}, key)
	assert.True(t, key.Deprecated())

	noSlash, err := ParseAssetKey("c4x/a/b/asset/images_course_image.jpg")
	require.NoError(t, err)
	assert.Equal(t, key, noSlash)
}

func TestParseAssetKeyRoundTrip(t *testing.T) {
	for _, in := range []string{
		"asset-v1:a+b+split+type@asset+block@subs__1eo_jXvZnE_.srt.sjson",
		"/c4x/a/b/asset/special_old_unlock.png",
	} {
		key, err := ParseAssetKey(in)
		require.NoError(t, err)
		assert.Equal(t, in, key.String())
	}
}

func TestParseAssetKeyRejects(t *testing.T) {
	for _, in := range []string{
		"img.png",
		"asset-v1:a+b+split+type@asset+block@dir/img.png",
		"asset-v1:a+b+type@asset+block@img.png",
		"/c4x/a/b/asset",
		"/c4x/a/b/video/clip.mp4",
	} {
		_, err := ParseAssetKey(in)
		assert.ErrorIs(t, err, ErrInvalidKey, in)
	}
}

func TestMarkers(t *testing.T) {
	assert.True(t, HasOpaqueMarker("asset-v1:anything"))
	assert.False(t, HasOpaqueMarker("/asset-v1:anything"))
	assert.True(t, HasLegacyMarker("/c4x/a/b"))
	assert.True(t, HasLegacyMarker("c4x/a"))
	assert.False(t, HasLegacyMarker("c4xfoo/a"))
}
