package content

import (
	"testing"

	"github.com/michaelscutari/assetpath/internal/coursekey"
)

func TestComputeLocationKeepsDoubleUnderscores(t *testing.T) {
	course := coursekey.NewLegacyCourseKey("mitX", "400", "ignore")
	got := ComputeLocation(course, "subs__1eo_jXvZnE .srt.sjson")
	want := course.MakeAssetKey(coursekey.CategoryAsset, "subs__1eo_jXvZnE_.srt.sjson")
	if got != want {
		t.Fatalf("ComputeLocation = %+v, want %+v", got, want)
	}
}

func TestComputeLocationFlattensSubdirectories(t *testing.T) {
	course := coursekey.NewCourseKey("a", "b", "split")
	nested := ComputeLocation(course, "special/img.png")
	flat := ComputeLocation(course, "special_img.png")
	if nested != flat {
		t.Fatalf("expected %v == %v", nested, flat)
	}
	if nested.Name != "special_img.png" {
		t.Fatalf("unexpected name %q", nested.Name)
	}
}

func TestComputeLocationSubstitutesInvalidCharacters(t *testing.T) {
	course := coursekey.NewCourseKey("a", "b", "c")
	tests := map[string]string{
		"my image.png":    "my_image.png",
		"a+b@c.png":       "a_b_c.png",
		"café.png":        "café.png",
		"50%.png":         "50%.png",
		"dir/sub/x-y.png": "dir_sub_x-y.png",
	}
	for in, want := range tests {
		if got := ComputeLocation(course, in).Name; got != want {
			t.Errorf("ComputeLocation(%q).Name = %q, want %q", in, got, want)
		}
	}
}

func TestThumbnailName(t *testing.T) {
	tests := []struct {
		original string
		dims     *Dimensions
		want     string
	}{
		{"monsters__.jpg", nil, "monsters__.jpg"},
		{"monsters__.png", nil, "monsters__-png.jpg"},
		{"dots.in.name.jpg", nil, "dots.in.name.jpg"},
		{"dots.in.name.png", nil, "dots.in.name-png.jpg"},
		{"split_unlock.png", &Dimensions{Width: 128, Height: 128}, "split_unlock-png-128x128.jpg"},
		{"photo.jpg", &Dimensions{Width: 64, Height: 32}, "photo-64x32.jpg"},
		{"noext", nil, "noext.jpg"},
	}
	for _, tt := range tests {
		if got := ThumbnailName(tt.original, tt.dims); got != tt.want {
			t.Errorf("ThumbnailName(%q) = %q, want %q", tt.original, got, tt.want)
		}
	}
}

func TestThumbnailLocation(t *testing.T) {
	course := coursekey.NewLegacyCourseKey("mitX", "800", "ignore_run")
	c := &StaticContent{Location: course.MakeAssetKey(coursekey.CategoryAsset, "monsters__.png")}
	got := ThumbnailLocation(c, nil)
	want := course.MakeAssetKey(coursekey.CategoryThumbnail, "monsters__-png.jpg")
	if got != want {
		t.Fatalf("ThumbnailLocation = %+v, want %+v", got, want)
	}
}

func TestThumbnailDefaultsToNil(t *testing.T) {
	c := StaticContent{Name: "name", ContentType: "image/png"}
	if c.Thumbnail != nil {
		t.Fatalf("expected nil thumbnail, got %+v", c.Thumbnail)
	}
}

func TestLocationFromPath(t *testing.T) {
	got, err := LocationFromPath("/c4x/a/b/asset/images_course_image.jpg")
	if err != nil {
		t.Fatalf("LocationFromPath: %v", err)
	}
	want := coursekey.NewLegacyCourseKey("a", "b", "").MakeAssetKey(coursekey.CategoryAsset, "images_course_image.jpg")
	if got != want {
		t.Fatalf("LocationFromPath = %+v, want %+v", got, want)
	}

	opaque, err := LocationFromPath("/asset-v1:a+b+c+type@asset+block@x.png")
	if err != nil {
		t.Fatalf("LocationFromPath opaque: %v", err)
	}
	if opaque.Name != "x.png" || opaque.Course.Run != "c" {
		t.Fatalf("unexpected key %+v", opaque)
	}

	if _, err := LocationFromPath("/not/a/key.png"); err == nil {
		t.Fatalf("expected error for non-key path")
	}
}

func TestAssetKeyFromPath(t *testing.T) {
	course := coursekey.NewCourseKey("a", "b", "split")
	want := course.MakeAssetKey(coursekey.CategoryAsset, "special_img.png")
	for _, in := range []string{
		"special/img.png",
		"/special/img.png",
		"/static/special/img.png",
		"//special/img.png",
		"/asset-v1:a+b+split+type@asset+block@special_img.png",
	} {
		if got := AssetKeyFromPath(course, in); got != want {
			t.Errorf("AssetKeyFromPath(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsImage(t *testing.T) {
	for ct, want := range map[string]bool{
		"image/png":     true,
		"image/jpeg":    true,
		"image/svg+xml": false,
		"text/plain":    false,
	} {
		c := StaticContent{ContentType: ct}
		if got := c.IsImage(); got != want {
			t.Errorf("IsImage(%q) = %v, want %v", ct, got, want)
		}
	}
}
