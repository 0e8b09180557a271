package pathutil

import (
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"/a/b/":       "/a/b",
		"/a/./b/../c": "/a/c",
		"rel/dir/":    "rel/dir",
	}
	for in, want := range tests {
		if got := Normalize(in); got != filepath.FromSlash(want) {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRelative(t *testing.T) {
	root := filepath.FromSlash("/course/static")
	got, err := Relative(root, filepath.Join(root, "special", "img.png"))
	if err != nil {
		t.Fatalf("Relative: %v", err)
	}
	if got != "special/img.png" {
		t.Fatalf("Relative = %q, want special/img.png", got)
	}

	if _, err := Relative(root, filepath.FromSlash("/course/other/img.png")); err == nil {
		t.Fatalf("expected error for path outside root")
	}
}
