package policy

import (
	"errors"
	"testing"
)

func TestNormalizeRelativePathDropsTraversalSegments(t *testing.T) {
	cases := []struct {
		name     string
		segments []string
		want     string
	}{
		{"plain", []string{"css", "main.css"}, "css/main.css"},
		{"dotdot", []string{"..", "..", "etc", "passwd"}, "etc/passwd"},
		{"dot", []string{".", "img", ".", "logo.png"}, "img/logo.png"},
		{"empty segments", []string{"", "a", "", "b.txt"}, "a/b.txt"},
		{"nil", nil, "index.html"},
		{"all dropped", []string{"..", ".", ""}, "index.html"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeRelativePath(tc.segments); got != tc.want {
				t.Fatalf("NormalizeRelativePath(%v) = %q, want %q", tc.segments, got, tc.want)
			}
		})
	}
}

func TestNormalizeUploadPathRejectsEmptyResult(t *testing.T) {
	if _, err := NormalizeUploadPath("../.."); !errors.Is(err, ErrPathRejected) {
		t.Fatalf("expected ErrPathRejected, got %v", err)
	}
	if _, err := NormalizeUploadPath(""); !errors.Is(err, ErrPathRejected) {
		t.Fatalf("expected ErrPathRejected for empty path, got %v", err)
	}

	got, err := NormalizeUploadPath("assets/../css/site.css")
	if err != nil {
		t.Fatalf("NormalizeUploadPath returned error: %v", err)
	}
	if got != "assets/css/site.css" {
		t.Fatalf("unexpected normalized path: %q", got)
	}
}

func TestClassifyExtensionIsCaseInsensitive(t *testing.T) {
	if upper, lower := ClassifyExtension("IMG.PNG"), ClassifyExtension("img.png"); upper != lower {
		t.Fatalf("case mismatch: %q vs %q", upper, lower)
	}
	if got := ClassifyExtension("index.HTML"); got != "text/html" {
		t.Fatalf("ClassifyExtension(index.HTML) = %q", got)
	}
}

func TestClassifyExtensionIsTotal(t *testing.T) {
	for _, name := range []string{"", ".", "noext", "trailing.", "weird.zzz", "a.b.c.unknown"} {
		if got := ClassifyExtension(name); name != "" && got == "" {
			t.Fatalf("ClassifyExtension(%q) returned empty", name)
		}
	}
	if got := ClassifyExtension("archive.zip"); got != "application/octet-stream" {
		t.Fatalf("unknown extension classified as %q", got)
	}
}

func TestUploadAllowListIsSubsetOfClassifyTable(t *testing.T) {
	// pdf, xml and eot classify for serving but are not accepted on upload.
	for _, name := range []string{"doc.pdf", "feed.xml", "font.eot"} {
		if IsUploadable(name) {
			t.Fatalf("%s should not be uploadable", name)
		}
		if got := ClassifyExtension(name); got == "application/octet-stream" {
			t.Fatalf("%s should still classify, got octet-stream", name)
		}
	}

	for _, name := range []string{"index.html", "style.css", "app.mjs", "logo.webp", "font.woff2"} {
		if !IsUploadable(name) {
			t.Fatalf("%s should be uploadable", name)
		}
	}

	if IsUploadable("script.sh") {
		t.Fatalf("unknown extension should not be uploadable")
	}
}

func TestSizeCeilings(t *testing.T) {
	if MaxFileSize != 5*1024*1024 {
		t.Fatalf("per-file ceiling changed: %d", MaxFileSize)
	}
	if MaxSiteSize != 50*1024*1024 {
		t.Fatalf("per-site ceiling changed: %d", MaxSiteSize)
	}
}
