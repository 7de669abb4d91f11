package policy

import "strings"

const (
	// MaxFileSize caps a single uploaded file at 5 MiB.
	MaxFileSize = 5 * 1024 * 1024
	// MaxSiteSize caps the sum of all files in one site at 50 MiB.
	MaxSiteSize = 50 * 1024 * 1024

	// DefaultDocument is served when a public request carries no sub-path.
	DefaultDocument = "index.html"
)

// mimeTypes maps lower-cased extensions to content types for serving.
var mimeTypes = map[string]string{
	"html": "text/html",
	"htm":  "text/html",

	"css": "text/css",

	"js":  "application/javascript",
	"mjs": "application/javascript",
	"cjs": "application/javascript",

	"json": "application/json",

	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"ico":  "image/x-icon",

	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttf":   "font/ttf",
	"otf":   "font/otf",
	"eot":   "application/vnd.ms-fontobject",

	"txt": "text/plain",
	"xml": "application/xml",
	"pdf": "application/pdf",
}

// uploadAllowList is a strict subset of mimeTypes: pdf, eot, and xml stay
// servable but are not accepted on upload.
var uploadAllowList = map[string]struct{}{
	"html": {}, "htm": {},
	"css":  {},
	"js":   {}, "mjs": {}, "cjs": {},
	"json": {},
	"png":  {}, "jpg": {}, "jpeg": {}, "gif": {}, "svg": {}, "webp": {}, "ico": {},
	"woff": {}, "woff2": {}, "ttf": {}, "otf": {},
	"txt": {},
}

// NormalizeRelativePath filters externally supplied path segments, dropping
// empty, "." and ".." entries, and joins the rest with "/". An empty result
// falls back to DefaultDocument. Every external path must pass through here
// (or NormalizeUploadPath) before it is concatenated into a storage key.
func NormalizeRelativePath(segments []string) string {
	clean := filterSegments(segments)
	if len(clean) == 0 {
		return DefaultDocument
	}
	return strings.Join(clean, "/")
}

// NormalizeUploadPath normalizes a slash-separated relative path from an
// upload request. Unlike the serving side there is no index.html fallback: a
// path that is empty after filtering is rejected.
func NormalizeUploadPath(relativePath string) (string, error) {
	clean := filterSegments(strings.Split(relativePath, "/"))
	if len(clean) == 0 {
		return "", ErrPathRejected
	}
	return strings.Join(clean, "/"), nil
}

func filterSegments(segments []string) []string {
	clean := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		clean = append(clean, seg)
	}
	return clean
}

// ClassifyExtension returns the content type for a filename based on its
// extension. Unknown extensions classify as application/octet-stream. Total
// and case-insensitive.
func ClassifyExtension(filename string) string {
	if mime, ok := mimeTypes[extensionOf(filename)]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsUploadable reports whether the filename's extension is on the upload
// allow-list.
func IsUploadable(filename string) bool {
	_, ok := uploadAllowList[extensionOf(filename)]
	return ok
}

// IsHTML reports whether a filename classifies as an HTML document.
func IsHTML(filename string) bool {
	return ClassifyExtension(filename) == "text/html"
}

func extensionOf(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}
