package policy

import "errors"

var (
	// ErrPathRejected signals a relative path that is empty or reduces to
	// nothing after traversal segments are stripped.
	ErrPathRejected = errors.New("path rejected")
	// ErrUnsupportedType signals a file extension outside the upload allow-list.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrFileTooLarge signals a single file above the per-file ceiling.
	ErrFileTooLarge = errors.New("file too large")
	// ErrSiteQuotaExceeded signals a batch that would push the site past its
	// total size ceiling.
	ErrSiteQuotaExceeded = errors.New("site quota exceeded")
)
