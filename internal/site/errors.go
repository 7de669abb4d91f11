package site

import "errors"

var (
	// ErrSiteNotFound indicates the site does not exist for the given owner.
	ErrSiteNotFound = errors.New("site not found")
	// ErrSlugTaken is returned when the owner already has a site at that slug.
	ErrSlugTaken = errors.New("slug already in use")
	// ErrInvalidSlug signals a slug outside the allowed pattern.
	ErrInvalidSlug = errors.New("invalid slug")
	// ErrNoEntryPoint signals an upload batch without any HTML document.
	ErrNoEntryPoint = errors.New("batch contains no HTML entry point")
	// ErrEmptyBatch signals an upload request without any files.
	ErrEmptyBatch = errors.New("no files in batch")
	// ErrUploadFailed wraps partial storage write failures, naming the files
	// that did not make it.
	ErrUploadFailed = errors.New("upload failed")
	// ErrObjectNotFound signals a storage key with no object behind it.
	ErrObjectNotFound = errors.New("object not found")
)
