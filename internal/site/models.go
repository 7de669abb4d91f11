package site

import (
	"time"

	"github.com/google/uuid"
)

// Site is a published static site owned by a single user. The (owner, slug)
// pair is unique and the slug never changes after creation.
type Site struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IncomingFile is one member of an upload batch: the client-declared relative
// path plus the raw bytes.
type IncomingFile struct {
	Name         string
	RelativePath string
	Content      []byte
}

// StoredFile describes one object under a site's storage prefix, with the
// prefix stripped off.
type StoredFile struct {
	Path         string    `json:"path"`
	SizeBytes    int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// Usage aggregates a site's storage consumption, recomputed from a live
// listing on every read.
type Usage struct {
	TotalBytes int64 `json:"total_bytes"`
	FileCount  int64 `json:"file_count"`
}
