// Package publish maps public (owner handle, slug, sub-path) URLs onto stored
// site objects and serves them with the correct content type, rewriting HTML
// so relative asset references survive the public mount prefix.
package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/dosym/pagebox/internal/policy"
	"github.com/dosym/pagebox/internal/site"
	"github.com/google/uuid"
)

// ErrNotFound covers every resolution miss: unknown owner, unknown site, and
// missing object all collapse into it so the public surface never reveals
// which stage failed.
var ErrNotFound = errors.New("not found")

// ownerDirectory resolves a public handle (email local-part, else id prefix)
// to an owner id.
type ownerDirectory interface {
	FindOwnerByHandle(ctx context.Context, handle string) (uuid.UUID, error)
}

// siteDirectory resolves (owner, slug) to a site record.
type siteDirectory interface {
	GetBySlug(ctx context.Context, ownerID uuid.UUID, slug string) (site.Site, error)
}

// objectStore fetches stored objects by full key.
type objectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Asset is a resolved public file ready for serving.
type Asset struct {
	Content     []byte
	ContentType string
}

// Service runs the strictly sequential resolution pipeline:
// owner lookup, site lookup, object fetch, optional HTML rewrite.
type Service struct {
	owners  ownerDirectory
	sites   siteDirectory
	objects objectStore
}

// NewService constructs a publish service.
func NewService(owners ownerDirectory, sites siteDirectory, objects objectStore) *Service {
	return &Service{owners: owners, sites: sites, objects: objects}
}

// Resolve serves the object at (ownerHandle, slug, subPath). HTML payloads get
// a single <base href> injected so author-relative asset references keep
// working under the public mount prefix; everything else passes through raw.
func (s *Service) Resolve(ctx context.Context, ownerHandle, slug string, subPath []string) (Asset, error) {
	ownerID, err := s.owners.FindOwnerByHandle(ctx, ownerHandle)
	if err != nil {
		return Asset{}, ErrNotFound
	}

	relativePath := policy.NormalizeRelativePath(subPath)

	target, err := s.sites.GetBySlug(ctx, ownerID, slug)
	if err != nil {
		return Asset{}, ErrNotFound
	}

	content, err := s.objects.Get(ctx, fmt.Sprintf("%s/%s/%s", ownerID, target.ID, relativePath))
	if err != nil {
		return Asset{}, ErrNotFound
	}

	contentType := policy.ClassifyExtension(relativePath)
	if contentType == "text/html" {
		content = InjectBaseHref(content, fmt.Sprintf("/s/%s/%s/", ownerHandle, slug))
	}

	return Asset{Content: content, ContentType: contentType}, nil
}
