package site

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dosym/pagebox/internal/policy"
	"github.com/google/uuid"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// recordStore abstracts the relational persistence of site records.
type recordStore interface {
	Create(ctx context.Context, ownerID uuid.UUID, name, slug string, description *string) (Site, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]Site, error)
	Get(ctx context.Context, ownerID, siteID uuid.UUID) (Site, error)
	GetBySlug(ctx context.Context, ownerID uuid.UUID, slug string) (Site, error)
	Update(ctx context.Context, ownerID, siteID uuid.UUID, name string, description *string) (Site, error)
	Delete(ctx context.Context, ownerID, siteID uuid.UUID) error
	ListOwned(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]Site, error)
	DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) error
}

// objectStore is the blob-store contract of the orchestrator. No transactional
// guarantee holds across calls; the service supplies its own compensation.
type objectStore interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	ListPrefix(ctx context.Context, prefix string) ([]ObjectInfo, error)
	RemoveMany(ctx context.Context, keys []string) error
}

// Service orchestrates site lifecycle: batch validation, quota accounting,
// storage writes, and compensating rollback when creation fails midway.
type Service struct {
	repo    recordStore
	objects objectStore
}

// NewService constructs a site service.
func NewService(repo recordStore, objects objectStore) *Service {
	return &Service{repo: repo, objects: objects}
}

// CreateWithFiles validates the whole batch, creates the site record, then
// writes every object. If any write fails the record is deleted and the
// objects written so far are removed, so no partial site stays addressable.
func (s *Service) CreateWithFiles(ctx context.Context, ownerID uuid.UUID, name, slug string, description *string, files []IncomingFile) (Site, error) {
	if !slugPattern.MatchString(slug) {
		return Site{}, ErrInvalidSlug
	}
	if err := validateBatch(files); err != nil {
		return Site{}, err
	}

	var total int64
	for _, f := range files {
		total += int64(len(f.Content))
	}
	if total > policy.MaxSiteSize {
		return Site{}, fmt.Errorf("%w: batch is %d bytes, ceiling is %d", policy.ErrSiteQuotaExceeded, total, policy.MaxSiteSize)
	}

	// Fast-path duplicate check; the unique constraint on insert is the
	// authoritative rejection under concurrent identical requests.
	if _, err := s.repo.GetBySlug(ctx, ownerID, slug); err == nil {
		return Site{}, ErrSlugTaken
	} else if !errors.Is(err, ErrSiteNotFound) {
		return Site{}, err
	}

	created, err := s.repo.Create(ctx, ownerID, name, slug, description)
	if err != nil {
		return Site{}, err
	}

	written, failed := s.putBatch(ctx, ownerID, created.ID, files)
	if len(failed) > 0 {
		_ = s.objects.RemoveMany(ctx, written)
		if delErr := s.repo.Delete(ctx, ownerID, created.ID); delErr != nil {
			return Site{}, fmt.Errorf("rollback site record after failed upload: %w", delErr)
		}
		return Site{}, fmt.Errorf("%w: %s", ErrUploadFailed, strings.Join(failed, ", "))
	}

	return created, nil
}

// UploadFiles appends or overwrites a batch on an existing site. Current
// usage is recomputed from a fresh listing before admitting the batch. A
// partial failure leaves earlier writes in place; retrying the whole batch is
// safe since every put is an idempotent overwrite per key.
func (s *Service) UploadFiles(ctx context.Context, ownerID, siteID uuid.UUID, files []IncomingFile) error {
	target, err := s.repo.Get(ctx, ownerID, siteID)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrEmptyBatch
	}
	if err := validateFiles(files); err != nil {
		return err
	}

	var incoming int64
	for _, f := range files {
		incoming += int64(len(f.Content))
	}

	usage, err := s.Usage(ctx, ownerID, target.ID)
	if err != nil {
		return err
	}
	if usage.TotalBytes+incoming > policy.MaxSiteSize {
		return fmt.Errorf("%w: current %d + incoming %d exceeds %d",
			policy.ErrSiteQuotaExceeded, usage.TotalBytes, incoming, policy.MaxSiteSize)
	}

	if _, failed := s.putBatch(ctx, ownerID, target.ID, files); len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrUploadFailed, strings.Join(failed, ", "))
	}
	return nil
}

// ListFiles returns the flat object listing for a site with the storage
// prefix stripped.
func (s *Service) ListFiles(ctx context.Context, ownerID, siteID uuid.UUID) ([]StoredFile, error) {
	target, err := s.repo.Get(ctx, ownerID, siteID)
	if err != nil {
		return nil, err
	}

	prefix := objectPrefix(ownerID, target.ID)
	objects, err := s.objects.ListPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	files := make([]StoredFile, 0, len(objects))
	for _, obj := range objects {
		files = append(files, StoredFile{
			Path:         strings.TrimPrefix(obj.Key, prefix),
			SizeBytes:    obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return files, nil
}

// FileTree returns the hierarchical view of a site's files.
func (s *Service) FileTree(ctx context.Context, ownerID, siteID uuid.UUID) ([]TreeNode, error) {
	files, err := s.ListFiles(ctx, ownerID, siteID)
	if err != nil {
		return nil, err
	}
	return BuildTree(files), nil
}

// Usage sums the site's stored object sizes from a live listing. No counter
// is cached; every admission decision re-reads storage.
func (s *Service) Usage(ctx context.Context, ownerID, siteID uuid.UUID) (Usage, error) {
	objects, err := s.objects.ListPrefix(ctx, objectPrefix(ownerID, siteID))
	if err != nil {
		return Usage{}, err
	}
	var usage Usage
	for _, obj := range objects {
		usage.TotalBytes += obj.Size
		usage.FileCount++
	}
	return usage, nil
}

// DeleteFile removes exactly one object from a site. Deleting a folder is
// expressed by the caller as deleting each leaf under it.
func (s *Service) DeleteFile(ctx context.Context, ownerID, siteID uuid.UUID, relativePath string) error {
	target, err := s.repo.Get(ctx, ownerID, siteID)
	if err != nil {
		return err
	}

	normalized, err := policy.NormalizeUploadPath(relativePath)
	if err != nil {
		return err
	}
	return s.objects.RemoveMany(ctx, []string{objectPrefix(ownerID, target.ID) + normalized})
}

// Delete removes every stored object under the site's prefix and then the
// record. Storage goes first: a crash in between leaves inert orphaned
// objects, never a live record pointing at storage that looks deleted.
func (s *Service) Delete(ctx context.Context, ownerID, siteID uuid.UUID) error {
	target, err := s.repo.Get(ctx, ownerID, siteID)
	if err != nil {
		return err
	}

	if err := s.removeObjects(ctx, ownerID, target.ID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, ownerID, siteID)
}

// DeleteMany removes a batch of sites. Ownership of every target is verified
// before any mutation.
func (s *Service) DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return ErrEmptyBatch
	}

	owned, err := s.repo.ListOwned(ctx, ownerID, ids)
	if err != nil {
		return err
	}
	if len(owned) != len(ids) {
		return ErrSiteNotFound
	}

	for _, target := range owned {
		if err := s.removeObjects(ctx, ownerID, target.ID); err != nil {
			return err
		}
	}
	return s.repo.DeleteMany(ctx, ownerID, ids)
}

// ListSites returns the owner's sites.
func (s *Service) ListSites(ctx context.Context, ownerID uuid.UUID) ([]Site, error) {
	return s.repo.List(ctx, ownerID)
}

// GetSite returns one site ensuring ownership.
func (s *Service) GetSite(ctx context.Context, ownerID, siteID uuid.UUID) (Site, error) {
	return s.repo.Get(ctx, ownerID, siteID)
}

// UpdateSite changes site name and description.
func (s *Service) UpdateSite(ctx context.Context, ownerID, siteID uuid.UUID, name string, description *string) (Site, error) {
	if strings.TrimSpace(name) == "" {
		return Site{}, fmt.Errorf("site name required")
	}
	return s.repo.Update(ctx, ownerID, siteID, name, description)
}

func (s *Service) removeObjects(ctx context.Context, ownerID, siteID uuid.UUID) error {
	objects, err := s.objects.ListPrefix(ctx, objectPrefix(ownerID, siteID))
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	return s.objects.RemoveMany(ctx, keys)
}

// putBatch writes every file under the site prefix and reports which keys
// succeeded and which filenames failed.
func (s *Service) putBatch(ctx context.Context, ownerID, siteID uuid.UUID, files []IncomingFile) (written []string, failed []string) {
	prefix := objectPrefix(ownerID, siteID)
	for _, f := range files {
		normalized, err := policy.NormalizeUploadPath(f.RelativePath)
		if err != nil {
			failed = append(failed, f.Name)
			continue
		}
		key := prefix + normalized
		if err := s.objects.Put(ctx, key, f.Content, policy.ClassifyExtension(f.Name)); err != nil {
			failed = append(failed, f.Name)
			continue
		}
		written = append(written, key)
	}
	return written, failed
}

// validateBatch enforces the creation-time rules: a non-empty batch with at
// least one HTML entry point, every file typed and sized within policy.
func validateBatch(files []IncomingFile) error {
	if len(files) == 0 {
		return ErrEmptyBatch
	}

	hasHTML := false
	for _, f := range files {
		if policy.IsHTML(f.Name) {
			hasHTML = true
			break
		}
	}
	if !hasHTML {
		return ErrNoEntryPoint
	}

	return validateFiles(files)
}

func validateFiles(files []IncomingFile) error {
	for _, f := range files {
		if !policy.IsUploadable(f.Name) {
			return fmt.Errorf("%w: %s", policy.ErrUnsupportedType, f.Name)
		}
		if int64(len(f.Content)) > policy.MaxFileSize {
			return fmt.Errorf("%w: %s", policy.ErrFileTooLarge, f.Name)
		}
	}
	return nil
}

func objectPrefix(ownerID, siteID uuid.UUID) string {
	return fmt.Sprintf("%s/%s/", ownerID, siteID)
}
