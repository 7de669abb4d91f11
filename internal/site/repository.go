package site

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repositoryTimeout = 5 * time.Second

// Repository provides access to site record persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a site repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new site record. The unique constraint on (owner_id, slug)
// is the authoritative duplicate check; a violation maps to ErrSlugTaken.
func (r *Repository) Create(ctx context.Context, ownerID uuid.UUID, name, slug string, description *string) (Site, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
INSERT INTO sites (id, owner_id, name, slug, description)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, owner_id, name, slug, description, created_at, updated_at;`

	row := r.pool.QueryRow(ctx, query, uuid.New(), ownerID, strings.TrimSpace(name), slug, description)

	var s Site
	if err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Slug, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return Site{}, ErrSlugTaken
		}
		return Site{}, fmt.Errorf("create site: %w", err)
	}
	return s, nil
}

// List returns all sites owned by the user, newest first.
func (r *Repository) List(ctx context.Context, ownerID uuid.UUID) ([]Site, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
SELECT id, owner_id, name, slug, description, created_at, updated_at
FROM sites
WHERE owner_id = $1
ORDER BY created_at DESC;`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		var s Site
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Slug, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sites: %w", err)
	}
	return sites, nil
}

// Get fetches a single site ensuring ownership.
func (r *Repository) Get(ctx context.Context, ownerID, siteID uuid.UUID) (Site, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
SELECT id, owner_id, name, slug, description, created_at, updated_at
FROM sites
WHERE id = $1 AND owner_id = $2;`

	var s Site
	err := r.pool.QueryRow(ctx, query, siteID, ownerID).Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Slug, &s.Description, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Site{}, ErrSiteNotFound
		}
		return Site{}, fmt.Errorf("get site: %w", err)
	}
	return s, nil
}

// GetBySlug resolves (owner, slug) to a site. Used both as the fast-path
// duplicate check on creation and by the public resolver.
func (r *Repository) GetBySlug(ctx context.Context, ownerID uuid.UUID, slug string) (Site, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
SELECT id, owner_id, name, slug, description, created_at, updated_at
FROM sites
WHERE owner_id = $1 AND slug = $2;`

	var s Site
	err := r.pool.QueryRow(ctx, query, ownerID, slug).Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Slug, &s.Description, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Site{}, ErrSiteNotFound
		}
		return Site{}, fmt.Errorf("get site by slug: %w", err)
	}
	return s, nil
}

// Update changes the mutable metadata of a site. The slug is immutable.
func (r *Repository) Update(ctx context.Context, ownerID, siteID uuid.UUID, name string, description *string) (Site, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
UPDATE sites
SET name = $3, description = $4, updated_at = NOW()
WHERE id = $1 AND owner_id = $2
RETURNING id, owner_id, name, slug, description, created_at, updated_at;`

	var s Site
	err := r.pool.QueryRow(ctx, query, siteID, ownerID, strings.TrimSpace(name), description).Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.Slug, &s.Description, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Site{}, ErrSiteNotFound
		}
		return Site{}, fmt.Errorf("update site: %w", err)
	}
	return s, nil
}

// Delete removes a site record owned by the user.
func (r *Repository) Delete(ctx context.Context, ownerID, siteID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM sites WHERE id = $1 AND owner_id = $2;`, siteID, ownerID)
	if err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSiteNotFound
	}
	return nil
}

// ListOwned filters the given ids down to those owned by the user.
func (r *Repository) ListOwned(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]Site, error) {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	query := `
SELECT id, owner_id, name, slug, description, created_at, updated_at
FROM sites
WHERE owner_id = $1 AND id = ANY($2);`

	rows, err := r.pool.Query(ctx, query, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("list owned sites: %w", err)
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		var s Site
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.Slug, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sites: %w", err)
	}
	return sites, nil
}

// DeleteMany removes a set of site records owned by the user.
func (r *Repository) DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, repositoryTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, `DELETE FROM sites WHERE owner_id = $1 AND id = ANY($2);`, ownerID, ids); err != nil {
		return fmt.Errorf("delete sites: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
