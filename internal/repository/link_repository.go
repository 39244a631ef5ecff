package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"linkgate/internal/entities"
)

// ErrLinkNotFound is returned when no link exists for a slug.
// Callers discriminate on this sentinel, never on message strings.
var ErrLinkNotFound = errors.New("link not found")

// LinkRepository is the surface the redirect core needs from the durable
// link store. CRUD is owned by the external management API; the core
// reads one record, increments hits, and appends visit rows.
type LinkRepository interface {
	FindBySlug(ctx context.Context, slug string) (*entities.Link, error)
	IncrementHitCount(ctx context.Context, id int64) error
	AddHits(ctx context.Context, id int64, n int64) error
	ActiveSlugs(ctx context.Context) (map[string]int64, error)
	CreateVisit(ctx context.Context, visit *entities.Visit) error
}

type linkRepository struct {
	db *sql.DB
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(db *sql.DB) LinkRepository {
	return &linkRepository{db: db}
}

// FindBySlug loads the full link record for a slug. Expired or inactive
// links are still returned; the gate evaluator decides reachability.
func (r *linkRepository) FindBySlug(ctx context.Context, slug string) (*entities.Link, error) {
	query := `
		SELECT id, slug, target_url, is_active, hits, expires_at, password_hash, max_clicks, created_at, updated_at
		FROM links
		WHERE slug = $1
	`

	var link entities.Link
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&link.ID,
		&link.Slug,
		&link.TargetURL,
		&link.IsActive,
		&link.Hits,
		&link.ExpiresAt,
		&link.PasswordHash,
		&link.MaxClicks,
		&link.CreatedAt,
		&link.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find link: %w", err)
	}

	return &link, nil
}

// IncrementHitCount adds one to the authoritative hit counter.
// Best-effort: used on the degraded path when the cache counter is
// unavailable. May over-count by at most the concurrency window, never
// loses counts (single atomic UPDATE).
func (r *linkRepository) IncrementHitCount(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE links
		SET hits = hits + 1
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to increment hit count: %w", err)
	}
	return nil
}

// AddHits folds n cached hits into the authoritative counter.
// Called by the reconciliation job.
func (r *linkRepository) AddHits(ctx context.Context, id int64, n int64) error {
	if n <= 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE links
		SET hits = hits + $1
		WHERE id = $2
	`, n, id)
	if err != nil {
		return fmt.Errorf("failed to add hits: %w", err)
	}
	return nil
}

// ActiveSlugs returns slug -> id for all active links.
// Used by the reconciliation job to enumerate shadow counters.
func (r *linkRepository) ActiveSlugs(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, slug
		FROM links
		WHERE is_active = TRUE
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active slugs: %w", err)
	}
	defer rows.Close()

	slugs := make(map[string]int64)
	for rows.Next() {
		var id int64
		var slug string
		if err := rows.Scan(&id, &slug); err != nil {
			return nil, fmt.Errorf("failed to scan slug: %w", err)
		}
		slugs[slug] = id
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slugs: %w", err)
	}

	return slugs, nil
}

// CreateVisit appends a visit row with its parsed metadata.
// Timestamps are stored in UTC.
func (r *linkRepository) CreateVisit(ctx context.Context, visit *entities.Visit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO link_visits (id, link_id, ip, user_agent, referer, country, city, region, os, device_type, browser, browser_version, language, visited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		visit.ID,
		visit.LinkID,
		visit.IP,
		visit.UserAgent,
		visit.Referer,
		visit.Country,
		visit.City,
		visit.Region,
		visit.OS,
		visit.DeviceType,
		visit.Browser,
		visit.BrowserVersion,
		visit.Language,
		visit.VisitedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create visit: %w", err)
	}
	return nil
}
