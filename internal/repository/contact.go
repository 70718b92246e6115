package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gitfolio/gitfolio/internal/model"
	"github.com/jackc/pgx/v5"
)

// ErrContactLinkNotFound is returned when a contact link does not exist.
var ErrContactLinkNotFound = errors.New("contact link not found")

// CreateContactLink inserts a new contact link into the database.
func (r *Repository) CreateContactLink(ctx context.Context, link *model.ContactLink) error {
	query := `
		INSERT INTO contact_links (id, kind, label, url, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		link.ID,
		link.Kind,
		link.Label,
		link.URL,
		link.SortOrder,
		link.CreatedAt,
		link.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create contact link: %w", err)
	}

	return nil
}

// GetContactLinkByID retrieves a contact link by its ID.
func (r *Repository) GetContactLinkByID(ctx context.Context, id string) (*model.ContactLink, error) {
	query := `
		SELECT id, kind, label, url, sort_order, created_at, updated_at
		FROM contact_links
		WHERE id = $1
	`

	var link model.ContactLink
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&link.ID,
		&link.Kind,
		&link.Label,
		&link.URL,
		&link.SortOrder,
		&link.CreatedAt,
		&link.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactLinkNotFound
		}
		return nil, fmt.Errorf("failed to get contact link: %w", err)
	}

	return &link, nil
}

// ListContactLinks retrieves all contact links in display order.
func (r *Repository) ListContactLinks(ctx context.Context) ([]*model.ContactLink, error) {
	query := `
		SELECT id, kind, label, url, sort_order, created_at, updated_at
		FROM contact_links
		ORDER BY sort_order ASC, created_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact links: %w", err)
	}
	defer rows.Close()

	var links []*model.ContactLink
	for rows.Next() {
		var link model.ContactLink
		if err := rows.Scan(
			&link.ID,
			&link.Kind,
			&link.Label,
			&link.URL,
			&link.SortOrder,
			&link.CreatedAt,
			&link.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contact link: %w", err)
		}
		links = append(links, &link)
	}

	return links, rows.Err()
}

// CountContactLinks returns the number of contact links.
func (r *Repository) CountContactLinks(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_links`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count contact links: %w", err)
	}
	return count, nil
}

// UpdateContactLink updates a contact link's mutable fields.
func (r *Repository) UpdateContactLink(ctx context.Context, link *model.ContactLink) error {
	query := `
		UPDATE contact_links
		SET kind = $2, label = $3, url = $4, sort_order = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		link.ID,
		link.Kind,
		link.Label,
		link.URL,
		link.SortOrder,
		link.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update contact link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrContactLinkNotFound
	}

	return nil
}

// DeleteContactLink removes a contact link.
func (r *Repository) DeleteContactLink(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM contact_links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrContactLinkNotFound
	}

	return nil
}
