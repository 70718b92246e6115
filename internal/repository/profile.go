package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gitfolio/gitfolio/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

// ErrProfileNotFound is returned when no profile row exists yet.
var ErrProfileNotFound = errors.New("profile not found")

// GetProfile retrieves the profile row for a username.
func (r *Repository) GetProfile(ctx context.Context, username string) (*model.Profile, error) {
	query := `
		SELECT id, username, display_name, headline, about, interests, created_at, updated_at
		FROM profiles
		WHERE username = $1
	`

	var p model.Profile
	var interests []string
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&p.ID,
		&p.Username,
		&p.DisplayName,
		&p.Headline,
		&p.About,
		pq.Array(&interests),
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p.Interests = interests
	return &p, nil
}

// UpsertProfile inserts or replaces the profile row for a username.
// There is exactly one row per username.
func (r *Repository) UpsertProfile(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (id, username, display_name, headline, about, interests, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (username) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			headline = EXCLUDED.headline,
			about = EXCLUDED.about,
			interests = EXCLUDED.interests,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Username,
		p.DisplayName,
		p.Headline,
		p.About,
		pq.Array(p.Interests),
		p.CreatedAt,
		p.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}
