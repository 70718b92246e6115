package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gitfolio/gitfolio/internal/model"
	"github.com/jackc/pgx/v5"
)

// Common errors for owner repository operations.
var (
	ErrOwnerNotFound = errors.New("owner not found")
	ErrEmailExists   = errors.New("email already exists")
)

// CreateOwner inserts a new owner into the database.
func (r *Repository) CreateOwner(ctx context.Context, owner *model.Owner) error {
	query := `
		INSERT INTO owners (id, email, username, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		owner.ID,
		owner.Email,
		owner.Username,
		owner.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create owner: %w", err)
	}

	return nil
}

// GetOwnerByID retrieves an owner by their ID.
func (r *Repository) GetOwnerByID(ctx context.Context, id string) (*model.Owner, error) {
	query := `
		SELECT id, email, username, created_at
		FROM owners
		WHERE id = $1
	`

	var owner model.Owner
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&owner.ID,
		&owner.Email,
		&owner.Username,
		&owner.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to get owner by ID: %w", err)
	}

	return &owner, nil
}

// GetOwnerByEmail retrieves an owner by their email address.
func (r *Repository) GetOwnerByEmail(ctx context.Context, email string) (*model.Owner, error) {
	query := `
		SELECT id, email, username, created_at
		FROM owners
		WHERE email = $1
	`

	var owner model.Owner
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&owner.ID,
		&owner.Email,
		&owner.Username,
		&owner.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to get owner by email: %w", err)
	}

	return &owner, nil
}

// GetOrCreateOwner gets an owner by email or creates one if not found.
func (r *Repository) GetOrCreateOwner(ctx context.Context, owner *model.Owner) (*model.Owner, error) {
	existing, err := r.GetOwnerByEmail(ctx, owner.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrOwnerNotFound) {
		return nil, err
	}

	owner.CreatedAt = time.Now()
	if err := r.CreateOwner(ctx, owner); err != nil {
		// Handle race condition - another request may have created it
		if errors.Is(err, ErrEmailExists) {
			return r.GetOwnerByEmail(ctx, owner.Email)
		}
		return nil, err
	}

	return owner, nil
}
