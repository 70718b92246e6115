package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gitfolio/gitfolio/internal/model"
	"github.com/jackc/pgx/v5"
)

// ErrSnapshotNotFound is returned when no activity snapshot exists.
var ErrSnapshotNotFound = errors.New("activity snapshot not found")

const snapshotColumns = `id, username, year, total_events, push_events, commits,
	pull_requests_opened, issues_opened, repos_created,
	events_fetched, fetched_at, duration_ms, created_at`

// CreateSnapshot inserts a new activity snapshot.
func (r *Repository) CreateSnapshot(ctx context.Context, s *model.ActivitySnapshot) error {
	query := `
		INSERT INTO activity_snapshots (
			id, username, year, total_events, push_events, commits,
			pull_requests_opened, issues_opened, repos_created,
			events_fetched, fetched_at, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.Username,
		s.Year,
		s.TotalEvents,
		s.PushEvents,
		s.Commits,
		s.PullRequestsOpened,
		s.IssuesOpened,
		s.ReposCreated,
		s.EventsFetched,
		s.FetchedAt,
		s.DurationMS,
		s.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	return nil
}

// GetLatestSnapshot retrieves the most recent snapshot for a username.
func (r *Repository) GetLatestSnapshot(ctx context.Context, username string) (*model.ActivitySnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM activity_snapshots
		WHERE username = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	s, err := scanSnapshot(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	return s, nil
}

// GetSnapshotByID retrieves a snapshot by its ID.
func (r *Repository) GetSnapshotByID(ctx context.Context, id string) (*model.ActivitySnapshot, error) {
	query := `
		SELECT ` + snapshotColumns + `
		FROM activity_snapshots
		WHERE id = $1
	`

	s, err := scanSnapshot(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to get snapshot by ID: %w", err)
	}

	return s, nil
}

// ListSnapshots retrieves a paginated snapshot history, newest first.
func (r *Repository) ListSnapshots(ctx context.Context, username string, cursor string, limit int) ([]*model.ActivitySnapshot, string, error) {
	var cursorData *PaginationCursor
	if cursor != "" {
		var err error
		cursorData, err = decodeCursor(cursor)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
	}

	query := `
		SELECT ` + snapshotColumns + `
		FROM activity_snapshots
		WHERE username = $1
	`
	args := []any{username}
	argIndex := 2

	if cursorData != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, cursorData.CreatedAt, cursorData.ID)
		argIndex += 2
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argIndex)
	args = append(args, limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*model.ActivitySnapshot
	for rows.Next() {
		s, err := scanSnapshotFromRows(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating snapshots: %w", err)
	}

	var nextCursor string
	if len(snapshots) > limit {
		snapshots = snapshots[:limit]
		last := snapshots[len(snapshots)-1]
		nextCursor = encodeCursor(&PaginationCursor{
			ID:        last.ID,
			CreatedAt: last.CreatedAt,
		})
	}

	return snapshots, nextCursor, nil
}

// PruneSnapshots deletes snapshots older than the retention window.
// Returns the number of rows removed.
func (r *Repository) PruneSnapshots(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM activity_snapshots WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return result.RowsAffected(), nil
}

// scanSnapshot scans a single row into an ActivitySnapshot model.
func scanSnapshot(row pgx.Row) (*model.ActivitySnapshot, error) {
	var s model.ActivitySnapshot
	err := row.Scan(
		&s.ID,
		&s.Username,
		&s.Year,
		&s.TotalEvents,
		&s.PushEvents,
		&s.Commits,
		&s.PullRequestsOpened,
		&s.IssuesOpened,
		&s.ReposCreated,
		&s.EventsFetched,
		&s.FetchedAt,
		&s.DurationMS,
		&s.CreatedAt,
	)
	return &s, err
}

// scanSnapshotFromRows scans a row from pgx.Rows into an ActivitySnapshot model.
func scanSnapshotFromRows(rows pgx.Rows) (*model.ActivitySnapshot, error) {
	var s model.ActivitySnapshot
	err := rows.Scan(
		&s.ID,
		&s.Username,
		&s.Year,
		&s.TotalEvents,
		&s.PushEvents,
		&s.Commits,
		&s.PullRequestsOpened,
		&s.IssuesOpened,
		&s.ReposCreated,
		&s.EventsFetched,
		&s.FetchedAt,
		&s.DurationMS,
		&s.CreatedAt,
	)
	return &s, err
}
