package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gitfolio/gitfolio/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

// Common errors for project repository operations.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrTitleExists     = errors.New("project title already exists")
	ErrInvalidCursor   = errors.New("invalid pagination cursor")
)

// ProjectFilter defines filters for listing projects.
type ProjectFilter struct {
	Status   model.ProjectStatus
	Featured *bool
}

// PaginationCursor represents decoded cursor for pagination.
type PaginationCursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateProject inserts a new project into the database.
func (r *Repository) CreateProject(ctx context.Context, project *model.Project) error {
	query := `
		INSERT INTO projects (id, title, summary, tech_stack, repo_url, status, featured, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		project.ID,
		project.Title,
		project.Summary,
		pq.Array(project.TechStack),
		project.RepoURL,
		project.Status,
		project.Featured,
		project.SortOrder,
		project.CreatedAt,
		project.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrTitleExists
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetProjectByID retrieves a project by its ID.
func (r *Repository) GetProjectByID(ctx context.Context, id string) (*model.Project, error) {
	query := `
		SELECT id, title, summary, tech_stack, repo_url, status, featured, sort_order, deleted_at, created_at, updated_at
		FROM projects
		WHERE id = $1 AND deleted_at IS NULL
	`

	project, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project by ID: %w", err)
	}

	return project, nil
}

// ListProjects retrieves a paginated list of projects.
func (r *Repository) ListProjects(ctx context.Context, filter ProjectFilter, cursor string, limit int) ([]*model.Project, string, error) {
	// Decode cursor if provided
	var cursorData *PaginationCursor
	if cursor != "" {
		var err error
		cursorData, err = decodeCursor(cursor)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
	}

	query := `
		SELECT id, title, summary, tech_stack, repo_url, status, featured, sort_order, deleted_at, created_at, updated_at
		FROM projects
		WHERE deleted_at IS NULL
	`
	args := []any{}
	argIndex := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}

	if filter.Featured != nil {
		query += fmt.Sprintf(" AND featured = $%d", argIndex)
		args = append(args, *filter.Featured)
		argIndex++
	}

	if cursorData != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, cursorData.CreatedAt, cursorData.ID)
		argIndex += 2
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argIndex)
	args = append(args, limit+1) // Fetch one extra to determine hasMore

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		project, err := scanProjectFromRows(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating projects: %w", err)
	}

	// Determine if there are more results
	var nextCursor string
	if len(projects) > limit {
		projects = projects[:limit] // Remove extra row
		last := projects[len(projects)-1]
		nextCursor = encodeCursor(&PaginationCursor{
			ID:        last.ID,
			CreatedAt: last.CreatedAt,
		})
	}

	return projects, nextCursor, nil
}

// ListAllProjects retrieves every live project ordered for rendering:
// featured first, then sort order, then newest.
func (r *Repository) ListAllProjects(ctx context.Context) ([]*model.Project, error) {
	query := `
		SELECT id, title, summary, tech_stack, repo_url, status, featured, sort_order, deleted_at, created_at, updated_at
		FROM projects
		WHERE deleted_at IS NULL
		ORDER BY featured DESC, sort_order ASC, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list all projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		project, err := scanProjectFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

// UpdateProject updates a project's mutable fields.
func (r *Repository) UpdateProject(ctx context.Context, project *model.Project) error {
	query := `
		UPDATE projects
		SET title = $2, summary = $3, tech_stack = $4, repo_url = $5, status = $6, featured = $7, sort_order = $8, updated_at = $9
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query,
		project.ID,
		project.Title,
		project.Summary,
		pq.Array(project.TechStack),
		project.RepoURL,
		project.Status,
		project.Featured,
		project.SortOrder,
		project.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrTitleExists
		}
		return fmt.Errorf("failed to update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// DeleteProject performs a soft delete on a project.
func (r *Repository) DeleteProject(ctx context.Context, id string) error {
	query := `
		UPDATE projects
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// scanProject scans a single row into a Project model.
func scanProject(row pgx.Row) (*model.Project, error) {
	var project model.Project
	var techStack []string
	err := row.Scan(
		&project.ID,
		&project.Title,
		&project.Summary,
		pq.Array(&techStack),
		&project.RepoURL,
		&project.Status,
		&project.Featured,
		&project.SortOrder,
		&project.DeletedAt,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	project.TechStack = techStack
	return &project, nil
}

// scanProjectFromRows scans a row from pgx.Rows into a Project model.
func scanProjectFromRows(rows pgx.Rows) (*model.Project, error) {
	var project model.Project
	var techStack []string
	err := rows.Scan(
		&project.ID,
		&project.Title,
		&project.Summary,
		pq.Array(&techStack),
		&project.RepoURL,
		&project.Status,
		&project.Featured,
		&project.SortOrder,
		&project.DeletedAt,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	project.TechStack = techStack
	return &project, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	// PostgreSQL error code 23505 is unique_violation
	return err != nil && (contains(err.Error(), "23505") || contains(err.Error(), "unique"))
}

// contains checks if a string contains a substring.
func contains(s, substr string) bool {
	return len(s) >= len(substr) && searchString(s, substr)
}

// searchString is a simple string search.
func searchString(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// encodeCursor encodes pagination cursor to base64.
func encodeCursor(cursor *PaginationCursor) string {
	data, _ := json.Marshal(cursor)
	return base64.URLEncoding.EncodeToString(data)
}

// decodeCursor decodes base64 pagination cursor.
func decodeCursor(s string) (*PaginationCursor, error) {
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}

	var cursor PaginationCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, err
	}

	return &cursor, nil
}
