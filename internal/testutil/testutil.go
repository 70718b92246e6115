package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gitfolio/gitfolio/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 630630

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// resetSchema applies a migration's down then up script.
func resetSchema(ctx context.Context, pool *pgxpool.Pool, name string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downPath := filepath.Join(root, "migrations", name+".down.sql")
	upPath := filepath.Join(root, "migrations", name+".up.sql")

	downSQL, err := os.ReadFile(downPath)
	if err != nil {
		return fmt.Errorf("read %s down migration: %w", name, err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply %s down migration: %w", name, err)
	}

	upSQL, err := os.ReadFile(upPath)
	if err != nil {
		return fmt.Errorf("read %s up migration: %w", name, err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply %s up migration: %w", name, err)
	}

	return nil
}

// ResetContentSchema drops and recreates the profile content schema for tests.
func ResetContentSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000002_content")
}

// ResetOwnersSchema drops and recreates the owners schema for tests.
func ResetOwnersSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000003_owners")
}

// ResetAPIKeysSchema drops and recreates the api_keys schema for tests.
func ResetAPIKeysSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000004_api_keys")
}

// ResetAnalyticsSchema drops and recreates the view analytics schema for tests.
func ResetAnalyticsSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000005_analytics")
}

// ResetWebhooksSchema drops and recreates the webhooks schema for tests.
func ResetWebhooksSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000006_webhooks")
}

// ResetSnapshotsSchema drops and recreates the snapshots schema for tests.
func ResetSnapshotsSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000007_snapshots")
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestProject creates a test project with sensible defaults.
func NewTestProject(t testing.TB, title string) *model.Project {
	t.Helper()
	now := time.Now().UTC()
	return &model.Project{
		ID:        fmt.Sprintf("proj-%d", now.UnixNano()),
		Title:     title,
		Summary:   "Test project " + title,
		TechStack: []string{"Go", "PostgreSQL"},
		Status:    model.ProjectStatusPlanned,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestPublishedProject creates a published project with a repo URL.
func NewTestPublishedProject(t testing.TB, title string) *model.Project {
	t.Helper()
	project := NewTestProject(t, title)
	project.Status = model.ProjectStatusPublished
	project.RepoURL = "https://github.com/octocat/" + title
	return project
}

// NewTestSnapshot creates a test activity snapshot with sensible defaults.
func NewTestSnapshot(t testing.TB, username string, year int) *model.ActivitySnapshot {
	t.Helper()
	now := time.Now().UTC()
	return &model.ActivitySnapshot{
		ID:                 fmt.Sprintf("snap-%d", now.UnixNano()),
		Username:           username,
		Year:               year,
		TotalEvents:        42,
		PushEvents:         20,
		Commits:            60,
		PullRequestsOpened: 5,
		IssuesOpened:       3,
		ReposCreated:       2,
		EventsFetched:      42,
		FetchedAt:          now,
		DurationMS:         1200,
		CreatedAt:          now,
	}
}

// NewTestAPIKey creates a test API key with sensible defaults.
func NewTestAPIKey(t testing.TB, ownerID string) *model.APIKey {
	t.Helper()
	now := time.Now().UTC()
	return &model.APIKey{
		ID:            fmt.Sprintf("key-%d", now.UnixNano()),
		OwnerID:       ownerID,
		KeyHash:       fmt.Sprintf("hash-%d", now.UnixNano()),
		KeyPrefix:     "gfk_test_",
		Scopes:        []string{model.ScopeRead, model.ScopeWrite},
		RateLimitTier: model.TierFree,
		Name:          "Test Key",
		CreatedAt:     now,
	}
}

// NewTestAPIKeyWithTier creates a test API key with a specific tier.
func NewTestAPIKeyWithTier(t testing.TB, ownerID string, tier string) *model.APIKey {
	t.Helper()
	key := NewTestAPIKey(t, ownerID)
	key.RateLimitTier = tier
	return key
}

// UniqueTitle generates a unique project title for tests.
func UniqueTitle(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
