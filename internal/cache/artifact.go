package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gitfolio/gitfolio/internal/model"
)

// Cache key prefixes and TTLs.
const (
	artifactKeyPrefix = "artifact:"
	viewsKeyPrefix    = "views:"

	// DefaultArtifactTTL is the TTL for cached rendered artifacts.
	DefaultArtifactTTL = 1 * time.Hour

	// MinArtifactTTL is the floor applied when deriving TTL from the
	// refresh interval.
	MinArtifactTTL = 10 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// ArtifactKey builds the Redis key for a rendered artifact. The card is
// keyed per year because each year has its own snapshot; the README is
// keyed per username only.
func ArtifactKey(kind model.ArtifactKind, username string, year int) string {
	if kind == model.ArtifactCard {
		return fmt.Sprintf("%scard:%s:%d", artifactKeyPrefix, username, year)
	}
	return fmt.Sprintf("%sreadme:%s", artifactKeyPrefix, username)
}

// ArtifactTTL derives the artifact cache TTL from the refresh interval.
// An artifact only changes when a refresh runs, so anything shorter than
// the interval is wasted re-rendering; MinArtifactTTL bounds it below.
func ArtifactTTL(refreshInterval time.Duration) time.Duration {
	if refreshInterval < MinArtifactTTL {
		return MinArtifactTTL
	}
	return refreshInterval
}

// GetArtifact retrieves a rendered artifact from cache.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetArtifact(ctx context.Context, kind model.ArtifactKind, username string, year int) (*model.Artifact, error) {
	key := ArtifactKey(kind, username, year)

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	cached := &model.CachedArtifact{
		Body:        result["body"],
		ContentType: result["content_type"],
		ETag:        result["etag"],
		SnapshotID:  result["snapshot_id"],
		RenderedAt:  result["rendered_at"],
	}

	return cached.ToArtifact(kind), nil
}

// SetArtifact stores a rendered artifact in cache.
func (c *Cache) SetArtifact(ctx context.Context, username string, year int, artifact *model.Artifact, ttl time.Duration) error {
	key := ArtifactKey(artifact.Kind, username, year)
	cached := artifact.ToCachedArtifact()

	if ttl <= 0 {
		ttl = DefaultArtifactTTL
	}

	fields := map[string]any{
		"body":         cached.Body,
		"content_type": cached.ContentType,
		"etag":         cached.ETag,
		"rendered_at":  cached.RenderedAt,
	}

	// Only set optional fields if they have values
	if cached.SnapshotID != "" {
		fields["snapshot_id"] = cached.SnapshotID
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to cache artifact: %w", err)
	}

	return nil
}

// DeleteArtifact removes a rendered artifact from cache.
func (c *Cache) DeleteArtifact(ctx context.Context, kind model.ArtifactKind, username string, year int) error {
	key := ArtifactKey(kind, username, year)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete artifact from cache: %w", err)
	}

	return nil
}

// IncrementViews increments the view counter for an artifact in Redis.
// This is fire-and-forget for the serve path.
func (c *Cache) IncrementViews(ctx context.Context, kind model.ArtifactKind, username string) error {
	key := viewsKeyPrefix + string(kind) + ":" + username

	err := c.client.Incr(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}

	return nil
}

// GetAndResetViews gets the current view count and resets it.
// Used by the background job to flush to PostgreSQL.
func (c *Cache) GetAndResetViews(ctx context.Context, kind model.ArtifactKind, username string) (int64, error) {
	key := viewsKeyPrefix + string(kind) + ":" + username

	result, err := c.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get and reset views: %w", err)
	}

	count, err := strconv.ParseInt(result, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse view count: %w", err)
	}

	return count, nil
}

// ScanViewKeys scans for all view counter keys.
// Used by the background job to find which artifacts have pending view updates.
func (c *Cache) ScanViewKeys(ctx context.Context) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		var scanKeys []string
		var err error

		scanKeys, cursor, err = c.client.Scan(ctx, cursor, viewsKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan view keys: %w", err)
		}

		keys = append(keys, scanKeys...)

		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

// ParseViewKey extracts the artifact kind and username from a view
// counter key. Returns false if the key is not a valid view key.
func ParseViewKey(key string) (model.ArtifactKind, string, bool) {
	if len(key) <= len(viewsKeyPrefix) {
		return "", "", false
	}
	rest := key[len(viewsKeyPrefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == ':' {
			kind := model.ArtifactKind(rest[:i])
			username := rest[i+1:]
			if !kind.IsValid() || username == "" {
				return "", "", false
			}
			return kind, username, true
		}
	}
	return "", "", false
}
