// Package model defines domain entities for the application.
package model

import (
	"strconv"
	"time"
)

// ActivitySnapshot represents one aggregated view of a user's public
// GitHub activity for a target year, produced by a refresh run.
type ActivitySnapshot struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Year     int    `json:"year"`

	// Counters aggregated from the public events feed.
	TotalEvents        int `json:"total_events"`
	PushEvents         int `json:"push_events"`
	Commits            int `json:"commits"`
	PullRequestsOpened int `json:"pull_requests_opened"`
	IssuesOpened       int `json:"issues_opened"`
	ReposCreated       int `json:"repos_created"`

	// Fetch metadata.
	EventsFetched int       `json:"events_fetched"`
	FetchedAt     time.Time `json:"fetched_at"`
	DurationMS    int64     `json:"duration_ms"`

	CreatedAt time.Time `json:"created_at"`
}

// ActivityPercent returns the activity-ring fill fraction in [0, 1].
// 100 or more events in the target year fill the ring completely.
func (s *ActivitySnapshot) ActivityPercent() float64 {
	p := float64(s.TotalEvents) / 100.0
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

// ArtifactKind identifies a rendered artifact.
type ArtifactKind string

const (
	ArtifactCard   ArtifactKind = "card"
	ArtifactReadme ArtifactKind = "readme"
)

// IsValid checks if the artifact kind is valid.
func (a ArtifactKind) IsValid() bool {
	return a == ArtifactCard || a == ArtifactReadme
}

// CachedArtifact represents a rendered artifact stored in Redis.
// Uses string types for Redis hash compatibility.
type CachedArtifact struct {
	Body        string `redis:"body"`
	ContentType string `redis:"content_type"`
	ETag        string `redis:"etag"`
	SnapshotID  string `redis:"snapshot_id"`
	RenderedAt  string `redis:"rendered_at"` // Unix timestamp
}

// Artifact represents a rendered artifact in domain form.
type Artifact struct {
	Kind        ArtifactKind
	Body        []byte
	ContentType string
	ETag        string
	SnapshotID  string
	RenderedAt  time.Time
}

// ToCachedArtifact converts Artifact to its Redis hash form.
func (a *Artifact) ToCachedArtifact() *CachedArtifact {
	return &CachedArtifact{
		Body:        string(a.Body),
		ContentType: a.ContentType,
		ETag:        a.ETag,
		SnapshotID:  a.SnapshotID,
		RenderedAt:  strconv.FormatInt(a.RenderedAt.Unix(), 10),
	}
}

// ToArtifact converts CachedArtifact back to domain form.
func (c *CachedArtifact) ToArtifact(kind ArtifactKind) *Artifact {
	a := &Artifact{
		Kind:        kind,
		Body:        []byte(c.Body),
		ContentType: c.ContentType,
		ETag:        c.ETag,
		SnapshotID:  c.SnapshotID,
	}
	if c.RenderedAt != "" {
		if ts, err := strconv.ParseInt(c.RenderedAt, 10, 64); err == nil {
			a.RenderedAt = time.Unix(ts, 0)
		}
	}
	return a
}
