package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gitfolio/gitfolio/internal/cache"
	"github.com/gitfolio/gitfolio/internal/github"
	"github.com/gitfolio/gitfolio/internal/metrics"
	"github.com/gitfolio/gitfolio/internal/model"
	"github.com/gitfolio/gitfolio/internal/render"
	"github.com/gitfolio/gitfolio/internal/repository"
	"github.com/gitfolio/gitfolio/internal/stats"
)

// ErrRefreshInProgress is returned when a refresh is triggered while
// another one is still running.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// EventPublisher creates webhook deliveries for refresh outcomes.
type EventPublisher interface {
	PublishStatsRefreshed(ctx context.Context, snapshot *model.ActivitySnapshot, cardPath, readmePath string) error
	PublishReadmeUpdated(ctx context.Context, username, sha256Hex string) error
}

// RefreshConfig carries the settings the refresh pipeline needs.
type RefreshConfig struct {
	Username string
	// Year 0 tracks the current UTC year at each run.
	Year     int
	MaxPages int
	PerPage  int
	DataDir  string
	// ContribGraphURL is a template with {username}/{year} placeholders.
	ContribGraphURL string
	ArtifactTTL     time.Duration
	// RetentionDays 0 disables snapshot pruning.
	RetentionDays int
	Interval      time.Duration
	RunOnStart    bool
}

// RefreshStatus describes the most recent refresh run.
type RefreshStatus struct {
	Running        bool       `json:"running"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	LastSuccessAt  *time.Time `json:"last_success_at,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	LastSnapshotID string     `json:"last_snapshot_id,omitempty"`
	EventsFetched  int        `json:"events_fetched"`
	DurationMS     int64      `json:"duration_ms"`
}

// RefreshService runs the fetch → aggregate → persist → render pipeline.
type RefreshService struct {
	repo      *repository.Repository
	cache     *cache.Cache
	github    *github.Client
	publisher EventPublisher
	cfg       RefreshConfig
	metrics   metrics.Recorder
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
	status  RefreshStatus
}

// NewRefreshService creates a new RefreshService. The publisher may be
// nil when webhook notifications are not wired (one-shot mode).
func NewRefreshService(repo *repository.Repository, cache *cache.Cache, gh *github.Client, publisher EventPublisher, cfg RefreshConfig, recorder metrics.Recorder, logger *slog.Logger) *RefreshService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RefreshService{
		repo:      repo,
		cache:     cache,
		github:    gh,
		publisher: publisher,
		cfg:       cfg,
		metrics:   recorder,
		logger:    logger.With("component", "refresh"),
	}
}

// Username returns the GitHub username this service tracks.
func (s *RefreshService) Username() string {
	return s.cfg.Username
}

// TargetYear returns the year the next refresh run will cover.
func (s *RefreshService) TargetYear() int {
	if s.cfg.Year != 0 {
		return s.cfg.Year
	}
	return time.Now().UTC().Year()
}

// Status returns a copy of the most recent refresh status.
func (s *RefreshService) Status() RefreshStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Refresh runs one refresh cycle. At most one refresh runs at a time;
// overlapping triggers get ErrRefreshInProgress.
func (s *RefreshService) Refresh(ctx context.Context) (*model.ActivitySnapshot, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrRefreshInProgress
	}
	s.running = true
	s.status.Running = true
	s.mu.Unlock()

	start := time.Now()
	snapshot, err := s.run(ctx, start)
	duration := time.Since(start)

	s.mu.Lock()
	s.running = false
	s.status.Running = false
	runAt := start.UTC()
	s.status.LastRunAt = &runAt
	s.status.DurationMS = duration.Milliseconds()
	if err != nil {
		s.status.LastError = err.Error()
	} else {
		s.status.LastError = ""
		s.status.LastSuccessAt = &runAt
		s.status.LastSnapshotID = snapshot.ID
		s.status.EventsFetched = snapshot.EventsFetched
	}
	s.mu.Unlock()

	s.metrics.ObserveRefreshDuration(duration)
	if err != nil {
		s.metrics.IncRefresh("failed")
		s.logger.Error("refresh failed", "error", err, "duration_ms", duration.Milliseconds())
		return nil, err
	}

	s.metrics.IncRefresh("success")
	s.metrics.ObserveRefreshEventsFetched(snapshot.EventsFetched)
	s.logger.Info("refresh completed",
		"snapshot_id", snapshot.ID,
		"year", snapshot.Year,
		"events_fetched", snapshot.EventsFetched,
		"total_events", snapshot.TotalEvents,
		"duration_ms", duration.Milliseconds(),
	)

	return snapshot, nil
}

// run performs the pipeline body. A failure at any step leaves the
// previously written artifacts untouched.
func (s *RefreshService) run(ctx context.Context, start time.Time) (*model.ActivitySnapshot, error) {
	year := s.cfg.Year
	if year == 0 {
		year = start.UTC().Year()
	}

	events, err := s.github.EventsForYear(ctx, s.cfg.Username, year, s.cfg.MaxPages, s.cfg.PerPage)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}

	aggregated := stats.Compute(events)

	snapshot := &model.ActivitySnapshot{
		ID:                 ulid.Make().String(),
		Username:           s.cfg.Username,
		Year:               year,
		TotalEvents:        aggregated.TotalEvents,
		PushEvents:         aggregated.PushEvents,
		Commits:            aggregated.Commits,
		PullRequestsOpened: aggregated.PullRequestsOpened,
		IssuesOpened:       aggregated.IssuesOpened,
		ReposCreated:       aggregated.ReposCreated,
		EventsFetched:      len(events),
		FetchedAt:          start.UTC(),
		DurationMS:         time.Since(start).Milliseconds(),
		CreatedAt:          time.Now().UTC(),
	}

	if err := s.repo.CreateSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}

	card, readme, err := s.renderArtifacts(ctx, aggregated, year)
	if err != nil {
		return nil, err
	}

	if err := render.EnsureDataDir(s.cfg.DataDir); err != nil {
		return nil, err
	}
	cardPath := render.CardPath(s.cfg.DataDir)
	readmePath := render.ReadmePath(s.cfg.DataDir)
	if err := render.WriteFileAtomic(cardPath, card); err != nil {
		return nil, fmt.Errorf("write stats card: %w", err)
	}
	if err := render.WriteFileAtomic(readmePath, readme); err != nil {
		return nil, fmt.Errorf("write readme: %w", err)
	}

	s.cacheArtifacts(ctx, snapshot, card, readme)
	s.publish(ctx, snapshot, cardPath, readmePath, readme)
	s.prune(ctx)

	return snapshot, nil
}

// renderArtifacts renders the stats card and README for the given
// aggregated stats.
func (s *RefreshService) renderArtifacts(ctx context.Context, aggregated stats.ActivityStats, year int) (card, readme []byte, err error) {
	card, err = render.RenderCard(render.CardData{
		Username: s.cfg.Username,
		Year:     year,
		Stats:    aggregated,
	})
	if err != nil {
		return nil, nil, err
	}

	profile, err := s.repo.GetProfile(ctx, s.cfg.Username)
	if err != nil {
		if !errors.Is(err, repository.ErrProfileNotFound) {
			return nil, nil, fmt.Errorf("load profile: %w", err)
		}
		profile = &model.Profile{Username: s.cfg.Username, DisplayName: s.cfg.Username}
	}

	projects, err := s.repo.ListAllProjects(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load projects: %w", err)
	}

	contacts, err := s.repo.ListContactLinks(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load contact links: %w", err)
	}

	data := render.ReadmeData{
		Profile:         *profile,
		ContribGraphURL: s.contribGraphURL(year),
		Year:            year,
	}
	for _, p := range projects {
		data.Projects = append(data.Projects, *p)
	}
	for _, c := range contacts {
		data.Contacts = append(data.Contacts, *c)
	}

	readme, err = render.RenderReadme(data)
	if err != nil {
		return nil, nil, err
	}

	return card, readme, nil
}

// cacheArtifacts stores the rendered artifacts in Redis. Cache failures
// only degrade serving, so they are logged and swallowed.
func (s *RefreshService) cacheArtifacts(ctx context.Context, snapshot *model.ActivitySnapshot, card, readme []byte) {
	if s.cache == nil {
		return
	}

	ttl := cache.ArtifactTTL(s.cfg.Interval)
	now := time.Now().UTC()

	artifacts := []*model.Artifact{
		{
			Kind:        model.ArtifactCard,
			Body:        card,
			ContentType: "image/svg+xml",
			ETag:        etagFor(card),
			SnapshotID:  snapshot.ID,
			RenderedAt:  now,
		},
		{
			Kind:        model.ArtifactReadme,
			Body:        readme,
			ContentType: "text/markdown; charset=utf-8",
			ETag:        etagFor(readme),
			SnapshotID:  snapshot.ID,
			RenderedAt:  now,
		},
	}

	for _, artifact := range artifacts {
		if err := s.cache.SetArtifact(ctx, s.cfg.Username, snapshot.Year, artifact, ttl); err != nil {
			s.logger.Warn("failed to cache artifact", "kind", artifact.Kind, "error", err)
		}
	}
}

// publish creates webhook deliveries for the refresh outcome.
func (s *RefreshService) publish(ctx context.Context, snapshot *model.ActivitySnapshot, cardPath, readmePath string, readme []byte) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishStatsRefreshed(ctx, snapshot, cardPath, readmePath); err != nil {
		s.logger.Warn("failed to publish stats.refreshed", "error", err)
	}

	sum := sha256.Sum256(readme)
	if err := s.publisher.PublishReadmeUpdated(ctx, s.cfg.Username, hex.EncodeToString(sum[:])); err != nil {
		s.logger.Warn("failed to publish readme.updated", "error", err)
	}
}

// RenderFromSnapshot re-renders one artifact from the latest stored
// snapshot, without hitting the GitHub API. Used by the serve path when
// a request misses both the cache and the data directory (fresh deploy,
// wiped volume). Returns repository.ErrSnapshotNotFound when no refresh
// has ever completed.
func (s *RefreshService) RenderFromSnapshot(ctx context.Context, kind model.ArtifactKind) (*model.Artifact, error) {
	snapshot, err := s.repo.GetLatestSnapshot(ctx, s.cfg.Username)
	if err != nil {
		return nil, err
	}

	aggregated := stats.ActivityStats{
		TotalEvents:        snapshot.TotalEvents,
		PushEvents:         snapshot.PushEvents,
		Commits:            snapshot.Commits,
		PullRequestsOpened: snapshot.PullRequestsOpened,
		IssuesOpened:       snapshot.IssuesOpened,
		ReposCreated:       snapshot.ReposCreated,
	}

	card, readme, err := s.renderArtifacts(ctx, aggregated, snapshot.Year)
	if err != nil {
		return nil, err
	}

	body, contentType := card, "image/svg+xml"
	if kind == model.ArtifactReadme {
		body, contentType = readme, "text/markdown; charset=utf-8"
	}

	artifact := &model.Artifact{
		Kind:        kind,
		Body:        body,
		ContentType: contentType,
		ETag:        etagFor(body),
		SnapshotID:  snapshot.ID,
		RenderedAt:  time.Now().UTC(),
	}

	if s.cache != nil {
		ttl := cache.ArtifactTTL(s.cfg.Interval)
		if err := s.cache.SetArtifact(ctx, s.cfg.Username, snapshot.Year, artifact, ttl); err != nil {
			s.logger.Warn("failed to cache artifact", "kind", kind, "error", err)
		}
	}

	return artifact, nil
}

// prune removes snapshots past the retention window.
func (s *RefreshService) prune(ctx context.Context) {
	if s.cfg.RetentionDays <= 0 {
		return
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.RetentionDays)
	removed, err := s.repo.PruneSnapshots(ctx, cutoff)
	if err != nil {
		s.logger.Warn("failed to prune snapshots", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("pruned old snapshots", "removed", removed, "older_than", cutoff)
	}
}

// Run drives periodic refreshes until ctx is cancelled. Intended to be
// started as the refresh worker goroutine.
func (s *RefreshService) Run(ctx context.Context) {
	if s.cfg.RunOnStart {
		if _, err := s.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("startup refresh failed", "error", err)
		}
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("refresh worker stopping")
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrRefreshInProgress) && !errors.Is(err, context.Canceled) {
				s.logger.Error("scheduled refresh failed", "error", err)
			}
		}
	}
}

// contribGraphURL expands the contribution graph URL template.
func (s *RefreshService) contribGraphURL(year int) string {
	u := strings.ReplaceAll(s.cfg.ContribGraphURL, "{username}", s.cfg.Username)
	return strings.ReplaceAll(u, "{year}", fmt.Sprintf("%d", year))
}

// etagFor derives a strong ETag value from artifact bytes.
func etagFor(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:16])
}
