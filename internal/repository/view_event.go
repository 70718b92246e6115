package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gitfolio/gitfolio/internal/model"
	"github.com/jackc/pgx/v5"
)

// ViewEventRepository provides database access for artifact view events.
type ViewEventRepository struct {
	repo *Repository
}

// NewViewEventRepository creates a new ViewEventRepository.
func NewViewEventRepository(repo *Repository) *ViewEventRepository {
	return &ViewEventRepository{repo: repo}
}

// BulkInsert inserts multiple view events with idempotency via ON CONFLICT DO NOTHING.
func (r *ViewEventRepository) BulkInsert(ctx context.Context, events []*model.ViewEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	query := `
		INSERT INTO view_events (
			id, event_id, artifact, username, referrer, user_agent,
			visitor_hash, country_code, viewed_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`

	for _, event := range events {
		batch.Queue(query,
			event.ID,
			event.EventID,
			event.Artifact,
			event.Username,
			nullableString(event.Referrer),
			nullableString(event.UserAgent),
			event.VisitorHash,
			nullableString(event.CountryCode),
			event.ViewedAt,
		)
	}

	results := r.repo.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(events); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert event %d: %w", i, err)
		}
	}

	return nil
}

// UpdateDailyStats recalculates view_daily_stats rows touched by events.
func (r *ViewEventRepository) UpdateDailyStats(ctx context.Context, events []*model.ViewEvent) error {
	if len(events) == 0 {
		return nil
	}

	keys := uniqueDailyKeys(events)
	for _, key := range keys {
		acc, err := r.recalculateDailyStat(ctx, key.username, key.artifact, key.date)
		if err != nil {
			return fmt.Errorf("recalculate daily stat %s/%s:%s: %w",
				key.username, key.artifact, key.date.Format("2006-01-02"), err)
		}
		if err := r.upsertDailyStat(ctx, acc); err != nil {
			return fmt.Errorf("upsert daily stat %s/%s:%s: %w",
				key.username, key.artifact, key.date.Format("2006-01-02"), err)
		}
	}

	return nil
}

// dailyStatsAccumulator accumulates stats for one username/artifact/date.
type dailyStatsAccumulator struct {
	username    string
	artifact    model.ArtifactKind
	date        time.Time
	totalViews  int64
	uniques     int64
	referrers   map[string]int64
	countries   map[string]int64
	visitorSeen map[string]bool
}

type dailyStatsKey struct {
	username string
	artifact model.ArtifactKind
	date     time.Time
}

func uniqueDailyKeys(events []*model.ViewEvent) []dailyStatsKey {
	seen := make(map[string]dailyStatsKey)
	for _, event := range events {
		day := event.ViewedAt.UTC().Truncate(24 * time.Hour)
		key := fmt.Sprintf("%s:%s:%s", event.Username, event.Artifact, day.Format("2006-01-02"))
		seen[key] = dailyStatsKey{username: event.Username, artifact: event.Artifact, date: day}
	}

	keys := make([]dailyStatsKey, 0, len(seen))
	for _, key := range seen {
		keys = append(keys, key)
	}
	return keys
}

func (r *ViewEventRepository) recalculateDailyStat(ctx context.Context, username string, artifact model.ArtifactKind, date time.Time) (*dailyStatsAccumulator, error) {
	start := date.UTC().Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	query := `
		SELECT COALESCE(referrer, ''), COALESCE(country_code, ''), visitor_hash
		FROM view_events
		WHERE username = $1 AND artifact = $2 AND viewed_at >= $3 AND viewed_at < $4
	`

	rows, err := r.repo.pool.Query(ctx, query, username, artifact, start, end)
	if err != nil {
		return nil, fmt.Errorf("query view events: %w", err)
	}
	defer rows.Close()

	events := make([]*model.ViewEvent, 0)
	for rows.Next() {
		var referrer, country, visitorHash string
		if err := rows.Scan(&referrer, &country, &visitorHash); err != nil {
			return nil, fmt.Errorf("scan view event: %w", err)
		}
		events = append(events, &model.ViewEvent{
			Referrer:    referrer,
			CountryCode: country,
			VisitorHash: visitorHash,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate view events: %w", err)
	}

	acc := accumulateDailyStats(events)
	acc.username = username
	acc.artifact = artifact
	acc.date = start
	return acc, nil
}

func accumulateDailyStats(events []*model.ViewEvent) *dailyStatsAccumulator {
	acc := &dailyStatsAccumulator{
		referrers:   make(map[string]int64),
		countries:   make(map[string]int64),
		visitorSeen: make(map[string]bool),
	}

	for _, event := range events {
		acc.totalViews++

		if event.VisitorHash != "" && !acc.visitorSeen[event.VisitorHash] {
			acc.visitorSeen[event.VisitorHash] = true
			acc.uniques++
		}

		if event.Referrer != "" {
			acc.referrers[extractDomain(event.Referrer)]++
		} else {
			acc.referrers["(direct)"]++
		}

		if event.CountryCode != "" {
			acc.countries[event.CountryCode]++
		}
	}

	return acc
}

// upsertDailyStat inserts or updates a view_daily_stats row.
func (r *ViewEventRepository) upsertDailyStat(ctx context.Context, acc *dailyStatsAccumulator) error {
	referrerJSON, _ := json.Marshal(acc.referrers)
	countryJSON, _ := json.Marshal(acc.countries)
	id := fmt.Sprintf("%s:%s:%s", acc.username, acc.artifact, acc.date.Format("2006-01-02"))

	query := `
		INSERT INTO view_daily_stats (
			id, username, artifact, date, total_views, unique_visitors,
			referrer_breakdown, country_breakdown, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (username, artifact, date) DO UPDATE SET
			total_views = EXCLUDED.total_views,
			unique_visitors = EXCLUDED.unique_visitors,
			referrer_breakdown = EXCLUDED.referrer_breakdown,
			country_breakdown = EXCLUDED.country_breakdown,
			updated_at = NOW()
	`

	_, err := r.repo.pool.Exec(ctx, query,
		id,
		acc.username,
		acc.artifact,
		acc.date,
		acc.totalViews,
		acc.uniques,
		referrerJSON,
		countryJSON,
	)

	return err
}

// GetDailyStats retrieves daily stats for a username within a date range.
func (r *ViewEventRepository) GetDailyStats(ctx context.Context, username string, from, to time.Time) ([]*model.DailyViewStats, error) {
	query := `
		SELECT id, username, artifact, date, total_views, unique_visitors,
			   referrer_breakdown, country_breakdown, created_at, updated_at
		FROM view_daily_stats
		WHERE username = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC, artifact ASC
	`

	rows, err := r.repo.pool.Query(ctx, query, username, from, to)
	if err != nil {
		return nil, fmt.Errorf("query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []*model.DailyViewStats
	for rows.Next() {
		stat, err := scanDailyStat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily stat: %w", err)
		}
		stats = append(stats, stat)
	}

	return stats, rows.Err()
}

// GetViewsSummary retrieves aggregated view counts for a username.
func (r *ViewEventRepository) GetViewsSummary(ctx context.Context, username string, from, to time.Time) (*model.ViewsSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(total_views), 0) as total_views,
			COALESCE(SUM(unique_visitors), 0) as unique_visitors,
			COUNT(DISTINCT date) as days
		FROM view_daily_stats
		WHERE username = $1 AND date >= $2 AND date <= $3
	`

	var totalViews, uniqueVisitors int64
	var days int

	err := r.repo.pool.QueryRow(ctx, query, username, from, to).Scan(&totalViews, &uniqueVisitors, &days)
	if err != nil {
		return nil, fmt.Errorf("query views summary: %w", err)
	}

	var avgViewsPerDay float64
	if days > 0 {
		avgViewsPerDay = float64(totalViews) / float64(days)
	}

	return &model.ViewsSummary{
		TotalViews:     totalViews,
		UniqueVisitors: uniqueVisitors,
		AvgViewsPerDay: avgViewsPerDay,
	}, nil
}

// scanDailyStat scans a row into DailyViewStats.
func scanDailyStat(rows pgx.Rows) (*model.DailyViewStats, error) {
	var stat model.DailyViewStats
	var referrerJSON, countryJSON []byte

	err := rows.Scan(
		&stat.ID,
		&stat.Username,
		&stat.Artifact,
		&stat.Date,
		&stat.TotalViews,
		&stat.UniqueVisitors,
		&referrerJSON,
		&countryJSON,
		&stat.CreatedAt,
		&stat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(referrerJSON) > 0 {
		_ = json.Unmarshal(referrerJSON, &stat.ReferrerBreakdown)
	}
	if len(countryJSON) > 0 {
		_ = json.Unmarshal(countryJSON, &stat.CountryBreakdown)
	}

	return &stat, nil
}

// nullableString returns nil for empty strings.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// extractDomain extracts the host from a referrer URL for grouping.
func extractDomain(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Host == "" {
		return "(unknown)"
	}
	return parsed.Host
}
