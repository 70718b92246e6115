// Package model defines domain entities for the application.
package model

import "time"

// ViewEvent represents a single artifact view.
type ViewEvent struct {
	ID      string `json:"id"`       // ULID (time-sortable)
	EventID string `json:"event_id"` // Idempotency key (Redis stream ID)

	// Artifact reference
	Artifact ArtifactKind `json:"artifact"`
	Username string       `json:"username"`

	// Request metadata
	Referrer  string `json:"referrer,omitempty"`   // Referer header (truncated 500 chars)
	UserAgent string `json:"user_agent,omitempty"` // UA string (truncated 500 chars)

	// Privacy-safe visitor identification
	VisitorHash string `json:"visitor_hash"` // SHA256(IP + UA + daily_salt)[0:16]

	// Optional geo (from CF-IPCountry header)
	CountryCode string `json:"country_code,omitempty"` // ISO 3166-1 alpha-2

	// Timestamps
	ViewedAt  time.Time `json:"viewed_at"`  // Event timestamp
	CreatedAt time.Time `json:"created_at"` // DB insertion time
}

// DailyViewStats represents pre-aggregated daily view statistics for
// one artifact.
type DailyViewStats struct {
	ID       string       `json:"id"` // Composite: username:artifact:date
	Username string       `json:"username"`
	Artifact ArtifactKind `json:"artifact"`
	Date     time.Time    `json:"date"` // UTC date (time component zeroed)

	// Counters
	TotalViews     int64 `json:"total_views"`
	UniqueVisitors int64 `json:"unique_visitors"`

	// Breakdowns (stored as JSONB in Postgres)
	ReferrerBreakdown map[string]int64 `json:"referrer_breakdown,omitempty"`
	CountryBreakdown  map[string]int64 `json:"country_breakdown,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ViewsSummary represents aggregated view counts for API responses.
type ViewsSummary struct {
	TotalViews     int64   `json:"total_views"`
	UniqueVisitors int64   `json:"unique_visitors"`
	AvgViewsPerDay float64 `json:"avg_views_per_day"`
}

// DailyViewsResponse represents the daily views API response.
type DailyViewsResponse struct {
	Username string `json:"username"`
	Period   struct {
		From string `json:"from"` // ISO date
		To   string `json:"to"`   // ISO date
	} `json:"period"`
	Summary     ViewsSummary     `json:"summary"`
	Daily       []DailyBreakdown `json:"daily,omitempty"`
	Referrers   []ReferrerViews  `json:"referrers,omitempty"`
	Countries   []CountryViews   `json:"countries,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// DailyBreakdown represents views for a single day.
type DailyBreakdown struct {
	Date           string `json:"date"` // ISO date
	TotalViews     int64  `json:"total_views"`
	UniqueVisitors int64  `json:"unique_visitors"`
}

// ReferrerViews represents views attributed to one referrer domain.
type ReferrerViews struct {
	Domain string `json:"domain"`
	Views  int64  `json:"views"`
}

// CountryViews represents views attributed to one country.
type CountryViews struct {
	Code  string `json:"code"` // ISO 3166-1 alpha-2
	Name  string `json:"name"`
	Views int64  `json:"views"`
}
