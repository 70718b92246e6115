// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// githubFoundedYear is the earliest year the events API can have data for.
const githubFoundedYear = 2008

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Public base URL of the service (e.g., https://stats.example.dev)
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// GitHub account settings
	GitHubUsername string `env:"GITHUB_USERNAME,required"`
	GitHubToken    string `env:"GITHUB_TOKEN" envDefault:""`
	GitHubAPIBase  string `env:"GITHUB_API_BASE" envDefault:"https://api.github.com"`

	// Stats aggregation settings.
	// StatsYear 0 means the current UTC year at each refresh.
	StatsYear     int `env:"STATS_YEAR" envDefault:"0"`
	FetchMaxPages int `env:"FETCH_MAX_PAGES" envDefault:"10"`
	FetchPerPage  int `env:"FETCH_PER_PAGE" envDefault:"100"`

	// Artifact output directory (stats.svg, README.md)
	DataDir string `env:"DATA_DIR" envDefault:"./data"`

	// Contribution graph image URL template.
	// Supports {username} and {year} placeholders.
	ContribGraphURL string `env:"CONTRIB_GRAPH_URL" envDefault:"https://ghchart.rshah.org/{username}"`

	// Refresh worker settings
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"6h"`
	RefreshOnStart  bool          `env:"REFRESH_ON_START" envDefault:"true"`

	// Snapshot retention in days (0 disables pruning)
	SnapshotRetentionDays int `env:"SNAPSHOT_RETENTION_DAYS" envDefault:"365"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting
	RateLimitAPIEnabled    bool `env:"RATE_LIMIT_API_ENABLED" envDefault:"true"`
	RateLimitPublicEnabled bool `env:"RATE_LIMIT_PUBLIC_ENABLED" envDefault:"true"`
	RateLimitPublicRPS     int  `env:"RATE_LIMIT_PUBLIC_RPS" envDefault:"100"`
	RateLimitPublicBurst   int  `env:"RATE_LIMIT_PUBLIC_BURST" envDefault:"20"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// TargetYear resolves the stats year for a refresh starting at now.
// STATS_YEAR=0 tracks the current UTC year.
func (c *Config) TargetYear(now time.Time) int {
	if c.StatsYear == 0 {
		return now.UTC().Year()
	}
	return c.StatsYear
}

// ContribGraphImageURL expands the contribution graph URL template.
func (c *Config) ContribGraphImageURL(year int) string {
	u := strings.ReplaceAll(c.ContribGraphURL, "{username}", c.GitHubUsername)
	return strings.ReplaceAll(u, "{year}", fmt.Sprintf("%d", year))
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.StatsYear != 0 {
		current := time.Now().UTC().Year()
		if c.StatsYear < githubFoundedYear || c.StatsYear > current {
			return fmt.Errorf("STATS_YEAR must be 0 or between %d and %d, got %d",
				githubFoundedYear, current, c.StatsYear)
		}
	}
	if c.FetchMaxPages < 1 {
		return fmt.Errorf("FETCH_MAX_PAGES must be at least 1, got %d", c.FetchMaxPages)
	}
	if c.FetchPerPage < 1 || c.FetchPerPage > 100 {
		return fmt.Errorf("FETCH_PER_PAGE must be between 1 and 100, got %d", c.FetchPerPage)
	}
	if c.RefreshInterval < time.Minute {
		return fmt.Errorf("REFRESH_INTERVAL must be at least 1m, got %s", c.RefreshInterval)
	}
	return nil
}
