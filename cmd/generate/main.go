// Package main is a one-shot stats card generator. It fetches public
// GitHub events, aggregates them for a year, and writes the SVG card
// without requiring Postgres or Redis. With -check it lints an
// existing README instead.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gitfolio/gitfolio/internal/github"
	"github.com/gitfolio/gitfolio/internal/lint"
	"github.com/gitfolio/gitfolio/internal/metrics"
	"github.com/gitfolio/gitfolio/internal/render"
	"github.com/gitfolio/gitfolio/internal/stats"
)

const fetchTimeout = 5 * time.Minute

func main() {
	var (
		username = flag.String("username", os.Getenv("GITHUB_USERNAME"), "GitHub username (env GITHUB_USERNAME)")
		year     = flag.Int("year", envInt("STATS_YEAR", 0), "target year, 0 for the current UTC year (env STATS_YEAR)")
		token    = flag.String("token", os.Getenv("GITHUB_TOKEN"), "GitHub API token (env GITHUB_TOKEN)")
		apiBase  = flag.String("api-base", envOr("GITHUB_API_BASE", "https://api.github.com"), "GitHub API base URL (env GITHUB_API_BASE)")
		out      = flag.String("out", "stats.svg", "output path for the stats card")
		maxPages = flag.Int("max-pages", envInt("FETCH_MAX_PAGES", 10), "maximum event pages to fetch (env FETCH_MAX_PAGES)")
		perPage  = flag.Int("per-page", envInt("FETCH_PER_PAGE", 100), "events per page (env FETCH_PER_PAGE)")
		check    = flag.String("check", "", "lint the given README instead of generating")
		assets   = flag.String("assets", ".", "asset root for relative image references in check mode")
		format   = flag.String("format", "plain", "output format: plain or json")
	)
	flag.Parse()

	if *format != "plain" && *format != "json" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		os.Exit(2)
	}

	if *check != "" {
		os.Exit(runCheck(*check, *assets, *format))
	}

	if *username == "" {
		fmt.Fprintln(os.Stderr, "username is required (-username or GITHUB_USERNAME)")
		os.Exit(2)
	}

	os.Exit(runGenerate(*username, *apiBase, *token, *out, *year, *maxPages, *perPage, *format))
}

func runGenerate(username, apiBase, token, out string, year, maxPages, perPage int, format string) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if year == 0 {
		year = time.Now().UTC().Year()
	}
	if token == "" {
		fmt.Fprintln(os.Stderr, "warning: no GitHub token configured, unauthenticated rate limit is 60 requests/hour")
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	client := github.New(apiBase, token, logger, metrics.NewNoop())
	events, err := client.EventsForYear(ctx, username, year, maxPages, perPage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch events: %v\n", err)
		return 1
	}

	aggregated := stats.Compute(events)
	card, err := render.RenderCard(render.CardData{
		Username: username,
		Year:     year,
		Stats:    aggregated,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "render card: %v\n", err)
		return 1
	}

	if err := render.WriteFileAtomic(out, card); err != nil {
		fmt.Fprintf(os.Stderr, "write card: %v\n", err)
		return 1
	}

	if format == "json" {
		payload := map[string]any{
			"username": username,
			"year":     year,
			"events":   aggregated.TotalEvents,
			"out":      out,
			"bytes":    len(card),
		}
		if err := json.NewEncoder(os.Stdout).Encode(payload); err != nil {
			fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Printf("wrote %s (%d bytes, %d events for %s in %d)\n", out, len(card), aggregated.TotalEvents, username, year)
	return 0
}

func runCheck(path, assetRoot, format string) int {
	report, err := lint.CheckFile(path, lint.Options{AssetRoot: assetRoot})
	if err != nil {
		fmt.Fprintf(os.Stderr, "check %s: %v\n", path, err)
		return 1
	}

	if format == "json" {
		if err := json.NewEncoder(os.Stdout).Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "encode report: %v\n", err)
			return 1
		}
	} else {
		for _, issue := range report.Issues {
			fmt.Printf("%s: %s: %s\n", issue.Severity, issue.Rule, issue.Detail)
		}
		fmt.Printf("%s: %d headings, %d links, %d images, %d issues\n", path, report.Headings, report.Links, report.Images, len(report.Issues))
	}

	if !report.OK() {
		return 1
	}
	return 0
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
