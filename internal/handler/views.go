package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gitfolio/gitfolio/internal/handler/dto"
	"github.com/gitfolio/gitfolio/internal/model"
	"github.com/gitfolio/gitfolio/internal/repository"
)

// Daily views query bounds.
const (
	DefaultViewsDays = 7
	MaxViewsDays     = 90
)

// ViewsHandler handles view analytics API requests.
type ViewsHandler struct {
	repo     *repository.ViewEventRepository
	username string
	logger   *slog.Logger
}

// NewViewsHandler creates a new ViewsHandler.
func NewViewsHandler(repo *repository.ViewEventRepository, username string, logger *slog.Logger) *ViewsHandler {
	return &ViewsHandler{
		repo:     repo,
		username: username,
		logger:   logger.With("component", "handler.views"),
	}
}

// GetDailyViews handles GET /api/v1/views/daily.
func (h *ViewsHandler) GetDailyViews(w http.ResponseWriter, r *http.Request) {
	from, to := h.parseRange(r)
	includes := h.parseIncludes(r)

	summary, err := h.repo.GetViewsSummary(r.Context(), h.username, from, to)
	if err != nil {
		h.logger.Error("failed to get views summary", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch view analytics")
		return
	}

	dailyStats, err := h.repo.GetDailyStats(r.Context(), h.username, from, to)
	if err != nil {
		h.logger.Error("failed to get daily stats", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch view analytics")
		return
	}

	writeJSON(w, http.StatusOK, h.buildResponse(from, to, summary, dailyStats, includes))
}

// parseRange derives the [from, to] window from the days query param.
// Days defaults to 7 and is capped at 90.
func (h *ViewsHandler) parseRange(r *http.Request) (time.Time, time.Time) {
	days := DefaultViewsDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			days = parsed
		}
	}
	if days > MaxViewsDays {
		days = MaxViewsDays
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)
	return from, to
}

// parseIncludes extracts included breakdown types from query.
func (h *ViewsHandler) parseIncludes(r *http.Request) map[string]bool {
	includes := make(map[string]bool)
	includeStr := r.URL.Query().Get("include")

	if includeStr == "" {
		// Default: include all
		includes["daily"] = true
		includes["referrers"] = true
		includes["countries"] = true
		return includes
	}

	for _, inc := range splitComma(includeStr) {
		includes[inc] = true
	}

	return includes
}

// buildResponse constructs the API response.
func (h *ViewsHandler) buildResponse(from, to time.Time, summary *model.ViewsSummary, dailyStats []*model.DailyViewStats, includes map[string]bool) *model.DailyViewsResponse {
	response := &model.DailyViewsResponse{
		Username:    h.username,
		Summary:     *summary,
		GeneratedAt: time.Now().UTC(),
	}
	response.Period.From = from.Format("2006-01-02")
	response.Period.To = to.Format("2006-01-02")

	// Daily stats arrive per artifact; collapse to one row per day.
	if includes["daily"] {
		dayTotals := make(map[string]*model.DailyBreakdown)
		var order []string
		for _, stat := range dailyStats {
			date := stat.Date.Format("2006-01-02")
			entry, ok := dayTotals[date]
			if !ok {
				entry = &model.DailyBreakdown{Date: date}
				dayTotals[date] = entry
				order = append(order, date)
			}
			entry.TotalViews += stat.TotalViews
			entry.UniqueVisitors += stat.UniqueVisitors
		}
		for _, date := range order {
			response.Daily = append(response.Daily, *dayTotals[date])
		}
	}

	if includes["referrers"] {
		referrerTotals := make(map[string]int64)
		for _, stat := range dailyStats {
			for domain, count := range stat.ReferrerBreakdown {
				referrerTotals[domain] += count
			}
		}
		response.Referrers = sortedReferrerViews(referrerTotals, 10)
	}

	if includes["countries"] {
		countryTotals := make(map[string]int64)
		for _, stat := range dailyStats {
			for code, count := range stat.CountryBreakdown {
				countryTotals[code] += count
			}
		}
		response.Countries = sortedCountryViews(countryTotals, 10)
	}

	return response
}

// writeError writes a JSON error response.
func (h *ViewsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// sortedReferrerViews converts map to sorted slice of ReferrerViews.
func sortedReferrerViews(m map[string]int64, limit int) []model.ReferrerViews {
	// Simple implementation - in production use a heap for top-k
	result := make([]model.ReferrerViews, 0, len(m))
	for domain, views := range m {
		result = append(result, model.ReferrerViews{
			Domain: domain,
			Views:  views,
		})
	}

	// Sort by views descending (simple bubble sort for small sets)
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].Views > result[i].Views {
				result[i], result[j] = result[j], result[i]
			}
		}
	}

	if len(result) > limit {
		return result[:limit]
	}
	return result
}

// sortedCountryViews converts map to sorted slice of CountryViews.
func sortedCountryViews(m map[string]int64, limit int) []model.CountryViews {
	result := make([]model.CountryViews, 0, len(m))
	for code, views := range m {
		result = append(result, model.CountryViews{
			Code:  code,
			Name:  countryName(code),
			Views: views,
		})
	}

	// Sort by views descending
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].Views > result[i].Views {
				result[i], result[j] = result[j], result[i]
			}
		}
	}

	if len(result) > limit {
		return result[:limit]
	}
	return result
}

// countryName returns full name for country code.
func countryName(code string) string {
	names := map[string]string{
		"US": "United States", "VN": "Vietnam", "GB": "United Kingdom",
		"DE": "Germany", "FR": "France", "JP": "Japan", "CN": "China",
		"KR": "South Korea", "IN": "India", "BR": "Brazil", "CA": "Canada",
		"AU": "Australia", "SG": "Singapore", "TH": "Thailand", "ID": "Indonesia",
	}
	if name, ok := names[code]; ok {
		return name
	}
	return code
}

// splitComma splits a comma-separated string.
func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if start < i {
				result = append(result, s[start:i])
			}
			start = i + 1
		}
	}
	return result
}
