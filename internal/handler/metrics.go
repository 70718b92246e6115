package handler

import (
	"fmt"
	"net/http"

	"github.com/gitfolio/gitfolio/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "gitfolio_artifact_cache_hits_total %d\n", snap.ArtifactCacheHits)
	writeMetric(w, "gitfolio_artifact_cache_misses_total %d\n", snap.ArtifactCacheMisses)
	writeMetric(w, "gitfolio_artifact_serve_duration_seconds_count %d\n", snap.ArtifactServeCount)
	writeMetric(w, "gitfolio_artifact_serve_duration_seconds_sum %.6f\n", float64(snap.ArtifactServeTotalNs)/1e9)
	writeMetric(w, "gitfolio_artifact_views_total{artifact=\"card\"} %d\n", snap.CardViews)
	writeMetric(w, "gitfolio_artifact_views_total{artifact=\"readme\"} %d\n", snap.ReadmeViews)

	writeMetric(w, "gitfolio_projects_created_total %d\n", snap.ProjectsCreated)
	writeMetric(w, "gitfolio_projects_updated_total %d\n", snap.ProjectsUpdated)
	writeMetric(w, "gitfolio_projects_deleted_total %d\n", snap.ProjectsDeleted)

	writeMetric(w, "gitfolio_refresh_runs_total{status=\"success\"} %d\n", snap.RefreshSuccesses)
	writeMetric(w, "gitfolio_refresh_runs_total{status=\"failed\"} %d\n", snap.RefreshFailures)
	writeMetric(w, "gitfolio_refresh_duration_seconds_count %d\n", snap.RefreshDurationCount)
	writeMetric(w, "gitfolio_refresh_duration_seconds_sum %.6f\n", float64(snap.RefreshDurationTotalNs)/1e9)
	writeMetric(w, "gitfolio_refresh_events_fetched_total %d\n", snap.RefreshEventsFetched)

	writeMetric(w, "gitfolio_github_requests_total %d\n", snap.GitHubRequests)
	writeMetric(w, "gitfolio_github_request_errors_total %d\n", snap.GitHubRequestErrors)
	writeMetric(w, "gitfolio_github_request_duration_seconds_count %d\n", snap.GitHubDurationCount)
	writeMetric(w, "gitfolio_github_request_duration_seconds_sum %.6f\n", float64(snap.GitHubDurationTotalNs)/1e9)

	writeMetric(w, "gitfolio_analytics_events_published_total{status=\"success\"} %d\n", snap.AnalyticsPublished)
	writeMetric(w, "gitfolio_analytics_events_published_total{status=\"dropped\"} %d\n", snap.AnalyticsDropped)
	writeMetric(w, "gitfolio_analytics_events_processed_total{status=\"success\"} %d\n", snap.AnalyticsProcessed)
	writeMetric(w, "gitfolio_analytics_events_processed_total{status=\"failed\"} %d\n", snap.AnalyticsProcessFailed)
	writeMetric(w, "gitfolio_analytics_events_processed_total{status=\"skipped\"} %d\n", snap.AnalyticsProcessSkipped)
	writeMetric(w, "gitfolio_analytics_queue_depth %d\n", snap.AnalyticsQueueDepth)

	writeMetric(w, "gitfolio_webhook_deliveries_total{status=\"success\"} %d\n", snap.WebhookDeliverySuccess)
	writeMetric(w, "gitfolio_webhook_deliveries_total{status=\"failed\"} %d\n", snap.WebhookDeliveryFailed)
	writeMetric(w, "gitfolio_webhook_deliveries_total{status=\"exhausted\"} %d\n", snap.WebhookDeliveryExhaust)
	writeMetric(w, "gitfolio_webhook_retries_total %d\n", snap.WebhookRetries)
	writeMetric(w, "gitfolio_webhook_queue_depth %d\n", snap.WebhookQueueDepth)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
