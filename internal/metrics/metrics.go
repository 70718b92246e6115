// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Artifact serving metrics
	IncArtifactCacheHit()
	IncArtifactCacheMiss()
	ObserveArtifactServeDuration(duration time.Duration)
	AddArtifactViews(kind string, count int64) // kind: "card" or "readme"

	// Content management metrics
	IncProjectCreated()
	IncProjectUpdated()
	IncProjectDeleted()

	// Refresh pipeline metrics
	IncRefresh(status string) // status: "success" or "failed"
	ObserveRefreshDuration(duration time.Duration)
	ObserveRefreshEventsFetched(count int)

	// GitHub events API metrics
	IncGitHubRequest(status string) // HTTP status code or "error"
	ObserveGitHubRequestDuration(duration time.Duration)

	// View analytics pipeline metrics
	IncAnalyticsEventPublished(status string) // status: "success" or "dropped"
	IncAnalyticsEventProcessed(status string) // status: "success", "failed", "skipped"
	ObserveAnalyticsBatchSize(size int)
	ObserveAnalyticsBatchDuration(duration time.Duration)
	SetAnalyticsQueueDepth(depth int64)
	ObserveAnalyticsIngestLag(lag time.Duration)

	// Webhook delivery metrics
	IncWebhookDelivery(status string) // status: "success", "failed", "exhausted"
	IncWebhookRetry()
	ObserveWebhookDeliveryDuration(duration time.Duration)
	SetWebhookQueueDepth(depth int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
