package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncArtifactCacheHit is a no-op.
func (n *NoopRecorder) IncArtifactCacheHit() {}

// IncArtifactCacheMiss is a no-op.
func (n *NoopRecorder) IncArtifactCacheMiss() {}

// ObserveArtifactServeDuration is a no-op.
func (n *NoopRecorder) ObserveArtifactServeDuration(duration time.Duration) {}

// AddArtifactViews is a no-op.
func (n *NoopRecorder) AddArtifactViews(kind string, count int64) {}

// IncProjectCreated is a no-op.
func (n *NoopRecorder) IncProjectCreated() {}

// IncProjectUpdated is a no-op.
func (n *NoopRecorder) IncProjectUpdated() {}

// IncProjectDeleted is a no-op.
func (n *NoopRecorder) IncProjectDeleted() {}

// IncRefresh is a no-op.
func (n *NoopRecorder) IncRefresh(status string) {}

// ObserveRefreshDuration is a no-op.
func (n *NoopRecorder) ObserveRefreshDuration(duration time.Duration) {}

// ObserveRefreshEventsFetched is a no-op.
func (n *NoopRecorder) ObserveRefreshEventsFetched(count int) {}

// IncGitHubRequest is a no-op.
func (n *NoopRecorder) IncGitHubRequest(status string) {}

// ObserveGitHubRequestDuration is a no-op.
func (n *NoopRecorder) ObserveGitHubRequestDuration(duration time.Duration) {}

// IncAnalyticsEventPublished is a no-op.
func (n *NoopRecorder) IncAnalyticsEventPublished(status string) {}

// IncAnalyticsEventProcessed is a no-op.
func (n *NoopRecorder) IncAnalyticsEventProcessed(status string) {}

// ObserveAnalyticsBatchSize is a no-op.
func (n *NoopRecorder) ObserveAnalyticsBatchSize(size int) {}

// ObserveAnalyticsBatchDuration is a no-op.
func (n *NoopRecorder) ObserveAnalyticsBatchDuration(duration time.Duration) {}

// SetAnalyticsQueueDepth is a no-op.
func (n *NoopRecorder) SetAnalyticsQueueDepth(depth int64) {}

// ObserveAnalyticsIngestLag is a no-op.
func (n *NoopRecorder) ObserveAnalyticsIngestLag(lag time.Duration) {}

// IncWebhookDelivery is a no-op.
func (n *NoopRecorder) IncWebhookDelivery(status string) {}

// IncWebhookRetry is a no-op.
func (n *NoopRecorder) IncWebhookRetry() {}

// ObserveWebhookDeliveryDuration is a no-op.
func (n *NoopRecorder) ObserveWebhookDeliveryDuration(duration time.Duration) {}

// SetWebhookQueueDepth is a no-op.
func (n *NoopRecorder) SetWebhookQueueDepth(depth int64) {}
