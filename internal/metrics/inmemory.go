package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ArtifactCacheHits       uint64
	ArtifactCacheMisses     uint64
	ArtifactServeCount      uint64
	ArtifactServeTotalNs    int64
	CardViews               uint64
	ReadmeViews             uint64
	ProjectsCreated         uint64
	ProjectsUpdated         uint64
	ProjectsDeleted         uint64
	RefreshSuccesses        uint64
	RefreshFailures         uint64
	RefreshDurationCount    uint64
	RefreshDurationTotalNs  int64
	RefreshEventsFetched    uint64
	GitHubRequests          uint64
	GitHubRequestErrors     uint64
	GitHubDurationCount     uint64
	GitHubDurationTotalNs   int64
	WebhookDeliverySuccess  uint64
	WebhookDeliveryFailed   uint64
	WebhookDeliveryExhaust  uint64
	WebhookRetries          uint64
	WebhookQueueDepth       int64
	AnalyticsPublished      uint64
	AnalyticsDropped        uint64
	AnalyticsProcessed      uint64
	AnalyticsProcessFailed  uint64
	AnalyticsProcessSkipped uint64
	AnalyticsQueueDepth     int64
}

// InMemoryRecorder stores metrics in memory for tests and the
// /api/v1/metrics snapshot endpoint.
type InMemoryRecorder struct {
	artifactCacheHits       uint64
	artifactCacheMisses     uint64
	artifactServeCount      uint64
	artifactServeTotalNs    int64
	cardViews               uint64
	readmeViews             uint64
	projectsCreated         uint64
	projectsUpdated         uint64
	projectsDeleted         uint64
	refreshSuccesses        uint64
	refreshFailures         uint64
	refreshDurationCount    uint64
	refreshDurationTotalNs  int64
	refreshEventsFetched    uint64
	githubRequests          uint64
	githubRequestErrors     uint64
	githubDurationCount     uint64
	githubDurationTotalNs   int64
	webhookDeliverySuccess  uint64
	webhookDeliveryFailed   uint64
	webhookDeliveryExhaust  uint64
	webhookRetries          uint64
	webhookQueueDepth       int64
	analyticsPublished      uint64
	analyticsDropped        uint64
	analyticsProcessed      uint64
	analyticsProcessFailed  uint64
	analyticsProcessSkipped uint64
	analyticsQueueDepth     int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		ArtifactCacheHits:       atomic.LoadUint64(&m.artifactCacheHits),
		ArtifactCacheMisses:     atomic.LoadUint64(&m.artifactCacheMisses),
		ArtifactServeCount:      atomic.LoadUint64(&m.artifactServeCount),
		ArtifactServeTotalNs:    atomic.LoadInt64(&m.artifactServeTotalNs),
		CardViews:               atomic.LoadUint64(&m.cardViews),
		ReadmeViews:             atomic.LoadUint64(&m.readmeViews),
		ProjectsCreated:         atomic.LoadUint64(&m.projectsCreated),
		ProjectsUpdated:         atomic.LoadUint64(&m.projectsUpdated),
		ProjectsDeleted:         atomic.LoadUint64(&m.projectsDeleted),
		RefreshSuccesses:        atomic.LoadUint64(&m.refreshSuccesses),
		RefreshFailures:         atomic.LoadUint64(&m.refreshFailures),
		RefreshDurationCount:    atomic.LoadUint64(&m.refreshDurationCount),
		RefreshDurationTotalNs:  atomic.LoadInt64(&m.refreshDurationTotalNs),
		RefreshEventsFetched:    atomic.LoadUint64(&m.refreshEventsFetched),
		GitHubRequests:          atomic.LoadUint64(&m.githubRequests),
		GitHubRequestErrors:     atomic.LoadUint64(&m.githubRequestErrors),
		GitHubDurationCount:     atomic.LoadUint64(&m.githubDurationCount),
		GitHubDurationTotalNs:   atomic.LoadInt64(&m.githubDurationTotalNs),
		WebhookDeliverySuccess:  atomic.LoadUint64(&m.webhookDeliverySuccess),
		WebhookDeliveryFailed:   atomic.LoadUint64(&m.webhookDeliveryFailed),
		WebhookDeliveryExhaust:  atomic.LoadUint64(&m.webhookDeliveryExhaust),
		WebhookRetries:          atomic.LoadUint64(&m.webhookRetries),
		WebhookQueueDepth:       atomic.LoadInt64(&m.webhookQueueDepth),
		AnalyticsPublished:      atomic.LoadUint64(&m.analyticsPublished),
		AnalyticsDropped:        atomic.LoadUint64(&m.analyticsDropped),
		AnalyticsProcessed:      atomic.LoadUint64(&m.analyticsProcessed),
		AnalyticsProcessFailed:  atomic.LoadUint64(&m.analyticsProcessFailed),
		AnalyticsProcessSkipped: atomic.LoadUint64(&m.analyticsProcessSkipped),
		AnalyticsQueueDepth:     atomic.LoadInt64(&m.analyticsQueueDepth),
	}
}

// IncArtifactCacheHit increments the artifact cache hit counter.
func (m *InMemoryRecorder) IncArtifactCacheHit() {
	atomic.AddUint64(&m.artifactCacheHits, 1)
}

// IncArtifactCacheMiss increments the artifact cache miss counter.
func (m *InMemoryRecorder) IncArtifactCacheMiss() {
	atomic.AddUint64(&m.artifactCacheMisses, 1)
}

// ObserveArtifactServeDuration records one artifact serve duration.
func (m *InMemoryRecorder) ObserveArtifactServeDuration(duration time.Duration) {
	atomic.AddUint64(&m.artifactServeCount, 1)
	atomic.AddInt64(&m.artifactServeTotalNs, duration.Nanoseconds())
}

// AddArtifactViews folds a flushed Redis view counter into the totals.
func (m *InMemoryRecorder) AddArtifactViews(kind string, count int64) {
	if count <= 0 {
		return
	}
	switch kind {
	case "card":
		atomic.AddUint64(&m.cardViews, uint64(count))
	case "readme":
		atomic.AddUint64(&m.readmeViews, uint64(count))
	}
}

// IncProjectCreated increments the project created counter.
func (m *InMemoryRecorder) IncProjectCreated() {
	atomic.AddUint64(&m.projectsCreated, 1)
}

// IncProjectUpdated increments the project updated counter.
func (m *InMemoryRecorder) IncProjectUpdated() {
	atomic.AddUint64(&m.projectsUpdated, 1)
}

// IncProjectDeleted increments the project deleted counter.
func (m *InMemoryRecorder) IncProjectDeleted() {
	atomic.AddUint64(&m.projectsDeleted, 1)
}

// IncRefresh increments the refresh counter for the given status.
func (m *InMemoryRecorder) IncRefresh(status string) {
	if status == "success" {
		atomic.AddUint64(&m.refreshSuccesses, 1)
		return
	}
	atomic.AddUint64(&m.refreshFailures, 1)
}

// ObserveRefreshDuration records one refresh run duration.
func (m *InMemoryRecorder) ObserveRefreshDuration(duration time.Duration) {
	atomic.AddUint64(&m.refreshDurationCount, 1)
	atomic.AddInt64(&m.refreshDurationTotalNs, duration.Nanoseconds())
}

// ObserveRefreshEventsFetched records events fetched by a refresh run.
func (m *InMemoryRecorder) ObserveRefreshEventsFetched(count int) {
	if count > 0 {
		atomic.AddUint64(&m.refreshEventsFetched, uint64(count))
	}
}

// IncGitHubRequest counts one events API request by outcome.
func (m *InMemoryRecorder) IncGitHubRequest(status string) {
	atomic.AddUint64(&m.githubRequests, 1)
	if status == "error" || (len(status) > 0 && status[0] == '5') {
		atomic.AddUint64(&m.githubRequestErrors, 1)
	}
}

// ObserveGitHubRequestDuration records one events API request duration.
func (m *InMemoryRecorder) ObserveGitHubRequestDuration(duration time.Duration) {
	atomic.AddUint64(&m.githubDurationCount, 1)
	atomic.AddInt64(&m.githubDurationTotalNs, duration.Nanoseconds())
}

// IncAnalyticsEventPublished counts a published or dropped view event.
func (m *InMemoryRecorder) IncAnalyticsEventPublished(status string) {
	if status == "success" {
		atomic.AddUint64(&m.analyticsPublished, 1)
		return
	}
	atomic.AddUint64(&m.analyticsDropped, 1)
}

// IncAnalyticsEventProcessed counts a consumed view event by outcome.
func (m *InMemoryRecorder) IncAnalyticsEventProcessed(status string) {
	switch status {
	case "success":
		atomic.AddUint64(&m.analyticsProcessed, 1)
	case "skipped":
		atomic.AddUint64(&m.analyticsProcessSkipped, 1)
	default:
		atomic.AddUint64(&m.analyticsProcessFailed, 1)
	}
}

// ObserveAnalyticsBatchSize is recorded only by external recorders.
func (m *InMemoryRecorder) ObserveAnalyticsBatchSize(size int) {}

// ObserveAnalyticsBatchDuration is recorded only by external recorders.
func (m *InMemoryRecorder) ObserveAnalyticsBatchDuration(duration time.Duration) {}

// SetAnalyticsQueueDepth stores the current stream length.
func (m *InMemoryRecorder) SetAnalyticsQueueDepth(depth int64) {
	atomic.StoreInt64(&m.analyticsQueueDepth, depth)
}

// ObserveAnalyticsIngestLag is recorded only by external recorders.
func (m *InMemoryRecorder) ObserveAnalyticsIngestLag(lag time.Duration) {}

// IncWebhookDelivery counts one delivery attempt by outcome.
func (m *InMemoryRecorder) IncWebhookDelivery(status string) {
	switch status {
	case "success":
		atomic.AddUint64(&m.webhookDeliverySuccess, 1)
	case "exhausted":
		atomic.AddUint64(&m.webhookDeliveryExhaust, 1)
	default:
		atomic.AddUint64(&m.webhookDeliveryFailed, 1)
	}
}

// IncWebhookRetry counts one scheduled delivery retry.
func (m *InMemoryRecorder) IncWebhookRetry() {
	atomic.AddUint64(&m.webhookRetries, 1)
}

// ObserveWebhookDeliveryDuration is recorded only by external recorders.
func (m *InMemoryRecorder) ObserveWebhookDeliveryDuration(duration time.Duration) {}

// SetWebhookQueueDepth stores the current pending delivery count.
func (m *InMemoryRecorder) SetWebhookQueueDepth(depth int64) {
	atomic.StoreInt64(&m.webhookQueueDepth, depth)
}
