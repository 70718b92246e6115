package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gitfolio/gitfolio/internal/model"
)

// Publisher creates webhook delivery records when events occur.
type Publisher struct {
	repo   *Repository
	logger *slog.Logger
}

// NewPublisher creates a new webhook publisher.
func NewPublisher(repo *Repository, logger *slog.Logger) *Publisher {
	return &Publisher{
		repo:   repo,
		logger: logger.With("component", "webhook.publisher"),
	}
}

// PublishStatsRefreshed creates webhook deliveries for a completed refresh.
// It fans out to all active endpoints subscribed to stats.refreshed.
// The snapshot ID serves as the event ID, so re-publishing the same
// snapshot is a no-op per endpoint.
func (p *Publisher) PublishStatsRefreshed(ctx context.Context, snapshot *model.ActivitySnapshot, cardPath, readmePath string) error {
	data := model.StatsRefreshedData{
		SnapshotID:         snapshot.ID,
		Username:           snapshot.Username,
		Year:               snapshot.Year,
		TotalEvents:        snapshot.TotalEvents,
		PushEvents:         snapshot.PushEvents,
		Commits:            snapshot.Commits,
		PullRequestsOpened: snapshot.PullRequestsOpened,
		IssuesOpened:       snapshot.IssuesOpened,
		ReposCreated:       snapshot.ReposCreated,
		CardPath:           cardPath,
		ReadmePath:         readmePath,
	}

	return p.publish(ctx, model.EventTypeStatsRefreshed, snapshot.ID, snapshot.FetchedAt, data)
}

// PublishReadmeUpdated creates webhook deliveries for a rendered README.
// The event ID is derived from the content hash, so an unchanged README
// does not re-notify subscribers.
func (p *Publisher) PublishReadmeUpdated(ctx context.Context, username, sha256Hex string) error {
	data := model.ReadmeUpdatedData{
		Username: username,
		SHA256:   sha256Hex,
	}

	hashPart := sha256Hex
	if len(hashPart) > 16 {
		hashPart = hashPart[:16]
	}
	eventID := fmt.Sprintf("readme:%s:%s", username, hashPart)

	return p.publish(ctx, model.EventTypeReadmeUpdated, eventID, time.Now(), data)
}

// publish fans an event out to all subscribed endpoints.
func (p *Publisher) publish(ctx context.Context, eventType model.EventType, eventID string, occurredAt time.Time, data any) error {
	endpoints, err := p.repo.ListActiveEndpointsByEvent(ctx, eventType)
	if err != nil {
		return fmt.Errorf("list active endpoints: %w", err)
	}

	if len(endpoints) == 0 {
		return nil // No webhooks configured
	}

	dataMap, err := toDataMap(data)
	if err != nil {
		return fmt.Errorf("encode event data: %w", err)
	}

	// Build payload once, reuse for all endpoints
	payload := model.WebhookPayload{
		EventType: string(eventType),
		EventID:   eventID,
		Timestamp: occurredAt,
		Data:      dataMap,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	// Create delivery for each endpoint
	now := time.Now()
	for _, endpoint := range endpoints {
		delivery := &model.WebhookDelivery{
			ID:           ulid.Make().String(),
			EndpointID:   endpoint.ID,
			EventID:      eventID,
			EventType:    eventType,
			PayloadJSON:  string(payloadJSON),
			Status:       model.DeliveryStatusPending,
			AttemptCount: 0,
			MaxAttempts:  DefaultMaxAttempts,
			NextRetryAt:  now, // Immediate delivery
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := p.repo.CreateDelivery(ctx, delivery); err != nil {
			p.logger.Warn("failed to create delivery",
				"endpoint_id", endpoint.ID,
				"event_id", eventID,
				"error", err,
			)
			// Continue with other endpoints
			continue
		}

		p.logger.Debug("webhook delivery created",
			"delivery_id", delivery.ID,
			"endpoint_id", endpoint.ID,
			"event_type", eventType,
			"event_id", eventID,
		)
	}

	return nil
}

// toDataMap converts a typed data struct to the payload's map form.
func toDataMap(data any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
