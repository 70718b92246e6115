//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gitfolio/gitfolio/internal/auth"
	"github.com/gitfolio/gitfolio/internal/model"
	"github.com/gitfolio/gitfolio/internal/repository"
)

const (
	systemOwnerID = "system"
	systemEmail   = "system@gitfolio.local"
)

type apiKeyCreateResponse struct {
	ID     string   `json:"id"`
	Key    string   `json:"key"`
	Scopes []string `json:"scopes"`
}

type projectResponse struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

type webhookCreateResponse struct {
	ID        string `json:"id"`
	TargetURL string `json:"target_url"`
	Secret    string `json:"secret"`
}

type webhookRequest struct {
	Headers http.Header
	Body    []byte
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("GITFOLIO_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}
	username := os.Getenv("GITHUB_USERNAME")
	if username == "" {
		t.Fatalf("GITHUB_USERNAME is required for e2e tests")
	}

	bootstrapKey := bootstrapAdminKey(t, dbURL, username)
	testKey := createAPIKey(t, baseURL, bootstrapKey)

	updateProfile(t, baseURL, testKey)
	project := createProject(t, baseURL, testKey)

	seedSnapshot(t, dbURL, username)

	etag := assertStatsCard(t, baseURL)
	assertNotModified(t, baseURL, etag)
	assertReadme(t, baseURL, project.Title)

	waitForViews(t, baseURL, testKey, 2)
}

func TestE2EWebhookDelivery(t *testing.T) {
	baseURL := envOrDefault("GITFOLIO_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}
	username := os.Getenv("GITHUB_USERNAME")
	if username == "" {
		t.Fatalf("GITHUB_USERNAME is required for e2e tests")
	}

	bootstrapKey := bootstrapAdminKey(t, dbURL, username)
	testKey := createAPIKey(t, baseURL, bootstrapKey)

	webhookURL, deliveries, shutdown := startWebhookReceiver(t)
	defer shutdown()
	createWebhookEndpoint(t, baseURL, testKey, webhookURL)

	triggerRefresh(t, baseURL, testKey)
	waitForWebhookDelivery(t, deliveries, username)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func bootstrapAdminKey(t *testing.T, dbURL, username string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer repo.Close()

	if err := ensureOwner(ctx, repo, systemOwnerID, systemEmail, username); err != nil {
		t.Fatalf("ensure owner: %v", err)
	}

	generated, err := auth.GenerateAPIKey(auth.EnvLive)
	if err != nil {
		t.Fatalf("generate api key: %v", err)
	}

	apiKey := &model.APIKey{
		ID:            ulid.Make().String(),
		OwnerID:       systemOwnerID,
		KeyHash:       generated.Hash,
		KeyPrefix:     generated.Prefix,
		Scopes:        []string{model.ScopeAdmin},
		RateLimitTier: model.TierUnlimited,
		Name:          "e2e-bootstrap",
		CreatedAt:     time.Now().UTC(),
	}

	if err := repo.CreateAPIKey(ctx, apiKey); err != nil {
		t.Fatalf("create api key: %v", err)
	}

	return generated.Plaintext
}

func ensureOwner(ctx context.Context, repo *repository.Repository, ownerID, email, username string) error {
	if existing, err := repo.GetOwnerByID(ctx, ownerID); err == nil {
		if existing.Email != email {
			return fmt.Errorf("owner %s exists with different email: %s", ownerID, existing.Email)
		}
		return nil
	}

	if byEmail, err := repo.GetOwnerByEmail(ctx, email); err == nil {
		if byEmail.ID != ownerID {
			return fmt.Errorf("email %s already used by owner %s", email, byEmail.ID)
		}
		return nil
	}

	owner := &model.Owner{ID: ownerID, Email: email, Username: username, CreatedAt: time.Now().UTC()}
	return repo.CreateOwner(ctx, owner)
}

func createAPIKey(t *testing.T, baseURL, bootstrapKey string) string {
	t.Helper()

	payload := map[string]any{
		"name":   "e2e-key",
		"scopes": []string{"admin"},
	}

	var resp apiKeyCreateResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/api-keys", bootstrapKey, payload, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from api key create, got %d", status)
	}
	if resp.Key == "" {
		t.Fatalf("api key response missing key")
	}
	return resp.Key
}

func updateProfile(t *testing.T, baseURL, apiKey string) {
	t.Helper()

	payload := map[string]any{
		"display_name": "E2E Tester",
		"headline":     "Backend engineer",
		"interests":    []string{"go", "distributed systems"},
	}

	var resp map[string]any
	status := doJSON(t, http.MethodPut, baseURL+"/api/v1/profile", apiKey, payload, &resp)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from profile update, got %d", status)
	}
}

func createProject(t *testing.T, baseURL, apiKey string) projectResponse {
	t.Helper()

	title := fmt.Sprintf("e2e-project-%d", time.Now().UnixNano())
	payload := map[string]any{
		"title":      title,
		"summary":    "Created by the e2e smoke test",
		"tech_stack": []string{"go", "postgres"},
		"status":     "building",
	}

	var resp projectResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/projects", apiKey, payload, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from project create, got %d", status)
	}
	if resp.ID == "" || resp.Title != title {
		t.Fatalf("project create response missing fields")
	}
	return resp
}

// seedSnapshot inserts an activity snapshot directly so artifact
// endpoints can render without a live GitHub fetch.
func seedSnapshot(t *testing.T, dbURL, username string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer repo.Close()

	now := time.Now().UTC()
	snapshot := &model.ActivitySnapshot{
		ID:                 ulid.Make().String(),
		Username:           username,
		Year:               now.Year(),
		TotalEvents:        42,
		PushEvents:         20,
		Commits:            60,
		PullRequestsOpened: 5,
		IssuesOpened:       3,
		ReposCreated:       2,
		EventsFetched:      42,
		FetchedAt:          now,
		DurationMS:         1200,
		CreatedAt:          now,
	}
	if err := repo.CreateSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
}

func assertStatsCard(t *testing.T, baseURL string) string {
	t.Helper()

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/stats.svg")
	if err != nil {
		t.Fatalf("stats card request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from stats card, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Fatalf("expected image/svg+xml, got %q", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read stats card: %v", err)
	}
	if !strings.Contains(string(body), "<svg") {
		t.Fatalf("stats card is not an SVG")
	}

	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatalf("stats card missing ETag header")
	}
	return etag
}

func assertNotModified(t *testing.T, baseURL, etag string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/stats.svg", nil)
	if err != nil {
		t.Fatalf("create conditional request: %v", err)
	}
	req.Header.Set("If-None-Match", etag)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("conditional request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304 for matching ETag, got %d", resp.StatusCode)
	}
}

func assertReadme(t *testing.T, baseURL, projectTitle string) {
	t.Helper()

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/readme.md")
	if err != nil {
		t.Fatalf("readme request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from readme, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read readme: %v", err)
	}
	if !strings.Contains(string(body), projectTitle) {
		t.Fatalf("readme does not mention project %q", projectTitle)
	}
}

func waitForViews(t *testing.T, baseURL, apiKey string, minViews int64) {
	t.Helper()

	endpoint := baseURL + "/api/v1/views/daily?days=1"

	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		var resp model.DailyViewsResponse
		status := doJSON(t, http.MethodGet, endpoint, apiKey, nil, &resp)
		if status == http.StatusOK && resp.Summary.TotalViews >= minViews {
			return
		}
		time.Sleep(250 * time.Millisecond)
	}

	t.Fatalf("view analytics did not report views in time")
}

func startWebhookReceiver(t *testing.T) (string, <-chan webhookRequest, func()) {
	t.Helper()

	received := make(chan webhookRequest, 1)

	listener, err := net.Listen("tcp", "0.0.0.0:0")
	if err != nil {
		t.Fatalf("listen webhook: %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		received <- webhookRequest{Headers: r.Header.Clone(), Body: body}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Handler: handler}
	go func() {
		_ = srv.Serve(listener)
	}()

	port := listener.Addr().(*net.TCPAddr).Port
	url := fmt.Sprintf("http://host.docker.internal:%d/webhook", port)

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}

	return url, received, shutdown
}

func createWebhookEndpoint(t *testing.T, baseURL, apiKey, targetURL string) {
	t.Helper()

	payload := map[string]any{
		"target_url":  targetURL,
		"event_types": []string{"stats.refreshed"},
		"name":        "e2e-webhook",
	}

	var resp webhookCreateResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/webhooks", apiKey, payload, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from webhook create, got %d", status)
	}
	if resp.ID == "" || resp.Secret == "" {
		t.Fatalf("webhook create response missing fields")
	}
}

func triggerRefresh(t *testing.T, baseURL, apiKey string) {
	t.Helper()

	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/refresh", apiKey, nil, nil)
	if status != http.StatusAccepted && status != http.StatusConflict {
		t.Fatalf("expected 202 or 409 from refresh trigger, got %d", status)
	}
}

func waitForWebhookDelivery(t *testing.T, deliveries <-chan webhookRequest, username string) {
	t.Helper()

	select {
	case req := <-deliveries:
		if req.Headers.Get("X-Gitfolio-Signature") == "" {
			t.Fatalf("missing X-Gitfolio-Signature header")
		}
		if req.Headers.Get("X-Gitfolio-Timestamp") == "" {
			t.Fatalf("missing X-Gitfolio-Timestamp header")
		}
		if req.Headers.Get("X-Gitfolio-Delivery-Id") == "" {
			t.Fatalf("missing X-Gitfolio-Delivery-Id header")
		}

		var payload model.WebhookPayload
		if err := json.Unmarshal(req.Body, &payload); err != nil {
			t.Fatalf("decode webhook payload: %v", err)
		}
		if payload.EventType != string(model.EventTypeStatsRefreshed) {
			t.Fatalf("unexpected event_type %q", payload.EventType)
		}
		if payload.Data == nil {
			t.Fatalf("webhook payload missing data")
		}
		if name, ok := payload.Data["username"].(string); !ok || name != username {
			t.Fatalf("unexpected username in webhook payload")
		}
	case <-time.After(60 * time.Second):
		t.Fatalf("timed out waiting for webhook delivery")
	}
}

func doJSON(t *testing.T, method, url, apiKey string, body any, out any) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(apiKey) != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && resp.ContentLength != 0 {
			t.Fatalf("decode response: %v", err)
		}
	}

	return resp.StatusCode
}

// TestE2ERateLimiting validates that rate limiting returns 429 with proper headers.
func TestE2ERateLimiting(t *testing.T) {
	baseURL := envOrDefault("GITFOLIO_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}
	username := os.Getenv("GITHUB_USERNAME")
	if username == "" {
		t.Fatalf("GITHUB_USERNAME is required for e2e tests")
	}

	// Create a free-tier API key (60 RPM, 10 burst)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer repo.Close()

	if err := ensureOwner(ctx, repo, systemOwnerID, systemEmail, username); err != nil {
		t.Fatalf("ensure owner: %v", err)
	}

	generated, err := auth.GenerateAPIKey(auth.EnvLive)
	if err != nil {
		t.Fatalf("generate api key: %v", err)
	}

	apiKey := &model.APIKey{
		ID:            ulid.Make().String(),
		OwnerID:       systemOwnerID,
		KeyHash:       generated.Hash,
		KeyPrefix:     generated.Prefix,
		Scopes:        []string{model.ScopeRead},
		RateLimitTier: model.TierFree, // Free tier: 60 RPM, burst 10
		Name:          "e2e-ratelimit-test",
		CreatedAt:     time.Now().UTC(),
	}

	if err := repo.CreateAPIKey(ctx, apiKey); err != nil {
		t.Fatalf("create free-tier api key: %v", err)
	}

	testKey := generated.Plaintext

	// Send requests until we hit rate limit
	client := &http.Client{Timeout: 10 * time.Second}
	var rateLimited bool
	var lastResp *http.Response

	// Free tier has burst of 10, try 20 requests rapidly
	for i := 0; i < 20; i++ {
		req, err := http.NewRequest(http.MethodGet, baseURL+"/api/v1/projects", nil)
		if err != nil {
			t.Fatalf("create request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+testKey)

		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			rateLimited = true
			lastResp = resp
			break
		}
		resp.Body.Close()
	}

	if !rateLimited {
		t.Fatalf("expected 429 rate limit after burst, but never hit rate limit")
	}

	defer lastResp.Body.Close()

	// Verify rate limit headers
	limitHeader := lastResp.Header.Get("X-RateLimit-Limit")
	remainingHeader := lastResp.Header.Get("X-RateLimit-Remaining")
	retryAfterHeader := lastResp.Header.Get("Retry-After")

	if limitHeader == "" {
		t.Error("missing X-RateLimit-Limit header on 429 response")
	}
	if remainingHeader != "0" {
		t.Errorf("expected X-RateLimit-Remaining=0, got %s", remainingHeader)
	}
	if retryAfterHeader == "" {
		t.Log("Retry-After header not present (optional but recommended)")
	}

	// Verify response body
	var errResp map[string]any
	if err := json.NewDecoder(lastResp.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode 429 response: %v", err)
	}

	if errResp["error"] == nil {
		t.Error("429 response missing 'error' field")
	}
}

// TestE2ENoSecretsInLogs validates that API keys are not leaked in responses.
// This test validates that error responses don't echo back sensitive credentials.
func TestE2ENoSecretsInLogs(t *testing.T) {
	baseURL := envOrDefault("GITFOLIO_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}
	username := os.Getenv("GITHUB_USERNAME")
	if username == "" {
		t.Fatalf("GITHUB_USERNAME is required for e2e tests")
	}

	bootstrapKey := bootstrapAdminKey(t, dbURL, username)

	client := &http.Client{Timeout: 10 * time.Second}

	// Test that error responses don't leak the Authorization header value
	testKey := "gfk_live_fake_" + strings.Repeat("x", 32)
	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/v1/projects", nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+testKey)

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	bodyStr := string(body)

	// The fake API key should NEVER appear in error responses
	if strings.Contains(bodyStr, testKey) {
		t.Error("SECURITY: Error response leaked Authorization header value")
	}

	// The bootstrap key should never be echoed back
	if strings.Contains(bodyStr, bootstrapKey) {
		t.Error("SECURITY: Response contains the bootstrap API key")
	}

	// Test with a valid key - responses should not include the key itself
	req2, err := http.NewRequest(http.MethodGet, baseURL+"/api/v1/projects", nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req2.Header.Set("Authorization", "Bearer "+bootstrapKey)

	resp2, err := client.Do(req2)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body2, _ := io.ReadAll(resp2.Body)
	resp2.Body.Close()

	// The full API key should never appear in successful responses
	if strings.Contains(string(body2), bootstrapKey) {
		t.Error("SECURITY: Successful response echoed back the API key")
	}
}
