package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gitfolio/gitfolio/internal/analytics"
	"github.com/gitfolio/gitfolio/internal/cache"
	"github.com/gitfolio/gitfolio/internal/metrics"
	"github.com/gitfolio/gitfolio/internal/model"
	"github.com/gitfolio/gitfolio/internal/repository"
	"github.com/gitfolio/gitfolio/internal/service"
	"github.com/gitfolio/gitfolio/internal/testutil"
)

func TestViewsIngestAndQuery(t *testing.T) {
	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetContentSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset content schema: %v", err)
	}
	if err := testutil.ResetSnapshotsSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset snapshots schema: %v", err)
	}
	if err := testutil.ResetAnalyticsSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset analytics schema: %v", err)
	}

	cacheClient, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() {
		_ = cacheClient.Close()
	})

	if err := testutil.FlushRedis(ctx, cacheClient.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	username := fmt.Sprintf("octo-%d", time.Now().UnixNano()%1000000)
	recorder := metrics.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	refreshSvc := service.NewRefreshService(repo, cacheClient, nil, nil, service.RefreshConfig{
		Username:        username,
		Year:            artifactTestYear,
		DataDir:         t.TempDir(),
		ContribGraphURL: "https://ghchart.example.com/{username}",
		Interval:        time.Hour,
	}, recorder, logger)

	snapshot := testutil.NewTestSnapshot(t, username, artifactTestYear)
	if err := repo.CreateSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("create snapshot: %v", err)
	}

	viewRepo := repository.NewViewEventRepository(repo)
	publisher := analytics.NewPublisher(cacheClient.Client(), logger, recorder)
	artifactHandler := NewArtifactHandler(refreshSvc, cacheClient, publisher, recorder, logger, t.TempDir(), 5*time.Minute)
	viewsHandler := NewViewsHandler(viewRepo, username, logger)

	worker := analytics.NewWorker(cacheClient.Client(), viewRepo, logger, "test-consumer", recorder)
	worker.SetBlockTimeout(200 * time.Millisecond)
	worker.SetClaimInterval(200 * time.Millisecond)
	worker.SetMetricsInterval(200 * time.Millisecond)
	worker.SetBatchSize(100)

	workerCtx, cancel := context.WithCancel(ctx)
	workerErr := make(chan error, 1)
	go func() {
		workerErr <- worker.Run(workerCtx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-workerErr:
		case <-time.After(2 * time.Second):
		}
	})

	router := chi.NewRouter()
	router.Get("/stats.svg", artifactHandler.StatsCard)
	router.Get("/api/v1/views/daily", viewsHandler.GetDailyViews)

	sendView(t, router, "203.0.113.10", "TestAgent/1.0")
	sendView(t, router, "203.0.113.10", "TestAgent/1.0")
	sendView(t, router, "203.0.113.11", "TestAgent/1.0")

	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		response, status := fetchDailyViews(t, router)
		if status != http.StatusOK {
			t.Fatalf("views status %d", status)
		}
		if response.Summary.TotalViews == 3 && response.Summary.UniqueVisitors == 2 {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	response, _ := fetchDailyViews(t, router)
	t.Fatalf("expected totals 3/2, got %d/%d", response.Summary.TotalViews, response.Summary.UniqueVisitors)
}

func sendView(t *testing.T, router *chi.Mux, ip, ua string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/stats.svg", nil)
	req.Header.Set("CF-Connecting-IP", ip)
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Referer", "https://github.com/profile")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected serve status %d", rec.Code)
	}
}

func fetchDailyViews(t *testing.T, router *chi.Mux) (model.DailyViewsResponse, int) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/views/daily?days=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload model.DailyViewsResponse
	if rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
			t.Fatalf("decode views response: %v", err)
		}
	}

	return payload, rec.Code
}
