// Package main is the entrypoint for the gitfolio API server.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"

	"github.com/gitfolio/gitfolio/internal/analytics"
	"github.com/gitfolio/gitfolio/internal/cache"
	"github.com/gitfolio/gitfolio/internal/config"
	"github.com/gitfolio/gitfolio/internal/github"
	"github.com/gitfolio/gitfolio/internal/handler"
	"github.com/gitfolio/gitfolio/internal/metrics"
	"github.com/gitfolio/gitfolio/internal/middleware"
	"github.com/gitfolio/gitfolio/internal/repository"
	"github.com/gitfolio/gitfolio/internal/server"
	"github.com/gitfolio/gitfolio/internal/service"
	"github.com/gitfolio/gitfolio/internal/webhook"
)

// version is the service version reported by the info endpoint.
const version = "0.1.0"

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// The webhook store polls with FOR UPDATE SKIP LOCKED through
	// database/sql, so it keeps its own connection pool.
	webhookDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to open webhook database pool",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer webhookDB.Close()

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize metrics and GitHub client
	metricsRecorder := metrics.NewInMemory()
	githubClient := github.New(cfg.GitHubAPIBase, cfg.GitHubToken, logger, metricsRecorder)
	if cfg.GitHubToken == "" {
		logger.Warn("GITHUB_TOKEN not set; events API rate limit is 60 requests/hour")
	}

	// Initialize webhook delivery pipeline
	webhookRepo := webhook.NewRepository(webhookDB)
	webhookPublisher := webhook.NewPublisher(webhookRepo, logger)
	webhookWorker := webhook.NewWorker(webhookRepo, logger, metricsRecorder)

	// Initialize services
	profileService := service.NewProfileService(repo, cacheClient, cfg.GitHubUsername, metricsRecorder)
	refreshService := service.NewRefreshService(repo, cacheClient, githubClient, webhookPublisher, service.RefreshConfig{
		Username:        cfg.GitHubUsername,
		Year:            cfg.StatsYear,
		MaxPages:        cfg.FetchMaxPages,
		PerPage:         cfg.FetchPerPage,
		DataDir:         cfg.DataDir,
		ContribGraphURL: cfg.ContribGraphURL,
		RetentionDays:   cfg.SnapshotRetentionDays,
		Interval:        cfg.RefreshInterval,
		RunOnStart:      cfg.RefreshOnStart,
	}, metricsRecorder, logger)

	// Initialize view analytics pipeline
	viewRepo := repository.NewViewEventRepository(repo)
	analyticsPublisher := analytics.NewPublisher(cacheClient.Client(), logger, metricsRecorder)
	analyticsWorker := analytics.NewWorker(cacheClient.Client(), viewRepo, logger, analytics.NewConsumerID(), metricsRecorder)
	counterFlusher := analytics.NewCounterFlusher(cacheClient, metricsRecorder, logger, analytics.DefaultFlushInterval)

	// Initialize handlers
	h := handler.New(cfg.GitHubUsername, version)
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	artifactHandler := handler.NewArtifactHandler(refreshService, cacheClient, analyticsPublisher, metricsRecorder, logger, cfg.DataDir, 5*time.Minute)
	contentHandler := handler.NewContentHandler(profileService, logger)
	snapshotHandler := handler.NewSnapshotHandler(repo, cfg.GitHubUsername, logger)
	refreshHandler := handler.NewRefreshHandler(refreshService, logger)
	viewsHandler := handler.NewViewsHandler(viewRepo, cfg.GitHubUsername, logger)
	webhookHandler := handler.NewWebhookHandler(webhookRepo, logger, cfg.IsDevelopment())
	apiKeyHandler := handler.NewAPIKeyHandler(logger, repo)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	// Setup router
	r := setupRouter(routerDeps{
		info:     h,
		health:   healthHandler,
		artifact: artifactHandler,
		content:  contentHandler,
		snapshot: snapshotHandler,
		refresh:  refreshHandler,
		views:    viewsHandler,
		webhook:  webhookHandler,
		apiKey:   apiKeyHandler,
		metrics:  metricsHandler,
	}, repo, cacheClient, cfg, logger)

	// Create server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Start background workers; they stop when workerCtx is cancelled
	// during graceful shutdown.
	workerCtx, stopWorkers := context.WithCancel(ctx)

	go refreshService.Run(workerCtx)
	go func() {
		if err := analyticsWorker.Run(workerCtx); err != nil && workerCtx.Err() == nil {
			logger.Error("analytics worker exited", "error", err)
		}
	}()
	go counterFlusher.Run(workerCtx)
	go func() {
		if err := webhookWorker.Run(workerCtx); err != nil && workerCtx.Err() == nil {
			logger.Error("webhook worker exited", "error", err)
		}
	}()

	srv.OnShutdown("workers", func(shutdownCtx context.Context) error {
		stopWorkers()
		return analyticsWorker.Shutdown(shutdownCtx)
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"username", cfg.GitHubUsername,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routerDeps bundles the handlers the router mounts.
type routerDeps struct {
	info     *handler.Handler
	health   *handler.HealthHandler
	artifact *handler.ArtifactHandler
	content  *handler.ContentHandler
	snapshot *handler.SnapshotHandler
	refresh  *handler.RefreshHandler
	views    *handler.ViewsHandler
	webhook  *handler.WebhookHandler
	apiKey   *handler.APIKeyHandler
	metrics  *handler.MetricsHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	deps routerDeps,
	repo *repository.Repository,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.info.Info)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:     logger,
		Repository: repo,
		Cache:      cacheClient,
	}

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:        logger,
		Cache:         cacheClient,
		APIEnabled:    cfg.RateLimitAPIEnabled,
		PublicEnabled: cfg.RateLimitPublicEnabled,
		PublicRPS:     cfg.RateLimitPublicRPS,
		PublicBurst:   cfg.RateLimitPublicBurst,
	}

	// Public artifact endpoints with IP-based rate limiting
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))
		r.Get("/stats.svg", deps.artifact.StatsCard)
		r.Get("/readme.md", deps.artifact.Readme)
	})

	// Security headers and CORS for the management API
	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = cfg.IsDevelopment()
	securityCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	securityCfg.MaxRequestBodySize = cfg.MaxRequestBodySize

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	// API v1 routes (require authentication)
	r.Route("/api/v1", func(r chi.Router) {
		// Apply auth and rate limit middleware to all API routes
		r.Use(middleware.Security(securityCfg))
		r.Use(middleware.CORS(corsCfg))
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitAPI(rateLimitCfg))

		// Profile document (requires write scope for mutations)
		r.With(middleware.RequireRead()).Get("/profile", deps.content.GetProfile)
		r.With(middleware.RequireWrite()).Put("/profile", deps.content.UpdateProfile)

		// Project management
		r.Route("/projects", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", deps.content.ListProjects)
			r.With(middleware.RequireRead()).Get("/{id}", deps.content.GetProject)
			r.With(middleware.RequireWrite()).Post("/", deps.content.CreateProject)
			r.With(middleware.RequireWrite()).Patch("/{id}", deps.content.UpdateProject)
			r.With(middleware.RequireAdmin()).Delete("/{id}", deps.content.DeleteProject)
		})

		// Contact links
		r.Route("/contact-links", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", deps.content.ListContactLinks)
			r.With(middleware.RequireWrite()).Post("/", deps.content.CreateContactLink)
			r.With(middleware.RequireWrite()).Patch("/{id}", deps.content.UpdateContactLink)
			r.With(middleware.RequireAdmin()).Delete("/{id}", deps.content.DeleteContactLink)
		})

		// Activity snapshots (read only)
		r.With(middleware.RequireRead()).Get("/snapshots", deps.snapshot.ListSnapshots)
		r.With(middleware.RequireRead()).Get("/snapshots/latest", deps.snapshot.GetLatestSnapshot)

		// Refresh pipeline
		r.With(middleware.RequireWrite()).Post("/refresh", deps.refresh.TriggerRefresh)
		r.With(middleware.RequireRead()).Get("/refresh/status", deps.refresh.GetRefreshStatus)

		// View analytics
		r.With(middleware.RequireRead()).Get("/views/daily", deps.views.GetDailyViews)

		// Webhook management (requires webhook scope)
		r.Route("/webhooks", func(r chi.Router) {
			r.With(middleware.RequireWebhook()).Get("/", deps.webhook.List)
			r.With(middleware.RequireWebhook()).Get("/{id}", deps.webhook.Get)
			r.With(middleware.RequireWebhook()).Get("/{id}/deliveries", deps.webhook.ListDeliveries)
			r.With(middleware.RequireAdmin()).Post("/", deps.webhook.Create)
			r.With(middleware.RequireAdmin()).Patch("/{id}", deps.webhook.Update)
			r.With(middleware.RequireAdmin()).Delete("/{id}", deps.webhook.Delete)
			r.With(middleware.RequireAdmin()).Post("/{id}/rotate-secret", deps.webhook.RotateSecret)
			r.With(middleware.RequireAdmin()).Post("/{id}/deliveries/{deliveryId}/retry", deps.webhook.RetryDelivery)
		})

		// API key management (requires admin scope for mutations)
		r.Route("/api-keys", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", deps.apiKey.ListAPIKeys)
			r.With(middleware.RequireAdmin()).Post("/", deps.apiKey.CreateAPIKey)
			r.With(middleware.RequireAdmin()).Delete("/{key_id}", deps.apiKey.RevokeAPIKey)
			r.With(middleware.RequireAdmin()).Post("/{key_id}/rotate", deps.apiKey.RotateAPIKey)
		})

		// Metrics snapshot
		r.With(middleware.RequireRead()).Get("/metrics", deps.metrics.Metrics)
	})

	// 404 and 405 handlers
	r.NotFound(deps.info.NotFound)
	r.MethodNotAllowed(deps.info.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
