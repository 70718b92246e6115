package handler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gitfolio/gitfolio/internal/analytics"
	"github.com/gitfolio/gitfolio/internal/cache"
	"github.com/gitfolio/gitfolio/internal/handler/dto"
	"github.com/gitfolio/gitfolio/internal/metrics"
	"github.com/gitfolio/gitfolio/internal/model"
	"github.com/gitfolio/gitfolio/internal/render"
	"github.com/gitfolio/gitfolio/internal/repository"
	"github.com/gitfolio/gitfolio/internal/service"
)

// ArtifactHandler serves the rendered stats card and profile README.
type ArtifactHandler struct {
	refresh   *service.RefreshService
	cache     *cache.Cache
	publisher *analytics.Publisher
	metrics   metrics.Recorder
	logger    *slog.Logger
	dataDir   string
	maxAge    time.Duration
}

// NewArtifactHandler creates a new ArtifactHandler. The publisher may
// be nil when view analytics is not wired.
func NewArtifactHandler(refresh *service.RefreshService, c *cache.Cache, publisher *analytics.Publisher, recorder metrics.Recorder, logger *slog.Logger, dataDir string, maxAge time.Duration) *ArtifactHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}
	return &ArtifactHandler{
		refresh:   refresh,
		cache:     c,
		publisher: publisher,
		metrics:   recorder,
		logger:    logger.With("component", "artifact"),
		dataDir:   dataDir,
		maxAge:    maxAge,
	}
}

// StatsCard handles GET /stats.svg.
func (h *ArtifactHandler) StatsCard(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, model.ArtifactCard)
}

// Readme handles GET /readme.md.
func (h *ArtifactHandler) Readme(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, model.ArtifactReadme)
}

// serve resolves an artifact through cache, data-dir file, and
// render-on-demand, in that order.
func (h *ArtifactHandler) serve(w http.ResponseWriter, r *http.Request, kind model.ArtifactKind) {
	start := time.Now()

	artifact, source, err := h.load(r.Context(), kind)
	duration := time.Since(start)
	h.metrics.ObserveArtifactServeDuration(duration)

	if err != nil {
		h.handleServeError(w, kind, err, duration)
		return
	}

	h.recordView(r, kind)

	h.logger.Info("artifact_served",
		"kind", kind,
		"source", source,
		"bytes", len(artifact.Body),
		"duration_ms", float64(duration.Microseconds())/1000,
	)

	etag := `"` + artifact.ETag + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.maxAge.Seconds())))
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Body)
}

// load resolves the artifact. The returned source is "cache", "file",
// or "render" for logging.
func (h *ArtifactHandler) load(ctx context.Context, kind model.ArtifactKind) (*model.Artifact, string, error) {
	username := h.refresh.Username()
	year := h.refresh.TargetYear()

	if h.cache != nil {
		artifact, err := h.cache.GetArtifact(ctx, kind, username, year)
		if err == nil {
			h.metrics.IncArtifactCacheHit()
			return artifact, "cache", nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			h.logger.Warn("artifact cache lookup failed", "kind", kind, "error", err)
		}
	}
	h.metrics.IncArtifactCacheMiss()

	if artifact, ok := h.loadFile(kind); ok {
		return artifact, "file", nil
	}

	artifact, err := h.refresh.RenderFromSnapshot(ctx, kind)
	if err != nil {
		return nil, "", err
	}
	return artifact, "render", nil
}

// loadFile reads the artifact last written to the data directory.
func (h *ArtifactHandler) loadFile(kind model.ArtifactKind) (*model.Artifact, bool) {
	path := render.CardPath(h.dataDir)
	contentType := "image/svg+xml"
	if kind == model.ArtifactReadme {
		path = render.ReadmePath(h.dataDir)
		contentType = "text/markdown; charset=utf-8"
	}

	body, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			h.logger.Warn("artifact file read failed", "path", path, "error", err)
		}
		return nil, false
	}

	sum := sha256.Sum256(body)
	return &model.Artifact{
		Kind:        kind,
		Body:        body,
		ContentType: contentType,
		ETag:        hex.EncodeToString(sum[:16]),
	}, true
}

// recordView bumps the Redis view counter and publishes a view event.
// Both paths are fire-and-forget; serving never waits on analytics.
func (h *ArtifactHandler) recordView(r *http.Request, kind model.ArtifactKind) {
	username := h.refresh.Username()

	if h.cache != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := h.cache.IncrementViews(ctx, kind, username); err != nil {
				h.logger.Debug("view counter increment failed", "kind", kind, "error", err)
			}
		}()
	}

	if h.publisher != nil {
		event := analytics.NewViewEventPayload(
			kind,
			username,
			getClientIP(r),
			r.Header.Get("Referer"),
			r.Header.Get("User-Agent"),
			r.Header.Get("CF-IPCountry"),
			time.Now(),
		)
		h.publisher.PublishAsync(event)
	}
}

// handleServeError maps load failures to responses.
func (h *ArtifactHandler) handleServeError(w http.ResponseWriter, kind model.ArtifactKind, err error, duration time.Duration) {
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		h.logger.Info("artifact_not_available",
			"kind", kind,
			"duration_ms", float64(duration.Microseconds())/1000,
		)
		h.writeError(w, http.StatusNotFound, "ARTIFACT_NOT_AVAILABLE", "No activity snapshot yet; trigger a refresh first")
		return
	}

	h.logger.Error("artifact_serve_error",
		"kind", kind,
		"error", err,
		"duration_ms", float64(duration.Microseconds())/1000,
	)
	h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
}

// writeError writes a JSON error response for artifact failures.
func (h *ArtifactHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=0")

	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// getClientIP extracts the client IP address from the request.
func getClientIP(r *http.Request) string {
	// Check Cloudflare header first
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	// Check X-Forwarded-For
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// Take the first IP in the chain
		for i := 0; i < len(ip); i++ {
			if ip[i] == ',' {
				return ip[:i]
			}
		}
		return ip
	}
	// Check X-Real-IP
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	// Fall back to RemoteAddr
	return r.RemoteAddr
}
