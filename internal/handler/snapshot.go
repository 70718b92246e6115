package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gitfolio/gitfolio/internal/handler/dto"
	"github.com/gitfolio/gitfolio/internal/model"
	"github.com/gitfolio/gitfolio/internal/repository"
)

// Snapshot listing bounds.
const (
	DefaultSnapshotLimit = 20
	MaxSnapshotLimit     = 100
)

// SnapshotLister defines the snapshot read operations the handler needs.
type SnapshotLister interface {
	GetLatestSnapshot(ctx context.Context, username string) (*model.ActivitySnapshot, error)
	ListSnapshots(ctx context.Context, username string, cursor string, limit int) ([]*model.ActivitySnapshot, string, error)
}

// SnapshotHandler serves stored activity snapshots.
type SnapshotHandler struct {
	repo     SnapshotLister
	username string
	logger   *slog.Logger
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(repo SnapshotLister, username string, logger *slog.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		repo:     repo,
		username: username,
		logger:   logger.With("component", "handler.snapshot"),
	}
}

// SnapshotListResponse represents a page of snapshots.
type SnapshotListResponse struct {
	Data       []model.ActivitySnapshot `json:"data"`
	Pagination *dto.Pagination          `json:"pagination"`
}

// ListSnapshots handles GET /api/v1/snapshots.
func (h *SnapshotHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := DefaultSnapshotLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > MaxSnapshotLimit {
		limit = MaxSnapshotLimit
	}

	cursor := r.URL.Query().Get("cursor")

	snapshots, nextCursor, err := h.repo.ListSnapshots(r.Context(), h.username, cursor, limit)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			h.writeError(w, http.StatusBadRequest, "INVALID_CURSOR", "Invalid pagination cursor")
			return
		}
		h.logger.Error("failed to list snapshots", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list snapshots")
		return
	}

	response := SnapshotListResponse{
		Data: make([]model.ActivitySnapshot, 0, len(snapshots)),
		Pagination: &dto.Pagination{
			NextCursor: nextCursor,
			HasMore:    nextCursor != "",
		},
	}
	for _, s := range snapshots {
		response.Data = append(response.Data, *s)
	}

	writeJSON(w, http.StatusOK, response)
}

// GetLatestSnapshot handles GET /api/v1/snapshots/latest.
func (h *SnapshotHandler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.repo.GetLatestSnapshot(r.Context(), h.username)
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			h.writeError(w, http.StatusNotFound, "SNAPSHOT_NOT_FOUND", "No activity snapshot yet")
			return
		}
		h.logger.Error("failed to get latest snapshot", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch snapshot")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// writeError writes a JSON error response.
func (h *SnapshotHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
