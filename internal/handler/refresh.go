package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gitfolio/gitfolio/internal/handler/dto"
	"github.com/gitfolio/gitfolio/internal/service"
)

// RefreshTimeout bounds a triggered refresh run. The GitHub events API
// pagination caps well below this; the margin covers slow responses.
const RefreshTimeout = 10 * time.Minute

// RefreshHandler triggers and reports on refresh runs.
type RefreshHandler struct {
	svc    *service.RefreshService
	logger *slog.Logger
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(svc *service.RefreshService, logger *slog.Logger) *RefreshHandler {
	return &RefreshHandler{
		svc:    svc,
		logger: logger.With("component", "handler.refresh"),
	}
}

// TriggerRefresh handles POST /api/v1/refresh. The run itself happens
// in the background; poll /refresh/status for the outcome.
func (h *RefreshHandler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	if h.svc.Status().Running {
		h.writeError(w, http.StatusConflict, "REFRESH_IN_PROGRESS", "A refresh is already running")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), RefreshTimeout)
		defer cancel()

		if _, err := h.svc.Refresh(ctx); err != nil && !errors.Is(err, service.ErrRefreshInProgress) {
			h.logger.Error("triggered refresh failed", "error", err)
		}
	}()

	h.logger.Info("refresh triggered")
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}

// GetRefreshStatus handles GET /api/v1/refresh/status.
func (h *RefreshHandler) GetRefreshStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// writeError writes a JSON error response.
func (h *RefreshHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
