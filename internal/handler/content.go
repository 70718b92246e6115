package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gitfolio/gitfolio/internal/handler/dto"
	"github.com/gitfolio/gitfolio/internal/repository"
	"github.com/gitfolio/gitfolio/internal/service"
)

// ContentHandler handles HTTP requests for profile content operations.
type ContentHandler struct {
	svc    *service.ProfileService
	logger *slog.Logger
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(svc *service.ProfileService, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		svc:    svc,
		logger: logger,
	}
}

// GetProfile handles GET /api/v1/profile.
func (h *ContentHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.GetProfile(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProfileResponse(profile))
}

// UpdateProfile handles PUT /api/v1/profile.
func (h *ContentHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := dto.Validate(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", dto.ValidationMessage(err))
		return
	}

	profile, err := h.svc.UpdateProfile(r.Context(), service.UpdateProfileInput{
		DisplayName: req.DisplayName,
		Headline:    req.Headline,
		About:       req.About,
		Interests:   req.Interests,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("profile_updated",
		"username", profile.Username,
		"interest_count", len(profile.Interests),
	)

	writeJSON(w, http.StatusOK, dto.ToProfileResponse(profile))
}

// CreateProject handles POST /api/v1/projects.
func (h *ContentHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := dto.Validate(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", dto.ValidationMessage(err))
		return
	}

	project, err := h.svc.CreateProject(r.Context(), service.CreateProjectInput{
		Title:     req.Title,
		Summary:   req.Summary,
		TechStack: req.TechStack,
		RepoURL:   req.RepoURL,
		Status:    req.Status,
		Featured:  req.Featured,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("project_created",
		"project_id", project.ID,
		"title", project.Title,
		"status", project.Status,
	)

	writeJSON(w, http.StatusCreated, dto.ToProjectResponse(project))
}

// GetProject handles GET /api/v1/projects/{id}.
func (h *ContentHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Project ID is required")
		return
	}

	project, err := h.svc.GetProject(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProjectResponse(project))
}

// ListProjects handles GET /api/v1/projects.
func (h *ContentHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 20
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	input := service.ListProjectsInput{
		Cursor: query.Get("cursor"),
		Limit:  limit,
		Status: query.Get("status"),
	}

	if f := query.Get("featured"); f != "" {
		if featured, err := strconv.ParseBool(f); err == nil {
			input.Featured = &featured
		}
	}

	result, err := h.svc.ListProjects(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProjectListResponse(result.Projects, result.NextCursor, result.HasMore))
}

// UpdateProject handles PATCH /api/v1/projects/{id}.
func (h *ContentHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Project ID is required")
		return
	}

	var req dto.UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := dto.Validate(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", dto.ValidationMessage(err))
		return
	}

	project, err := h.svc.UpdateProject(r.Context(), service.UpdateProjectInput{
		ID:        id,
		Title:     req.Title,
		Summary:   req.Summary,
		TechStack: req.TechStack,
		RepoURL:   req.RepoURL,
		Status:    req.Status,
		Featured:  req.Featured,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("project_updated",
		"project_id", project.ID,
		"title", project.Title,
	)

	writeJSON(w, http.StatusOK, dto.ToProjectResponse(project))
}

// DeleteProject handles DELETE /api/v1/projects/{id}.
func (h *ContentHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Project ID is required")
		return
	}

	if err := h.svc.DeleteProject(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("project_deleted", "project_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// CreateContactLink handles POST /api/v1/contact-links.
func (h *ContentHandler) CreateContactLink(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateContactLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := dto.Validate(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", dto.ValidationMessage(err))
		return
	}

	link, err := h.svc.CreateContactLink(r.Context(), service.CreateContactLinkInput{
		Kind:      req.Kind,
		Label:     req.Label,
		URL:       req.URL,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("contact_link_created",
		"link_id", link.ID,
		"kind", link.Kind,
	)

	writeJSON(w, http.StatusCreated, dto.ToContactLinkResponse(link))
}

// ListContactLinks handles GET /api/v1/contact-links.
func (h *ContentHandler) ListContactLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.svc.ListContactLinks(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToContactLinkListResponse(links))
}

// UpdateContactLink handles PATCH /api/v1/contact-links/{id}.
func (h *ContentHandler) UpdateContactLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Contact link ID is required")
		return
	}

	var req dto.UpdateContactLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if err := dto.Validate(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", dto.ValidationMessage(err))
		return
	}

	link, err := h.svc.UpdateContactLink(r.Context(), service.UpdateContactLinkInput{
		ID:        id,
		Kind:      req.Kind,
		Label:     req.Label,
		URL:       req.URL,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("contact_link_updated", "link_id", link.ID)

	writeJSON(w, http.StatusOK, dto.ToContactLinkResponse(link))
}

// DeleteContactLink handles DELETE /api/v1/contact-links/{id}.
func (h *ContentHandler) DeleteContactLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Contact link ID is required")
		return
	}

	if err := h.svc.DeleteContactLink(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("contact_link_deleted", "link_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *ContentHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDisplayName):
		h.writeError(w, http.StatusBadRequest, "INVALID_DISPLAY_NAME", "Display name must be 1-100 characters")
	case errors.Is(err, service.ErrHeadlineTooLong):
		h.writeError(w, http.StatusBadRequest, "HEADLINE_TOO_LONG", "Headline exceeds maximum length")
	case errors.Is(err, service.ErrAboutTooLong):
		h.writeError(w, http.StatusBadRequest, "ABOUT_TOO_LONG", "About section exceeds maximum length")
	case errors.Is(err, service.ErrTooManyInterests):
		h.writeError(w, http.StatusBadRequest, "TOO_MANY_INTERESTS", "Too many interests")
	case errors.Is(err, service.ErrProjectNotFound):
		h.writeError(w, http.StatusNotFound, "PROJECT_NOT_FOUND", "Project not found")
	case errors.Is(err, service.ErrTitleExists):
		h.writeError(w, http.StatusConflict, "TITLE_TAKEN", "Project title already exists")
	case errors.Is(err, service.ErrInvalidTitle):
		h.writeError(w, http.StatusBadRequest, "INVALID_TITLE", "Title must be 1-100 characters")
	case errors.Is(err, service.ErrSummaryTooLong):
		h.writeError(w, http.StatusBadRequest, "SUMMARY_TOO_LONG", "Summary exceeds maximum length")
	case errors.Is(err, service.ErrInvalidStatus):
		h.writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be planned, building, or published")
	case errors.Is(err, service.ErrRepoURLRequired):
		h.writeError(w, http.StatusUnprocessableEntity, "REPO_URL_REQUIRED", "Published projects require a repository URL")
	case errors.Is(err, service.ErrInvalidRepoURL):
		h.writeError(w, http.StatusBadRequest, "INVALID_REPO_URL", "Invalid repository URL")
	case errors.Is(err, service.ErrContactLinkNotFound):
		h.writeError(w, http.StatusNotFound, "CONTACT_LINK_NOT_FOUND", "Contact link not found")
	case errors.Is(err, service.ErrInvalidContactKind):
		h.writeError(w, http.StatusBadRequest, "INVALID_CONTACT_KIND", "Contact kind must be email, linkedin, repository, or other")
	case errors.Is(err, service.ErrInvalidContactLabel):
		h.writeError(w, http.StatusBadRequest, "INVALID_CONTACT_LABEL", "Label must be 1-100 characters")
	case errors.Is(err, service.ErrInvalidContactURL):
		h.writeError(w, http.StatusBadRequest, "INVALID_CONTACT_URL", "Contact URL does not match its kind")
	case errors.Is(err, service.ErrTooManyContactLinks):
		h.writeError(w, http.StatusUnprocessableEntity, "TOO_MANY_CONTACT_LINKS", "Contact link limit reached")
	case errors.Is(err, repository.ErrInvalidCursor):
		h.writeError(w, http.StatusBadRequest, "INVALID_CURSOR", "Invalid pagination cursor")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *ContentHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
