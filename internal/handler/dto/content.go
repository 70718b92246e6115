// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/gitfolio/gitfolio/internal/model"
)

// UpdateProfileRequest represents the request body for updating the profile.
type UpdateProfileRequest struct {
	DisplayName string   `json:"display_name" validate:"required,max=100"`
	Headline    string   `json:"headline,omitempty" validate:"max=200"`
	About       string   `json:"about,omitempty" validate:"max=4096"`
	Interests   []string `json:"interests,omitempty" validate:"max=20,dive,max=50"`
}

// ProfileResponse represents the profile in API responses.
type ProfileResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Headline    string    `json:"headline,omitempty"`
	About       string    `json:"about,omitempty"`
	Interests   []string  `json:"interests,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProjectRequest represents the request body for creating a project.
type CreateProjectRequest struct {
	Title     string   `json:"title" validate:"required,max=100"`
	Summary   string   `json:"summary,omitempty" validate:"max=500"`
	TechStack []string `json:"tech_stack,omitempty" validate:"max=20,dive,max=50"`
	RepoURL   string   `json:"repo_url,omitempty" validate:"omitempty,max=2048"`
	Status    string   `json:"status,omitempty" validate:"omitempty,oneof=planned building published"`
	Featured  bool     `json:"featured,omitempty"`
	SortOrder int      `json:"sort_order,omitempty" validate:"min=0"`
}

// UpdateProjectRequest represents the request body for updating a project.
type UpdateProjectRequest struct {
	Title     *string   `json:"title,omitempty" validate:"omitempty,max=100"`
	Summary   *string   `json:"summary,omitempty" validate:"omitempty,max=500"`
	TechStack *[]string `json:"tech_stack,omitempty" validate:"omitempty,max=20,dive,max=50"`
	RepoURL   *string   `json:"repo_url,omitempty" validate:"omitempty,max=2048"`
	Status    *string   `json:"status,omitempty" validate:"omitempty,oneof=planned building published"`
	Featured  *bool     `json:"featured,omitempty"`
	SortOrder *int      `json:"sort_order,omitempty" validate:"omitempty,min=0"`
}

// ProjectResponse represents a project in API responses.
type ProjectResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	TechStack []string  `json:"tech_stack,omitempty"`
	RepoURL   string    `json:"repo_url,omitempty"`
	Status    string    `json:"status"`
	Featured  bool      `json:"featured"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectListResponse represents a paginated list of projects.
type ProjectListResponse struct {
	Data       []ProjectResponse `json:"data"`
	Pagination *Pagination       `json:"pagination"`
}

// Pagination provides cursor-based pagination info.
type Pagination struct {
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// CreateContactLinkRequest represents the request body for creating a contact link.
type CreateContactLinkRequest struct {
	Kind      string `json:"kind" validate:"required,oneof=email linkedin repository other"`
	Label     string `json:"label" validate:"required,max=100"`
	URL       string `json:"url" validate:"required,max=2048"`
	SortOrder int    `json:"sort_order,omitempty" validate:"min=0"`
}

// UpdateContactLinkRequest represents the request body for updating a contact link.
type UpdateContactLinkRequest struct {
	Kind      *string `json:"kind,omitempty" validate:"omitempty,oneof=email linkedin repository other"`
	Label     *string `json:"label,omitempty" validate:"omitempty,max=100"`
	URL       *string `json:"url,omitempty" validate:"omitempty,max=2048"`
	SortOrder *int    `json:"sort_order,omitempty" validate:"omitempty,min=0"`
}

// ContactLinkResponse represents a contact link in API responses.
type ContactLinkResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Label     string    `json:"label"`
	URL       string    `json:"url"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ContactLinkListResponse represents the contact link collection.
type ContactLinkListResponse struct {
	Data  []ContactLinkResponse `json:"data"`
	Total int                   `json:"total"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToProfileResponse converts a Profile model to ProfileResponse DTO.
func ToProfileResponse(profile *model.Profile) *ProfileResponse {
	return &ProfileResponse{
		ID:          profile.ID,
		Username:    profile.Username,
		DisplayName: profile.DisplayName,
		Headline:    profile.Headline,
		About:       profile.About,
		Interests:   profile.Interests,
		CreatedAt:   profile.CreatedAt,
		UpdatedAt:   profile.UpdatedAt,
	}
}

// ToProjectResponse converts a Project model to ProjectResponse DTO.
func ToProjectResponse(project *model.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:        project.ID,
		Title:     project.Title,
		Summary:   project.Summary,
		TechStack: project.TechStack,
		RepoURL:   project.RepoURL,
		Status:    string(project.Status),
		Featured:  project.Featured,
		SortOrder: project.SortOrder,
		CreatedAt: project.CreatedAt,
		UpdatedAt: project.UpdatedAt,
	}
}

// ToProjectListResponse converts a slice of Project models to ProjectListResponse.
func ToProjectListResponse(projects []*model.Project, nextCursor string, hasMore bool) *ProjectListResponse {
	responses := make([]ProjectResponse, len(projects))
	for i, project := range projects {
		responses[i] = *ToProjectResponse(project)
	}
	return &ProjectListResponse{
		Data: responses,
		Pagination: &Pagination{
			NextCursor: nextCursor,
			HasMore:    hasMore,
		},
	}
}

// ToContactLinkResponse converts a ContactLink model to ContactLinkResponse DTO.
func ToContactLinkResponse(link *model.ContactLink) *ContactLinkResponse {
	return &ContactLinkResponse{
		ID:        link.ID,
		Kind:      string(link.Kind),
		Label:     link.Label,
		URL:       link.URL,
		SortOrder: link.SortOrder,
		CreatedAt: link.CreatedAt,
		UpdatedAt: link.UpdatedAt,
	}
}

// ToContactLinkListResponse converts a slice of ContactLink models.
func ToContactLinkListResponse(links []*model.ContactLink) *ContactLinkListResponse {
	responses := make([]ContactLinkResponse, len(links))
	for i, link := range links {
		responses[i] = *ToContactLinkResponse(link)
	}
	return &ContactLinkListResponse{
		Data:  responses,
		Total: len(responses),
	}
}
