// Package model defines domain entities for the application.
package model

import "time"

// ProjectStatus represents the lifecycle stage of a portfolio project.
type ProjectStatus string

const (
	ProjectStatusPlanned   ProjectStatus = "planned"
	ProjectStatusBuilding  ProjectStatus = "building"
	ProjectStatusPublished ProjectStatus = "published"
)

// ValidProjectStatuses contains all valid project statuses.
var ValidProjectStatuses = []ProjectStatus{
	ProjectStatusPlanned,
	ProjectStatusBuilding,
	ProjectStatusPublished,
}

// IsValid checks if the project status is valid.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanned, ProjectStatusBuilding, ProjectStatusPublished:
		return true
	}
	return false
}

// Project represents a portfolio project entry on the profile.
type Project struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Summary   string        `json:"summary,omitempty"`
	TechStack []string      `json:"tech_stack,omitempty"`
	RepoURL   string        `json:"repo_url,omitempty"`
	Status    ProjectStatus `json:"status"`
	Featured  bool          `json:"featured"`
	SortOrder int           `json:"sort_order"`
	DeletedAt *time.Time    `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IsDeleted returns true if the project is soft-deleted.
func (p *Project) IsDeleted() bool {
	return p.DeletedAt != nil
}

// IsPublished returns true if the project links to a published repository.
func (p *Project) IsPublished() bool {
	return p.Status == ProjectStatusPublished && !p.IsDeleted()
}
