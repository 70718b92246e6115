// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gitfolio/gitfolio/internal/cache"
	"github.com/gitfolio/gitfolio/internal/metrics"
	"github.com/gitfolio/gitfolio/internal/model"
	"github.com/gitfolio/gitfolio/internal/repository"
)

// Service errors.
var (
	ErrInvalidDisplayName  = errors.New("display name must be 1-100 characters")
	ErrHeadlineTooLong     = errors.New("headline too long")
	ErrAboutTooLong        = errors.New("about section too long")
	ErrTooManyInterests    = errors.New("too many interests")
	ErrInvalidTitle        = errors.New("project title must be 1-100 characters")
	ErrSummaryTooLong      = errors.New("project summary too long")
	ErrTitleExists         = errors.New("project title already exists")
	ErrProjectNotFound     = errors.New("project not found")
	ErrInvalidStatus       = errors.New("invalid project status")
	ErrRepoURLRequired     = errors.New("published projects require a repository URL")
	ErrInvalidRepoURL      = errors.New("invalid repository URL")
	ErrInvalidContactKind  = errors.New("invalid contact kind")
	ErrInvalidContactLabel = errors.New("contact label must be 1-100 characters")
	ErrInvalidContactURL   = errors.New("invalid contact URL")
	ErrTooManyContactLinks = errors.New("too many contact links")
	ErrContactLinkNotFound = errors.New("contact link not found")
)

const (
	maxHeadlineLength = 200
	maxTitleLength    = 100
	maxSummaryLength  = 500
	maxLabelLength    = 100
	maxURLLength      = 2048
)

// ProfileService handles profile content business logic.
type ProfileService struct {
	repo     *repository.Repository
	cache    *cache.Cache
	username string
	metrics  metrics.Recorder
}

// NewProfileService creates a new ProfileService. The username is the
// GitHub account the profile belongs to; content is single-tenant.
func NewProfileService(repo *repository.Repository, cache *cache.Cache, username string, recorder metrics.Recorder) *ProfileService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProfileService{
		repo:     repo,
		cache:    cache,
		username: username,
		metrics:  recorder,
	}
}

// Username returns the configured GitHub username.
func (s *ProfileService) Username() string {
	return s.username
}

// GetProfile retrieves the profile row. When none exists yet, a default
// profile with the configured username is returned.
func (s *ProfileService) GetProfile(ctx context.Context) (*model.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, s.username)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return &model.Profile{
				Username:    s.username,
				DisplayName: s.username,
			}, nil
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfileInput defines input for updating the profile.
type UpdateProfileInput struct {
	DisplayName string
	Headline    string
	About       string
	Interests   []string
}

// UpdateProfile upserts the profile row and invalidates the cached README.
func (s *ProfileService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*model.Profile, error) {
	if l := len(strings.TrimSpace(input.DisplayName)); l == 0 || l > 100 {
		return nil, ErrInvalidDisplayName
	}
	if len(input.Headline) > maxHeadlineLength {
		return nil, ErrHeadlineTooLong
	}
	if len(input.About) > model.MaxAboutLength {
		return nil, ErrAboutTooLong
	}
	if len(input.Interests) > model.MaxInterests {
		return nil, ErrTooManyInterests
	}

	now := time.Now().UTC()
	profile := &model.Profile{
		ID:          ulid.Make().String(),
		Username:    s.username,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Headline:    strings.TrimSpace(input.Headline),
		About:       input.About,
		Interests:   input.Interests,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.invalidateReadme(ctx)

	return s.repo.GetProfile(ctx, s.username)
}

// CreateProjectInput defines input for creating a project.
type CreateProjectInput struct {
	Title     string
	Summary   string
	TechStack []string
	RepoURL   string
	Status    string
	Featured  bool
	SortOrder int
}

// CreateProject creates a new portfolio project.
func (s *ProfileService) CreateProject(ctx context.Context, input CreateProjectInput) (*model.Project, error) {
	title := strings.TrimSpace(input.Title)
	if len(title) == 0 || len(title) > maxTitleLength {
		return nil, ErrInvalidTitle
	}
	if len(input.Summary) > maxSummaryLength {
		return nil, ErrSummaryTooLong
	}

	// Status defaults to planned
	status := model.ProjectStatusPlanned
	if input.Status != "" {
		status = model.ProjectStatus(input.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
	}

	if err := validateRepoURL(input.RepoURL, status); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	project := &model.Project{
		ID:        ulid.Make().String(),
		Title:     title,
		Summary:   input.Summary,
		TechStack: input.TechStack,
		RepoURL:   input.RepoURL,
		Status:    status,
		Featured:  input.Featured,
		SortOrder: input.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateProject(ctx, project); err != nil {
		if errors.Is(err, repository.ErrTitleExists) {
			return nil, ErrTitleExists
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.metrics.IncProjectCreated()
	s.invalidateReadme(ctx)

	return project, nil
}

// GetProject retrieves a project by ID.
func (s *ProfileService) GetProject(ctx context.Context, id string) (*model.Project, error) {
	project, err := s.repo.GetProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

// ListProjectsInput defines input for listing projects.
type ListProjectsInput struct {
	Cursor   string
	Limit    int
	Status   string
	Featured *bool
}

// ListProjectsOutput defines output for listing projects.
type ListProjectsOutput struct {
	Projects   []*model.Project
	NextCursor string
	HasMore    bool
}

// ListProjects retrieves a paginated list of projects.
func (s *ProfileService) ListProjects(ctx context.Context, input ListProjectsInput) (*ListProjectsOutput, error) {
	// Set defaults
	if input.Limit <= 0 || input.Limit > 100 {
		input.Limit = 20
	}

	filter := repository.ProjectFilter{
		Featured: input.Featured,
	}
	if input.Status != "" {
		status := model.ProjectStatus(input.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		filter.Status = status
	}

	projects, nextCursor, err := s.repo.ListProjects(ctx, filter, input.Cursor, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ListProjectsOutput{
		Projects:   projects,
		NextCursor: nextCursor,
		HasMore:    nextCursor != "",
	}, nil
}

// UpdateProjectInput defines input for updating a project.
// Nil fields are left unchanged.
type UpdateProjectInput struct {
	ID        string
	Title     *string
	Summary   *string
	TechStack *[]string
	RepoURL   *string
	Status    *string
	Featured  *bool
	SortOrder *int
}

// UpdateProject updates a project's mutable fields.
func (s *ProfileService) UpdateProject(ctx context.Context, input UpdateProjectInput) (*model.Project, error) {
	project, err := s.repo.GetProjectByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	// Apply updates
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if len(title) == 0 || len(title) > maxTitleLength {
			return nil, ErrInvalidTitle
		}
		project.Title = title
	}

	if input.Summary != nil {
		if len(*input.Summary) > maxSummaryLength {
			return nil, ErrSummaryTooLong
		}
		project.Summary = *input.Summary
	}

	if input.TechStack != nil {
		project.TechStack = *input.TechStack
	}

	if input.RepoURL != nil {
		project.RepoURL = *input.RepoURL
	}

	if input.Status != nil {
		status := model.ProjectStatus(*input.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		project.Status = status
	}

	// Re-validate the repo URL against the (possibly changed) status
	if err := validateRepoURL(project.RepoURL, project.Status); err != nil {
		return nil, err
	}

	if input.Featured != nil {
		project.Featured = *input.Featured
	}

	if input.SortOrder != nil {
		project.SortOrder = *input.SortOrder
	}

	project.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateProject(ctx, project); err != nil {
		if errors.Is(err, repository.ErrTitleExists) {
			return nil, ErrTitleExists
		}
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	s.metrics.IncProjectUpdated()
	s.invalidateReadme(ctx)

	return project, nil
}

// DeleteProject soft-deletes a project.
func (s *ProfileService) DeleteProject(ctx context.Context, id string) error {
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	s.metrics.IncProjectDeleted()
	s.invalidateReadme(ctx)

	return nil
}

// CreateContactLinkInput defines input for creating a contact link.
type CreateContactLinkInput struct {
	Kind      string
	Label     string
	URL       string
	SortOrder int
}

// CreateContactLink creates a new contact link.
func (s *ProfileService) CreateContactLink(ctx context.Context, input CreateContactLinkInput) (*model.ContactLink, error) {
	kind := model.ContactKind(input.Kind)
	if !kind.IsValid() {
		return nil, ErrInvalidContactKind
	}

	label := strings.TrimSpace(input.Label)
	if len(label) == 0 || len(label) > maxLabelLength {
		return nil, ErrInvalidContactLabel
	}

	if err := validateContactURL(input.URL, kind); err != nil {
		return nil, err
	}

	count, err := s.repo.CountContactLinks(ctx)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxContactLinks {
		return nil, ErrTooManyContactLinks
	}

	now := time.Now().UTC()
	link := &model.ContactLink{
		ID:        ulid.Make().String(),
		Kind:      kind,
		Label:     label,
		URL:       input.URL,
		SortOrder: input.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateContactLink(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create contact link: %w", err)
	}

	s.invalidateReadme(ctx)

	return link, nil
}

// ListContactLinks retrieves all contact links in display order.
func (s *ProfileService) ListContactLinks(ctx context.Context) ([]*model.ContactLink, error) {
	return s.repo.ListContactLinks(ctx)
}

// UpdateContactLinkInput defines input for updating a contact link.
type UpdateContactLinkInput struct {
	ID        string
	Kind      *string
	Label     *string
	URL       *string
	SortOrder *int
}

// UpdateContactLink updates a contact link's mutable fields.
func (s *ProfileService) UpdateContactLink(ctx context.Context, input UpdateContactLinkInput) (*model.ContactLink, error) {
	link, err := s.repo.GetContactLinkByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrContactLinkNotFound) {
			return nil, ErrContactLinkNotFound
		}
		return nil, err
	}

	if input.Kind != nil {
		kind := model.ContactKind(*input.Kind)
		if !kind.IsValid() {
			return nil, ErrInvalidContactKind
		}
		link.Kind = kind
	}

	if input.Label != nil {
		label := strings.TrimSpace(*input.Label)
		if len(label) == 0 || len(label) > maxLabelLength {
			return nil, ErrInvalidContactLabel
		}
		link.Label = label
	}

	if input.URL != nil {
		link.URL = *input.URL
	}

	// Re-validate the URL against the (possibly changed) kind
	if err := validateContactURL(link.URL, link.Kind); err != nil {
		return nil, err
	}

	if input.SortOrder != nil {
		link.SortOrder = *input.SortOrder
	}

	link.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateContactLink(ctx, link); err != nil {
		if errors.Is(err, repository.ErrContactLinkNotFound) {
			return nil, ErrContactLinkNotFound
		}
		return nil, err
	}

	s.invalidateReadme(ctx)

	return link, nil
}

// DeleteContactLink removes a contact link.
func (s *ProfileService) DeleteContactLink(ctx context.Context, id string) error {
	if err := s.repo.DeleteContactLink(ctx, id); err != nil {
		if errors.Is(err, repository.ErrContactLinkNotFound) {
			return ErrContactLinkNotFound
		}
		return err
	}

	s.invalidateReadme(ctx)

	return nil
}

// invalidateReadme evicts the cached README artifact after a content
// change. Eventual consistency is acceptable; errors are swallowed.
func (s *ProfileService) invalidateReadme(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.DeleteArtifact(ctx, model.ArtifactReadme, s.username, 0)
}

// validateRepoURL validates a project repository URL. Published
// projects must link to a well-formed https repository.
func validateRepoURL(repoURL string, status model.ProjectStatus) error {
	if repoURL == "" {
		if status == model.ProjectStatusPublished {
			return ErrRepoURLRequired
		}
		return nil
	}

	if len(repoURL) > maxURLLength {
		return ErrInvalidRepoURL
	}

	parsed, err := url.Parse(repoURL)
	if err != nil {
		return ErrInvalidRepoURL
	}

	if parsed.Scheme != "https" || parsed.Host == "" {
		return ErrInvalidRepoURL
	}

	return nil
}

// validateContactURL validates a contact link URL against its kind's
// required scheme: mailto for email links, https for everything else.
func validateContactURL(rawURL string, kind model.ContactKind) error {
	if rawURL == "" || len(rawURL) > maxURLLength {
		return ErrInvalidContactURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ErrInvalidContactURL
	}

	if parsed.Scheme != kind.RequiredScheme() {
		return ErrInvalidContactURL
	}

	if kind == model.ContactKindEmail {
		// mailto:user@example.com parses the address into Opaque
		if parsed.Opaque == "" || !strings.Contains(parsed.Opaque, "@") {
			return ErrInvalidContactURL
		}
		return nil
	}

	if parsed.Host == "" {
		return ErrInvalidContactURL
	}

	return nil
}
