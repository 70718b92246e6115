package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/gitfolio/gitfolio/internal/model"
)

func TestValidateRepoURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		repoURL string
		status  model.ProjectStatus
		wantErr error
	}{
		{
			name:    "published with https repo",
			repoURL: "https://github.com/octocat/hello-world",
			status:  model.ProjectStatusPublished,
			wantErr: nil,
		},
		{
			name:    "published without repo",
			repoURL: "",
			status:  model.ProjectStatusPublished,
			wantErr: ErrRepoURLRequired,
		},
		{
			name:    "planned without repo is fine",
			repoURL: "",
			status:  model.ProjectStatusPlanned,
			wantErr: nil,
		},
		{
			name:    "building without repo is fine",
			repoURL: "",
			status:  model.ProjectStatusBuilding,
			wantErr: nil,
		},
		{
			name:    "planned with repo validates scheme",
			repoURL: "http://github.com/octocat/insecure",
			status:  model.ProjectStatusPlanned,
			wantErr: ErrInvalidRepoURL,
		},
		{
			name:    "ftp scheme rejected",
			repoURL: "ftp://example.com/repo",
			status:  model.ProjectStatusPublished,
			wantErr: ErrInvalidRepoURL,
		},
		{
			name:    "missing host rejected",
			repoURL: "https://",
			status:  model.ProjectStatusPublished,
			wantErr: ErrInvalidRepoURL,
		},
		{
			name:    "too long rejected",
			repoURL: "https://github.com/" + strings.Repeat("a", 2100),
			status:  model.ProjectStatusPublished,
			wantErr: ErrInvalidRepoURL,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateRepoURL(tt.repoURL, tt.status)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateRepoURL(%q, %q) = %v, want %v", tt.repoURL, tt.status, err, tt.wantErr)
			}
		})
	}
}

func TestValidateContactURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		kind    model.ContactKind
		wantErr error
	}{
		{
			name:    "email mailto",
			url:     "mailto:octocat@example.com",
			kind:    model.ContactKindEmail,
			wantErr: nil,
		},
		{
			name:    "email with https rejected",
			url:     "https://example.com/contact",
			kind:    model.ContactKindEmail,
			wantErr: ErrInvalidContactURL,
		},
		{
			name:    "mailto without address rejected",
			url:     "mailto:",
			kind:    model.ContactKindEmail,
			wantErr: ErrInvalidContactURL,
		},
		{
			name:    "mailto without at sign rejected",
			url:     "mailto:not-an-address",
			kind:    model.ContactKindEmail,
			wantErr: ErrInvalidContactURL,
		},
		{
			name:    "linkedin https",
			url:     "https://www.linkedin.com/in/octocat",
			kind:    model.ContactKindLinkedIn,
			wantErr: nil,
		},
		{
			name:    "linkedin http rejected",
			url:     "http://www.linkedin.com/in/octocat",
			kind:    model.ContactKindLinkedIn,
			wantErr: ErrInvalidContactURL,
		},
		{
			name:    "repository https",
			url:     "https://github.com/octocat",
			kind:    model.ContactKindRepository,
			wantErr: nil,
		},
		{
			name:    "other mailto rejected",
			url:     "mailto:octocat@example.com",
			kind:    model.ContactKindOther,
			wantErr: ErrInvalidContactURL,
		},
		{
			name:    "empty rejected",
			url:     "",
			kind:    model.ContactKindOther,
			wantErr: ErrInvalidContactURL,
		},
		{
			name:    "https without host rejected",
			url:     "https://",
			kind:    model.ContactKindOther,
			wantErr: ErrInvalidContactURL,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateContactURL(tt.url, tt.kind)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateContactURL(%q, %q) = %v, want %v", tt.url, tt.kind, err, tt.wantErr)
			}
		})
	}
}

func TestEtagFor(t *testing.T) {
	t.Parallel()

	a := etagFor([]byte("hello"))
	b := etagFor([]byte("hello"))
	c := etagFor([]byte("world"))

	if a != b {
		t.Error("Same body should produce same etag")
	}
	if a == c {
		t.Error("Different bodies should produce different etags")
	}
	if len(a) != 32 {
		t.Errorf("etag length = %d, want 32 hex chars", len(a))
	}
}
