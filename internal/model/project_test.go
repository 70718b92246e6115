package model

import (
	"testing"
	"time"
)

func TestProjectStatus_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status ProjectStatus
		want   bool
	}{
		{ProjectStatusPlanned, true},
		{ProjectStatusBuilding, true},
		{ProjectStatusPublished, true},
		{ProjectStatus("archived"), false},
		{ProjectStatus(""), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()

			if got := tt.status.IsValid(); got != tt.want {
				t.Errorf("ProjectStatus(%q).IsValid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestProject_IsPublished(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name    string
		project Project
		want    bool
	}{
		{
			name:    "published",
			project: Project{Status: ProjectStatusPublished},
			want:    true,
		},
		{
			name:    "planned",
			project: Project{Status: ProjectStatusPlanned},
			want:    false,
		},
		{
			name:    "building",
			project: Project{Status: ProjectStatusBuilding},
			want:    false,
		},
		{
			name:    "published but deleted",
			project: Project{Status: ProjectStatusPublished, DeletedAt: &now},
			want:    false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.project.IsPublished(); got != tt.want {
				t.Errorf("IsPublished() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContactKind_RequiredScheme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind ContactKind
		want string
	}{
		{ContactKindEmail, "mailto"},
		{ContactKindLinkedIn, "https"},
		{ContactKindRepository, "https"},
		{ContactKindOther, "https"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()

			if got := tt.kind.RequiredScheme(); got != tt.want {
				t.Errorf("RequiredScheme() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestContactKind_IsValid(t *testing.T) {
	t.Parallel()

	for _, k := range ValidContactKinds {
		if !k.IsValid() {
			t.Errorf("ContactKind(%q).IsValid() = false, want true", k)
		}
	}
	if ContactKind("phone").IsValid() {
		t.Error("ContactKind(phone).IsValid() = true, want false")
	}
}
