package middleware

import (
	"strings"
	"testing"
	"time"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  error
	}{
		{
			name:     "simple username",
			username: "octocat",
			wantErr:  nil,
		},
		{
			name:     "username with digits",
			username: "octocat42",
			wantErr:  nil,
		},
		{
			name:     "username with hyphen",
			username: "my-handle",
			wantErr:  nil,
		},
		{
			name:     "single character",
			username: "a",
			wantErr:  nil,
		},
		{
			name:     "empty",
			username: "",
			wantErr:  ErrUsernameEmpty,
		},
		{
			name:     "too long",
			username: strings.Repeat("a", 40),
			wantErr:  ErrUsernameTooLong,
		},
		{
			name:     "leading hyphen",
			username: "-octocat",
			wantErr:  ErrUsernameInvalid,
		},
		{
			name:     "trailing hyphen",
			username: "octocat-",
			wantErr:  ErrUsernameInvalid,
		},
		{
			name:     "consecutive hyphens",
			username: "octo--cat",
			wantErr:  ErrUsernameInvalid,
		},
		{
			name:     "invalid characters",
			username: "octo_cat",
			wantErr:  ErrUsernameInvalid,
		},
		{
			name:     "unicode blocked",
			username: "оctocat", // Cyrillic 'о' instead of Latin 'o'
			wantErr:  ErrUsernameInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if err != tt.wantErr {
				t.Errorf("ValidateUsername(%q) = %v, want %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidateYear(t *testing.T) {
	current := time.Now().UTC().Year()

	tests := []struct {
		name    string
		year    int
		wantErr error
	}{
		{
			name:    "zero means current year",
			year:    0,
			wantErr: nil,
		},
		{
			name:    "current year",
			year:    current,
			wantErr: nil,
		},
		{
			name:    "github launch year",
			year:    2008,
			wantErr: nil,
		},
		{
			name:    "before github existed",
			year:    2007,
			wantErr: ErrYearOutOfRange,
		},
		{
			name:    "far future",
			year:    current + 2,
			wantErr: ErrYearOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateYear(tt.year)
			if err != tt.wantErr {
				t.Errorf("ValidateYear(%d) = %v, want %v", tt.year, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	if got := NormalizeUsername("OctoCat"); got != "octocat" {
		t.Errorf("NormalizeUsername(OctoCat) = %q, want octocat", got)
	}
	if got := NormalizeUsername("octocat"); got != "octocat" {
		t.Errorf("NormalizeUsername(octocat) = %q, want octocat", got)
	}
}
