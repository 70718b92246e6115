// Package model defines domain entities for the application.
package model

import "time"

// Profile represents the profile document content for a GitHub account.
// There is exactly one profile row per username.
type Profile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Headline    string    `json:"headline,omitempty"`
	About       string    `json:"about,omitempty"`
	Interests   []string  `json:"interests,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MaxInterests bounds the interests list on a profile.
const MaxInterests = 20

// MaxAboutLength bounds the about section in bytes.
const MaxAboutLength = 4096
