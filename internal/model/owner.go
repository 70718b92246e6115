// Package model defines domain entities for the application.
package model

import "time"

// Owner represents the account that owns the profile and its API keys.
type Owner struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
