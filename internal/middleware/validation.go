// Package middleware provides HTTP middleware for the Gitfolio API.
package middleware

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Validation limits.
const (
	// MaxUsernameLength is the maximum length for a GitHub username.
	MaxUsernameLength = 39

	// MinYear is the earliest year stats can be requested for.
	// GitHub launched in 2008.
	MinYear = 2008

	// MaxWebhookURLLength is the maximum length for webhook URLs.
	MaxWebhookURLLength = 1024
)

// Validation errors.
var (
	ErrUsernameEmpty     = errors.New("username is required")
	ErrUsernameTooLong   = errors.New("username exceeds maximum length")
	ErrUsernameInvalid   = errors.New("username contains invalid characters")
	ErrYearOutOfRange    = errors.New("year is out of range")
	ErrWebhookURLTooLong = errors.New("webhook URL exceeds maximum length")
)

// validUsernamePattern matches valid GitHub usernames.
// Alphanumeric with single interior hyphens, no leading/trailing hyphen.
var validUsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*$`)

// ValidateUsername validates a GitHub username.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameEmpty
	}

	if len(username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}

	if !validUsernamePattern.MatchString(username) {
		return ErrUsernameInvalid
	}

	return nil
}

// ValidateYear validates a stats target year.
// Zero is valid and means the current UTC year.
func ValidateYear(year int) error {
	if year == 0 {
		return nil
	}

	current := time.Now().UTC().Year()
	if year < MinYear || year > current+1 {
		return ErrYearOutOfRange
	}

	return nil
}

// ValidateWebhookURL validates a webhook target URL.
func ValidateWebhookURL(url string) error {
	if len(url) > MaxWebhookURLLength {
		return ErrWebhookURLTooLong
	}

	// Additional validation is done in webhook.ValidateTargetURL
	return nil
}

// NormalizeUsername lowercases a username for cache keys and comparisons.
// GitHub usernames are case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(username)
}
