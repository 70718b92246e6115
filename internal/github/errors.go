package github

import (
	"errors"
	"fmt"
)

// Sentinel errors for events API operations.
var (
	ErrEmptyUsername = errors.New("github username is empty")
	ErrUserNotFound  = errors.New("github user not found")
	ErrRateLimited   = errors.New("github rate limit exceeded")
)

// StatusError reports an unexpected HTTP status from the events API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d from github api", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d from github api: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth retrying.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500
}
