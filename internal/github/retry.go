package github

import (
	"math/rand"
	"time"
)

// Retry delays for transient page-fetch failures.
// Attempt 1: 1s, Attempt 2: 5s, Attempt 3: 15s
var fetchRetryDelays = []time.Duration{
	1 * time.Second,
	5 * time.Second,
	15 * time.Second,
}

const (
	// MaxFetchAttempts is the maximum attempts per events page.
	MaxFetchAttempts = 3

	// FetchJitterFactor is the ±percentage of jitter applied to delays.
	FetchJitterFactor = 0.2 // ±20%
)

// FetchRetryDelay calculates the delay before the next page attempt.
// attemptCount is 0-indexed (after first failed attempt, attemptCount = 0).
func FetchRetryDelay(attemptCount int) time.Duration {
	if attemptCount < 0 {
		attemptCount = 0
	}
	if attemptCount >= len(fetchRetryDelays) {
		attemptCount = len(fetchRetryDelays) - 1
	}

	base := fetchRetryDelays[attemptCount]

	// Add ±20% jitter to prevent thundering herd
	jitterRange := float64(base) * FetchJitterFactor
	jitter := (rand.Float64()*2 - 1) * jitterRange

	return time.Duration(float64(base) + jitter)
}
