// Package github provides a client for the GitHub public events API.
package github

import "time"

// Event type names from the events API.
const (
	EventPush        = "PushEvent"
	EventPullRequest = "PullRequestEvent"
	EventIssues      = "IssuesEvent"
	EventCreate      = "CreateEvent"
)

// Payload field values of interest.
const (
	ActionOpened      = "opened"
	RefTypeRepository = "repository"
)

// Event represents one entry from a user's public events feed.
type Event struct {
	Type      string  `json:"type"`
	CreatedAt string  `json:"created_at"`
	Repo      Repo    `json:"repo"`
	Payload   Payload `json:"payload"`
}

// Repo identifies the repository an event happened in.
type Repo struct {
	Name string `json:"name,omitempty"`
}

// Payload carries the event-type specific fields used for aggregation.
type Payload struct {
	Action  string   `json:"action,omitempty"`
	RefType string   `json:"ref_type,omitempty"`
	Commits []Commit `json:"commits,omitempty"`
}

// Commit represents a commit entry in a push event payload.
type Commit struct {
	SHA     string `json:"sha,omitempty"`
	Message string `json:"message,omitempty"`
}

// CreatedAtTime parses the event timestamp.
// ok is false when the timestamp is missing or malformed.
func (e *Event) CreatedAtTime() (time.Time, bool) {
	if e.CreatedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, e.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
