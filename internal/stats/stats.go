// Package stats aggregates GitHub public events into activity counters.
package stats

import "github.com/gitfolio/gitfolio/internal/github"

// ActivityStats holds the aggregated counters for one target year.
type ActivityStats struct {
	TotalEvents        int `json:"total_events"`
	PushEvents         int `json:"push_events"`
	Commits            int `json:"commits"`
	PullRequestsOpened int `json:"pull_requests_opened"`
	IssuesOpened       int `json:"issues_opened"`
	ReposCreated       int `json:"repos_created"`
}

// ActivityPercent returns the activity-ring fill fraction in [0, 1].
// 100 or more events fill the ring completely.
func (s ActivityStats) ActivityPercent() float64 {
	p := float64(s.TotalEvents) / 100.0
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

// Compute aggregates a slice of public events into activity counters.
// Every event counts toward TotalEvents; events with missing payloads
// contribute nothing beyond that.
func Compute(events []github.Event) ActivityStats {
	var s ActivityStats
	for _, ev := range events {
		s.TotalEvents++
		switch ev.Type {
		case github.EventPush:
			s.PushEvents++
			s.Commits += len(ev.Payload.Commits)
		case github.EventPullRequest:
			if ev.Payload.Action == github.ActionOpened {
				s.PullRequestsOpened++
			}
		case github.EventIssues:
			if ev.Payload.Action == github.ActionOpened {
				s.IssuesOpened++
			}
		case github.EventCreate:
			if ev.Payload.RefType == github.RefTypeRepository {
				s.ReposCreated++
			}
		}
	}
	return s
}
