package stats

import (
	"math"
	"testing"

	"github.com/gitfolio/gitfolio/internal/github"
)

func pushEvent(commits int) github.Event {
	ev := github.Event{Type: github.EventPush}
	for i := 0; i < commits; i++ {
		ev.Payload.Commits = append(ev.Payload.Commits, github.Commit{SHA: "abc"})
	}
	return ev
}

func TestCompute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		events []github.Event
		want   ActivityStats
	}{
		{
			name:   "no events",
			events: nil,
			want:   ActivityStats{},
		},
		{
			name: "pushes with commits",
			events: []github.Event{
				pushEvent(3),
				pushEvent(1),
			},
			want: ActivityStats{TotalEvents: 2, PushEvents: 2, Commits: 4},
		},
		{
			name: "pull request opened counts, closed does not",
			events: []github.Event{
				{Type: github.EventPullRequest, Payload: github.Payload{Action: "opened"}},
				{Type: github.EventPullRequest, Payload: github.Payload{Action: "closed"}},
			},
			want: ActivityStats{TotalEvents: 2, PullRequestsOpened: 1},
		},
		{
			name: "issue opened counts, comment event does not",
			events: []github.Event{
				{Type: github.EventIssues, Payload: github.Payload{Action: "opened"}},
				{Type: "IssueCommentEvent", Payload: github.Payload{Action: "created"}},
			},
			want: ActivityStats{TotalEvents: 2, IssuesOpened: 1},
		},
		{
			name: "create event only counts repositories",
			events: []github.Event{
				{Type: github.EventCreate, Payload: github.Payload{RefType: "repository"}},
				{Type: github.EventCreate, Payload: github.Payload{RefType: "branch"}},
				{Type: github.EventCreate, Payload: github.Payload{RefType: "tag"}},
			},
			want: ActivityStats{TotalEvents: 3, ReposCreated: 1},
		},
		{
			name: "events with empty payloads still count toward total",
			events: []github.Event{
				{Type: "WatchEvent"},
				{Type: github.EventPush},
			},
			want: ActivityStats{TotalEvents: 2, PushEvents: 1},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Compute(tt.events)
			if got != tt.want {
				t.Errorf("Compute() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestActivityPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		total int
		want  float64
	}{
		{"zero events", 0, 0},
		{"half full", 50, 0.5},
		{"exactly full", 100, 1},
		{"clamped above one", 250, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := ActivityStats{TotalEvents: tt.total}
			got := s.ActivityPercent()
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ActivityPercent() = %v, want %v", got, tt.want)
			}
			if math.IsNaN(got) {
				t.Error("ActivityPercent() returned NaN")
			}
		})
	}
}
