package analytics

import (
	"testing"
	"time"
)

func TestValidateViewEventPayload(t *testing.T) {
	valid := ViewEventPayload{
		Artifact:    "card",
		Username:    "octocat",
		Referrer:    "https://example.com/path",
		UserAgent:   "TestAgent/1.0",
		VisitorHash: "0123456789abcdef",
		CountryCode: "US",
		ViewedAt:    time.Now().UnixMilli(),
	}

	if err := ValidateViewEventPayload(valid); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	cases := []struct {
		name    string
		payload ViewEventPayload
	}{
		{"missing_artifact", ViewEventPayload{Username: "octocat", VisitorHash: "0123456789abcdef", ViewedAt: 1}},
		{"unknown_artifact", ViewEventPayload{Artifact: "banner", Username: "octocat", VisitorHash: "0123456789abcdef", ViewedAt: 1}},
		{"missing_username", ViewEventPayload{Artifact: "readme", VisitorHash: "0123456789abcdef", ViewedAt: 1}},
		{"missing_visitor_hash", ViewEventPayload{Artifact: "card", Username: "octocat", ViewedAt: 1}},
		{"invalid_visitor_hash", ViewEventPayload{Artifact: "card", Username: "octocat", VisitorHash: "not-hex", ViewedAt: 1}},
		{"invalid_country_code", ViewEventPayload{Artifact: "card", Username: "octocat", VisitorHash: "0123456789abcdef", CountryCode: "USA", ViewedAt: 1}},
		{"missing_viewed_at", ViewEventPayload{Artifact: "card", Username: "octocat", VisitorHash: "0123456789abcdef"}},
	}

	for _, tc := range cases {
		if err := ValidateViewEventPayload(tc.payload); err == nil {
			t.Fatalf("expected error for %s", tc.name)
		}
	}
}
