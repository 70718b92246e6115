package model

import (
	"testing"
	"time"
)

func TestActivitySnapshot_ActivityPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		totalEvents int
		want        float64
	}{
		{"zero events", 0, 0},
		{"half full", 50, 0.5},
		{"exactly full", 100, 1},
		{"clamped above", 250, 1},
		{"single event", 1, 0.01},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := ActivitySnapshot{TotalEvents: tt.totalEvents}
			if got := s.ActivityPercent(); got != tt.want {
				t.Errorf("ActivityPercent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArtifact_ToCachedArtifact(t *testing.T) {
	t.Parallel()

	renderedAt := time.Unix(1700000000, 0)
	a := &Artifact{
		Kind:        ArtifactCard,
		Body:        []byte("<svg></svg>"),
		ContentType: "image/svg+xml",
		ETag:        `"abc123"`,
		SnapshotID:  "snap-1",
		RenderedAt:  renderedAt,
	}

	cached := a.ToCachedArtifact()

	if cached.Body != "<svg></svg>" {
		t.Errorf("Body = %s, want <svg></svg>", cached.Body)
	}
	if cached.ContentType != "image/svg+xml" {
		t.Errorf("ContentType = %s, want image/svg+xml", cached.ContentType)
	}
	if cached.RenderedAt != "1700000000" {
		t.Errorf("RenderedAt = %s, want 1700000000", cached.RenderedAt)
	}
}

func TestCachedArtifact_ToArtifact(t *testing.T) {
	t.Parallel()

	cached := &CachedArtifact{
		Body:        "# Hello",
		ContentType: "text/markdown; charset=utf-8",
		ETag:        `"def456"`,
		SnapshotID:  "snap-2",
		RenderedAt:  "1700000000",
	}

	a := cached.ToArtifact(ArtifactReadme)

	if a.Kind != ArtifactReadme {
		t.Errorf("Kind = %s, want %s", a.Kind, ArtifactReadme)
	}
	if string(a.Body) != "# Hello" {
		t.Errorf("Body = %s, want # Hello", a.Body)
	}
	if a.RenderedAt.Unix() != 1700000000 {
		t.Errorf("RenderedAt Unix = %d, want 1700000000", a.RenderedAt.Unix())
	}
}

func TestCachedArtifact_ToArtifact_InvalidTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		renderedAt string
	}{
		{"invalid string", "invalid"},
		{"empty", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cached := &CachedArtifact{
				Body:       "x",
				RenderedAt: tt.renderedAt,
			}

			// Should not panic
			a := cached.ToArtifact(ArtifactCard)

			if !a.RenderedAt.IsZero() {
				t.Errorf("RenderedAt should be zero for invalid timestamp, got %v", a.RenderedAt)
			}
		})
	}
}

func TestArtifactKind_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind ArtifactKind
		want bool
	}{
		{ArtifactCard, true},
		{ArtifactReadme, true},
		{ArtifactKind("banner"), false},
		{ArtifactKind(""), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()

			if got := tt.kind.IsValid(); got != tt.want {
				t.Errorf("ArtifactKind(%q).IsValid() = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}
