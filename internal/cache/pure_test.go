package cache

import (
	"testing"
	"time"

	"github.com/gitfolio/gitfolio/internal/model"
)

func TestHashIP_Deterministic(t *testing.T) {
	t.Parallel()

	ip := "192.168.1.100"

	hash1 := hashIP(ip)
	hash2 := hashIP(ip)

	if hash1 != hash2 {
		t.Error("Same IP should produce same hash")
	}
}

func TestHashIP_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv4 localhost", "127.0.0.1"},
		{"IPv6 localhost", "::1"},
		{"IPv6 full", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash := hashIP(tt.ip)
			// hashIP uses first 8 bytes of SHA256, encoded as 16 hex chars
			if len(hash) != 16 {
				t.Errorf("hashIP(%q) length = %d, want 16", tt.ip, len(hash))
			}
		})
	}
}

func TestHashIP_Different(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip1  string
		ip2  string
	}{
		{"different IPv4", "192.168.1.1", "192.168.1.2"},
		{"different last octet", "10.0.0.1", "10.0.0.2"},
		{"IPv4 vs IPv6", "127.0.0.1", "::1"},
		{"public vs private", "8.8.8.8", "192.168.1.1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash1 := hashIP(tt.ip1)
			hash2 := hashIP(tt.ip2)

			if hash1 == hash2 {
				t.Errorf("Different IPs should produce different hashes: %q and %q both produced %s", tt.ip1, tt.ip2, hash1)
			}
		})
	}
}

func TestArtifactKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		kind     model.ArtifactKind
		username string
		year     int
		want     string
	}{
		{"card keyed per year", model.ArtifactCard, "octocat", 2026, "artifact:card:octocat:2026"},
		{"card other year", model.ArtifactCard, "octocat", 2025, "artifact:card:octocat:2025"},
		{"readme ignores year", model.ArtifactReadme, "octocat", 2026, "artifact:readme:octocat"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ArtifactKey(tt.kind, tt.username, tt.year)
			if got != tt.want {
				t.Errorf("ArtifactKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestArtifactTTL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		interval time.Duration
		want     time.Duration
	}{
		{"long interval passes through", 6 * time.Hour, 6 * time.Hour},
		{"short interval floored", 1 * time.Minute, MinArtifactTTL},
		{"zero interval floored", 0, MinArtifactTTL},
		{"exactly minimum", MinArtifactTTL, MinArtifactTTL},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ArtifactTTL(tt.interval); got != tt.want {
				t.Errorf("ArtifactTTL(%v) = %v, want %v", tt.interval, got, tt.want)
			}
		})
	}
}

func TestParseViewKey_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		key          string
		wantKind     model.ArtifactKind
		wantUsername string
	}{
		{"card views", "views:card:octocat", model.ArtifactCard, "octocat"},
		{"readme views", "views:readme:octocat", model.ArtifactReadme, "octocat"},
		{"username with hyphen", "views:card:my-user", model.ArtifactCard, "my-user"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			kind, username, ok := ParseViewKey(tt.key)
			if !ok {
				t.Fatalf("ParseViewKey(%q) not ok", tt.key)
			}
			if kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", kind, tt.wantKind)
			}
			if username != tt.wantUsername {
				t.Errorf("username = %q, want %q", username, tt.wantUsername)
			}
		})
	}
}

func TestParseViewKey_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
	}{
		{"empty string", ""},
		{"prefix only", "views:"},
		{"unknown artifact", "views:banner:octocat"},
		{"missing username", "views:card:"},
		{"no separator after kind", "views:card"},
		{"wrong prefix", "clicks:card:octocat"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, _, ok := ParseViewKey(tt.key); ok {
				t.Errorf("ParseViewKey(%q) should not be ok", tt.key)
			}
		})
	}
}
