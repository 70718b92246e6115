package lint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func issuesByRule(r Report, rule string) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Rule == rule {
			out = append(out, issue)
		}
	}
	return out
}

func TestCheck_CleanDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "stats.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc := []byte(`# Hi there

Some text with a [link](https://example.com) and [mail](mailto:a@b.c).

![stats](./stats.svg)
![graph](https://ghchart.rshah.org/octocat)
`)

	report := Check(doc, Options{AssetRoot: dir})
	if !report.OK() {
		t.Errorf("expected clean report, got issues: %+v", report.Issues)
	}
	if report.Headings != 1 {
		t.Errorf("Headings = %d, want 1", report.Headings)
	}
	if report.Links != 2 {
		t.Errorf("Links = %d, want 2", report.Links)
	}
	if report.Images != 2 {
		t.Errorf("Images = %d, want 2", report.Images)
	}
}

func TestCheck_EmptyDocument(t *testing.T) {
	t.Parallel()

	report := Check([]byte("  \n\t\n"), Options{})
	if report.OK() {
		t.Error("expected empty document to fail")
	}
	if len(issuesByRule(report, RuleEmptyDocument)) != 1 {
		t.Errorf("expected one %s issue, got %+v", RuleEmptyDocument, report.Issues)
	}
}

func TestCheck_BadScheme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"ftp link", "[x](ftp://example.com/file)"},
		{"javascript link", "[x](javascript:alert(1))"},
		{"relative link", "[x](docs/page.md)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			report := Check([]byte("# T\n\n"+tt.doc+"\n"), Options{})
			if report.OK() {
				t.Errorf("expected %q to fail scheme check", tt.doc)
			}
			if len(issuesByRule(report, RuleBadScheme)) == 0 {
				t.Errorf("expected a %s issue, got %+v", RuleBadScheme, report.Issues)
			}
		})
	}
}

func TestCheck_MissingAsset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := []byte("# T\n\n![stats](./stats.svg)\n")

	report := Check(doc, Options{AssetRoot: dir})
	if report.OK() {
		t.Error("expected missing asset to fail")
	}
	issues := issuesByRule(report, RuleMissingAsset)
	if len(issues) != 1 {
		t.Fatalf("expected one %s issue, got %+v", RuleMissingAsset, report.Issues)
	}
	if !strings.Contains(issues[0].Detail, "stats.svg") {
		t.Errorf("issue detail should name the asset, got %q", issues[0].Detail)
	}
}

func TestCheck_NoHeadingIsWarningOnly(t *testing.T) {
	t.Parallel()

	report := Check([]byte("just some text\n"), Options{})
	if !report.OK() {
		t.Errorf("warnings must not fail the report, got %+v", report.Issues)
	}
	if len(issuesByRule(report, RuleNoHeading)) != 1 {
		t.Errorf("expected a %s warning, got %+v", RuleNoHeading, report.Issues)
	}
}

func TestCheck_Autolink(t *testing.T) {
	t.Parallel()

	report := Check([]byte("# T\n\nVisit <https://example.com> now.\n"), Options{})
	if !report.OK() {
		t.Errorf("expected autolink to pass, got %+v", report.Issues)
	}
	if report.Links != 1 {
		t.Errorf("Links = %d, want 1", report.Links)
	}
}

func TestCheckFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	readme := filepath.Join(dir, "README.md")
	if err := os.WriteFile(readme, []byte("# T\n\n![s](./stats.svg)\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stats.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	// asset root defaults to the document directory
	report, err := CheckFile(readme, Options{})
	if err != nil {
		t.Fatalf("CheckFile() error = %v", err)
	}
	if !report.OK() {
		t.Errorf("expected clean report, got %+v", report.Issues)
	}

	if _, err := CheckFile(filepath.Join(dir, "missing.md"), Options{}); err == nil {
		t.Error("expected error for missing file")
	}
}
