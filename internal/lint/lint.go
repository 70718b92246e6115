// Package lint verifies the structural properties of a rendered
// profile document: the Markdown parses, every hyperlink is a
// well-formed URI with an allowed scheme, and every relative image
// reference exists on disk. Link liveness is deliberately out of
// scope; checks are schema-level only.
package lint

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Severity classifies a lint issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule identifiers reported in issues.
const (
	RuleEmptyDocument = "empty-document"
	RuleNoHeading     = "no-heading"
	RuleMalformedURI  = "malformed-uri"
	RuleBadScheme     = "bad-scheme"
	RuleMissingAsset  = "missing-asset"
	RuleEmptyLinkDest = "empty-link-destination"
)

// allowedSchemes for hyperlink destinations.
var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
}

// Issue is one finding from a document check.
type Issue struct {
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
	Detail   string   `json:"detail"`
}

// Report collects the findings for one document.
type Report struct {
	Issues []Issue `json:"issues"`

	// Structural facts gathered during the walk.
	Headings int `json:"headings"`
	Links    int `json:"links"`
	Images   int `json:"images"`
}

// OK reports whether the document has no error-severity issues.
func (r *Report) OK() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return false
		}
	}
	return true
}

func (r *Report) add(severity Severity, rule, detail string) {
	r.Issues = append(r.Issues, Issue{Severity: severity, Rule: rule, Detail: detail})
}

// Options configures a document check.
type Options struct {
	// AssetRoot is the directory relative image references resolve
	// against. Empty disables asset existence checks.
	AssetRoot string
}

// Check parses doc as CommonMark and verifies its links and images.
func Check(doc []byte, opts Options) Report {
	var report Report

	if len(strings.TrimSpace(string(doc))) == 0 {
		report.add(SeverityError, RuleEmptyDocument, "document is empty")
		return report
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(doc))

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			report.Headings++
		case *ast.Link:
			report.Links++
			checkLinkDestination(&report, string(node.Destination))
		case *ast.AutoLink:
			report.Links++
			checkLinkDestination(&report, string(node.URL(doc)))
		case *ast.Image:
			report.Images++
			checkImageDestination(&report, string(node.Destination), opts.AssetRoot)
		}
		return ast.WalkContinue, nil
	})

	if report.Headings == 0 {
		report.add(SeverityWarning, RuleNoHeading, "document has no headings")
	}

	return report
}

// CheckFile reads and checks a document from disk. When opts.AssetRoot
// is empty, relative image references resolve against the document's
// own directory.
func CheckFile(path string, opts Options) (Report, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("read document: %w", err)
	}
	if opts.AssetRoot == "" {
		opts.AssetRoot = filepath.Dir(path)
	}
	return Check(doc, opts), nil
}

func checkLinkDestination(report *Report, dest string) {
	if dest == "" {
		report.add(SeverityError, RuleEmptyLinkDest, "link has an empty destination")
		return
	}

	parsed, err := url.Parse(dest)
	if err != nil {
		report.add(SeverityError, RuleMalformedURI, fmt.Sprintf("link %q is not a well-formed URI", dest))
		return
	}
	if !allowedSchemes[parsed.Scheme] {
		report.add(SeverityError, RuleBadScheme,
			fmt.Sprintf("link %q uses scheme %q, want http, https or mailto", dest, parsed.Scheme))
	}
}

func checkImageDestination(report *Report, dest, assetRoot string) {
	if dest == "" {
		report.add(SeverityError, RuleEmptyLinkDest, "image has an empty destination")
		return
	}

	parsed, err := url.Parse(dest)
	if err != nil {
		report.add(SeverityError, RuleMalformedURI, fmt.Sprintf("image %q is not a well-formed URI", dest))
		return
	}

	// Remote image: scheme check only, no liveness probing.
	if parsed.Scheme != "" {
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			report.add(SeverityError, RuleBadScheme,
				fmt.Sprintf("image %q uses scheme %q, want http or https", dest, parsed.Scheme))
		}
		return
	}

	// Relative image: must exist under the asset root.
	if assetRoot == "" {
		return
	}
	local := filepath.Join(assetRoot, filepath.FromSlash(strings.TrimPrefix(dest, "./")))
	if _, err := os.Stat(local); err != nil {
		report.add(SeverityError, RuleMissingAsset,
			fmt.Sprintf("image %q does not exist under %s", dest, assetRoot))
	}
}
