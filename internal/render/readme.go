package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/gitfolio/gitfolio/internal/model"
)

// ReadmeData holds everything the profile README renders.
type ReadmeData struct {
	Profile         model.Profile
	Projects        []model.Project
	Contacts        []model.ContactLink
	ContribGraphURL string
	Year            int
}

// Published, Building and Planned split Projects by lifecycle stage,
// preserving input order.
func (d ReadmeData) Published() []model.Project { return d.byStatus(model.ProjectStatusPublished) }
func (d ReadmeData) Building() []model.Project  { return d.byStatus(model.ProjectStatusBuilding) }
func (d ReadmeData) Planned() []model.Project   { return d.byStatus(model.ProjectStatusPlanned) }

func (d ReadmeData) byStatus(status model.ProjectStatus) []model.Project {
	var out []model.Project
	for _, p := range d.Projects {
		if p.Status == status && !p.IsDeleted() {
			out = append(out, p)
		}
	}
	return out
}

const readmeTemplate = `# Hi there, I'm {{md .Profile.DisplayName}} 👋
{{- with .Profile.Headline}}

**{{md .}}**
{{- end}}
{{- with .Profile.About}}

## About me

{{.}}
{{- end}}
{{- with .Profile.Interests}}

## Interests
{{range .}}
- {{md .}}
{{- end}}
{{- end}}
{{- if .Projects}}

## Projects
{{- with .Published}}

### Published
{{range .}}
- [{{md .Title}}]({{.RepoURL}}){{with .Summary}} — {{md .}}{{end}}{{with .TechStack}} ({{join .}}){{end}}
{{- end}}
{{- end}}
{{- with .Building}}

### In progress
{{range .}}
- {{md .Title}}{{with .Summary}} — {{md .}}{{end}}{{with .TechStack}} ({{join .}}){{end}}
{{- end}}
{{- end}}
{{- with .Planned}}

### Coming soon
{{range .}}
- {{md .Title}}{{with .Summary}} — {{md .}}{{end}}{{with .TechStack}} ({{join .}}){{end}}
{{- end}}
{{- end}}
{{- end}}

## GitHub activity

![Contribution graph]({{.ContribGraphURL}})

![{{md .Profile.Username}}'s GitHub stats](./stats.svg)
{{- with .Contacts}}

## Contact
{{range .}}
- [{{md .Label}}]({{.URL}})
{{- end}}
{{- end}}
`

var readmeTmpl = template.Must(template.New("readme").Funcs(template.FuncMap{
	"md":   escapeMarkdown,
	"join": joinTechStack,
}).Parse(readmeTemplate))

// WriteReadme renders the profile README to w. Output is
// deterministic for fixed inputs.
func WriteReadme(w io.Writer, data ReadmeData) error {
	if err := readmeTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render readme: %w", err)
	}
	return nil
}

// RenderReadme renders the profile README to a byte slice.
func RenderReadme(data ReadmeData) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteReadme(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// escapeMarkdown escapes characters that would break inline Markdown
// when they appear in user-supplied labels and titles.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`[`, `\[`,
		`]`, `\]`,
		`*`, `\*`,
		"`", "\\`",
		`_`, `\_`,
	)
	return r.Replace(s)
}

func joinTechStack(stack []string) string {
	escaped := make([]string, len(stack))
	for i, s := range stack {
		escaped[i] = escapeMarkdown(s)
	}
	return strings.Join(escaped, ", ")
}
