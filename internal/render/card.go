// Package render produces the profile artifacts: the SVG stats card
// and the profile README document.
package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	cmp "maragu.dev/gomponents"

	"github.com/gitfolio/gitfolio/internal/stats"
)

// Card geometry and palette.
const (
	cardWidth  = 495
	cardHeight = 180

	ringRadius      = 38
	ringStrokeWidth = 8
	ringTrackColor  = "#e1e4e8"
	ringArcColor    = "#58a6ff"

	cardFillColor   = "#ffffff"
	cardStrokeColor = "#e4e2e2"
)

const cardStyles = `
    .card { fill: ` + cardFillColor + `; stroke: ` + cardStrokeColor + `; stroke-width: 1; rx: 6; ry: 6; }
    .title { font: 600 18px system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; fill: #24292e; }
    .subtitle { font: 400 12px system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; fill: #586069; }
    .label { font: 400 13px system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; fill: #24292e; }
    .value { font: 600 13px system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; fill: #0366d6; }
    .small { font: 400 11px system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; fill: #6a737d; }
`

// CardData holds everything the stats card renders.
type CardData struct {
	Username string
	Year     int
	Stats    stats.ActivityStats
}

type statRow struct {
	label string
	value int
}

// WriteCard renders the stats card SVG to w.
func WriteCard(w io.Writer, data CardData) error {
	return cardNode(data).Render(w)
}

// RenderCard renders the stats card SVG to a byte slice.
func RenderCard(data CardData) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCard(&buf, data); err != nil {
		return nil, fmt.Errorf("render stats card: %w", err)
	}
	return buf.Bytes(), nil
}

func cardNode(data CardData) cmp.Node {
	s := data.Stats
	percent := s.ActivityPercent()
	circumference := 2 * math.Pi * ringRadius
	dashOffset := circumference * (1 - percent)

	rows := []statRow{
		{"⭐  Total events (this year):", s.TotalEvents},
		{"📝 Commits (Push events):", s.Commits},
		{"📦 Push events:", s.PushEvents},
		{"🔀 PRs opened:", s.PullRequestsOpened},
		{"❗ Issues opened:", s.IssuesOpened},
		{"📁 Repos created:", s.ReposCreated},
	}

	rowNodes := make([]cmp.Node, 0, len(rows)*2)
	for i, row := range rows {
		y := strconv.Itoa(i * 22)
		rowNodes = append(rowNodes,
			cmp.El("text", cmp.Attr("class", "label"), cmp.Attr("x", "0"), cmp.Attr("y", y),
				cmp.Text(row.label)),
			cmp.El("text", cmp.Attr("class", "value"), cmp.Attr("x", "260"), cmp.Attr("y", y),
				cmp.Text(formatCount(row.value))),
		)
	}

	return cmp.El("svg",
		cmp.Attr("xmlns", "http://www.w3.org/2000/svg"),
		cmp.Attr("width", strconv.Itoa(cardWidth)),
		cmp.Attr("height", strconv.Itoa(cardHeight)),
		cmp.Attr("viewBox", fmt.Sprintf("0 0 %d %d", cardWidth, cardHeight)),
		cmp.Attr("role", "img"),
		cmp.Attr("aria-labelledby", "title desc"),

		cmp.El("title", cmp.Attr("id", "title"),
			cmp.Text(fmt.Sprintf("%s's GitHub Stats %d", data.Username, data.Year))),
		cmp.El("desc", cmp.Attr("id", "desc"),
			cmp.Text(fmt.Sprintf("GitHub public events statistics for %d.", data.Year))),

		cmp.El("style", cmp.Text(cardStyles)),

		cmp.El("rect", cmp.Attr("x", "0"), cmp.Attr("y", "0"),
			cmp.Attr("width", strconv.Itoa(cardWidth)), cmp.Attr("height", strconv.Itoa(cardHeight)),
			cmp.Attr("fill", "none")),
		cmp.El("rect", cmp.Attr("x", "0.5"), cmp.Attr("y", "0.5"),
			cmp.Attr("width", strconv.Itoa(cardWidth-1)), cmp.Attr("height", strconv.Itoa(cardHeight-1)),
			cmp.Attr("class", "card")),

		cmp.El("g", cmp.Attr("transform", "translate(24, 32)"),
			cmp.El("text", cmp.Attr("class", "title"),
				cmp.Text(fmt.Sprintf("%s's GitHub Stats (%d)", data.Username, data.Year))),
			cmp.El("text", cmp.Attr("class", "subtitle"), cmp.Attr("y", "18"),
				cmp.Text("Public events · approx. last 300 events from the GitHub API")),
		),

		cmp.El("g", append([]cmp.Node{cmp.Attr("transform", "translate(32, 78)")}, rowNodes...)...),

		cmp.El("g", cmp.Attr("transform", "translate(380, 95)"),
			cmp.El("circle", cmp.Attr("cx", "0"), cmp.Attr("cy", "0"),
				cmp.Attr("r", strconv.Itoa(ringRadius)), cmp.Attr("fill", "none"),
				cmp.Attr("stroke", ringTrackColor), cmp.Attr("stroke-width", strconv.Itoa(ringStrokeWidth))),
			cmp.El("circle", cmp.Attr("cx", "0"), cmp.Attr("cy", "0"),
				cmp.Attr("r", strconv.Itoa(ringRadius)), cmp.Attr("fill", "none"),
				cmp.Attr("stroke", ringArcColor), cmp.Attr("stroke-width", strconv.Itoa(ringStrokeWidth)),
				cmp.Attr("stroke-linecap", "round"),
				cmp.Attr("stroke-dasharray", fmt.Sprintf("%.2f", circumference)),
				cmp.Attr("stroke-dashoffset", fmt.Sprintf("%.2f", dashOffset)),
				cmp.Attr("transform", "rotate(-90)")),
			cmp.El("text", cmp.Attr("text-anchor", "middle"), cmp.Attr("class", "value"), cmp.Attr("y", "5"),
				cmp.Text(fmt.Sprintf("%d%%", int(percent*100)))),
			cmp.El("text", cmp.Attr("text-anchor", "middle"), cmp.Attr("class", "small"), cmp.Attr("y", "24"),
				cmp.Text("activity")),
		),

		cmp.El("g", cmp.Attr("transform", "translate(24, 164)"),
			cmp.El("text", cmp.Attr("class", "small"),
				cmp.Text(fmt.Sprintf("Generated automatically with GitHub Actions · Year %d", data.Year))),
		),
	)
}

// formatCount renders n with comma thousands separators.
func formatCount(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var buf bytes.Buffer
	if neg {
		buf.WriteByte('-')
	}
	lead := len(s) % 3
	if lead > 0 {
		buf.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if buf.Len() > 0 && !(neg && buf.Len() == 1) {
			buf.WriteByte(',')
		}
		buf.WriteString(s[i : i+3])
	}
	return buf.String()
}
