package pipeline

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Heading depth bounds for outlines.
const (
	MinOutlineDepth = 1
	MaxOutlineDepth = 6
)

// renderedHeading matches h1-h6 tags with an id attribute.
// Captures: 1=level, 2=id, 3=inner HTML.
var renderedHeading = regexp.MustCompile(`(?is)<h([1-6])[^>]*\bid="([^"]*)"[^>]*>(.*?)</h[1-6]>`)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// HeadingsFromHTML returns the headings of rendered HTML that carry an id.
// Text has tags stripped and entities decoded, so it can be escaped again
// without double encoding.
func HeadingsFromHTML(htmlContent string) []Heading {
	matches := renderedHeading.FindAllStringSubmatch(htmlContent, -1)
	headings := make([]Heading, 0, len(matches))
	for _, m := range matches {
		level, _ := strconv.Atoi(m[1])
		headings = append(headings, Heading{
			Level: level,
			ID:    html.UnescapeString(m[2]),
			Text:  strings.TrimSpace(html.UnescapeString(htmlTag.ReplaceAllString(m[3], ""))),
		})
	}
	return headings
}

// numberingState tracks hierarchical numbering for outline entries.
// The shallowest level seen first becomes depth 1 and skipped levels collapse.
type numberingState struct {
	counters     [MaxOutlineDepth]int
	minLevelSeen int
	lastDepth    int
}

// next returns the number string ("1.2.") and effective depth for a heading
// at the given level.
func (n *numberingState) next(level int) (string, int) {
	if n.minLevelSeen == 0 {
		n.minLevelSeen = level
	}

	depth := max(level-n.minLevelSeen+1, 1)
	// H1 followed by H3 nests one level, not two.
	if n.lastDepth > 0 && depth > n.lastDepth+1 {
		depth = n.lastDepth + 1
	}

	for i := depth; i < MaxOutlineDepth; i++ {
		n.counters[i] = 0
	}
	n.counters[depth-1]++
	n.lastDepth = depth

	parts := make([]string, depth)
	for i := range depth {
		parts[i] = strconv.Itoa(n.counters[i])
	}
	return strings.Join(parts, ".") + ".", depth
}

// Outline renders headings up to maxDepth as a numbered table of contents.
// Entries link to the heading ids. It returns "" when no heading qualifies.
func Outline(headings []Heading, title string, maxDepth int) string {
	if maxDepth < MinOutlineDepth || maxDepth > MaxOutlineDepth {
		maxDepth = MaxOutlineDepth
	}

	var buf strings.Builder
	numbering := &numberingState{}
	for _, h := range headings {
		if h.Level > maxDepth {
			continue
		}
		if buf.Len() == 0 {
			buf.WriteString(`<nav class="toc">`)
			if title != "" {
				buf.WriteString(`<h2 class="toc-title">`)
				buf.WriteString(html.EscapeString(title))
				buf.WriteString(`</h2>`)
			}
			buf.WriteString(`<div class="toc-list">`)
		}

		num, depth := numbering.next(h.Level)
		buf.WriteString(`<div class="toc-item"`)
		if depth > 1 {
			fmt.Fprintf(&buf, ` style="padding-left:%.1fem"`, float64(depth-1)*1.5)
		}
		buf.WriteString(`><a href="#`)
		buf.WriteString(html.EscapeString(h.ID))
		buf.WriteString(`">`)
		buf.WriteString(num)
		buf.WriteString(` `)
		buf.WriteString(html.EscapeString(h.Text))
		buf.WriteString(`</a></div>`)
	}

	if buf.Len() == 0 {
		return ""
	}
	buf.WriteString(`</div></nav>`)
	return buf.String()
}
