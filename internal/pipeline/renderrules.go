package pipeline

import (
	"bytes"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// renderRulesPriority places the preview rules ahead of goldmark's default
// HTML renderer (1000) and the GFM table renderer (500).
const renderRulesPriority = 100

// defaultCodeLanguage labels code blocks that carry no info string.
const defaultCodeLanguage = "text"

// nonWordRun matches runs of characters outside [A-Za-z0-9_].
var nonWordRun = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// Slugify derives a heading anchor: lowercase text with every run of non-word
// characters replaced by a single hyphen. Equal texts yield equal slugs.
func Slugify(text string) string {
	return nonWordRun.ReplaceAllString(strings.ToLower(text), "-")
}

// Compile-time interface check
var _ renderer.NodeRenderer = (*previewRenderer)(nil)

// previewRenderer overrides goldmark's markup for the elements the preview
// pane styles: headings, code, links, tables, blockquotes and lists.
type previewRenderer struct {
	highlight HighlightFunc
	origin    *url.URL // nil disables external link detection
}

func newPreviewRenderer(highlight HighlightFunc, origin *url.URL) *previewRenderer {
	return &previewRenderer{highlight: SafeHighlight(highlight), origin: origin}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *previewRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
	reg.Register(ast.KindFencedCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindCodeSpan, r.renderCodeSpan)
	reg.Register(ast.KindLink, r.renderLink)
	reg.Register(ast.KindAutoLink, r.renderAutoLink)
	reg.Register(ast.KindBlockquote, r.renderBlockquote)
	reg.Register(ast.KindList, r.renderList)
	reg.Register(extast.KindTable, r.renderTable)
}

func (r *previewRenderer) renderHeading(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	level := strconv.Itoa(n.Level)
	if entering {
		_, _ = w.WriteString("<h" + level + ` id="`)
		_, _ = w.Write(util.EscapeHTML([]byte(Slugify(plainText(n, source)))))
		_, _ = w.WriteString(`" class="heading-` + level + `">`)
	} else {
		_, _ = w.WriteString("</h" + level + ">\n")
	}
	return ast.WalkContinue, nil
}

func (r *previewRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	lang := defaultCodeLanguage
	if fenced, ok := node.(*ast.FencedCodeBlock); ok {
		if l := fenced.Language(source); len(l) > 0 {
			lang = string(l)
		}
	}

	var code bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	escapedLang := util.EscapeHTML([]byte(lang))
	_, _ = w.WriteString(`<div class="code-block"><div class="code-header"><span class="code-language">`)
	_, _ = w.Write(escapedLang)
	_, _ = w.WriteString(`</span></div><pre class="language-`)
	_, _ = w.Write(escapedLang)
	_, _ = w.WriteString(`"><code class="language-`)
	_, _ = w.Write(escapedLang)
	_, _ = w.WriteString(`">`)
	_, _ = w.WriteString(r.highlight(code.String(), lang))
	_, _ = w.WriteString("</code></pre></div>\n")
	return ast.WalkSkipChildren, nil
}

func (r *previewRenderer) renderCodeSpan(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code>")
		return ast.WalkContinue, nil
	}

	_, _ = w.WriteString(`<code class="inline-code">`)
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		var value []byte
		switch t := c.(type) {
		case *ast.Text:
			value = t.Segment.Value(source)
		case *ast.String:
			value = t.Value
		default:
			continue
		}
		if bytes.HasSuffix(value, []byte("\n")) {
			value = append(value[:len(value)-1:len(value)-1], ' ')
		}
		_, _ = w.Write(util.EscapeHTML(value))
	}
	return ast.WalkSkipChildren, nil
}

func (r *previewRenderer) renderLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if entering {
		r.openAnchor(w, n.Destination, n.Title)
	} else {
		_, _ = w.WriteString("</a>")
	}
	return ast.WalkContinue, nil
}

func (r *previewRenderer) renderAutoLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*ast.AutoLink)
	dest := n.URL(source)
	if n.AutoLinkType == ast.AutoLinkEmail && !bytes.HasPrefix(bytes.ToLower(dest), []byte("mailto:")) {
		dest = append([]byte("mailto:"), dest...)
	}
	r.openAnchor(w, dest, nil)
	_, _ = w.Write(util.EscapeHTML(n.Label(source)))
	_, _ = w.WriteString("</a>")
	return ast.WalkSkipChildren, nil
}

// openAnchor writes an <a> start tag. Dangerous destinations render as an
// empty href.
func (r *previewRenderer) openAnchor(w util.BufWriter, dest, title []byte) {
	_, _ = w.WriteString(`<a href="`)
	if !html.IsDangerousURL(dest) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(dest, true)))
	}
	_ = w.WriteByte('"')
	if len(title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(title))
		_ = w.WriteByte('"')
	}
	if r.isExternal(dest) {
		_, _ = w.WriteString(` target="_blank" rel="noopener noreferrer"`)
	}
	_ = w.WriteByte('>')
}

// isExternal reports whether dest is an absolute http(s) URL on a different
// origin than r.origin.
func (r *previewRenderer) isExternal(dest []byte) bool {
	if r.origin == nil || len(dest) == 0 {
		return false
	}
	u, err := url.Parse(string(dest))
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		// Protocol-relative URL.
		scheme = r.origin.Scheme
	}
	if scheme != "http" && scheme != "https" {
		return false
	}
	return scheme != r.origin.Scheme || !strings.EqualFold(u.Host, r.origin.Host)
}

func (r *previewRenderer) renderBlockquote(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<blockquote class=\"markdown-blockquote\">\n")
	} else {
		_, _ = w.WriteString("</blockquote>\n")
	}
	return ast.WalkContinue, nil
}

func (r *previewRenderer) renderList(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.List)
	if !n.IsOrdered() {
		if entering {
			_, _ = w.WriteString("<ul class=\"unordered-list\">\n")
		} else {
			_, _ = w.WriteString("</ul>\n")
		}
		return ast.WalkContinue, nil
	}

	if entering {
		_, _ = w.WriteString(`<ol class="ordered-list"`)
		if n.Start != 1 {
			_, _ = w.WriteString(` start="` + strconv.Itoa(n.Start) + `"`)
		}
		_, _ = w.WriteString(">\n")
	} else {
		_, _ = w.WriteString("</ol>\n")
	}
	return ast.WalkContinue, nil
}

func (r *previewRenderer) renderTable(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<div class=\"table-container\"><table>\n")
	} else {
		_, _ = w.WriteString("</table></div>\n")
	}
	return ast.WalkContinue, nil
}

// plainText concatenates the literal text below n, ignoring inline markup.
func plainText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.Label(source))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}
