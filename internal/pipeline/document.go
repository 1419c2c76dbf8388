package pipeline

import (
	"fmt"
	"html"
	"strings"
)

// documentTemplate wraps a preview fragment in a standalone HTML5 document.
const documentTemplate = `<!DOCTYPE html>
<html lang="%s">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body>
<article class="markdown-preview">
%s%s</article>
</body>
</html>`

// Default document fields.
const (
	DefaultDocumentTitle = "Document"
	DefaultDocumentLang  = "en"
)

// Document describes a standalone HTML export.
type Document struct {
	Title string // escaped; defaults to DefaultDocumentTitle
	Lang  string // escaped; defaults to DefaultDocumentLang
	TOC   string // trusted outline markup placed before the body
	Body  string // trusted preview markup
	CSS   string // stylesheet embedded in <head>
}

// BuildDocument assembles a standalone HTML5 document.
func BuildDocument(d Document) string {
	title := d.Title
	if strings.TrimSpace(title) == "" {
		title = DefaultDocumentTitle
	}
	lang := d.Lang
	if strings.TrimSpace(lang) == "" {
		lang = DefaultDocumentLang
	}

	toc := d.TOC
	if toc != "" {
		toc += "\n"
	}

	doc := fmt.Sprintf(documentTemplate,
		html.EscapeString(lang), html.EscapeString(title), toc, d.Body)
	return InjectCSS(doc, d.CSS)
}

// InjectCSS inserts a <style> block into htmlContent.
// Tries </head> first, then <body>, then prepends.
func InjectCSS(htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes "</" so the stylesheet cannot close its <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
