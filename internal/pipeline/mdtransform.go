package pipeline

import (
	"regexp"
	"strings"
)

// crlfOrCR matches Windows and classic Mac line endings.
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// byteOrderMark is stripped from the start of pasted or imported text.
const byteOrderMark = "\uFEFF"

// normalizeMarkdown prepares raw editor text for the parser: it drops a
// leading byte order mark and converts \r\n and \r to \n.
func normalizeMarkdown(content string) string {
	content = strings.TrimPrefix(content, byteOrderMark)
	if !strings.ContainsRune(content, '\r') {
		return content
	}
	return crlfOrCR.ReplaceAllString(content, "\n")
}
