package pipeline

import (
	"regexp"
	"strings"
)

// DefaultWordsPerMinute is the reading speed used when none is configured.
const DefaultWordsPerMinute = 200

// Heading is a heading line found in raw markdown.
type Heading struct {
	Level int
	Text  string
	ID    string
}

// Metadata summarizes raw markdown text.
type Metadata struct {
	Headings    []Heading
	WordCount   int
	ReadingTime int
	HasContent  bool
}

// headingLine matches ATX headings anywhere in the text, including inside
// fenced code blocks. The whitespace after the markers may span a line break.
var headingLine = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

// Word count stripping patterns, applied in the order listed by stripSteps.
var (
	headingMarker    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	boldStars        = regexp.MustCompile(`\*\*(.+?)\*\*`)
	boldUnderscores  = regexp.MustCompile(`__(.+?)__`)
	italicStar       = regexp.MustCompile(`\*(.+?)\*`)
	italicUnderscore = regexp.MustCompile(`_(.+?)_`)
	fencedBackticks  = regexp.MustCompile("(?s)```.*?```")
	fencedTildes     = regexp.MustCompile(`(?s)~~~.*?~~~`)
	inlineCode       = regexp.MustCompile("`([^`\n]*)`")
	imageSyntax      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkSyntax       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	blockquoteMarker = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	unorderedMarker  = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	orderedMarker    = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`)
)

type stripStep struct {
	pattern *regexp.Regexp
	repl    string
}

// stripSteps removes markdown markup before words are counted. Links run
// before images, so an image keeps its alt text behind a "!".
var stripSteps = []stripStep{
	{headingMarker, ""},
	{boldStars, "$1"},
	{boldUnderscores, "$1"},
	{italicStar, "$1"},
	{italicUnderscore, "$1"},
	{fencedBackticks, ""},
	{fencedTildes, ""},
	{inlineCode, "$1"},
	{linkSyntax, "$1"},
	{imageSyntax, ""},
	{blockquoteMarker, ""},
	{unorderedMarker, ""},
	{orderedMarker, ""},
}

// ExtractHeadings returns the ATX headings of markdown in document order.
// Heading text is not parsed for inline markup and ids are not deduplicated.
func ExtractHeadings(markdown string) []Heading {
	matches := headingLine.FindAllStringSubmatch(normalizeMarkdown(markdown), -1)
	headings := make([]Heading, 0, len(matches))
	for _, m := range matches {
		text := strings.TrimSpace(m[2])
		headings = append(headings, Heading{
			Level: len(m[1]),
			Text:  text,
			ID:    Slugify(text),
		})
	}
	return headings
}

// CountWords counts whitespace-separated tokens left after stripping markdown
// markup. Punctuation-only tokens count as words.
func CountWords(markdown string) int {
	text := normalizeMarkdown(markdown)
	for _, step := range stripSteps {
		text = step.pattern.ReplaceAllString(text, step.repl)
	}
	return len(strings.Fields(text))
}

// EstimateReadingTime returns ceil(wordCount / wordsPerMinute) in minutes.
// A non-positive wordsPerMinute uses DefaultWordsPerMinute.
func EstimateReadingTime(wordCount, wordsPerMinute int) int {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	if wordCount <= 0 {
		return 0
	}
	return (wordCount + wordsPerMinute - 1) / wordsPerMinute
}

// ExtractMetadata computes headings, word count and reading time for markdown.
func ExtractMetadata(markdown string, wordsPerMinute int) Metadata {
	words := CountWords(markdown)
	return Metadata{
		Headings:    ExtractHeadings(markdown),
		WordCount:   words,
		ReadingTime: EstimateReadingTime(words, wordsPerMinute),
		HasContent:  strings.TrimSpace(markdown) != "",
	}
}
