// Package pipeline implements the markdown preview conversion pipeline.
//
// Stages, leaf first:
//   - Syntax highlighting of code blocks via chroma
//   - Render rules overriding goldmark's HTML for headings, code, links,
//     tables, blockquotes and lists
//   - Markdown to HTML conversion with a fresh goldmark engine per call
//   - Allow-list sanitization via bluemonday
//   - Metadata extraction (headings, word count, reading time) from raw text
//
// It also builds the pieces of a standalone export: numbered outlines,
// document assembly with CSS injection, and local image path resolution.
package pipeline
