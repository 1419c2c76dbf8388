package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
)

// eventHandlerAttr matches an on* attribute inside a tag.
var eventHandlerAttr = regexp.MustCompile(`(?i)<[^>]*\son[a-z]+\s*=`)

func sanitizedOptions() RenderOptions {
	return RenderOptions{Breaks: true, GFM: true, Sanitize: true}
}

func TestMarkdownConverter_Placeholder(t *testing.T) {
	t.Parallel()

	c := NewMarkdownConverter(nil, NewSanitizer(), nil)

	inputs := []string{"", "   ", "\n\t \r\n"}
	opts := []RenderOptions{sanitizedOptions(), {}, {Sanitize: false, GFM: true}}

	for _, in := range inputs {
		for _, o := range opts {
			t.Run(fmt.Sprintf("%q/%+v", in, o.Sanitize), func(t *testing.T) {
				t.Parallel()

				res := c.Convert(in, o)
				if res.HTML != PlaceholderHTML {
					t.Errorf("Convert(%q) = %q, want placeholder", in, res.HTML)
				}
				if res.Err != nil {
					t.Errorf("Convert(%q) error = %v", in, res.Err)
				}
			})
		}
	}
}

func TestMarkdownConverter_RejectsScripting(t *testing.T) {
	t.Parallel()

	c := NewMarkdownConverter(nil, NewSanitizer(), nil)

	inputs := []string{
		"<script>alert(1)</script>",
		"Hello <script>alert(1)</script> world",
		"<img src=x onerror=alert(1)>",
		`<div onclick="steal()">click</div>`,
		"[x](javascript:alert(1))",
		`<a href="javascript:alert(1)">y</a>`,
		`<a href="JaVaScRiPt:alert(1)">y</a>`,
		`<svg onload=alert(1)><circle/></svg>`,
		"<iframe src=\"https://evil.example\"></iframe>",
		"```html\n<script>alert(1)</script>\n```",
		"<style>body{display:none}</style>text",
		`<p style="background:url(javascript:alert(1))">styled</p>`,
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			t.Parallel()

			res := c.Convert(in, sanitizedOptions())
			if !res.Sanitized {
				t.Fatalf("Sanitized = false for %q", in)
			}
			lower := strings.ToLower(res.HTML)
			if strings.Contains(lower, "<script") {
				t.Errorf("output contains <script: %q", res.HTML)
			}
			if eventHandlerAttr.MatchString(res.HTML) {
				t.Errorf("output contains on* attribute: %q", res.HTML)
			}
			if strings.Contains(lower, "javascript:") {
				t.Errorf("output contains javascript: URL: %q", res.HTML)
			}
			if strings.Contains(lower, "<iframe") || strings.Contains(lower, "<style") {
				t.Errorf("output contains disallowed element: %q", res.HTML)
			}
		})
	}
}

func TestMarkdownConverter_SanitizeDisabledKeepsRawHTML(t *testing.T) {
	t.Parallel()

	c := NewMarkdownConverter(nil, NewSanitizer(), nil)
	res := c.Convert("<script>alert(1)</script>", RenderOptions{Sanitize: false})

	if res.Sanitized {
		t.Error("Sanitized = true, want false")
	}
	if !strings.Contains(res.HTML, "<script>alert(1)</script>") {
		t.Errorf("expected raw HTML kept, got %q", res.HTML)
	}
}

func TestMarkdownConverter_SanitizerUnavailable(t *testing.T) {
	t.Parallel()

	c := NewMarkdownConverter(nil, nil, nil)
	if c.SanitizerAvailable() {
		t.Fatal("SanitizerAvailable() = true, want false")
	}

	res := c.Convert("<script>alert(1)</script>", sanitizedOptions())
	if !errors.Is(res.Err, ErrSanitizerUnavailable) {
		t.Errorf("error = %v, want ErrSanitizerUnavailable", res.Err)
	}
	if res.Sanitized {
		t.Error("Sanitized = true, want false")
	}
	if want := ErrorHTML(ErrSanitizerUnavailable); res.HTML != want {
		t.Errorf("HTML = %q, want %q", res.HTML, want)
	}

	// Unsanitized output can still be requested explicitly.
	raw := c.Convert("# Title", RenderOptions{})
	if raw.Err != nil || !strings.Contains(raw.HTML, "<h1") {
		t.Errorf("Convert(sanitize=false) = %+v", raw)
	}
}

func TestMarkdownConverter_HighlightOverride(t *testing.T) {
	t.Parallel()

	c := NewMarkdownConverter(nil, NewSanitizer(), nil)
	opts := sanitizedOptions()
	opts.Highlight = func(code, lang string) string {
		return `<span class="custom">` + strings.ToUpper(strings.TrimSpace(code)) + `</span>`
	}

	res := c.Convert("```py\nprint(1)\n```", opts)
	if !strings.Contains(res.HTML, `<span class="custom">PRINT(1)</span>`) {
		t.Errorf("expected override output, got %q", res.HTML)
	}
	if !strings.Contains(res.HTML, `<code class="language-py">`) {
		t.Errorf("expected language class, got %q", res.HTML)
	}
}

func TestMarkdownConverter_HighlightOverridePanics(t *testing.T) {
	t.Parallel()

	c := NewMarkdownConverter(nil, NewSanitizer(), nil)
	opts := sanitizedOptions()
	opts.Highlight = func(code, lang string) string { panic("bad highlighter") }

	res := c.Convert("```go\na < b\n```", opts)
	if res.Err != nil {
		t.Fatalf("error = %v, want nil", res.Err)
	}
	if !strings.Contains(res.HTML, "a &lt; b") {
		t.Errorf("expected escaped fallback, got %q", res.HTML)
	}
}

func TestMarkdownConverter_DefaultHighlighting(t *testing.T) {
	t.Parallel()

	c := NewMarkdownConverter(nil, NewSanitizer(), nil)
	res := c.Convert("```go\npackage main\n```", sanitizedOptions())

	if !strings.Contains(res.HTML, `<div class="code-block">`) {
		t.Errorf("expected code block wrapper, got %q", res.HTML)
	}
	if !strings.Contains(res.HTML, `<span class="`) {
		t.Errorf("expected highlighted spans to survive sanitizing, got %q", res.HTML)
	}
}

func TestMarkdownConverter_NormalizesLineEndings(t *testing.T) {
	t.Parallel()

	c := NewMarkdownConverter(nil, NewSanitizer(), nil)
	crlf := c.Convert("# Title\r\n\r\nBody\r\n", sanitizedOptions())
	lf := c.Convert("# Title\n\nBody\n", sanitizedOptions())

	if crlf.HTML != lf.HTML {
		t.Errorf("CRLF output %q differs from LF output %q", crlf.HTML, lf.HTML)
	}
}

func TestMarkdownConverter_Deterministic(t *testing.T) {
	t.Parallel()

	c := NewMarkdownConverter(nil, NewSanitizer(), nil)
	input := "# Title\n\nSome *text* with `code`.\n\n```js\nconst a = 1;\n```\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"
	want := c.Convert(input, sanitizedOptions()).HTML

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := c.Convert(input, sanitizedOptions()).HTML; got != want {
				t.Errorf("concurrent Convert() differs:\n%q\nwant\n%q", got, want)
			}
		}()
	}
	wg.Wait()
}

func TestMarkdownConverter_ConcurrentOptionsIsolated(t *testing.T) {
	t.Parallel()

	c := NewMarkdownConverter(nil, NewSanitizer(), nil)
	input := "line one\nline two\n\n~~struck~~"

	withBreaks := RenderOptions{Breaks: true, GFM: true, Sanitize: true}
	withoutBreaks := RenderOptions{Breaks: false, GFM: false, Sanitize: true}

	var wg sync.WaitGroup
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				got := c.Convert(input, withBreaks).HTML
				if !strings.Contains(got, "<br") || !strings.Contains(got, "<del>") {
					t.Errorf("breaks+gfm render lost its options: %q", got)
				}
				return
			}
			got := c.Convert(input, withoutBreaks).HTML
			if strings.Contains(got, "<br") || strings.Contains(got, "<del>") {
				t.Errorf("plain render picked up other options: %q", got)
			}
		}()
	}
	wg.Wait()
}

func TestErrorHTML(t *testing.T) {
	t.Parallel()

	got := ErrorHTML(errors.New(`bad <input> & "quotes"`))
	want := `<p class="render-error">Error rendering markdown: bad &lt;input&gt; &amp; &#34;quotes&#34;</p>`
	if got != want {
		t.Errorf("ErrorHTML() = %q, want %q", got, want)
	}
}

func TestValidOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		origin string
		valid  bool
	}{
		{"", true},
		{"https://editor.example", true},
		{"http://localhost:8080", true},
		{"https://editor.example/some/path", true},
		{"editor.example", false},
		{"ftp://editor.example", false},
		{"/relative", false},
		{"://bad", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			t.Parallel()

			if got := ValidOrigin(tt.origin); got != tt.valid {
				t.Errorf("ValidOrigin(%q) = %v, want %v", tt.origin, got, tt.valid)
			}
		})
	}
}
