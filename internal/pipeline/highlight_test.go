package pipeline

import (
	"bytes"
	"errors"
	"html"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNormalizeLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"js", "javascript"},
		{"ts", "typescript"},
		{"py", "python"},
		{"sh", "bash"},
		{"shell", "bash"},
		{"yml", "yaml"},
		{"md", "markdown"},
		{"cs", "csharp"},
		{"JS", "javascript"},
		{"  py  ", "python"},
		{"go", "go"},
		{"brainfuck-v2", "brainfuck-v2"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeLanguage(tt.input); got != tt.expected {
				t.Errorf("NormalizeLanguage(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestHighlighter_KnownLanguage(t *testing.T) {
	t.Parallel()

	h := NewHighlighter()
	got := h.Highlight("package main\n\nfunc main() {}\n", "go")

	if !strings.Contains(got, `<span class="`) {
		t.Errorf("expected classed spans, got %q", got)
	}
	if strings.Contains(got, "<pre") {
		t.Errorf("expected no surrounding <pre>, got %q", got)
	}
	if !strings.Contains(got, "main") {
		t.Errorf("expected source text preserved, got %q", got)
	}
}

func TestHighlighter_AliasResolvesLexer(t *testing.T) {
	t.Parallel()

	var fallbacks atomic.Int32
	h := NewHighlighter(WithFallbackHook(func(string) { fallbacks.Add(1) }))

	got := h.Highlight("const x = 1;", "js")
	if !strings.Contains(got, `<span class="`) {
		t.Errorf("expected js alias to highlight, got %q", got)
	}
	if n := fallbacks.Load(); n != 0 {
		t.Errorf("fallbacks = %d, want 0", n)
	}
}

func TestHighlighter_UnknownLanguageEscapes(t *testing.T) {
	t.Parallel()

	code := `<script>alert("x") & 'y'</script>`

	var gotLang string
	h := NewHighlighter(WithFallbackHook(func(lang string) { gotLang = lang }))
	got := h.Highlight(code, "brainfuck-v2")

	if want := html.EscapeString(code); got != want {
		t.Errorf("Highlight() = %q, want %q", got, want)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("output contains unescaped markup: %q", got)
	}
	if gotLang != "brainfuck-v2" {
		t.Errorf("fallback lang = %q, want %q", gotLang, "brainfuck-v2")
	}
}

func TestHighlighter_EmptyLanguageEscapes(t *testing.T) {
	t.Parallel()

	h := NewHighlighter()
	if got, want := h.Highlight("a < b", ""), "a &lt; b"; got != want {
		t.Errorf("Highlight() = %q, want %q", got, want)
	}
}

func TestHighlighter_CachesLexers(t *testing.T) {
	t.Parallel()

	h := NewHighlighter()
	h.Highlight("x", "python")
	h.Highlight("y", "py")
	h.Highlight("z", "nope-lang")

	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.lexers) != 2 {
		t.Errorf("cached lexers = %d, want 2", len(h.lexers))
	}
	if h.lexers["nope-lang"] != nil {
		t.Error("expected miss to be cached as nil")
	}
}

func TestHighlighter_Concurrent(t *testing.T) {
	t.Parallel()

	h := NewHighlighter()
	want := h.Highlight("print('hi')", "python")

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := h.Highlight("print('hi')", "py"); got != want {
				t.Errorf("concurrent Highlight() = %q, want %q", got, want)
			}
		}()
	}
	wg.Wait()
}

func TestSafeHighlight(t *testing.T) {
	t.Parallel()

	panicky := SafeHighlight(func(code, lang string) string { panic("boom") })
	if got, want := panicky("<b>", "go"), "&lt;b&gt;"; got != want {
		t.Errorf("SafeHighlight(panic) = %q, want %q", got, want)
	}

	passthrough := SafeHighlight(func(code, lang string) string { return lang + ":" + code })
	if got, want := passthrough("x", "go"), "go:x"; got != want {
		t.Errorf("SafeHighlight() = %q, want %q", got, want)
	}
}

func TestWriteHighlightCSS(t *testing.T) {
	t.Parallel()

	t.Run("known style", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := WriteHighlightCSS(&buf, "github"); err != nil {
			t.Fatalf("WriteHighlightCSS() error = %v", err)
		}
		if !strings.Contains(buf.String(), ".chroma") {
			t.Errorf("expected .chroma rules, got %q", buf.String())
		}
	})

	t.Run("unknown style", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := WriteHighlightCSS(&buf, "no-such-style")
		if !errors.Is(err, ErrUnknownStyle) {
			t.Errorf("error = %v, want ErrUnknownStyle", err)
		}
	})
}
