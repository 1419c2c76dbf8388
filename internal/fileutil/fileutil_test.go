package fileutil_test

// Notes:
// - TestWriteTempFile_CreateTempError modifies TMPDIR and cannot run in
//   parallel with other tests.
// - The WriteString and Close error branches of WriteTempFile are not tested:
//   triggering disk write failures is platform-specific.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mdpreview/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateExtension - Extension validation
// ---------------------------------------------------------------------------

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{name: "html", extension: "html"},
		{name: "md", extension: "md"},
		{name: "empty", extension: "", wantErr: fileutil.ErrExtensionEmpty},
		{name: "forward slash", extension: "../etc/passwd", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "backslash", extension: `..\windows`, wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "null byte", extension: "html\x00exe", wantErr: fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fileutil.ValidateExtension(tt.extension)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteTempFile - Temporary file creation and cleanup
// ---------------------------------------------------------------------------

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	path, cleanup, err := fileutil.WriteTempFile("<p>hi</p>", "html")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}

	if !strings.HasPrefix(filepath.Base(path), "mdpreview-") {
		t.Errorf("WriteTempFile() path = %q, want mdpreview- prefix", path)
	}
	if filepath.Ext(path) != ".html" {
		t.Errorf("WriteTempFile() extension = %q, want .html", filepath.Ext(path))
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "<p>hi</p>" {
		t.Errorf("content = %q, want %q", got, "<p>hi</p>")
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp file still exists after cleanup at %s", path)
	}
}

func TestWriteTempFile_InvalidExtension(t *testing.T) {
	t.Parallel()

	_, cleanup, err := fileutil.WriteTempFile("content", "../foo")
	if cleanup != nil {
		t.Error("WriteTempFile() returned cleanup on error")
	}
	if !errors.Is(err, fileutil.ErrExtensionPathTraversal) {
		t.Errorf("WriteTempFile() error = %v, want ErrExtensionPathTraversal", err)
	}
}

// NOTE: This test modifies TMPDIR and cannot run in parallel.
func TestWriteTempFile_CreateTempError(t *testing.T) {
	t.Setenv("TMPDIR", "/nonexistent/path/that/does/not/exist")

	_, cleanup, err := fileutil.WriteTempFile("content", "md")
	if cleanup != nil {
		defer cleanup()
	}
	if err == nil {
		t.Fatal("WriteTempFile() expected error when TMPDIR is invalid, got nil")
	}
	if !strings.Contains(err.Error(), "creating temp file") {
		t.Errorf("WriteTempFile() error = %q, want error containing 'creating temp file'", err.Error())
	}
}

// ---------------------------------------------------------------------------
// TestFileExists - Regular file detection
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(file, []byte("# Doc"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"existing file", file, true},
		{"directory", dir, false},
		{"missing", filepath.Join(dir, "missing.md"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestStyleInputClassification - Name, path or inline CSS
// ---------------------------------------------------------------------------

func TestStyleInputClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		wantPath bool
		wantCSS  bool
	}{
		{"preview", false, false},
		{"my-style", false, false},
		{"./custom.css", true, false},
		{"/abs/style.css", true, false},
		{`C:\styles\a.css`, true, false},
		{"body { color: red; }", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.IsFilePath(tt.input); got != tt.wantPath {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.wantPath)
			}
			if got := fileutil.IsCSS(tt.input); got != tt.wantCSS {
				t.Errorf("IsCSS(%q) = %v, want %v", tt.input, got, tt.wantCSS)
			}
		})
	}
}

func TestIsMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"README.md", true},
		{"notes.MARKDOWN", true},
		{"dir/doc.Md", true},
		{"doc.txt", false},
		{"md", false},
		{"archive.md.bak", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.IsMarkdown(tt.path); got != tt.want {
				t.Errorf("IsMarkdown(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestReplaceExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path, ext, want string
	}{
		{"doc.md", ".html", "doc.html"},
		{"dir/notes.markdown", ".pdf", "dir/notes.pdf"},
		{"noext", ".html", "noext.html"},
	}

	for _, tt := range tests {
		if got := fileutil.ReplaceExt(tt.path, tt.ext); got != tt.want {
			t.Errorf("ReplaceExt(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}
