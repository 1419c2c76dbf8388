package mdpreview

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// mockRenderer implements pdfRenderer for testing.
type mockRenderer struct {
	result     []byte
	err        error
	calledWith string
	content    string
	closed     bool
}

func (m *mockRenderer) RenderFromFile(_ context.Context, filePath string) ([]byte, error) {
	m.calledWith = filePath
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	m.content = string(data)
	return m.result, m.err
}

func (m *mockRenderer) Close() error {
	m.closed = true
	return nil
}

func TestPDFExporter_ToPDF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mock    *mockRenderer
		want    string
		wantErr error
	}{
		{
			name: "returns rendered bytes",
			mock: &mockRenderer{result: []byte("%PDF-1.4 fake")},
			want: "%PDF-1.4 fake",
		},
		{
			name:    "renderer error propagates",
			mock:    &mockRenderer{err: ErrPageLoad},
			wantErr: ErrPageLoad,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := &PDFExporter{renderer: tt.mock}
			got, err := e.ToPDF(context.Background(), "<html><body>Test</body></html>")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ToPDF() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToPDF() unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ToPDF() = %q, want %q", got, tt.want)
			}
			if tt.mock.content != "<html><body>Test</body></html>" {
				t.Errorf("renderer read %q, want the document", tt.mock.content)
			}
		})
	}
}

func TestPDFExporter_ToPDF_RemovesTempFile(t *testing.T) {
	t.Parallel()

	mock := &mockRenderer{result: []byte("%PDF")}
	e := &PDFExporter{renderer: mock}
	if _, err := e.ToPDF(context.Background(), "<p>x</p>"); err != nil {
		t.Fatalf("ToPDF() error = %v", err)
	}
	if mock.calledWith == "" {
		t.Fatal("renderer not called")
	}
	if _, err := os.Stat(mock.calledWith); !os.IsNotExist(err) {
		t.Errorf("temp file %s still exists", mock.calledWith)
	}
}

func TestPDFExporter_ToPDF_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &mockRenderer{}
	e := &PDFExporter{renderer: mock}
	if _, err := e.ToPDF(ctx, "<p>x</p>"); !errors.Is(err, context.Canceled) {
		t.Errorf("ToPDF() error = %v, want context.Canceled", err)
	}
	if mock.calledWith != "" {
		t.Error("renderer called with canceled context")
	}
}

func TestPDFExporter_Close(t *testing.T) {
	t.Parallel()

	mock := &mockRenderer{}
	e := &PDFExporter{renderer: mock}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !mock.closed {
		t.Error("Close() did not close the renderer")
	}
}

func TestNewPDFExporter_LazyBrowser(t *testing.T) {
	t.Parallel()

	e := NewPDFExporter(WithPDFTimeout(5 * time.Second))
	rr, ok := e.renderer.(*rodRenderer)
	if !ok {
		t.Fatalf("renderer = %T, want *rodRenderer", e.renderer)
	}
	if rr.browser != nil || rr.launcher != nil {
		t.Error("browser started before first conversion")
	}
	if rr.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", rr.timeout)
	}
	// Closing an exporter that never started a browser is a no-op.
	if err := e.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestBuildPDFOptions(t *testing.T) {
	t.Parallel()

	opts := buildPDFOptions()
	if *opts.PaperWidth != paperWidthInches || *opts.PaperHeight != paperHeightInches {
		t.Errorf("paper = %vx%v, want %vx%v", *opts.PaperWidth, *opts.PaperHeight, paperWidthInches, paperHeightInches)
	}
	for name, v := range map[string]*float64{
		"top": opts.MarginTop, "bottom": opts.MarginBottom,
		"left": opts.MarginLeft, "right": opts.MarginRight,
	} {
		if *v != marginInches {
			t.Errorf("margin %s = %v, want %v", name, *v, marginInches)
		}
	}
	if !opts.PrintBackground {
		t.Error("PrintBackground = false, want true")
	}
}
