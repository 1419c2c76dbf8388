package mdpreview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdpreview/internal/fileutil"
	"github.com/alnah/go-mdpreview/internal/logfields"
	"github.com/alnah/go-mdpreview/internal/process"
)

// pdfRenderer abstracts PDF rendering from an HTML file to enable testing
// without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string) ([]byte, error)
	Close() error
}

// Compile-time interface check
var _ pdfRenderer = (*rodRenderer)(nil)

// PDF page dimensions in inches (US Letter format).
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.5
)

// DefaultPDFTimeout bounds page loading when the context has no deadline.
const DefaultPDFTimeout = 30 * time.Second

// PDFExporter converts standalone HTML documents to PDF with headless Chrome.
// The browser starts on first use; set ROD_BROWSER_BIN to use a pre-installed
// one. Call Close to stop it. Safe for concurrent use.
type PDFExporter struct {
	renderer pdfRenderer
}

// PDFOption configures a PDFExporter.
type PDFOption func(*pdfConfig)

type pdfConfig struct {
	timeout time.Duration
	logger  *slog.Logger
}

// WithPDFTimeout sets the page load timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithPDFTimeout(d time.Duration) PDFOption {
	if d <= 0 {
		panic("mdpreview: WithPDFTimeout duration must be positive")
	}
	return func(c *pdfConfig) {
		c.timeout = d
	}
}

// WithPDFLogger sets the logger for browser lifecycle diagnostics.
func WithPDFLogger(logger *slog.Logger) PDFOption {
	return func(c *pdfConfig) {
		c.logger = logger
	}
}

// NewPDFExporter creates a PDFExporter. No browser is started until the
// first conversion.
func NewPDFExporter(opts ...PDFOption) *PDFExporter {
	cfg := pdfConfig{timeout: DefaultPDFTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return &PDFExporter{renderer: newRodRenderer(cfg.timeout, cfg.logger)}
}

// ToPDF renders htmlContent to PDF bytes (US Letter, 0.5 inch margins).
// The document is loaded from a temporary file so file:// image URLs resolve.
func (e *PDFExporter) ToPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return e.renderer.RenderFromFile(ctx, tmpPath)
}

// Close stops the browser, if one was started.
func (e *PDFExporter) Close() error {
	return e.renderer.Close()
}

// rodRenderer implements pdfRenderer using go-rod.
// Rod downloads Chromium on first run if no browser is found.
type rodRenderer struct {
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newRodRenderer(timeout time.Duration, logger *slog.Logger) *rodRenderer {
	return &rodRenderer{timeout: timeout, logger: logger}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()

	// Pre-installed browser (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.logger.Debug("browser started", slog.Int("pid", l.PID()))
	r.launcher = l
	r.browser = browser
	return browser, nil
}

// Close releases browser resources. The browser process group is killed after
// the CDP close so helper processes do not outlive it.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		if pid := r.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		r.launcher.Kill()
		r.launcher = nil
	}
	if err != nil {
		r.logger.Debug("browser close failed", logfields.Error(err))
	}
	return err
}

// RenderFromFile opens a local HTML file in headless Chrome and renders it to
// PDF. Returns explicit errors instead of panicking when browser operations fail.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string) ([]byte, error) {
	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.Context(ctx).PDF(buildPDFOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return pdf, nil
}

// buildPDFOptions returns US Letter print settings with backgrounds, so code
// block and table shading survive.
func buildPDFOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
