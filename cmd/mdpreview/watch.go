package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alnah/go-mdpreview/internal/fileutil"
	"github.com/alnah/go-mdpreview/internal/logfields"
)

// Server timeouts for the metrics endpoint.
const (
	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
)

// runWatch exports one markdown file to standalone HTML and rebuilds it every
// time the file changes, until interrupted.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseWatchFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 || positional[0] == stdinArg {
		return fmt.Errorf("%w: watch takes exactly one markdown file", ErrNoInput)
	}
	input := positional[0]
	if err := validateMarkdownExtension(input); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	logger := newLogger(env.Stderr, flags.common)
	warnUnknownEnvVars(logger)

	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	mergeMarkdownFlags(&flags.markdown, cfg)
	mergeDocumentFlags(&flags.document, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	extraCSS, err := readCSSFile(flags.document.css)
	if err != nil {
		return err
	}

	var reg *prometheus.Registry
	if flags.metricsAddr != "" {
		reg = prometheus.NewRegistry()
		srv := serveMetrics(flags.metricsAddr, reg, logger)
		defer shutdownServer(srv, logger)
	}

	r, err := newRenderer(cfg, logger, registererOrNil(reg))
	if err != nil {
		return err
	}
	rt := exportRuntime{renderer: r, cfg: cfg, extraCSS: extraCSS, logger: logger}

	output := flags.output
	if output == "" {
		output = fileutil.ReplaceExt(input, ".html")
	}

	rebuild := func() error {
		markdown, err := readMarkdown(input, nil)
		if err != nil {
			return err
		}
		doc, err := rt.exportHTML(markdown, filepath.Dir(input))
		if err != nil {
			return err
		}
		return writeOutput(output, doc, nil)
	}

	if err := rebuild(); err != nil {
		return err
	}
	logger.Info("watching", logfields.Path(input), slog.String("output", output))

	// Editors often save by renaming a temp file over the original, so the
	// directory is watched rather than the file.
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(filepath.Dir(input)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(input), err)
	}

	debounce := resolveDebounce(flags.debounce, cfg.Watch.DebounceMillis)
	return watchLoop(ctx, watcher.Events, watcher.Errors, input, debounce, rebuild, logger)
}

// watchLoop calls rebuild once target has been quiet for debounce after a
// write or create event. It returns when ctx is done or a channel closes.
// Rebuild failures are logged and watching continues.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, target string, debounce time.Duration, rebuild func() error, logger *slog.Logger) error {
	target = filepath.Clean(target)
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("watch stopped")
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !isChangeOf(ev, target) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logfields.Error(err))
		case <-timer.C:
			start := time.Now()
			if err := rebuild(); err != nil {
				logger.Error("rebuild failed", logfields.Path(target), logfields.Error(err))
				continue
			}
			logger.Info("rebuilt", logfields.Path(target), logfields.Since(start))
		}
	}
}

// isChangeOf reports whether ev modified target.
func isChangeOf(ev fsnotify.Event, target string) bool {
	if filepath.Clean(ev.Name) != target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// resolveDebounce picks the rebuild delay.
// Priority: flag > config > 300ms.
func resolveDebounce(flagValue time.Duration, configMillis int) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	if configMillis > 0 {
		return time.Duration(configMillis) * time.Millisecond
	}
	return 300 * time.Millisecond
}

// serveMetrics exposes reg on addr at /metrics in the background.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		logger.Info("metrics listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", logfields.Error(err))
		}
	}()
	return srv
}

func shutdownServer(srv *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", logfields.Error(err))
	}
}

// registererOrNil avoids handing a typed nil registry to the renderer.
func registererOrNil(reg *prometheus.Registry) prometheus.Registerer {
	if reg == nil {
		return nil
	}
	return reg
}
