package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdpreview/internal/config"
)

// envPrefix marks the environment variables read by mdpreview.
const envPrefix = "MDPREVIEW_"

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MDPREVIEW_CONFIG: config file name or path
	Style      string        // MDPREVIEW_STYLE: export style name or path
	Origin     string        // MDPREVIEW_ORIGIN: page origin for external links
	Timeout    time.Duration // MDPREVIEW_TIMEOUT: PDF export timeout
	Workers    int           // MDPREVIEW_WORKERS: parallel render workers
}

// knownEnvVars lists valid MDPREVIEW_* environment variables.
var knownEnvVars = map[string]bool{
	"MDPREVIEW_CONFIG":  true,
	"MDPREVIEW_STYLE":   true,
	"MDPREVIEW_ORIGIN":  true,
	"MDPREVIEW_TIMEOUT": true,
	"MDPREVIEW_WORKERS": true,

	"MDPREVIEW_CONTAINER": true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numeric and duration values are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MDPREVIEW_CONFIG"),
		Style:      os.Getenv("MDPREVIEW_STYLE"),
		Origin:     os.Getenv("MDPREVIEW_ORIGIN"),
	}

	if timeout := os.Getenv("MDPREVIEW_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("MDPREVIEW_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs unrecognized MDPREVIEW_* variables, which are
// usually typos.
func warnUnknownEnvVars(logger *slog.Logger) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			logger.Warn("unknown environment variable (typo?)", slog.String("name", name))
		}
	}
}

// applyEnvConfig fills config values the file left empty.
// Precedence: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Style != "" && cfg.Export.Style == "" {
		cfg.Export.Style = env.Style
	}
	if env.Origin != "" && cfg.Markdown.Origin == "" {
		cfg.Markdown.Origin = env.Origin
	}
}
