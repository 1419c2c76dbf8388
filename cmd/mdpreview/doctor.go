package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	mdpreview "github.com/alnah/go-mdpreview"
	"github.com/alnah/go-mdpreview/internal/hints"
)

// formatText is the human-readable doctor output.
const formatText = "text"

// Doctor status values.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// ErrNotReady is returned by doctor when a check fails.
var ErrNotReady = errors.New("environment not ready")

// Replaced in tests.
var (
	lookBrowser    = launcher.LookPath
	browserVersion = func(path string) (string, error) {
		out, err := exec.Command(path, "--version").Output() // #nosec G204 -- browser path from ROD_BROWSER_BIN or PATH lookup
		return strings.TrimSpace(string(out)), err
	}
)

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common commonFlags
	format string
}

// doctorReport holds all diagnostic information.
type doctorReport struct {
	Status   string      `json:"status" yaml:"status"`
	Browser  browserInfo `json:"browser" yaml:"browser"`
	Env      envInfo     `json:"environment" yaml:"environment"`
	Config   configInfo  `json:"config" yaml:"config"`
	System   systemInfo  `json:"system" yaml:"system"`
	Warnings []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// browserInfo holds Chrome/Chromium detection results. A missing browser
// only disables PDF export.
type browserInfo struct {
	Found   bool   `json:"found" yaml:"found"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Sandbox bool   `json:"sandbox" yaml:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string   `json:"os" yaml:"os"`
	Arch          string   `json:"arch" yaml:"arch"`
	Container     bool     `json:"container" yaml:"container"`
	ContainerHint string   `json:"containerHint,omitempty" yaml:"containerHint,omitempty"`
	CI            bool     `json:"ci" yaml:"ci"`
	NoSandbox     string   `json:"rodNoSandbox" yaml:"rodNoSandbox"`
	BrowserBin    string   `json:"rodBrowserBin" yaml:"rodBrowserBin"`
	UnknownVars   []string `json:"unknownVars,omitempty" yaml:"unknownVars,omitempty"`
}

// configInfo reports which configuration the other commands would use.
type configInfo struct {
	Source string   `json:"source" yaml:"source"` // flag, env or defaults
	Name   string   `json:"name,omitempty" yaml:"name,omitempty"`
	Valid  bool     `json:"valid" yaml:"valid"`
	Styles []string `json:"styles" yaml:"styles"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"tempWritable" yaml:"tempWritable"`
	MaxProcs     int  `json:"maxProcs" yaml:"maxProcs"`
}

func buildDoctorFlagSet(f *doctorFlags, stderr io.Writer) *flag.FlagSet {
	fs := newFlagSet("doctor", printDoctorUsage, stderr)
	fs.StringVarP(&f.format, "format", "f", formatText, "output format: text, json, yaml")
	addCommonFlags(fs, &f.common)
	return fs
}

func parseDoctorFlags(args []string, stderr io.Writer) (*doctorFlags, error) {
	f := &doctorFlags{}
	fs := buildDoctorFlagSet(f, stderr)
	if err := parseFlagSet(fs, args); err != nil {
		return nil, err
	}
	switch f.format {
	case formatText, formatJSON, formatYAML:
	default:
		return nil, fmt.Errorf("%w: %q (want text, json or yaml)", ErrInvalidFormat, f.format)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: doctor takes no arguments", ErrUsage)
	}
	return f, nil
}

// runDoctor checks that exports can run here and prints a report. It fails
// with ErrNotReady when a check reports an error; warnings still pass.
func runDoctor(_ context.Context, args []string, env *Environment) error {
	flags, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	report := diagnose(flags.common.config, loadEnvConfig())

	if flags.format == formatText {
		printDoctorReport(env.Stdout, report)
	} else {
		out, err := encodeReport(report, flags.format)
		if err != nil {
			return err
		}
		if err := writeOutput("", out, env.Stdout); err != nil {
			return err
		}
	}

	if report.Status == statusErrors {
		return fmt.Errorf("%w: %s", ErrNotReady, strings.Join(report.Errors, "; "))
	}
	return nil
}

// diagnose performs all checks.
func diagnose(configFlag string, envCfg *envConfig) *doctorReport {
	report := &doctorReport{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
		System: systemInfo{MaxProcs: runtime.GOMAXPROCS(0)},
	}

	checkBrowser(report)
	checkEnvironment(report)
	checkConfig(report, configFlag, envCfg)
	checkSystem(report)

	switch {
	case len(report.Errors) > 0:
		report.Status = statusErrors
	case len(report.Warnings) > 0:
		report.Status = statusWarnings
	}
	return report
}

// checkBrowser locates Chrome/Chromium the way the PDF exporter does.
func checkBrowser(report *doctorReport) {
	path := report.Env.BrowserBin
	if path == "" {
		var found bool
		path, found = lookBrowser()
		if !found {
			report.Warnings = append(report.Warnings,
				"Chrome/Chromium not found: PDF export unavailable (install Chrome or set ROD_BROWSER_BIN)")
			return
		}
	}

	if _, err := os.Stat(path); err != nil {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("browser not found at %s: PDF export unavailable", path))
		return
	}

	report.Browser.Found = true
	report.Browser.Path = path
	report.Browser.Sandbox = report.Env.NoSandbox != "1"

	version, err := browserVersion(path)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("could not get browser version: %v", err))
		return
	}
	report.Browser.Version = version
}

// checkEnvironment detects containers, CI and misspelled MDPREVIEW_* variables.
func checkEnvironment(report *doctorReport) {
	report.Env.Container, report.Env.ContainerHint = isContainer()

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(v) != "" {
			report.Env.CI = true
			break
		}
	}

	if (report.Env.Container || report.Env.CI) && report.Env.NoSandbox != "1" {
		report.Warnings = append(report.Warnings,
			"container/CI detected but ROD_NO_SANDBOX not set: set ROD_NO_SANDBOX=1 for PDF export")
	}

	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, envPrefix) && !knownEnvVars[name] {
			report.Env.UnknownVars = append(report.Env.UnknownVars, name)
			report.Warnings = append(report.Warnings, "unknown environment variable "+name+" (typo?)")
		}
	}
}

// isContainer reports whether mdpreview runs in a container and which signal
// said so.
func isContainer() (bool, string) {
	if os.Getenv("MDPREVIEW_CONTAINER") == "1" {
		return true, "MDPREVIEW_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkConfig loads the configuration like the other commands and builds a
// renderer from it, which also validates the asset path.
func checkConfig(report *doctorReport, configFlag string, envCfg *envConfig) {
	switch {
	case configFlag != "":
		report.Config.Source, report.Config.Name = "flag", configFlag
	case envCfg.ConfigPath != "":
		report.Config.Source, report.Config.Name = "env", envCfg.ConfigPath
	default:
		report.Config.Source = "defaults"
	}

	cfg, err := loadConfig(configFlag, envCfg)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return
	}

	if _, err := newRenderer(cfg, slog.New(slog.DiscardHandler), nil); err != nil {
		report.Errors = append(report.Errors, err.Error())
		return
	}
	report.Config.Valid = true
	report.Config.Styles = mdpreview.StyleNames()
}

// checkSystem verifies the temp directory PDF export writes to.
func checkSystem(report *doctorReport) {
	f, err := os.CreateTemp("", "mdpreview-doctor-*")
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("temp directory not writable: %s", os.TempDir()))
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	report.System.TempWritable = true
}

// printDoctorReport outputs human-readable diagnostic results.
func printDoctorReport(w io.Writer, r *doctorReport) {
	fmt.Fprintln(w, "mdpreview doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Browser (PDF export)")
	if r.Browser.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Browser.Path)
		if r.Browser.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Browser.Version)
		}
		if r.Browser.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Configuration")
	source := r.Config.Source
	if r.Config.Name != "" {
		source += " (" + r.Config.Name + ")"
	}
	if r.Config.Valid {
		fmt.Fprintf(w, "  [OK] Source: %s\n", source)
		fmt.Fprintf(w, "  [OK] Styles: %s\n", strings.Join(r.Config.Styles, ", "))
	} else {
		fmt.Fprintf(w, "  [ERROR] Source: %s\n", source)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintf(w, "  [OK] GOMAXPROCS: %d\n", r.System.MaxProcs)
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to render and export")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
