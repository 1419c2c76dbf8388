package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/alnah/go-mdpreview/internal/hints"
)

// Tests in this file replace package-level lookups and use t.Setenv, so
// they are not parallel.

// stubBrowser points the browser lookup at path (found when non-empty).
func stubBrowser(t *testing.T, path string, versionErr error) {
	t.Helper()

	origLook, origVersion := lookBrowser, browserVersion
	lookBrowser = func() (string, bool) { return path, path != "" }
	browserVersion = func(string) (string, error) {
		if versionErr != nil {
			return "", versionErr
		}
		return "Chromium 140.0", nil
	}
	t.Cleanup(func() { lookBrowser, browserVersion = origLook, origVersion })
}

func stubContainerCheck(t *testing.T, inContainer bool) {
	t.Helper()
	orig := hints.IsInContainer
	hints.IsInContainer = func() bool { return inContainer }
	t.Cleanup(func() { hints.IsInContainer = orig })
}

// cleanDoctorEnv clears the variables doctor inspects.
func cleanDoctorEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"ROD_NO_SANDBOX", "ROD_BROWSER_BIN", "CI", "GITHUB_ACTIONS", "GITLAB_CI",
		"JENKINS_URL", "CIRCLECI", "container", "KUBERNETES_SERVICE_HOST",
	} {
		t.Setenv(name, "")
	}
	for name := range knownEnvVars {
		t.Setenv(name, "")
	}
	stubContainerCheck(t, false)
}

func TestDiagnose_Ready(t *testing.T) {
	cleanDoctorEnv(t)
	browser := filepath.Join(t.TempDir(), "chromium")
	writeFile(t, browser, "")
	stubBrowser(t, browser, nil)

	r := diagnose("", &envConfig{})

	if r.Status != statusReady {
		t.Errorf("Status = %q, want %q (warnings %v, errors %v)", r.Status, statusReady, r.Warnings, r.Errors)
	}
	if !r.Browser.Found || r.Browser.Path != browser || r.Browser.Version != "Chromium 140.0" {
		t.Errorf("Browser = %+v, want found at %s", r.Browser, browser)
	}
	if !r.Browser.Sandbox {
		t.Error("Browser.Sandbox = false, want true")
	}
	if r.Config.Source != "defaults" || !r.Config.Valid {
		t.Errorf("Config = %+v, want valid defaults", r.Config)
	}
	if !slices.Contains(r.Config.Styles, "preview") {
		t.Errorf("Config.Styles = %v, want preview listed", r.Config.Styles)
	}
	if !r.System.TempWritable {
		t.Error("System.TempWritable = false, want true")
	}
}

func TestDiagnose_Warnings(t *testing.T) {
	cleanDoctorEnv(t)
	stubBrowser(t, "", nil)
	t.Setenv("CI", "true")
	t.Setenv("MDPREVIEW_STYEL", "dark")

	r := diagnose("", &envConfig{})

	if r.Status != statusWarnings {
		t.Fatalf("Status = %q, want %q", r.Status, statusWarnings)
	}
	want := []string{"PDF export unavailable", "ROD_NO_SANDBOX", "MDPREVIEW_STYEL"}
	joined := strings.Join(r.Warnings, "\n")
	for _, w := range want {
		if !strings.Contains(joined, w) {
			t.Errorf("warnings %v missing %q", r.Warnings, w)
		}
	}
	if !r.Env.CI {
		t.Error("Env.CI = false, want true")
	}
}

func TestDiagnose_BrowserVersionFails(t *testing.T) {
	cleanDoctorEnv(t)
	browser := filepath.Join(t.TempDir(), "chrome")
	writeFile(t, browser, "")
	t.Setenv("ROD_BROWSER_BIN", browser)
	stubBrowser(t, "", errors.New("exec format error"))

	r := diagnose("", &envConfig{})

	if !r.Browser.Found {
		t.Error("Browser.Found = false, want ROD_BROWSER_BIN honored")
	}
	if r.Status != statusWarnings {
		t.Errorf("Status = %q, want %q", r.Status, statusWarnings)
	}
}

func TestDiagnose_ConfigErrors(t *testing.T) {
	cleanDoctorEnv(t)
	stubBrowser(t, "", nil)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, bad, "cache:\n  size: -1\n")

	r := diagnose(bad, &envConfig{})

	if r.Status != statusErrors {
		t.Fatalf("Status = %q, want %q", r.Status, statusErrors)
	}
	if r.Config.Source != "flag" || r.Config.Name != bad || r.Config.Valid {
		t.Errorf("Config = %+v, want invalid config from flag", r.Config)
	}

	r = diagnose("", &envConfig{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	if r.Config.Source != "env" || r.Status != statusErrors {
		t.Errorf("missing env config: source %q status %q, want env/errors", r.Config.Source, r.Status)
	}
}

func TestIsContainer(t *testing.T) {
	cleanDoctorEnv(t)

	if got, _ := isContainer(); got {
		t.Error("isContainer() = true in clean environment")
	}

	t.Setenv("KUBERNETES_SERVICE_HOST", "10.0.0.1")
	if got, hint := isContainer(); !got || hint != "KUBERNETES_SERVICE_HOST" {
		t.Errorf("isContainer() = %v, %q, want kubernetes", got, hint)
	}

	t.Setenv("MDPREVIEW_CONTAINER", "1")
	if got, hint := isContainer(); !got || hint != "MDPREVIEW_CONTAINER=1" {
		t.Errorf("isContainer() = %v, %q, want explicit override first", got, hint)
	}
}

func TestRunMain_Doctor(t *testing.T) {
	cleanDoctorEnv(t)
	stubBrowser(t, "", nil)

	code, env := runCLI("", "doctor")
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d (stderr: %s)", code, ExitSuccess, env.stderr)
	}
	for _, want := range []string{"mdpreview doctor", "[WARN] Not found", "Status: Ready with warnings"} {
		if !strings.Contains(env.stdout.String(), want) {
			t.Errorf("stdout missing %q:\n%s", want, env.stdout)
		}
	}

	code, env = runCLI("", "doctor", "-f", "json")
	if code != ExitSuccess {
		t.Fatalf("json: exit code = %d, want %d", code, ExitSuccess)
	}
	var report doctorReport
	if err := json.Unmarshal(env.stdout.Bytes(), &report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.Status != statusWarnings || report.Browser.Found {
		t.Errorf("report = %+v, want warnings without browser", report)
	}

	code, env = runCLI("", "doctor", "-f", "yaml")
	if code != ExitSuccess || !strings.Contains(env.stdout.String(), "status: warnings") {
		t.Errorf("yaml: code %d, stdout %q", code, env.stdout)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, bad, "markdown: [\n")
	code, env = runCLI("", "doctor", "-c", bad)
	if code != ExitGeneral {
		t.Errorf("bad config: exit code = %d, want %d", code, ExitGeneral)
	}
	if !strings.Contains(env.stderr.String(), ErrNotReady.Error()) {
		t.Errorf("stderr = %q, want not ready error", env.stderr)
	}

	if code, _ := runCLI("", "doctor", "extra"); code != ExitUsage {
		t.Errorf("doctor extra: exit code = %d, want %d", code, ExitUsage)
	}
	if code, _ := runCLI("", "doctor", "-f", "xml"); code != ExitUsage {
		t.Errorf("doctor -f xml: exit code = %d, want %d", code, ExitUsage)
	}
}
