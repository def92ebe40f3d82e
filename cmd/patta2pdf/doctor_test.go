package main

// Notes:
// - Tests go through runDoctorCmd() and its JSON output.
// - Chrome detection depends on system state; only the consistency between
//   status and exit code is asserted for it.
// - Container detection tests modify environment variables, cannot use t.Parallel()

import (
	"encoding/json"
	"runtime"
	"strings"
	"testing"
)

func runDoctorJSON(t *testing.T, te *testEnv, args ...string) (doctorResult, int) {
	t.Helper()
	te.reset()
	code := runDoctorCmd(t.Context(), append([]string{"--json", "--db", te.db}, args...), te.env)

	var result doctorResult
	if err := json.Unmarshal(te.stdout.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput was: %s", err, te.stdout.String())
	}
	return result, code
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_JSONOutput - Verifies JSON output format and structure
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_JSONOutput(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	result, code := runDoctorJSON(t, te)

	validStatuses := map[string]bool{"ready": true, "warnings": true, "errors": true}
	if !validStatuses[result.Status] {
		t.Errorf("Invalid status %q, expected ready/warnings/errors", result.Status)
	}
	if result.Status == "errors" && code != ExitGeneral {
		t.Errorf("Expected exit code %d for errors status, got %d", ExitGeneral, code)
	}
	if result.Status != "errors" && code != ExitSuccess {
		t.Errorf("Expected exit code %d for non-error status, got %d", ExitSuccess, code)
	}
	if result.Env.OS != runtime.GOOS || result.Env.Arch != runtime.GOARCH {
		t.Errorf("platform = %s/%s, want %s/%s", result.Env.OS, result.Env.Arch, runtime.GOOS, runtime.GOARCH)
	}
	if !result.System.TempWritable {
		t.Error("temp directory should be writable in tests")
	}
}

func TestRunDoctorCmd_Database(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)

	result, _ := runDoctorJSON(t, te)
	if result.Database.Path != te.db {
		t.Errorf("database path = %q, want %q", result.Database.Path, te.db)
	}
	if result.Database.OK {
		t.Error("database should not be reported open before first use")
	}
	if !containsAny(result.Warnings, "does not exist yet") {
		t.Errorf("warnings = %v, want missing database warning", result.Warnings)
	}

	te.mustRun(t, ExitSuccess, "list")

	result, _ = runDoctorJSON(t, te)
	if !result.Database.OK || result.Database.Records != 5 {
		t.Errorf("database = %+v, want ok with 5 records", result.Database)
	}
}

func TestRunDoctorCmd_HumanOutput(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	runDoctorCmd(t.Context(), []string{"--db", te.db}, te.env)

	out := te.stdout.String()
	for _, section := range []string{"patta2pdf doctor", "Chrome/Chromium", "Environment", "Database", "System", "Status:"} {
		if !strings.Contains(out, section) {
			t.Errorf("output missing section %q\ngot:\n%s", section, out)
		}
	}
}

func TestRunDoctorCmd_BadFlag(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	if code := runDoctorCmd(t.Context(), []string{"--bogus"}, te.env); code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_Container - Env-driven detection (not parallel)
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_ContainerSandboxWarning(t *testing.T) {
	t.Setenv("PATTA2PDF_CONTAINER", "1")
	t.Setenv("PATTA2PDF_NO_SANDBOX", "")

	te := newTestEnv(t)
	result, _ := runDoctorJSON(t, te)

	if !result.Env.Container || result.Env.ContainerHint != "PATTA2PDF_CONTAINER=1" {
		t.Errorf("container = %v (%q), want detected via PATTA2PDF_CONTAINER", result.Env.Container, result.Env.ContainerHint)
	}
	if !containsAny(result.Warnings, "PATTA2PDF_NO_SANDBOX=1") {
		t.Errorf("warnings = %v, want sandbox advice", result.Warnings)
	}
}

func TestRunDoctorCmd_NoSandboxSilencesWarning(t *testing.T) {
	t.Setenv("PATTA2PDF_CONTAINER", "1")
	t.Setenv("PATTA2PDF_NO_SANDBOX", "1")

	te := newTestEnv(t)
	result, _ := runDoctorJSON(t, te)

	if !result.Env.NoSandbox {
		t.Error("no_sandbox should reflect PATTA2PDF_NO_SANDBOX")
	}
	if containsAny(result.Warnings, "sandbox still enabled") {
		t.Errorf("warnings = %v, want no sandbox warning", result.Warnings)
	}
}

func containsAny(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
