package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fra-portal/patta2pdf/internal/progress"
)

func writeScanDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patta-scan.png")
	if err := os.WriteFile(path, []byte("not really a scan"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestRunScan
// ---------------------------------------------------------------------------

func TestRunScan(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.mustRun(t, ExitSuccess, "scan", writeScanDoc(t))

	out := te.stdout.String()
	for _, want := range []string{
		"Scanning patta-scan.png (about 2ms)",
		"[1/2] Uploading document",
		"[2/2] Validating against FRA records",
		"Extracted from patta-scan.png (confidence 94%)",
		"सुमित्रा बाई मरावी",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, out)
		}
	}
	if strings.Index(out, "[1/2]") > strings.Index(out, "[2/2]") {
		t.Errorf("steps out of order:\n%s", out)
	}
}

func TestRunScan_JSON(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.mustRun(t, ExitSuccess, "scan", writeScanDoc(t), "--json")

	var got scanExtraction
	if err := json.Unmarshal(te.stdout.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON (progress lines must not leak into it): %v\n%s", err, te.stdout.String())
	}
	if got.Source != "patta-scan.png" || got.Record.ID != mockExtraction.ID {
		t.Errorf("extraction = %+v", got)
	}
}

func TestRunScan_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no document", []string{"scan"}, ExitUsage},
		{"missing document", []string{"scan", filepath.Join(t.TempDir(), "none.png")}, ExitIO},
		{"directory", []string{"scan", t.TempDir()}, ExitIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(t)
			te.mustRun(t, tt.want, tt.args...)
		})
	}
}

func TestRunScan_Cancel(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.env.ScanSteps = []progress.Step{
		{Label: "Uploading document", Duration: time.Millisecond},
		{Label: "Detecting layout", Duration: time.Hour},
	}

	doc := writeScanDoc(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- runScan(ctx, []string{doc}, te.env)
	}()

	deadline := time.After(5 * time.Second)
	for !strings.Contains(te.stdout.String(), "[1/2]") {
		select {
		case <-deadline:
			t.Fatal("first step never reported")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scan did not stop after cancel")
	}
	if strings.Contains(te.stdout.String(), "Extracted") {
		t.Error("cancelled scan printed an extraction")
	}
	if !strings.Contains(te.stderr.String(), "scan cancelled") {
		t.Errorf("stderr = %q", te.stderr.String())
	}
}
