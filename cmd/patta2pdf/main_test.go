package main

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunMain - Dispatch, help and exit codes
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "no command",
			args:       nil,
			wantCode:   ExitUsage,
			wantStderr: "Usage: patta2pdf",
		},
		{
			name:       "unknown command",
			args:       []string{"convert"},
			wantCode:   ExitUsage,
			wantStderr: "Unknown command: convert",
		},
		{
			name:       "version",
			args:       []string{"version"},
			wantCode:   ExitSuccess,
			wantStdout: "patta2pdf dev",
		},
		{
			name:       "--version",
			args:       []string{"--version"},
			wantCode:   ExitSuccess,
			wantStdout: "patta2pdf dev",
		},
		{
			name:       "help",
			args:       []string{"help"},
			wantCode:   ExitSuccess,
			wantStdout: "export     Export patta certificates to PDF",
		},
		{
			name:       "help export",
			args:       []string{"help", "export"},
			wantCode:   ExitSuccess,
			wantStdout: "--payload",
		},
		{
			name:       "help unknown",
			args:       []string{"help", "nope"},
			wantCode:   ExitSuccess,
			wantStderr: "Unknown command: nope",
		},
		{
			name:       "export --help",
			args:       []string{"export", "--help"},
			wantCode:   ExitSuccess,
			wantStderr: "Usage: patta2pdf export",
		},
		{
			name:       "unknown flag",
			args:       []string{"list", "--bogus"},
			wantCode:   ExitUsage,
			wantStderr: "unknown flag",
		},
		{
			name:       "show unknown record",
			args:       []string{"show", "FRA999"},
			wantCode:   ExitUsage,
			wantStderr: "run 'patta2pdf list'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			te := newTestEnv(t)
			code := te.run(tt.args...)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstderr: %s", code, tt.wantCode, te.stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(te.stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want to contain %q", te.stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(te.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want to contain %q", te.stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestRunMain_ErrorLinePrefix(t *testing.T) {
	t.Parallel()

	te := newTestEnv(t)
	te.mustRun(t, ExitUsage, "show")

	if !strings.HasPrefix(te.stderr.String(), "error: ") {
		t.Errorf("stderr = %q, want an \"error: \" line", te.stderr.String())
	}
}
