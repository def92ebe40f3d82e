package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/fra-portal/patta2pdf"
	"github.com/fra-portal/patta2pdf/internal/assets"
	"github.com/fra-portal/patta2pdf/internal/config"
	"github.com/fra-portal/patta2pdf/internal/settings"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Browser errors (exit 4)
		{"browser connect", patta2pdf.ErrBrowserConnect, ExitBrowser},
		{"page create", patta2pdf.ErrPageCreate, ExitBrowser},
		{"page load", patta2pdf.ErrPageLoad, ExitBrowser},
		{"rasterization", patta2pdf.ErrRasterization, ExitBrowser},
		{"source not ready", patta2pdf.ErrSourceNotReady, ExitBrowser},
		{"export error wraps browser", &patta2pdf.ExportError{Stage: patta2pdf.StageRasterize, RecordID: "FRA001", Err: patta2pdf.ErrBrowserConnect}, ExitBrowser},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"emit", patta2pdf.ErrEmit, ExitIO},
		{"open database", ErrOpenDatabase, ExitIO},
		{"read input", ErrReadInput, ExitIO},
		{"write payload", ErrWritePayload, ExitIO},
		{"wrapped file not exist", fmt.Errorf("reading: %w", os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid config value", config.ErrInvalidValue, ExitUsage},
		{"invalid quality", settings.ErrInvalidQuality, ExitUsage},
		{"invalid page size", settings.ErrInvalidPageSize, ExitUsage},
		{"invalid compression", settings.ErrInvalidCompression, ExitUsage},
		{"invalid record", patta2pdf.ErrInvalidRecord, ExitUsage},
		{"record not found", patta2pdf.ErrRecordNotFound, ExitUsage},
		{"decode records", patta2pdf.ErrDecodeRecords, ExitUsage},
		{"invalid filename", patta2pdf.ErrInvalidFilename, ExitUsage},
		{"capacity exceeded", patta2pdf.ErrEncodingCapacityExceeded, ExitUsage},
		{"invalid asset path", patta2pdf.ErrInvalidAssetPath, ExitUsage},
		{"style not found", assets.ErrStyleNotFound, ExitUsage},
		{"template not found", assets.ErrTemplateNotFound, ExitUsage},
		{"conditions not found", assets.ErrConditionsNotFound, ExitUsage},
		{"usage", ErrUsage, ExitUsage},

		// General errors (exit 1)
		{"unknown error", errors.New("boom"), ExitGeneral},
		{"internal", patta2pdf.ErrInternal, ExitGeneral},
		{"batch summary keeps first cause", fmt.Errorf("%w (1 of 2 records): %w", ErrExportFailed, patta2pdf.ErrEmit), ExitIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix conventions
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}
	for _, code := range []int{ExitIO, ExitBrowser} {
		if code <= ExitUsage || code >= 126 {
			t.Errorf("custom exit code %d outside (2, 126)", code)
		}
	}
}

// ---------------------------------------------------------------------------
// TestHintFor
// ---------------------------------------------------------------------------

func TestHintFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"timeout", context.DeadlineExceeded, "--timeout"},
		{"record not found", patta2pdf.ErrRecordNotFound, "patta2pdf list"},
		{"settings", settings.ErrInvalidPageSize, "letter"},
		{"emit", patta2pdf.ErrEmit, "--output"},
		{"style", fmt.Errorf("loading: %w", assets.ErrStyleNotFound), "available: certificate"},
		{"template", assets.ErrTemplateNotFound, "available: patta"},
		{"none", errors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := hintFor(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("hintFor() = %q, want none", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("hintFor() = %q, want to contain %q", got, tt.want)
			}
		})
	}
}
