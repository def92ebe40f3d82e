//go:build integration

package patta2pdf

// Notes:
// - Integration tests drive a real headless Chrome through the default
//   rasterizer; run with `go test -tags integration`.
// - integrationPool is created in TestMain and closed after all tests.
// - Exporters write into a shared temp directory removed on exit.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/fra-portal/patta2pdf/internal/settings"
)

const integrationTimeout = 60 * time.Second

var (
	integrationPool *ExporterPool
	integrationOut  string
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "patta2pdf-integration-")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	integrationOut = dir

	integrationPool = NewExporterPool(min(ResolvePoolSize(0), 2),
		WithOutputDir(dir),
		WithTimeout(integrationTimeout),
		WithBrowser(os.Getenv("PATTA2PDF_BROWSER_BIN"), os.Getenv("PATTA2PDF_NO_SANDBOX") != ""),
	)

	code := m.Run()

	_ = integrationPool.Close()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func requireChrome(t *testing.T) {
	t.Helper()
	if os.Getenv("PATTA2PDF_BROWSER_BIN") != "" {
		return
	}
	if _, ok := launcher.LookPath(); !ok {
		t.Skip("Chrome not found. Install Chrome or Chromium to run integration tests.")
	}
}

func acquireExporter(t *testing.T) *Exporter {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), integrationTimeout)
	defer cancel()

	e, err := integrationPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	t.Cleanup(func() { integrationPool.Release(e) })
	return e
}

func assertValidPDF(t *testing.T, path string) {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading PDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("missing PDF magic bytes, got prefix %q", data[:min(10, len(data))])
	}
	if len(data) < 1000 {
		t.Errorf("PDF suspiciously small: %d bytes", len(data))
	}
}

// ---------------------------------------------------------------------------
// Export through Chrome
// ---------------------------------------------------------------------------

func TestExport_Chrome(t *testing.T) {
	requireChrome(t)

	tests := []struct {
		name      string
		quality   settings.Quality
		size      settings.PageSize
		wantPages int // 0 = at least one
	}{
		{"low a4", settings.QualityLow, settings.PageA4, 1},
		{"high a4", settings.QualityHigh, settings.PageA4, 1},
		{"medium letter", settings.QualityMedium, settings.PageLetter, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := acquireExporter(t)
			s := DefaultSettings()
			s.Quality = tt.quality
			s.PageSize = tt.size
			e.settings = StaticSettings(s)

			ctx, cancel := context.WithTimeout(t.Context(), integrationTimeout)
			defer cancel()

			res, err := e.Export(ctx, ExportRequest{Record: fra001(t)})
			if err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			if tt.wantPages > 0 && res.Pages != tt.wantPages {
				t.Errorf("Pages = %d, want %d", res.Pages, tt.wantPages)
			}
			if res.Pages < 1 {
				t.Errorf("Pages = %d, want at least 1", res.Pages)
			}
			if filepath.Dir(res.Path) != integrationOut {
				t.Errorf("Path = %q, want inside %q", res.Path, integrationOut)
			}
			assertValidPDF(t, res.Path)
		})
	}
}

func TestExport_Chrome_MissingCaptureRoot(t *testing.T) {
	requireChrome(t)

	e := acquireExporter(t)
	r, ok := e.rasterizer.(*rodRasterizer)
	if !ok {
		t.Fatalf("rasterizer = %T, want *rodRasterizer", e.rasterizer)
	}

	ctx, cancel := context.WithTimeout(t.Context(), integrationTimeout)
	defer cancel()

	_, err := r.Rasterize(ctx, "<html><body><p>no certificate here</p></body></html>",
		RasterOptions{Selector: "#certificate", Width: 794, Height: 1122, Scale: 1})
	if !errors.Is(err, ErrSourceNotReady) {
		t.Fatalf("Rasterize() error = %v, want ErrSourceNotReady", err)
	}
}
