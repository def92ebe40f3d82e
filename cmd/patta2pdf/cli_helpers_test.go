package main

// Notes:
// - Helpers shared by the command tests. Every test gets its own SQLite file
//   under t.TempDir() through --db, so tests never touch the user database.
// - The headless browser is replaced with fakeRasterizer through
//   Environment.ExporterOptions; browser-backed runs live in the root
//   package's integration tests.

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fra-portal/patta2pdf"
	"github.com/fra-portal/patta2pdf/internal/progress"
)

// ---------------------------------------------------------------------------
// fakeRasterizer - Captures a blank certificate of the requested size
// ---------------------------------------------------------------------------

type fakeRasterizer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _ string, opts patta2pdf.RasterOptions) (image.Image, error) {
	f.mu.Lock()
	f.calls++
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	w := int(float64(opts.Width) * opts.Scale)
	h := int(float64(opts.Height) * opts.Scale)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img, nil
}

func (f *fakeRasterizer) Close() error { return nil }

func (f *fakeRasterizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// ---------------------------------------------------------------------------
// Test environment
// ---------------------------------------------------------------------------

var testNow = time.Date(2024, 3, 5, 14, 7, 9, 123_000_000, time.UTC)

// syncBuffer is a bytes.Buffer safe for a command writing in one goroutine
// while the test reads in another.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

type testEnv struct {
	env    *Environment
	stdout *syncBuffer
	stderr *syncBuffer
	raster *fakeRasterizer
	db     string
	out    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	te := &testEnv{
		stdout: &syncBuffer{},
		stderr: &syncBuffer{},
		raster: &fakeRasterizer{},
		db:     filepath.Join(dir, "patta.db"),
		out:    filepath.Join(dir, "out"),
	}
	te.env = &Environment{
		Now:             func() time.Time { return testNow },
		Stdin:           strings.NewReader(""),
		Stdout:          te.stdout,
		Stderr:          te.stderr,
		ExporterOptions: []patta2pdf.Option{patta2pdf.WithRasterizer(te.raster)},
		ScanSteps: []progress.Step{
			{Label: "Uploading document", Duration: time.Millisecond},
			{Label: "Validating against FRA records", Duration: time.Millisecond},
		},
	}
	return te
}

// run invokes the CLI with --db appended and returns the exit code.
func (te *testEnv) run(args ...string) int {
	argv := append([]string{"patta2pdf"}, args...)
	if len(args) > 0 && args[0] != "help" && args[0] != "version" {
		argv = append(argv, "--db", te.db)
	}
	return runMain(argv, te.env)
}

// reset clears captured output between invocations.
func (te *testEnv) reset() {
	te.stdout.Reset()
	te.stderr.Reset()
}

// mustRun fails the test unless the command exits with want.
func (te *testEnv) mustRun(t *testing.T, want int, args ...string) {
	t.Helper()
	if got := te.run(args...); got != want {
		t.Fatalf("patta2pdf %s: exit code = %d, want %d\nstdout: %s\nstderr: %s",
			strings.Join(args, " "), got, want, te.stdout.String(), te.stderr.String())
	}
}

var errFakeBrowser = errors.New("fake browser failure")
