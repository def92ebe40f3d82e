package patta2pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/fra-portal/patta2pdf/internal/fileutil"
	"github.com/fra-portal/patta2pdf/internal/process"
)

// Rasterizer captures an element of an HTML document as a bitmap.
type Rasterizer interface {
	Rasterize(ctx context.Context, html string, opts RasterOptions) (image.Image, error)
	Close() error
}

// preparer is implemented by rasterizers that can warm up ahead of the
// first capture. Export overlaps it with QR encoding.
type preparer interface {
	Prepare(ctx context.Context) error
}

// RasterOptions describe one capture.
type RasterOptions struct {
	Selector string  // element to capture
	Width    int     // layout viewport in CSS pixels
	Height   int     // initial viewport height; the element may be taller
	Scale    float64 // device pixels per CSS pixel
}

func (o RasterOptions) validate() error {
	if o.Selector == "" || o.Width <= 0 || o.Height <= 0 || !(o.Scale > 0) {
		return fmt.Errorf("%w: invalid raster options %+v", ErrRasterization, o)
	}
	return nil
}

var (
	_ Rasterizer = (*rodRasterizer)(nil)
	_ preparer   = (*rodRasterizer)(nil)
)

// rodRasterizer renders with headless Chrome through go-rod. The browser
// is launched on first use and reused until Close.
type rodRasterizer struct {
	bin       string
	noSandbox bool
	timeout   time.Duration

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func newRodRasterizer(bin string, noSandbox bool, timeout time.Duration) *rodRasterizer {
	return &rodRasterizer{bin: bin, noSandbox: noSandbox, timeout: timeout}
}

// Prepare launches the browser if it is not running yet.
func (r *rodRasterizer) Prepare(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.ensureBrowser()
	return err
}

// ensureBrowser must be called with mu held.
func (r *rodRasterizer) ensureBrowser() (*rod.Browser, error) {
	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().Headless(true)
	if r.bin != "" {
		l = l.Bin(r.bin)
	}
	if r.noSandbox {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l
	r.browser = b
	return b, nil
}

// Close shuts the browser down along with its helper processes.
func (r *rodRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		if pid := r.launcher.PID(); pid > 0 {
			_ = process.KillTree(pid)
		}
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}

// Rasterize loads html from a temp file, sizes the viewport and captures
// the element matched by opts.Selector at opts.Scale.
func (r *rodRasterizer) Rasterize(ctx context.Context, html string, opts RasterOptions) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	b, err := r.ensureBrowser()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	path, cleanup, err := fileutil.WriteTempFile(html, "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterization, err)
	}
	defer cleanup()

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: opts.Scale,
		Mobile:            false,
	}).Call(page); err != nil {
		return nil, fmt.Errorf("%w: device metrics: %v", ErrRasterization, err)
	}

	loader := page
	if r.timeout > 0 {
		loader = page.Timeout(r.timeout)
	}
	if err := loader.Navigate("file://" + path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := loader.WaitLoad(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	has, el, err := page.Has(opts.Selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterization, err)
	}
	if !has {
		return nil, fmt.Errorf("%w: no element matches %q", ErrSourceNotReady, opts.Selector)
	}

	data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrRasterization, err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding capture: %v", ErrRasterization, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %q has no visible area", ErrSourceNotReady, opts.Selector)
	}
	return img, nil
}
