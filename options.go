package patta2pdf

import (
	"time"

	"go.uber.org/zap"
)

// Option configures an Exporter.
type Option func(*Exporter)

// exporterConfig holds internal configuration for Exporter.
type exporterConfig struct {
	timeout       time.Duration // 0 = none
	baseURL       string
	authority     string
	watermarkText string
	outputDir     string
	qrSize        int

	assetPath  string
	style      string
	template   string
	conditions string

	browserBin       string
	browserNoSandbox bool
}

func defaultExporterConfig() exporterConfig {
	return exporterConfig{
		baseURL:       DefaultVerificationBaseURL,
		watermarkText: DefaultWatermarkText,
	}
}

// WithTimeout bounds each export. Exports have no timeout by default.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("patta2pdf: WithTimeout duration must be positive")
	}
	return func(e *Exporter) {
		e.cfg.timeout = d
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSettingsSource sets where export settings are read from on every
// export. The default always yields DefaultSettings.
func WithSettingsSource(s SettingsSource) Option {
	return func(e *Exporter) {
		e.settings = s
	}
}

// WithClock replaces time.Now for payload timestamps and filenames.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRasterizer replaces the headless Chrome rasterizer.
func WithRasterizer(r Rasterizer) Option {
	return func(e *Exporter) {
		e.rasterizer = r
	}
}

// WithEmitter replaces the file emitter.
func WithEmitter(em Emitter) Option {
	return func(e *Exporter) {
		e.emitter = em
	}
}

// WithOutputDir sets the directory of the default file emitter.
func WithOutputDir(dir string) Option {
	return func(e *Exporter) {
		e.cfg.outputDir = dir
	}
}

// WithVerificationBaseURL sets the host of the verification URL.
func WithVerificationBaseURL(u string) Option {
	return func(e *Exporter) {
		e.cfg.baseURL = u
	}
}

// WithAuthority sets the issuing authority shown and encoded.
func WithAuthority(a string) Option {
	return func(e *Exporter) {
		e.cfg.authority = a
	}
}

// WithWatermarkText sets the overlay text used when the watermark setting
// is on.
func WithWatermarkText(text string) Option {
	return func(e *Exporter) {
		if text != "" {
			e.cfg.watermarkText = text
		}
	}
}

// WithQRSize sets the QR image size in pixels (default 256).
func WithQRSize(px int) Option {
	return func(e *Exporter) {
		e.cfg.qrSize = px
	}
}

// WithAssetPath adds a directory searched before the embedded assets.
func WithAssetPath(path string) Option {
	return func(e *Exporter) {
		e.cfg.assetPath = path
	}
}

// WithAssets selects the style, template and conditions by name. Empty
// names keep the defaults.
func WithAssets(style, template, conditions string) Option {
	return func(e *Exporter) {
		e.cfg.style = style
		e.cfg.template = template
		e.cfg.conditions = conditions
	}
}

// WithBrowser configures the default rasterizer's Chrome binary and sandbox.
func WithBrowser(bin string, noSandbox bool) Option {
	return func(e *Exporter) {
		e.cfg.browserBin = bin
		e.cfg.browserNoSandbox = noSandbox
	}
}
