package patta2pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fra-portal/patta2pdf/internal/assets"
	"github.com/fra-portal/patta2pdf/internal/certificate"
	"github.com/fra-portal/patta2pdf/internal/paginate"
	"github.com/fra-portal/patta2pdf/internal/pdfdoc"
	"github.com/fra-portal/patta2pdf/internal/qrcode"
	"github.com/fra-portal/patta2pdf/internal/settings"
)

// DefaultWatermarkText is stamped on every page when the watermark is on.
const DefaultWatermarkText = "GOVERNMENT OF INDIA"

// AttachmentName is the embedded copy of the verification payload.
const AttachmentName = "verification.json"

const producer = "patta2pdf"

// encodeSymbol is swapped in tests to observe the encoded payload.
var encodeSymbol = qrcode.Encode

// Exporter turns records into certificate PDFs. Create with NewExporter,
// call Export for each record, and Close when done. Exports on one
// Exporter are serialized; use ExporterPool for parallel work.
type Exporter struct {
	cfg        exporterConfig
	logger     *zap.Logger
	settings   SettingsSource
	renderer   *certificate.Renderer
	rasterizer Rasterizer
	emitter    Emitter
	now        func() time.Time

	mu     sync.Mutex
	closed bool
}

// NewExporter creates an Exporter. It fails if the certificate assets
// cannot be loaded or parsed.
func NewExporter(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		cfg:    defaultExporterConfig(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	resolver, err := assets.NewResolver(e.cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	bundle, err := assets.LoadBundle(resolver, e.cfg.style, e.cfg.template, e.cfg.conditions)
	if err != nil {
		return nil, fmt.Errorf("loading certificate assets: %w", err)
	}
	e.renderer, err = certificate.NewRenderer(bundle)
	if err != nil {
		return nil, fmt.Errorf("initializing certificate renderer: %w", err)
	}

	if e.settings == nil {
		e.settings = StaticSettings(DefaultSettings())
	}
	if e.rasterizer == nil {
		e.rasterizer = newRodRasterizer(e.cfg.browserBin, e.cfg.browserNoSandbox, e.cfg.timeout)
	}
	if e.emitter == nil {
		e.emitter = FileEmitter{Dir: e.cfg.outputDir}
	}
	return e, nil
}

// Close releases the browser.
func (e *Exporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.rasterizer != nil {
		return e.rasterizer.Close()
	}
	return nil
}

// Export runs the whole pipeline for one record. On failure it returns an
// *ExportError naming the stage, and nothing is emitted.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (e *Exporter) Export(ctx context.Context, req ExportRequest) (result *ExportResult, err error) {
	rec := req.Record
	started := time.Now()
	log := e.logger.With(
		zap.String("export_id", uuid.NewString()),
		zap.String("record_id", rec.ID),
	)

	e.mu.Lock()
	defer e.mu.Unlock()

	current := StageValidate
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ExportError{Stage: current, RecordID: rec.ID, Err: fmt.Errorf("%w: %v", ErrInternal, r)}
		}
		if err != nil {
			var ee *ExportError
			stage := ""
			if errors.As(err, &ee) {
				stage = string(ee.Stage)
			}
			log.Error("export failed", zap.String("stage", stage), zap.Duration("duration", time.Since(started)), zap.Error(err))
			return
		}
		log.Info("export finished",
			zap.String("file", result.Path),
			zap.Int("pages", result.Pages),
			zap.Int64("bytes", result.Size),
			zap.Duration("duration", result.Duration),
		)
	}()

	if e.closed {
		return nil, stageError(StageValidate, rec.ID, ErrExporterClosed)
	}
	if e.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.timeout)
		defer cancel()
	}

	run := func(stage Stage, fn func() error) error {
		current = stage
		t := time.Now()
		if err := ctx.Err(); err != nil {
			return stageError(stage, rec.ID, err)
		}
		err := fn()
		log.Debug("stage", zap.String("stage", string(stage)), zap.Duration("duration", time.Since(t)), zap.Error(err))
		return stageError(stage, rec.ID, err)
	}

	if err := run(StageValidate, rec.Validate); err != nil {
		return nil, err
	}

	var cfg Settings
	_ = run(StageSettings, func() error {
		cfg = e.resolveSettings(ctx, log)
		return nil
	})

	now := e.now()
	payload := BuildPayload(rec, now, PayloadOptions{BaseURL: e.cfg.baseURL, Authority: e.cfg.authority})

	var qrPNG []byte
	if err := run(StageEncode, func() error {
		var err error
		qrPNG, err = e.encodeWhilePreparing(ctx, payload)
		return err
	}); err != nil {
		return nil, err
	}

	var html string
	if err := run(StageRender, func() error {
		var err error
		html, err = e.renderer.Render(ctx, certificate.Data{
			Record:          toCertificateRecord(rec, payload),
			QRCode:          qrPNG,
			VerificationURL: payload.VerificationURL,
			Authority:       e.cfg.authority,
			Notes:           rec.Notes,
		})
		return err
	}); err != nil {
		return nil, err
	}

	var bitmap image.Image
	if err := run(StageRasterize, func() error {
		var err error
		bitmap, err = e.rasterizer.Rasterize(ctx, html, RasterOptions{
			Selector: certificate.Selector,
			Width:    certificate.LayoutWidth,
			Height:   certificate.LayoutHeight,
			Scale:    cfg.Quality.Scale(),
		})
		return rasterError(ctx, err)
	}); err != nil {
		return nil, err
	}

	layout, pages, err := e.paginate(run, bitmap, cfg)
	if err != nil {
		return nil, err
	}

	var pdf bytes.Buffer
	if err := run(StageAssemble, func() error {
		return e.assemble(ctx, log, &pdf, layout, pages, payload, cfg)
	}); err != nil {
		return nil, err
	}

	var name, path string
	if err := run(StageEmit, func() error {
		var err error
		if name, err = Filename(rec, now, req.Filename); err != nil {
			return err
		}
		path, err = e.emitter.Emit(ctx, name, pdf.Bytes())
		if err != nil && !errors.Is(err, ErrEmit) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %v", ErrEmit, err)
		}
		return err
	}); err != nil {
		return nil, err
	}

	return &ExportResult{
		Success:  true,
		Filename: name,
		Path:     path,
		Size:     int64(pdf.Len()),
		Pages:    len(pages),
		Settings: cfg,
		Payload:  payload,
		Duration: time.Since(started),
	}, nil
}

// resolveSettings never fails: any problem yields the defaults.
func (e *Exporter) resolveSettings(ctx context.Context, log *zap.Logger) Settings {
	s, err := e.settings.Settings(ctx)
	if err == nil {
		err = s.Validate()
	}
	if err != nil {
		log.Debug("using default settings", zap.Error(err))
		return DefaultSettings()
	}
	return s
}

// encodeWhilePreparing encodes the QR symbol while the rasterizer warms up.
// A warm-up failure is reported under StageRasterize.
func (e *Exporter) encodeWhilePreparing(ctx context.Context, payload Payload) ([]byte, error) {
	g, gctx := errgroup.WithContext(ctx)

	var png []byte
	g.Go(func() error {
		text, err := payload.JSON()
		if err != nil {
			return err
		}
		png, err = encodeSymbol(string(text), qrcode.Options{Size: e.cfg.qrSize, Level: qrcode.LevelM})
		if errors.Is(err, qrcode.ErrCapacityExceeded) {
			return fmt.Errorf("%w: %v", ErrEncodingCapacityExceeded, err)
		}
		return err
	})
	if p, ok := e.rasterizer.(preparer); ok {
		g.Go(func() error {
			return stageError(StageRasterize, payload.ID, rasterError(gctx, p.Prepare(gctx)))
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return png, nil
}

func rasterError(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, ErrSourceNotReady), errors.Is(err, ErrRasterization),
		errors.Is(err, ErrBrowserConnect), errors.Is(err, ErrPageCreate), errors.Is(err, ErrPageLoad):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrRasterization, err)
	}
}

// paginate resamples the bitmap to the compression level and slices it
// into page images.
func (e *Exporter) paginate(run func(Stage, func() error) error, bitmap image.Image, cfg Settings) (pdfdoc.Layout, []pdfdoc.Page, error) {
	var layout pdfdoc.Layout
	var pages []pdfdoc.Page

	err := run(StagePaginate, func() error {
		if bitmap == nil || bitmap.Bounds().Empty() {
			return fmt.Errorf("%w: empty capture", ErrSourceNotReady)
		}
		w, h, ok := cfg.PageSize.Points()
		if !ok {
			return fmt.Errorf("%w: %w", ErrPagination, settings.ErrInvalidPageSize)
		}
		layout = pdfdoc.Layout{Width: w, Height: h}

		img, err := paginate.Resample(bitmap, cfg.CompressionLevel)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPagination, err)
		}
		_, slices, err := paginate.Split(img, w, h)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPagination, err)
		}
		pages = make([]pdfdoc.Page, len(slices))
		for i, s := range slices {
			pages[i] = pdfdoc.Page{Image: s.Image, Top: s.Top, Height: s.Height}
		}
		return nil
	})
	return layout, pages, err
}

// assemble builds the document, stamps the watermark when enabled and
// writes it to w.
func (e *Exporter) assemble(ctx context.Context, log *zap.Logger, w *bytes.Buffer, layout pdfdoc.Layout, pages []pdfdoc.Page, payload Payload, cfg Settings) error {
	attachment, err := payload.IndentedJSON()
	if err != nil {
		return err
	}

	doc, err := pdfdoc.Assemble(layout, pages, pdfdoc.Info{
		Title:    "Forest Rights Title " + payload.ID,
		Author:   payload.IssuingAuthority,
		Subject:  "Title under the Forest Rights Act, 2006",
		Creator:  producer,
		Producer: producer,
		Keywords: []string{"FRA", "patta", payload.ID},
	}, pdfdoc.Attachment{
		Name:        AttachmentName,
		Description: "Verification payload",
		MIMEType:    "application/json",
		Data:        attachment,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDocumentBuild, err)
	}

	if cfg.Watermark {
		wm := pdfdoc.DefaultWatermark()
		wm.Text = e.cfg.watermarkText
		n := pdfdoc.ApplyWatermark(doc, wm)
		log.Debug("watermark applied", zap.String("stage", string(StageWatermark)), zap.Int("pages", n))
	}

	if err := pdfdoc.Write(ctx, doc, w); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrDocumentBuild, err)
	}
	return nil
}

// toCertificateRecord converts a record to the certificate's display
// fields, using the payload's placeholders for empty values.
func toCertificateRecord(rec Record, p Payload) certificate.Record {
	return certificate.Record{
		ID:            rec.ID,
		SerialNo:      p.SerialNo,
		IssueDate:     p.IssueDate,
		HolderName:    p.HolderName,
		FatherName:    p.FatherName,
		Caste:         p.Caste,
		Age:           p.Age,
		State:         p.State,
		District:      p.District,
		Tehsil:        p.Tehsil,
		GramPanchayat: p.GramPanchayat,
		Village:       p.Village,
		KhasraNo:      p.KhasraNo,
		TotalAreaSqft: p.TotalAreaSqft,
		East:          p.Boundaries.East,
		West:          p.Boundaries.West,
		North:         p.Boundaries.North,
		South:         p.Boundaries.South,
		Status:        p.Status,
	}
}
