// Package patta2pdf exports Forest Rights Act land-title records ("pattas")
// as certificate PDFs.
//
// # Quick Start
//
//	exp, err := patta2pdf.NewExporter(patta2pdf.WithOutputDir("exports"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exp.Close()
//
//	res, err := exp.Export(ctx, patta2pdf.ExportRequest{Record: rec})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Path, res.Pages)
//
// # Export Pipeline
//
// Each export runs these stages and stops at the first failure:
//
//  1. Settings are read from the SettingsSource (defaults on any problem).
//  2. The verification payload is built from the record and encoded as a
//     QR symbol while the browser starts.
//  3. The certificate template is rendered to HTML with the QR inlined.
//  4. Headless Chrome (go-rod) captures the #certificate element at the
//     quality tier's device scale factor.
//  5. The bitmap is resampled to the compression level and sliced into
//     pages of the configured size.
//  6. Pages are assembled into a PDF with the payload attached as
//     verification.json; the diagonal watermark is stamped once per page
//     when enabled.
//  7. The file is named from the record and written atomically.
//
// Failures are returned as *ExportError, which names the stage and wraps
// a sentinel such as ErrSourceNotReady, ErrEncodingCapacityExceeded,
// ErrRasterization or ErrEmit.
//
// # Settings
//
// Export settings are read on every export, never cached:
//
//	kv, _ := store.OpenSQLite("patta.db")        // any KVReader works
//	exp, _ := patta2pdf.NewExporter(
//	    patta2pdf.WithSettingsSource(patta2pdf.NewStoreSettings(kv, logger)),
//	)
//
// # Parallel Processing
//
// An Exporter serializes its exports. For batches, use ExporterPool; each
// pooled Exporter owns one browser:
//
//	pool := patta2pdf.NewExporterPool(patta2pdf.ResolvePoolSize(0), opts...)
//	defer pool.Close()
package patta2pdf
