package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fra-portal/patta2pdf"
	"github.com/fra-portal/patta2pdf/internal/config"
	"github.com/fra-portal/patta2pdf/internal/fileutil"
)

// ErrExportFailed summarizes a batch with failed records.
var ErrExportFailed = errors.New("export failed")

// payloadPerm is the mode of --payload files.
const payloadPerm = 0o644

// exportOutcome holds the result of exporting one record.
type exportOutcome struct {
	RecordID    string
	Result      *patta2pdf.ExportResult
	PayloadPath string
	Err         error
}

// batchParams groups options shared by every record of a batch.
type batchParams struct {
	filename string // --filename; empty = PattaName(prefix, record)
	prefix   string
	payload  bool
}

// recordExporter is the part of *patta2pdf.Exporter used per record.
type recordExporter interface {
	Export(ctx context.Context, req patta2pdf.ExportRequest) (*patta2pdf.ExportResult, error)
}

var _ recordExporter = (*patta2pdf.Exporter)(nil)

// runExport exports the requested records to PDF.
func runExport(ctx context.Context, args []string, env *Environment) error {
	f, ids, err := parseExportFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if err := validateExportArgs(f, ids); err != nil {
		return err
	}

	s, err := openSession(ctx, f.common, env)
	if err != nil {
		return err
	}
	defer s.Close()

	recs, err := selectRecords(ctx, s.repo, ids, f.all)
	if err != nil {
		return err
	}

	timeout, err := resolveTimeout(f.timeout, s.cfg)
	if err != nil {
		return err
	}
	outDir := resolveOutputDir(f.output, s.cfg)
	workers := f.workers
	if workers == 0 {
		workers = s.cfg.Export.Workers
	}
	size := min(patta2pdf.ResolvePoolSize(workers), len(recs))

	s.logger.Debug("starting export",
		zap.Int("records", len(recs)),
		zap.Int("workers", size),
		zap.Int("gomaxprocs", runtime.GOMAXPROCS(0)),
		zap.String("output", outDir),
	)

	pool := patta2pdf.NewExporterPool(size, exporterOptions(s, outDir, timeout, env)...)
	defer pool.Close()

	outcomes := exportBatch(ctx, pool, recs, batchParams{filename: f.filename, prefix: s.cfg.Output.FilenamePrefix, payload: f.payload})
	failed := printOutcomes(outcomes, f.common, env)
	if failed > 0 {
		return fmt.Errorf("%w (%d of %d records): %w", ErrExportFailed, failed, len(outcomes), firstError(outcomes))
	}
	return nil
}

func validateExportArgs(f *exportFlags, ids []string) error {
	switch {
	case f.workers < 0 || f.workers > config.MaxWorkers:
		return fmt.Errorf("%w: --workers must be between 0 and %d, got %d", ErrUsage, config.MaxWorkers, f.workers)
	case len(ids) == 0 && !f.all:
		return fmt.Errorf("%w: pass record ids or --all", ErrUsage)
	case len(ids) > 0 && f.all:
		return fmt.Errorf("%w: --all cannot be combined with record ids", ErrUsage)
	case f.filename != "" && (f.all || len(ids) != 1):
		return fmt.Errorf("%w: --filename needs exactly one record id", ErrUsage)
	}
	return nil
}

// selectRecords loads ids in the given order, or every record with all.
// Duplicate ids are exported once.
func selectRecords(ctx context.Context, repo *patta2pdf.Repository, ids []string, all bool) ([]patta2pdf.Record, error) {
	if all {
		recs, err := repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return nil, fmt.Errorf("%w: no records stored", patta2pdf.ErrRecordNotFound)
		}
		return recs, nil
	}

	seen := make(map[string]bool, len(ids))
	recs := make([]patta2pdf.Record, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		rec, err := repo.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("record %q: %w", id, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// resolveTimeout returns the per-record timeout: --timeout flag, then
// env/config. Zero means none.
func resolveTimeout(flagValue string, cfg *config.Config) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil || d <= 0 {
			return 0, fmt.Errorf("%w: --timeout %q must be a positive duration", ErrUsage, flagValue)
		}
		return d, nil
	}
	return cfg.Browser.TimeoutDuration()
}

func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.Dir
}

// exporterOptions translates the resolved config into library options.
func exporterOptions(s *session, outDir string, timeout time.Duration, env *Environment) []patta2pdf.Option {
	opts := []patta2pdf.Option{
		patta2pdf.WithLogger(s.logger),
		patta2pdf.WithSettingsSource(patta2pdf.NewStoreSettings(s.db, s.logger)),
		patta2pdf.WithOutputDir(outDir),
		patta2pdf.WithVerificationBaseURL(s.cfg.Verification.BaseURL),
		patta2pdf.WithAuthority(s.cfg.Verification.Authority),
		patta2pdf.WithWatermarkText(s.cfg.Watermark.Text),
		patta2pdf.WithAssetPath(s.cfg.Assets.BasePath),
		patta2pdf.WithAssets(s.cfg.Assets.Style, s.cfg.Assets.Template, s.cfg.Assets.Conditions),
		patta2pdf.WithBrowser(s.cfg.Browser.Bin, s.cfg.Browser.NoSandbox),
	}
	if s.cfg.Verification.QRSize > 0 {
		opts = append(opts, patta2pdf.WithQRSize(s.cfg.Verification.QRSize))
	}
	if env.Now != nil {
		opts = append(opts, patta2pdf.WithClock(env.Now))
	}
	if timeout > 0 {
		opts = append(opts, patta2pdf.WithTimeout(timeout))
	}
	return append(opts, env.ExporterOptions...)
}

// exportBatch exports recs concurrently using the pool.
func exportBatch(ctx context.Context, pool *patta2pdf.ExporterPool, recs []patta2pdf.Record, params batchParams) []exportOutcome {
	if len(recs) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(recs))
	results := make([]exportOutcome, len(recs))
	jobs := make(chan int, len(recs))

	var wg sync.WaitGroup
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			e, err := pool.Acquire(ctx)
			if err != nil {
				// Exporter creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = exportOutcome{RecordID: recs[idx].ID, Err: err}
				}
				return
			}
			defer pool.Release(e)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = exportOutcome{RecordID: recs[idx].ID, Err: ctx.Err()}
					continue
				}
				results[idx] = exportRecord(ctx, e, recs[idx], params)
			}
		}()
	}

	for i := range recs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// exportRecord exports one record and writes its payload file if asked.
func exportRecord(ctx context.Context, e recordExporter, rec patta2pdf.Record, params batchParams) exportOutcome {
	out := exportOutcome{RecordID: rec.ID}

	name := params.filename
	if name == "" {
		name = patta2pdf.PattaName(params.prefix, rec)
	}
	res, err := e.Export(ctx, patta2pdf.ExportRequest{Record: rec, Filename: name})
	if err != nil {
		out.Err = err
		return out
	}
	out.Result = res

	if params.payload {
		out.PayloadPath, out.Err = writePayload(res)
	}
	return out
}

// writePayload writes the verification payload next to the PDF, with the
// same stem and a .json extension.
func writePayload(res *patta2pdf.ExportResult) (string, error) {
	data, err := res.Payload.IndentedJSON()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWritePayload, err)
	}
	path := strings.TrimSuffix(res.Path, filepath.Ext(res.Path)) + ".json"
	if err := fileutil.WriteFileAtomic(path, data, payloadPerm); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWritePayload, err)
	}
	return path, nil
}

// printOutcomes writes one line per record and returns the failure count.
func printOutcomes(outcomes []exportOutcome, common commonFlags, env *Environment) int {
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", o.RecordID, o.Err)
			continue
		}
		if common.quiet {
			continue
		}

		r := o.Result
		if common.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%s, %s, %v)\n",
				o.RecordID, r.Path, plural(r.Pages, "page"), humanSize(r.Size), r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.Path)
		}
		if o.PayloadPath != "" {
			fmt.Fprintf(env.Stdout, "Created %s\n", o.PayloadPath)
		}
	}

	if !common.quiet && len(outcomes) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(outcomes)-failed, failed)
	}
	return failed
}

func firstError(outcomes []exportOutcome) error {
	for _, o := range outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
