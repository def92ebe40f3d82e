package main

import (
	"context"
	"errors"
	"os"

	"github.com/fra-portal/patta2pdf"
	"github.com/fra-portal/patta2pdf/internal/assets"
	"github.com/fra-portal/patta2pdf/internal/config"
	"github.com/fra-portal/patta2pdf/internal/hints"
	"github.com/fra-portal/patta2pdf/internal/settings"
)

// Exit codes for the patta2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command succeeded
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, settings or record input
	ExitIO      = 3 // File not found, permission denied, database unavailable
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, patta2pdf.ErrBrowserConnect) ||
		errors.Is(err, patta2pdf.ErrPageCreate) ||
		errors.Is(err, patta2pdf.ErrPageLoad) ||
		errors.Is(err, patta2pdf.ErrRasterization) ||
		errors.Is(err, patta2pdf.ErrSourceNotReady) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, patta2pdf.ErrEmit) ||
		errors.Is(err, ErrOpenDatabase) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWritePayload) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, settings.ErrInvalidQuality) ||
		errors.Is(err, settings.ErrInvalidPageSize) ||
		errors.Is(err, settings.ErrInvalidCompression) ||
		errors.Is(err, patta2pdf.ErrInvalidRecord) ||
		errors.Is(err, patta2pdf.ErrRecordNotFound) ||
		errors.Is(err, patta2pdf.ErrDecodeRecords) ||
		errors.Is(err, patta2pdf.ErrInvalidFilename) ||
		errors.Is(err, patta2pdf.ErrEncodingCapacityExceeded) ||
		errors.Is(err, patta2pdf.ErrInvalidAssetPath) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrTemplateNotFound) ||
		errors.Is(err, assets.ErrConditionsNotFound) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns actionable advice for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, patta2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(config.AppName))
	case errors.Is(err, patta2pdf.ErrRecordNotFound):
		return hints.ForRecordNotFound()
	case errors.Is(err, patta2pdf.ErrEncodingCapacityExceeded):
		return hints.ForCapacityExceeded()
	case errors.Is(err, patta2pdf.ErrEmit):
		return hints.ForOutputDirectory()
	case errors.Is(err, assets.ErrStyleNotFound),
		errors.Is(err, assets.ErrTemplateNotFound),
		errors.Is(err, assets.ErrConditionsNotFound):
		return hints.ForAssetNotFound(assets.EmbeddedNames(err))
	case errors.Is(err, settings.ErrInvalidQuality),
		errors.Is(err, settings.ErrInvalidPageSize),
		errors.Is(err, settings.ErrInvalidCompression):
		return hints.ForSettings(qualityNames(), pageSizeNames())
	}
	return ""
}

func qualityNames() []string {
	var names []string
	for _, q := range settings.Qualities() {
		names = append(names, string(q))
	}
	return names
}

func pageSizeNames() []string {
	var names []string
	for _, p := range settings.PageSizes() {
		names = append(names, string(p))
	}
	return names
}
