// Package hints appends actionable advice to CLI error messages.
// Every hint is rendered as "\n  hint: <text>".
package hints

import (
	"os"
	"strings"

	"github.com/fra-portal/patta2pdf/internal/fileutil"
)

// IsInContainer reports whether we run inside Docker. Tests replace it.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect suggests the browser environment variables that apply
// to the current machine.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""

	if (inCI || IsInContainer()) && os.Getenv("PATTA2PDF_NO_SANDBOX") != "1" {
		hints = append(hints, "set PATTA2PDF_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("PATTA2PDF_BROWSER_BIN") == "" {
		hints = append(hints, "set PATTA2PDF_BROWSER_BIN to use an installed Chrome")
	}
	return formatHints(hints)
}

// ForTimeout suggests raising the export timeout.
func ForTimeout() string {
	return format("raise --timeout for high quality or ultra exports")
}

// ForConfigNotFound points at --config and the user config location.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/patta2pdf.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(filepathSlash(p), ".config/patta2pdf") {
			hint += " or create " + p
			break
		}
	}
	return format(hint)
}

// ForOutputDirectory is shown when the output directory cannot be written.
func ForOutputDirectory() string {
	return format("check the output directory exists and is writable, or pass --output")
}

// ForRecordNotFound suggests listing the known records.
func ForRecordNotFound() string {
	return format("run 'patta2pdf list' to see known record ids")
}

// ForCapacityExceeded is shown when the verification payload is too large
// for a QR symbol.
func ForCapacityExceeded() string {
	return format("shorten the boundary descriptions or holder fields of the record")
}

// ForAssetNotFound lists the available asset names.
func ForAssetNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForSettings lists valid setting values.
func ForSettings(qualities, pageSizes []string) string {
	return format("quality: " + strings.Join(qualities, "|") +
		"; page size: " + strings.Join(pageSizes, "|") +
		"; compression: 60-100")
}

func filepathSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
