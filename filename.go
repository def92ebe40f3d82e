package patta2pdf

import (
	"fmt"
	"strings"
	"time"

	"github.com/fra-portal/patta2pdf/internal/dateutil"
)

// DefaultFilenamePrefix starts the names PattaName builds.
const DefaultFilenamePrefix = "FRA_Patta"

const pdfExt = ".pdf"

// SanitizeName replaces every rune outside ASCII letters, digits and the
// Devanagari block (U+0900-U+097F) with an underscore.
func SanitizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if keepRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func keepRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r >= 0x0900 && r <= 0x097F:
		return true
	}
	return false
}

// PattaName is the certificate name a portal export requests:
// <prefix>_<id>_<holder>.pdf with each part sanitized. An empty prefix uses
// DefaultFilenamePrefix.
func PattaName(prefix string, rec Record) string {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultFilenamePrefix
	}
	return strings.Join([]string{SanitizeName(prefix), recordStem(rec)}, "_") + pdfExt
}

// recordStem is <id>_<holder>, sanitized.
func recordStem(rec Record) string {
	holder := strings.TrimSpace(rec.HolderName)
	if holder == "" {
		holder = Placeholder
	}
	return SanitizeName(rec.ID) + "_" + SanitizeName(holder)
}

// Filename names the output for rec.
//
// With no requested name the result is <id>_<holder>_<yyyymmddhhmmssmmm>.pdf.
// A requested name ending in ".pdf" is used as given with its stem
// sanitized. Any other requested name replaces <id>_<holder> and keeps the
// timestamp.
func Filename(rec Record, now time.Time, requested string) (string, error) {
	requested = strings.TrimSpace(requested)

	if strings.HasSuffix(strings.ToLower(requested), pdfExt) {
		stem := strings.TrimSpace(requested[:len(requested)-len(pdfExt)])
		if stem == "" {
			return "", fmt.Errorf("%w: %q has no name before the extension", ErrInvalidFilename, requested)
		}
		return SanitizeName(stem) + pdfExt, nil
	}

	stamp := dateutil.Stamp(now)
	if requested != "" {
		return SanitizeName(requested) + "_" + stamp + pdfExt, nil
	}
	return recordStem(rec) + "_" + stamp + pdfExt, nil
}
