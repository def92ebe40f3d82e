// Package dateutil handles the day-first dates carried by land-title
// records and the timestamps used in output names.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an unusable format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// ErrInvalidDate indicates a value that does not match its format.
var ErrInvalidDate = errors.New("invalid date")

// MaxDateFormatLength bounds format strings.
const MaxDateFormatLength = 50

// IssueDateFormat is how records store their issue date.
const IssueDateFormat = "DD/MM/YYYY"

// tokens are matched longest first.
var tokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named formats accepted after "auto:".
var Presets = map[string]string{
	"issue": IssueDateFormat,
	"iso":   "YYYY-MM-DD",
	"long":  "D MMMM YYYY",
}

// Layout converts a token format such as "DD/MM/YYYY" into a Go time
// layout. Text inside brackets is copied literally.
func Layout(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			b.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}
		n := 1
		lit := format[i : i+1]
		for _, t := range tokens {
			if strings.HasPrefix(format[i:], t.token) {
				n, lit = len(t.token), t.layout
				break
			}
		}
		b.WriteString(lit)
		i += n
	}
	return b.String(), nil
}

// ParseIssueDate parses a DD/MM/YYYY date.
func ParseIssueDate(s string) (time.Time, error) {
	layout, _ := Layout(IssueDateFormat)
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not %s", ErrInvalidDate, s, IssueDateFormat)
	}
	return t, nil
}

// Resolve expands "auto" or "auto:FORMAT" to the date t in that format;
// "auto" alone uses IssueDateFormat. Other values pass through unchanged.
func Resolve(value string, t time.Time) (string, error) {
	lower := strings.ToLower(value)
	if !strings.HasPrefix(lower, "auto") {
		return value, nil
	}

	format := IssueDateFormat
	switch {
	case lower == "auto":
	case strings.HasPrefix(lower, "auto:") && len(value) > len("auto:"):
		format = value[len("auto:"):]
		if p, ok := Presets[strings.ToLower(format)]; ok {
			format = p
		}
	default:
		return "", fmt.Errorf("%w: use \"auto\" or \"auto:FORMAT\", got %q", ErrInvalidDateFormat, value)
	}

	layout, err := Layout(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

// Stamp renders t as yyyymmddhhmmssmmm, a sortable millisecond suffix.
func Stamp(t time.Time) string {
	return t.Format("20060102150405") + fmt.Sprintf("%03d", t.Nanosecond()/int(time.Millisecond))
}
