// Package settings resolves and persists the export settings blob.
//
// The blob is a JSON object stored under Key. Resolve never fails: an absent
// or malformed blob yields Defaults(), and fields missing from a valid blob
// take their default.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Key is the storage key of the settings blob.
const Key = "fra-portal-settings"

// Sentinel errors for settings validation.
var (
	ErrInvalidQuality     = errors.New("invalid quality")
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidCompression = errors.New("invalid compression level")
	ErrMalformedBlob      = errors.New("malformed settings blob")
)

// Quality is the rasterization density tier.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
	QualityUltra  Quality = "ultra"
)

// Scale returns the device pixel multiplier for the tier, or 0 if unknown.
func (q Quality) Scale() float64 {
	switch q {
	case QualityLow:
		return 1
	case QualityMedium:
		return 1.5
	case QualityHigh:
		return 2
	case QualityUltra:
		return 3
	}
	return 0
}

// Qualities lists valid tiers in ascending order.
func Qualities() []Quality {
	return []Quality{QualityLow, QualityMedium, QualityHigh, QualityUltra}
}

// PageSize is a physical output page format.
type PageSize string

const (
	PageA4     PageSize = "a4"
	PageA3     PageSize = "a3"
	PageLetter PageSize = "letter"
)

// PageSizes lists valid formats.
func PageSizes() []PageSize {
	return []PageSize{PageA4, PageA3, PageLetter}
}

const pointsPerMM = 72 / 25.4

// Millimeters returns the portrait width and height in millimeters.
func (p PageSize) Millimeters() (width, height float64, ok bool) {
	switch p {
	case PageA4:
		return 210, 297, true
	case PageA3:
		return 297, 420, true
	case PageLetter:
		return 215.9, 279.4, true
	}
	return 0, 0, false
}

func (p PageSize) valid() bool {
	_, _, ok := p.Millimeters()
	return ok
}

// Points returns the portrait width and height in PDF points.
func (p PageSize) Points() (width, height float64, ok bool) {
	w, h, ok := p.Millimeters()
	return w * pointsPerMM, h * pointsPerMM, ok
}

// Compression bounds (percent of full raster resolution kept).
const (
	MinCompression = 60
	MaxCompression = 100
)

// Settings is the export configuration read by the pipeline.
type Settings struct {
	Quality          Quality  `json:"pdfQuality"`
	PageSize         PageSize `json:"pdfPageSize"`
	CompressionLevel int      `json:"compressionLevel"`
	Watermark        bool     `json:"watermark"`
}

// Defaults returns the configuration used when nothing valid is stored.
func Defaults() Settings {
	return Settings{
		Quality:          QualityHigh,
		PageSize:         PageA4,
		CompressionLevel: 80,
		Watermark:        true,
	}
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	if !slices.Contains(Qualities(), s.Quality) {
		return fmt.Errorf("%w: %q (must be low, medium, high, or ultra)", ErrInvalidQuality, s.Quality)
	}
	if !slices.Contains(PageSizes(), s.PageSize) {
		return fmt.Errorf("%w: %q (must be a4, a3, or letter)", ErrInvalidPageSize, s.PageSize)
	}
	if s.CompressionLevel < MinCompression || s.CompressionLevel > MaxCompression {
		return fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidCompression, s.CompressionLevel, MinCompression, MaxCompression)
	}
	return nil
}

// Reader is the read side of the key-value store.
type Reader interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

// Writer is the write side of the key-value store.
type Writer interface {
	Reader
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Resolution describes where a resolved value came from.
type Resolution struct {
	Settings Settings
	// Defaulted names the blob fields that fell back to their default.
	// It lists every field when the blob was absent or unusable.
	Defaulted []string
	// Cause is set when the blob could not be read or parsed. It is
	// informational only.
	Cause error
}

var allFields = []string{"pdfQuality", "pdfPageSize", "compressionLevel", "watermark"}

// Resolve reads the blob from r. It never returns an error.
func Resolve(ctx context.Context, r Reader) Resolution {
	if r == nil {
		return Resolution{Settings: Defaults(), Defaulted: allFields}
	}
	blob, ok, err := r.Get(ctx, Key)
	if err != nil {
		return Resolution{Settings: Defaults(), Defaulted: allFields, Cause: err}
	}
	if !ok {
		return Resolution{Settings: Defaults(), Defaulted: allFields}
	}
	return Parse(blob)
}

// Parse decodes a blob. Missing fields take their default. A blob that is
// not a JSON object, or that holds an export field with a wrong type or an
// out-of-range value, is malformed and yields exactly the defaults.
func Parse(blob string) Resolution {
	malformed := func(err error) Resolution {
		return Resolution{Settings: Defaults(), Defaulted: allFields, Cause: err}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(blob), &fields); err != nil {
		return malformed(fmt.Errorf("%w: %v", ErrMalformedBlob, err))
	}
	if fields == nil {
		return malformed(fmt.Errorf("%w: not an object", ErrMalformedBlob))
	}

	s := Defaults()
	var defaulted []string
	invalid := func(name string) Resolution {
		return malformed(fmt.Errorf("%w: field %s has value %s", ErrMalformedBlob, name, fields[name]))
	}

	var q Quality
	switch present, ok := decodeField(fields, "pdfQuality", &q); {
	case !present:
		defaulted = append(defaulted, "pdfQuality")
	case !ok || q.Scale() == 0:
		return invalid("pdfQuality")
	default:
		s.Quality = q
	}

	var p PageSize
	switch present, ok := decodeField(fields, "pdfPageSize", &p); {
	case !present:
		defaulted = append(defaulted, "pdfPageSize")
	case !ok || !p.valid():
		return invalid("pdfPageSize")
	default:
		s.PageSize = p
	}

	var c float64
	switch present, ok := decodeField(fields, "compressionLevel", &c); {
	case !present:
		defaulted = append(defaulted, "compressionLevel")
	case !ok || c != float64(int(c)) || int(c) < MinCompression || int(c) > MaxCompression:
		return invalid("compressionLevel")
	default:
		s.CompressionLevel = int(c)
	}

	var w bool
	switch present, ok := decodeField(fields, "watermark", &w); {
	case !present:
		defaulted = append(defaulted, "watermark")
	case !ok:
		return invalid("watermark")
	default:
		s.Watermark = w
	}

	return Resolution{Settings: s, Defaulted: defaulted}
}

// decodeField reports whether name is present in fields and whether it
// decoded into dst.
func decodeField(fields map[string]json.RawMessage, name string, dst any) (present, ok bool) {
	raw, present := fields[name]
	if !present {
		return false, false
	}
	return true, json.Unmarshal(raw, dst) == nil
}
// Save validates s and replaces the stored export settings. Keys in the blob
// that belong to other settings screens are kept.
func Save(ctx context.Context, w Writer, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	fields := map[string]json.RawMessage{}
	if blob, ok, err := w.Get(ctx, Key); err != nil {
		return fmt.Errorf("reading settings: %w", err)
	} else if ok {
		// An unparsable blob is replaced outright.
		_ = json.Unmarshal([]byte(blob), &fields)
		if fields == nil {
			fields = map[string]json.RawMessage{}
		}
	}

	own, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	var ownFields map[string]json.RawMessage
	if err := json.Unmarshal(own, &ownFields); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	for k, v := range ownFields {
		fields[k] = v
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := w.Put(ctx, Key, string(out)); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

// Reset removes the stored blob so that defaults apply.
func Reset(ctx context.Context, w Writer) error {
	if err := w.Delete(ctx, Key); err != nil {
		return fmt.Errorf("resetting settings: %w", err)
	}
	return nil
}
