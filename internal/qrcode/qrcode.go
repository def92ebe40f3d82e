// Package qrcode renders verification payloads as QR symbols.
//
// Output is a two-color paletted PNG with a one-module quiet zone. Encoding
// is deterministic: identical text and options produce identical bytes.
package qrcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	qr "github.com/skip2/go-qrcode"
)

// Sentinel errors for QR encoding.
var (
	ErrEmptyContent     = errors.New("qrcode: content cannot be empty")
	ErrCapacityExceeded = errors.New("qrcode: content exceeds symbol capacity")
	ErrInvalidLevel     = errors.New("qrcode: invalid error-correction level")
	ErrInvalidSize      = errors.New("qrcode: invalid pixel size")
	ErrEncode           = errors.New("qrcode: encoding failed")
)

// Level is an error-correction tier.
type Level string

const (
	LevelL Level = "L"
	LevelM Level = "M"
	LevelQ Level = "Q"
	LevelH Level = "H"
)

// DefaultSize is the default symbol edge in pixels.
const DefaultSize = 256

// margin is the quiet zone in modules.
const margin = 1

// capacity is the version-40 byte-mode limit per level.
var capacity = map[Level]int{
	LevelL: 2953,
	LevelM: 2331,
	LevelQ: 1663,
	LevelH: 1273,
}

// Capacity returns the maximum payload length in bytes for level.
func Capacity(level Level) (int, error) {
	n, ok := capacity[level]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}
	return n, nil
}

func (l Level) recovery() qr.RecoveryLevel {
	switch l {
	case LevelL:
		return qr.Low
	case LevelQ:
		return qr.High
	case LevelH:
		return qr.Highest
	}
	return qr.Medium
}

// Options control symbol rendering. Zero values select DefaultSize and LevelM.
type Options struct {
	Size  int
	Level Level
}

func (o Options) withDefaults() Options {
	if o.Size == 0 {
		o.Size = DefaultSize
	}
	if o.Level == "" {
		o.Level = LevelM
	}
	return o
}

// Palette is dark modules on a light background.
var Palette = color.Palette{
	color.Gray{Y: 0xff},
	color.Gray{Y: 0x00},
}

// Symbol is an encoded QR matrix. Modules[y][x] is true for a dark module.
type Symbol struct {
	Modules [][]bool
	Level   Level
}

// New encodes text into a symbol. The payload length is checked against the
// level's capacity before encoding so that data is never truncated.
func New(text string, level Level) (*Symbol, error) {
	if text == "" {
		return nil, ErrEmptyContent
	}
	limit, err := Capacity(level)
	if err != nil {
		return nil, err
	}
	if len(text) > limit {
		return nil, fmt.Errorf("%w: %d bytes, level %s holds at most %d", ErrCapacityExceeded, len(text), level, limit)
	}

	code, err := qr.New(text, level.recovery())
	if err != nil {
		if strings.Contains(err.Error(), "too long") {
			return nil, fmt.Errorf("%w: %d bytes at level %s: %v", ErrCapacityExceeded, len(text), level, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	code.DisableBorder = true

	return &Symbol{Modules: code.Bitmap(), Level: level}, nil
}

// Image rasterizes the symbol into a size x size paletted image, quiet zone
// included. Module edges are placed by integer division so every pixel maps
// to exactly one module.
func (s *Symbol) Image(size int) (*image.Paletted, error) {
	n := len(s.Modules) + 2*margin
	if size < n {
		return nil, fmt.Errorf("%w: %d px is smaller than %d modules", ErrInvalidSize, size, n)
	}

	img := image.NewPaletted(image.Rect(0, 0, size, size), Palette)
	for y := 0; y < size; y++ {
		my := y*n/size - margin
		for x := 0; x < size; x++ {
			mx := x*n/size - margin
			if s.dark(mx, my) {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	return img, nil
}

func (s *Symbol) dark(x, y int) bool {
	if y < 0 || y >= len(s.Modules) {
		return false
	}
	row := s.Modules[y]
	if x < 0 || x >= len(row) {
		return false
	}
	return row[x]
}

// Encode renders text as PNG bytes.
func Encode(text string, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	if opts.Size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, opts.Size)
	}

	sym, err := New(text, opts.Level)
	if err != nil {
		return nil, err
	}
	img, err := sym.Image(opts.Size)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}
