// Package yamlutil decodes YAML documents through a single bounded entry
// point.
package yamlutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// MaxInputSize bounds any YAML document read by this package.
var MaxInputSize = 1 << 20

var (
	ErrEmptyDocument  = errors.New("yamlutil: empty document")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrDecode         = errors.New("yamlutil: decode failed")
)

// Mode selects how unknown keys are handled.
type Mode int

const (
	// Lenient ignores keys with no matching field.
	Lenient Mode = iota
	// Strict rejects keys with no matching field.
	Strict
)

// Decode parses data into v.
func Decode(data []byte, v any, mode Mode) error {
	if len(data) == 0 {
		return ErrEmptyDocument
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}

	var opts []yaml.DecodeOption
	if mode == Strict {
		opts = append(opts, yaml.Strict())
	}
	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// DecodeFile reads path and decodes it into v. Errors from opening the file
// are returned unwrapped so callers can test for fs.ErrNotExist.
func DecodeFile(path string, v any, mode Mode) error {
	f, err := os.Open(path) // #nosec G304 -- caller-chosen config path
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(MaxInputSize)+1))
	if err != nil {
		return fmt.Errorf("yamlutil: reading %s: %w", path, err)
	}
	return Decode(data, v, mode)
}
