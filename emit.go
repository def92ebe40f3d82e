package patta2pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fra-portal/patta2pdf/internal/fileutil"
)

// Emitter delivers a finished PDF and returns where it went.
type Emitter interface {
	Emit(ctx context.Context, name string, data []byte) (string, error)
}

// outputPerm is the mode of emitted files.
const outputPerm os.FileMode = 0o644

// FileEmitter writes PDFs into Dir ("" = current directory). Writes are
// atomic: a failed export never leaves a partial file behind.
type FileEmitter struct {
	Dir string
}

// Emit writes data to Dir/name.
func (f FileEmitter) Emit(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	if err := fileutil.EnsureDir(f.Dir); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEmit, err)
	}

	path := filepath.Join(f.Dir, name)
	if err := fileutil.WriteFileAtomic(path, data, outputPerm); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEmit, err)
	}
	return path, nil
}
