package yamlutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fra-portal/patta2pdf/internal/yamlutil"
)

type browserSection struct {
	Bin       string `yaml:"bin"`
	NoSandbox bool   `yaml:"noSandbox"`
}

type sample struct {
	Authority string         `yaml:"authority"`
	Workers   int            `yaml:"workers"`
	Browser   browserSection `yaml:"browser"`
}

// ---------------------------------------------------------------------------
// TestDecode
// ---------------------------------------------------------------------------

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		mode    yamlutil.Mode
		dest    any
		wantErr error
		check   func(t *testing.T, s *sample)
	}{
		{
			name: "nested document",
			data: "authority: District Collector\nworkers: 4\nbrowser:\n  noSandbox: true\n",
			mode: yamlutil.Strict,
			dest: &sample{},
			check: func(t *testing.T, s *sample) {
				if s.Authority != "District Collector" || s.Workers != 4 || !s.Browser.NoSandbox {
					t.Errorf("decoded = %+v", s)
				}
			},
		},
		{
			name: "devanagari value",
			data: "authority: जिला कलेक्टर\n",
			mode: yamlutil.Strict,
			dest: &sample{},
			check: func(t *testing.T, s *sample) {
				if s.Authority != "जिला कलेक्टर" {
					t.Errorf("Authority = %q", s.Authority)
				}
			},
		},
		{
			name: "unknown key lenient",
			data: "authority: x\ncolour: green\n",
			mode: yamlutil.Lenient,
			dest: &sample{},
		},
		{
			name:    "unknown key strict",
			data:    "authority: x\ncolour: green\n",
			mode:    yamlutil.Strict,
			dest:    &sample{},
			wantErr: yamlutil.ErrDecode,
		},
		{
			name:    "empty",
			data:    "",
			dest:    &sample{},
			wantErr: yamlutil.ErrEmptyDocument,
		},
		{
			name:    "nil destination",
			data:    "workers: 1",
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:    "syntax error",
			data:    "browser: [unclosed",
			dest:    &sample{},
			wantErr: yamlutil.ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Decode([]byte(tt.data), tt.dest, tt.mode)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, tt.dest.(*sample))
			}
		})
	}
}

func TestDecode_TooLarge(t *testing.T) {
	t.Parallel()

	data := []byte("authority: " + strings.Repeat("x", yamlutil.MaxInputSize))
	if err := yamlutil.Decode(data, &sample{}, yamlutil.Lenient); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("error = %v, want ErrInputTooLarge", err)
	}
}

// ---------------------------------------------------------------------------
// TestDecodeFile
// ---------------------------------------------------------------------------

func TestDecodeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "patta2pdf.yaml")
	if err := os.WriteFile(path, []byte("workers: 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var s sample
	if err := yamlutil.DecodeFile(path, &s, yamlutil.Strict); err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if s.Workers != 3 {
		t.Errorf("Workers = %d, want 3", s.Workers)
	}

	err := yamlutil.DecodeFile(filepath.Join(dir, "missing.yaml"), &s, yamlutil.Strict)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want os.ErrNotExist", err)
	}
}
