// Package config loads the patta2pdf tool configuration from YAML.
//
// Export settings (quality, page size, compression, watermark) are not part
// of this file: they live in the settings store and are edited with
// "patta2pdf settings".
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fra-portal/patta2pdf/internal/fileutil"
	"github.com/fra-portal/patta2pdf/internal/yamlutil"
)

// AppName names the per-user config and data directories.
const AppName = "patta2pdf"

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength          = 4096
	MaxURLLength           = 2048
	MaxAuthorityLength     = 200
	MaxPrefixLength        = 40
	MaxWatermarkTextLength = 60
	MaxAssetNameLength     = 64
)

// MaxWorkers caps batch export concurrency; each worker owns a browser.
const MaxWorkers = 8

// QR image size bounds in pixels.
const (
	MinQRSize = 64
	MaxQRSize = 1024
)

// Default values.
const (
	DefaultFilenamePrefix  = "FRA_Patta"
	DefaultVerificationURL = "https://fra.gov.in"
	DefaultAuthority       = "Sub-Divisional Level Committee, Forest Rights Act 2006"
	DefaultWatermarkText   = "GOVERNMENT OF INDIA"
	DefaultDatabaseFile    = "patta.db"
)

// Config holds the tool configuration.
type Config struct {
	Database     DatabaseConfig     `yaml:"database"`
	Output       OutputConfig       `yaml:"output"`
	Verification VerificationConfig `yaml:"verification"`
	Watermark    WatermarkConfig    `yaml:"watermark"`
	Browser      BrowserConfig      `yaml:"browser"`
	Assets       AssetsConfig       `yaml:"assets"`
	Export       ExportConfig       `yaml:"export"`
}

// DatabaseConfig locates the SQLite file holding records and settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // empty = <user config dir>/patta2pdf/patta.db
}

// OutputConfig controls where and how PDFs are written.
type OutputConfig struct {
	Dir            string `yaml:"dir"`            // empty = current directory
	FilenamePrefix string `yaml:"filenamePrefix"` // default FRA_Patta
}

// VerificationConfig controls the QR verification payload.
type VerificationConfig struct {
	BaseURL   string `yaml:"baseURL"`
	Authority string `yaml:"authority"`
	QRSize    int    `yaml:"qrSize"` // pixels; 0 = 256
}

// WatermarkConfig sets the overlay text. Whether it is applied is an export
// setting.
type WatermarkConfig struct {
	Text string `yaml:"text"`
}

// BrowserConfig controls the headless browser used for rasterization.
type BrowserConfig struct {
	Bin       string `yaml:"bin"`
	NoSandbox bool   `yaml:"noSandbox"`
	Timeout   string `yaml:"timeout"` // Go duration; empty = no timeout
}

// AssetsConfig selects certificate assets.
type AssetsConfig struct {
	BasePath   string `yaml:"basePath"` // empty = embedded assets only
	Style      string `yaml:"style"`
	Template   string `yaml:"template"`
	Conditions string `yaml:"conditions"`
}

// ExportConfig holds batch export options.
type ExportConfig struct {
	Workers int `yaml:"workers"` // 0 = auto
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Output:       OutputConfig{FilenamePrefix: DefaultFilenamePrefix},
		Verification: VerificationConfig{BaseURL: DefaultVerificationURL, Authority: DefaultAuthority},
		Watermark:    WatermarkConfig{Text: DefaultWatermarkText},
	}
}

// Validate checks field lengths and values. LoadConfig calls it; callers
// building a Config by hand should too.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"database.path", c.Database.Path, MaxPathLength},
		{"output.dir", c.Output.Dir, MaxPathLength},
		{"output.filenamePrefix", c.Output.FilenamePrefix, MaxPrefixLength},
		{"verification.baseURL", c.Verification.BaseURL, MaxURLLength},
		{"verification.authority", c.Verification.Authority, MaxAuthorityLength},
		{"watermark.text", c.Watermark.Text, MaxWatermarkTextLength},
		{"browser.bin", c.Browser.Bin, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"assets.style", c.Assets.Style, MaxAssetNameLength},
		{"assets.template", c.Assets.Template, MaxAssetNameLength},
		{"assets.conditions", c.Assets.Conditions, MaxAssetNameLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	if c.Verification.BaseURL != "" {
		u, err := url.Parse(c.Verification.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: verification.baseURL must be an http(s) URL, got %q", ErrInvalidValue, c.Verification.BaseURL)
		}
	}
	if strings.ContainsAny(c.Output.FilenamePrefix, `/\`) {
		return fmt.Errorf("%w: output.filenamePrefix must not contain path separators", ErrInvalidValue)
	}
	if _, err := c.Browser.TimeoutDuration(); err != nil {
		return err
	}
	if c.Verification.QRSize != 0 && (c.Verification.QRSize < MinQRSize || c.Verification.QRSize > MaxQRSize) {
		return fmt.Errorf("%w: verification.qrSize must be between %d and %d, got %d", ErrInvalidValue, MinQRSize, MaxQRSize, c.Verification.QRSize)
	}
	if c.Export.Workers < 0 || c.Export.Workers > MaxWorkers {
		return fmt.Errorf("%w: export.workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Export.Workers)
	}
	return nil
}

// TimeoutDuration parses Timeout. Zero means no timeout.
func (b BrowserConfig) TimeoutDuration() (time.Duration, error) {
	if b.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(b.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: browser.timeout %q", ErrInvalidValue, b.Timeout)
	}
	return d, nil
}

// DatabasePath returns the configured database path or the per-user default.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(dir, AppName, DefaultDatabaseFile), nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// A value containing a path separator is read as a path; otherwise it is
// searched for with SearchPaths. Missing keys keep their defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	candidates := []string{nameOrPath}
	if !fileutil.IsFilePath(nameOrPath) {
		candidates = SearchPaths(nameOrPath)
	}

	cfg := DefaultConfig()
	for _, p := range candidates {
		err := yamlutil.DecodeFile(p, cfg, yamlutil.Strict)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, p, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(candidates, ", "))
}

// SearchPaths lists where a config name is looked up, in order: the
// current directory, then the user config directory, each with .yaml
// before .yml.
func SearchPaths(name string) []string {
	exts := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(exts)*2)
	for _, ext := range exts {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range exts {
			paths = append(paths, filepath.Join(dir, AppName, name+ext))
		}
	}
	return paths
}
