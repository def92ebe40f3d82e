package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fra-portal/patta2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath    string        // PATTA2PDF_CONFIG: config file name or path
	DBPath        string        // PATTA2PDF_DB: database file
	OutputDir     string        // PATTA2PDF_OUTPUT_DIR: output directory
	Timeout       time.Duration // PATTA2PDF_TIMEOUT: per-record timeout
	Workers       int           // PATTA2PDF_WORKERS: parallel workers
	WatermarkText string        // PATTA2PDF_WATERMARK_TEXT: overlay text
	BrowserBin    string        // PATTA2PDF_BROWSER_BIN: Chrome binary
	NoSandbox     bool          // PATTA2PDF_NO_SANDBOX: "1" or "true"
}

// knownEnvVars lists valid PATTA2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"PATTA2PDF_CONFIG":         true,
	"PATTA2PDF_DB":             true,
	"PATTA2PDF_OUTPUT_DIR":     true,
	"PATTA2PDF_TIMEOUT":        true,
	"PATTA2PDF_WORKERS":        true,
	"PATTA2PDF_WATERMARK_TEXT": true,
	"PATTA2PDF_BROWSER_BIN":    true,
	"PATTA2PDF_NO_SANDBOX":     true,
	"PATTA2PDF_CONTAINER":      true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:    os.Getenv("PATTA2PDF_CONFIG"),
		DBPath:        os.Getenv("PATTA2PDF_DB"),
		OutputDir:     os.Getenv("PATTA2PDF_OUTPUT_DIR"),
		WatermarkText: os.Getenv("PATTA2PDF_WATERMARK_TEXT"),
		BrowserBin:    os.Getenv("PATTA2PDF_BROWSER_BIN"),
	}

	if timeout := os.Getenv("PATTA2PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := os.Getenv("PATTA2PDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	if v := os.Getenv("PATTA2PDF_NO_SANDBOX"); v != "" {
		cfg.NoSandbox, _ = strconv.ParseBool(v)
	}

	return cfg
}

// warnUnknownEnvVars writes a warning for each unrecognized PATTA2PDF_*
// variable.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PATTA2PDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overlays set environment values on cfg.
// Precedence: flags > env > config file > defaults (flags are applied by
// the caller afterwards).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.DBPath != "" {
		cfg.Database.Path = env.DBPath
	}
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.Timeout > 0 {
		cfg.Browser.Timeout = env.Timeout.String()
	}
	if env.Workers > 0 {
		cfg.Export.Workers = env.Workers
	}
	if env.WatermarkText != "" {
		cfg.Watermark.Text = env.WatermarkText
	}
	if env.BrowserBin != "" {
		cfg.Browser.Bin = env.BrowserBin
	}
	if env.NoSandbox {
		cfg.Browser.NoSandbox = true
	}
}
