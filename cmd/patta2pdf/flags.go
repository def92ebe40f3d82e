package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	db      string
	quiet   bool
	verbose bool
}

// exportFlags holds flags for the export command.
type exportFlags struct {
	common   commonFlags
	output   string
	workers  int
	timeout  string
	filename string
	all      bool
	payload  bool
}

// settingsSetFlags holds flags for "settings set".
type settingsSetFlags struct {
	common      commonFlags
	quality     string
	pageSize    string
	compression int
	watermark   bool
}

// viewFlags holds flags for read-only commands.
type viewFlags struct {
	common  commonFlags
	json    bool
	payload bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.db, "db", "", "database file (default: user config dir)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and debug logs")
}

func newFlagSet(name string, usage func(io.Writer), stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parseExportFlags parses export flags and returns the record ids.
func parseExportFlags(args []string, stderr io.Writer) (*exportFlags, []string, error) {
	f := &exportFlags{}
	fs := newFlagSet("export", printExportUsage, stderr)

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-record timeout (e.g., 30s, 2m)")
	fs.StringVarP(&f.filename, "filename", "f", "", "output file name (single record only)")
	fs.BoolVarP(&f.all, "all", "a", false, "export every stored record")
	fs.BoolVar(&f.payload, "payload", false, "also write the verification payload as JSON")
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}

// parseSettingsSetFlags parses "settings set" flags. The returned FlagSet
// reports which flags were given.
func parseSettingsSetFlags(args []string, stderr io.Writer) (*settingsSetFlags, *flag.FlagSet, error) {
	f := &settingsSetFlags{}
	fs := newFlagSet("settings set", printSettingsUsage, stderr)

	fs.StringVar(&f.quality, "quality", "", "quality tier: low, medium, high, ultra")
	fs.StringVarP(&f.pageSize, "page-size", "p", "", "page size: a4, a3, letter")
	fs.IntVar(&f.compression, "compression", 0, "compression level (60-100)")
	fs.BoolVar(&f.watermark, "watermark", true, "stamp the watermark (--watermark=false to disable)")
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs, nil
}

// parseViewFlags parses flags for list, show, import, scan and settings
// show/reset.
func parseViewFlags(name string, usage func(io.Writer), args []string, stderr io.Writer) (*viewFlags, []string, error) {
	f := &viewFlags{}
	fs := newFlagSet(name, usage, stderr)

	fs.BoolVar(&f.json, "json", false, "print JSON")
	if name == "show" {
		fs.BoolVar(&f.payload, "payload", false, "print the verification payload instead of the record")
	}
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, nil, parseError(err)
	}
	return f, fs.Args(), nil
}

// parseError marks flag errors as usage errors. --help passes through.
func parseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUsage, err)
}
