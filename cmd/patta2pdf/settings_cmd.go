package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fra-portal/patta2pdf/internal/settings"
)

// settingsView is the JSON shape of "settings show --json".
type settingsView struct {
	settings.Settings
	Defaulted []string `json:"defaulted,omitempty"`
}

// runSettings dispatches the settings subcommands. With no subcommand it
// shows the effective settings.
func runSettings(ctx context.Context, args []string, env *Environment) error {
	sub := "show"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "show":
		return runSettingsShow(ctx, args, env)
	case "set":
		return runSettingsSet(ctx, args, env)
	case "reset":
		return runSettingsReset(ctx, args, env)
	default:
		printSettingsUsage(env.Stderr)
		return fmt.Errorf("%w: unknown settings command %q", ErrUsage, sub)
	}
}

func runSettingsShow(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseViewFlags("settings show", printSettingsUsage, args, env.Stderr)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: settings show takes no arguments", ErrUsage)
	}

	s, err := openSession(ctx, f.common, env)
	if err != nil {
		return err
	}
	defer s.Close()

	res := settings.Resolve(ctx, s.db)
	if res.Cause != nil {
		s.logger.Warn("stored settings unusable, showing defaults")
	}
	if f.json {
		return writeJSON(env.Stdout, settingsView{Settings: res.Settings, Defaulted: res.Defaulted})
	}
	printSettings(env.Stdout, res)
	return nil
}

// runSettingsSet applies the given flags over the effective settings and
// replaces the stored blob.
func runSettingsSet(ctx context.Context, args []string, env *Environment) error {
	f, fs, err := parseSettingsSetFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: settings set takes flags only, got %q", ErrUsage, fs.Args())
	}

	s, err := openSession(ctx, f.common, env)
	if err != nil {
		return err
	}
	defer s.Close()

	next := settings.Resolve(ctx, s.db).Settings
	changed := false
	if fs.Changed("quality") {
		next.Quality = settings.Quality(strings.ToLower(f.quality))
		changed = true
	}
	if fs.Changed("page-size") {
		next.PageSize = settings.PageSize(strings.ToLower(f.pageSize))
		changed = true
	}
	if fs.Changed("compression") {
		next.CompressionLevel = f.compression
		changed = true
	}
	if fs.Changed("watermark") {
		next.Watermark = f.watermark
		changed = true
	}
	if !changed {
		return fmt.Errorf("%w: pass at least one of --quality, --page-size, --compression, --watermark", ErrUsage)
	}

	if err := settings.Save(ctx, s.db, next); err != nil {
		return err
	}
	if !f.common.quiet {
		printSettings(env.Stdout, settings.Resolution{Settings: next})
	}
	return nil
}

func runSettingsReset(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseViewFlags("settings reset", printSettingsUsage, args, env.Stderr)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: settings reset takes no arguments", ErrUsage)
	}

	s, err := openSession(ctx, f.common, env)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := settings.Reset(ctx, s.db); err != nil {
		return err
	}
	if !f.common.quiet {
		fmt.Fprintln(env.Stdout, "Settings reset to defaults")
	}
	return nil
}

func printSettings(w io.Writer, res settings.Resolution) {
	defaulted := make(map[string]bool, len(res.Defaulted))
	for _, name := range res.Defaulted {
		defaulted[name] = true
	}
	mark := func(name string) string {
		if defaulted[name] {
			return " (default)"
		}
		return ""
	}

	st := res.Settings
	fmt.Fprintf(w, "Quality:      %s (scale %gx)%s\n", st.Quality, st.Quality.Scale(), mark("pdfQuality"))
	fmt.Fprintf(w, "Page size:    %s%s\n", st.PageSize, mark("pdfPageSize"))
	fmt.Fprintf(w, "Compression:  %d%s\n", st.CompressionLevel, mark("compressionLevel"))
	fmt.Fprintf(w, "Watermark:    %s%s\n", onOff(st.Watermark), mark("watermark"))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
