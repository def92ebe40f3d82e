package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: patta2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  export     Export patta certificates to PDF")
	fmt.Fprintln(w, "  list       List stored records")
	fmt.Fprintln(w, "  show       Show one record or its verification payload")
	fmt.Fprintln(w, "  import     Add records from a JSON file")
	fmt.Fprintln(w, "  settings   Show or change export settings")
	fmt.Fprintln(w, "  scan       Scan a patta document (simulated)")
	fmt.Fprintln(w, "  doctor     Check system configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'patta2pdf help <command>' for details on a specific command.")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --db <path>           Database file")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing and debug logs")
}

// printExportUsage prints usage for the export command.
func printExportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: patta2pdf export <id>... [flags]")
	fmt.Fprintln(w, "       patta2pdf export --all [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export patta certificates to PDF using the stored export settings.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "                            (files are named <prefix>_<id>_<holder>.pdf)")
	fmt.Fprintln(w, "  -f, --filename <name>     File name (single record only)")
	fmt.Fprintln(w, "                            \"name.pdf\" is used as given; otherwise it")
	fmt.Fprintln(w, "                            names a timestamped file")
	fmt.Fprintln(w, "      --payload             Also write the verification payload as JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Batch:")
	fmt.Fprintln(w, "  -a, --all                 Export every stored record")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-record timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PATTA2PDF_OUTPUT_DIR, PATTA2PDF_TIMEOUT, PATTA2PDF_WORKERS,")
	fmt.Fprintln(w, "  PATTA2PDF_WATERMARK_TEXT, PATTA2PDF_BROWSER_BIN, PATTA2PDF_NO_SANDBOX")
}

// printSettingsUsage prints usage for the settings command.
func printSettingsUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: patta2pdf settings [show] [--json]")
	fmt.Fprintln(w, "       patta2pdf settings set [flags]")
	fmt.Fprintln(w, "       patta2pdf settings reset")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show or change the export settings. Every export reads them afresh.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Set:")
	fmt.Fprintln(w, "      --quality <s>         Quality: low, medium, high, ultra")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: a4, a3, letter")
	fmt.Fprintln(w, "      --compression <n>     Compression level (60-100)")
	fmt.Fprintln(w, "      --watermark           Stamp the watermark (--watermark=false to disable)")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printListUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: patta2pdf list [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List stored records.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printShowUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: patta2pdf show <id> [--json | --payload]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show one record. --payload prints the verification payload that a")
	fmt.Fprintln(w, "certificate exported now would carry.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printImportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: patta2pdf import <file.json | -> [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add records from a JSON array. Existing ids are skipped, never")
	fmt.Fprintln(w, "overwritten. DATE may be \"auto\" for today's date.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printScanUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: patta2pdf scan <document> [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Simulate scanning a patta document and print the extracted fields.")
	fmt.Fprintln(w, "Press Ctrl-C to cancel.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: patta2pdf doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check Chrome, the database and the output directory.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 = ready (warnings allowed), 1 = errors found")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "export":
		printExportUsage(env.Stdout)
	case "settings":
		printSettingsUsage(env.Stdout)
	case "list":
		printListUsage(env.Stdout)
	case "show":
		printShowUsage(env.Stdout)
	case "import":
		printImportUsage(env.Stdout)
	case "scan":
		printScanUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: patta2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: patta2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
