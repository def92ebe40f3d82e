package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fra-portal/patta2pdf"
	"github.com/fra-portal/patta2pdf/internal/progress"
)

// defaultScanSteps is the scripted progress shown while "scanning".
var defaultScanSteps = []progress.Step{
	{Label: "Uploading document", Duration: 800 * time.Millisecond},
	{Label: "Detecting layout", Duration: 1200 * time.Millisecond},
	{Label: "Extracting text regions", Duration: 1500 * time.Millisecond},
	{Label: "Recognizing holder details", Duration: 1200 * time.Millisecond},
	{Label: "Validating against FRA records", Duration: 900 * time.Millisecond},
}

// scanExtraction is the fixed result of the document scan. No OCR is
// performed.
type scanExtraction struct {
	Source     string           `json:"source"`
	Confidence float64          `json:"confidence"`
	Record     patta2pdf.Record `json:"record"`
}

var mockExtraction = patta2pdf.Record{
	ID:            "FRA-SCAN-0001",
	SerialNo:      "MP/MDL/2021/0342",
	Date:          "12/02/2021",
	HolderName:    "सुमित्रा बाई मरावी",
	FatherName:    "भगवानदास मरावी",
	Caste:         "Gond (ST)",
	Age:           "39",
	State:         "Madhya Pradesh",
	District:      "Mandla",
	Tehsil:        "Niwas",
	GramPanchayat: "Bamhani",
	Village:       "Kudamgarh",
	KhasraNo:      "87/1",
	TotalAreaSqft: "1800",
	East:          "Forest boundary pillar 22",
	West:          "Khasra 86 (community land)",
	North:         "Footpath to Bamhani",
	South:         "Khasra 88/4",
	Status:        "Pending Verification",
}

const mockConfidence = 0.94

// runScan plays the scan progress for a document and prints the mock
// extraction. Ctrl-C stops the sequence.
func runScan(ctx context.Context, args []string, env *Environment) error {
	f, rest, err := parseViewFlags("scan", printScanUsage, args, env.Stderr)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("%w: scan needs exactly one document", ErrUsage)
	}
	doc := rest[0]
	info, err := os.Stat(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrReadInput, doc)
	}

	steps := env.ScanSteps
	if steps == nil {
		steps = defaultScanSteps
	}

	progressOut := env.Stdout
	if f.json || f.common.quiet {
		progressOut = io.Discard
	}
	fmt.Fprintf(progressOut, "Scanning %s (about %s)\n", filepath.Base(doc), progress.Total(steps).Round(time.Millisecond))
	err = progress.Run(ctx, steps, func(ev progress.Event) {
		fmt.Fprintf(progressOut, "[%d/%d] %s\n", ev.Index+1, ev.Total, ev.Step.Label)
	})
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(env.Stderr, "scan cancelled")
		return err
	}
	if err != nil {
		return err
	}

	result := scanExtraction{
		Source:     filepath.Base(doc),
		Confidence: mockConfidence,
		Record:     mockExtraction,
	}
	if f.json {
		return writeJSON(env.Stdout, result)
	}

	fmt.Fprintf(env.Stdout, "\nExtracted from %s (confidence %.0f%%)\n\n", result.Source, result.Confidence*100)
	printRecord(env.Stdout, result.Record)
	return nil
}
