package main

import (
	"io"
	"os"
	"time"

	"github.com/fra-portal/patta2pdf"
	"github.com/fra-portal/patta2pdf/internal/progress"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// ExporterOptions are applied after the options derived from config,
	// so tests can swap the rasterizer.
	ExporterOptions []patta2pdf.Option

	// ScanSteps replaces the scripted scan sequence when non-nil.
	ScanSteps []progress.Step
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}
