package patta2pdf

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fra-portal/patta2pdf/internal/dateutil"
	"github.com/fra-portal/patta2pdf/internal/settings"
)

// Settings is the export configuration: quality tier, page size,
// compression level and watermark flag.
type Settings = settings.Settings

// Quality is the rasterization tier.
type Quality = settings.Quality

// PageSize is the physical page tier.
type PageSize = settings.PageSize

// Quality tiers.
const (
	QualityLow    = settings.QualityLow
	QualityMedium = settings.QualityMedium
	QualityHigh   = settings.QualityHigh
	QualityUltra  = settings.QualityUltra
)

// Page sizes.
const (
	PageA4     = settings.PageA4
	PageA3     = settings.PageA3
	PageLetter = settings.PageLetter
)

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings { return settings.Defaults() }

// Record is a land-title ("patta") record. JSON keys follow the portal's
// data files. Only ID is required; it is unique and never changes.
type Record struct {
	ID            string `json:"id"`
	SerialNo      string `json:"SERIAL_NO,omitempty"`
	Date          string `json:"DATE,omitempty"` // DD/MM/YYYY
	HolderName    string `json:"HOLDER_NAME,omitempty"`
	FatherName    string `json:"FATHER_NAME,omitempty"`
	Caste         string `json:"CASTE,omitempty"`
	Age           string `json:"AGE,omitempty"`
	State         string `json:"STATE,omitempty"`
	District      string `json:"DISTRICT,omitempty"`
	Tehsil        string `json:"TEHSIL,omitempty"`
	GramPanchayat string `json:"GRAM_PANCHAYAT,omitempty"`
	Village       string `json:"VILLAGE,omitempty"`
	KhasraNo      string `json:"KHASRA_NO,omitempty"`
	TotalAreaSqft string `json:"TOTAL_AREA_SQFT,omitempty"`
	East          string `json:"EAST,omitempty"`
	West          string `json:"WEST,omitempty"`
	North         string `json:"NORTH,omitempty"`
	South         string `json:"SOUTH,omitempty"`
	Status        string `json:"STATUS,omitempty"`
	Notes         string `json:"NOTES,omitempty"` // markdown, shown on the certificate
}

// MaxRecordIDLength bounds record identifiers.
const MaxRecordIDLength = 64

var recordIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validate checks the identifier and, when present, the issue date.
func (r Record) Validate() error {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRecord)
	}
	if len(id) > MaxRecordIDLength || !recordIDPattern.MatchString(id) {
		return fmt.Errorf("%w: id %q must be 1-%d letters, digits, '-' or '_'", ErrInvalidRecord, r.ID, MaxRecordIDLength)
	}
	if r.Date != "" {
		if _, err := dateutil.ParseIssueDate(r.Date); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
	}
	return nil
}

// ExportRequest asks for one certificate.
type ExportRequest struct {
	Record Record
	// Filename overrides the generated name. A name ending in ".pdf" is used
	// as given after sanitizing; otherwise it becomes the prefix of a
	// timestamped name.
	Filename string
}

// ExportResult describes an emitted certificate.
type ExportResult struct {
	Success  bool
	Filename string
	Path     string
	Size     int64
	Pages    int
	Settings Settings
	Payload  Payload
	Duration time.Duration
}
