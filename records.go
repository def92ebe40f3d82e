package patta2pdf

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fra-portal/patta2pdf/internal/dateutil"
	"github.com/fra-portal/patta2pdf/internal/store"
)

// Repository errors.
var (
	ErrRecordNotFound = store.ErrRecordNotFound
	ErrRecordExists   = store.ErrRecordExists
	ErrDecodeRecords  = errors.New("decoding records failed")
)

//go:embed data/records.json
var seedJSON []byte

// SeedRecords returns the built-in records.
func SeedRecords() ([]Record, error) {
	return DecodeRecords(seedJSON)
}

// DecodeRecords parses a JSON array of records or a single record object.
func DecodeRecords(data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecodeRecords)
	}

	if trimmed[0] == '{' {
		var r Record
		if err := json.Unmarshal(trimmed, &r); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecodeRecords, err)
		}
		return []Record{r}, nil
	}

	var recs []Record
	if err := json.Unmarshal(trimmed, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeRecords, err)
	}
	return recs, nil
}

// Repository reads and adds records over a store.Records backend.
type Repository struct {
	rows store.Records
	now  func() time.Time
}

// NewRepository wraps rows.
func NewRepository(rows store.Records) *Repository {
	return &Repository{rows: rows, now: time.Now}
}

// SetClock replaces time.Now for resolving "auto" import dates.
func (r *Repository) SetClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Seed inserts the built-in records that are not stored yet.
func (r *Repository) Seed(ctx context.Context) (int, error) {
	recs, err := SeedRecords()
	if err != nil {
		return 0, err
	}
	rows := make([]store.Row, 0, len(recs))
	for _, rec := range recs {
		row, err := toRow(rec)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}
	return store.Seed(ctx, r.rows, rows)
}

// Get returns the record with id.
func (r *Repository) Get(ctx context.Context, id string) (Record, error) {
	row, err := r.rows.Lookup(ctx, id)
	if err != nil {
		return Record{}, err
	}
	return fromRow(row)
}

// List returns every record ordered by id.
func (r *Repository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.rows.List(ctx)
	if err != nil {
		return nil, err
	}
	recs := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// ImportReport lists what Import did with each record.
type ImportReport struct {
	Added    []string
	Existing []string // ids already stored, left untouched
}

// Import validates and stores recs. A DATE of "auto" or "auto:FORMAT" is
// resolved to today's date. Existing ids are reported, never overwritten.
// Validation runs over every record before anything is written.
func (r *Repository) Import(ctx context.Context, recs []Record) (ImportReport, error) {
	var report ImportReport

	prepared := make([]Record, len(recs))
	seen := make(map[string]bool, len(recs))
	for i, rec := range recs {
		date, err := dateutil.Resolve(rec.Date, r.now())
		if err != nil {
			return report, fmt.Errorf("%w: record %d: %v", ErrInvalidRecord, i+1, err)
		}
		rec.Date = date
		if err := rec.Validate(); err != nil {
			return report, fmt.Errorf("record %d: %w", i+1, err)
		}
		if seen[rec.ID] {
			return report, fmt.Errorf("%w: duplicate id %q in input", ErrInvalidRecord, rec.ID)
		}
		seen[rec.ID] = true
		prepared[i] = rec
	}

	for _, rec := range prepared {
		row, err := toRow(rec)
		if err != nil {
			return report, err
		}
		err = r.rows.Insert(ctx, row)
		switch {
		case errors.Is(err, store.ErrRecordExists):
			report.Existing = append(report.Existing, rec.ID)
		case err != nil:
			return report, err
		default:
			report.Added = append(report.Added, rec.ID)
		}
	}
	return report, nil
}

func toRow(rec Record) (store.Row, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return store.Row{}, fmt.Errorf("encoding record %s: %w", rec.ID, err)
	}
	return store.Row{ID: rec.ID, Data: data}, nil
}

func fromRow(row store.Row) (Record, error) {
	var rec Record
	if err := json.Unmarshal(row.Data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: record %s: %v", ErrDecodeRecords, row.ID, err)
	}
	rec.ID = row.ID
	return rec, nil
}
