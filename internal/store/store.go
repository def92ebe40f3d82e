// Package store persists portal state: the settings key-value blob and the
// land-title record repository.
package store

import (
	"context"
	"errors"
)

// Sentinel errors for store operations.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrRecordExists   = errors.New("record already exists")
	ErrEmptyID        = errors.New("record id cannot be empty")
	ErrClosed         = errors.New("store is closed")
)

// KV is a string key-value store. Get reports ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Row is a stored record: its immutable identifier and JSON document.
type Row struct {
	ID   string
	Data []byte
}

// Records is the record repository. Identifiers are immutable: Insert never
// overwrites an existing row.
type Records interface {
	Insert(ctx context.Context, row Row) error
	Lookup(ctx context.Context, id string) (Row, error)
	List(ctx context.Context) ([]Row, error)
}

// Seed inserts rows that are not present yet and returns how many were added.
func Seed(ctx context.Context, r Records, rows []Row) (int, error) {
	added := 0
	for _, row := range rows {
		err := r.Insert(ctx, row)
		if errors.Is(err, ErrRecordExists) {
			continue
		}
		if err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
