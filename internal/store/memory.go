package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Memory is an in-process store used by tests and by the library when no
// database is configured.
type Memory struct {
	mu      sync.RWMutex
	kv      map[string]string
	records map[string][]byte
}

var (
	_ KV      = (*Memory)(nil)
	_ Records = (*Memory)(nil)
)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		kv:      make(map[string]string),
		records: make(map[string][]byte),
	}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.kv[key]
	return v, ok, nil
}

func (m *Memory) Put(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = value
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.kv, key)
	return nil
}

func (m *Memory) Insert(ctx context.Context, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(row.ID) == "" {
		return ErrEmptyID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[row.ID]; ok {
		return fmt.Errorf("%w: %s", ErrRecordExists, row.ID)
	}
	m.records[row.ID] = slices.Clone(row.Data)
	return nil
}

func (m *Memory) Lookup(ctx context.Context, id string) (Row, error) {
	if err := ctx.Err(); err != nil {
		return Row{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.records[id]
	if !ok {
		return Row{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return Row{ID: id, Data: slices.Clone(data)}, nil
}

// List returns all rows ordered by id.
func (m *Memory) List(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := make([]Row, 0, len(m.records))
	for id, data := range m.records {
		rows = append(rows, Row{ID: id, Data: slices.Clone(data)})
	}
	slices.SortFunc(rows, func(a, b Row) int { return strings.Compare(a.ID, b.ID) })
	return rows, nil
}
