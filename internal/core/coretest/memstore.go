// Package coretest provides an in-memory core.Store for tests.
package coretest

import (
	"context"
	"sort"
	"sync"

	"github.com/JonMunkholm/placemap/internal/core"
)

type placeKey struct {
	name    string
	address string
}

// MemStore is a core.Store backed by maps. It enforces the same natural keys
// as the Postgres schema: category name, and place (name, address).
//
// The Fail* fields inject errors into the matching method.
type MemStore struct {
	mu sync.Mutex

	categories map[string]core.CategoryRecord
	places     map[placeKey]core.PlaceRecord
	logs       []core.ImportLogEntry

	FailInsertCategories error
	FailInsertPlaces     error
	FailExisting         error
	FailAppendLog        error
	FailListLogs         error

	InsertCategoryCalls int
	InsertPlaceCalls    int
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		categories: make(map[string]core.CategoryRecord),
		places:     make(map[placeKey]core.PlaceRecord),
	}
}

var _ core.Store = (*MemStore)(nil)

func (m *MemStore) InsertCategories(_ context.Context, records []core.CategoryRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertCategoryCalls++
	if m.FailInsertCategories != nil {
		return 0, m.FailInsertCategories
	}

	var n int64
	for _, rec := range records {
		if _, ok := m.categories[rec.Name]; ok {
			continue
		}
		m.categories[rec.Name] = rec
		n++
	}
	return n, nil
}

func (m *MemStore) InsertPlaces(_ context.Context, records []core.PlaceRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InsertPlaceCalls++
	if m.FailInsertPlaces != nil {
		return 0, m.FailInsertPlaces
	}

	var n int64
	for _, rec := range records {
		key := placeKey{name: rec.Name, address: rec.Address}
		if _, ok := m.places[key]; ok {
			continue
		}
		m.places[key] = rec
		n++
	}
	return n, nil
}

func (m *MemStore) ExistingCategoryNames(_ context.Context, names []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailExisting != nil {
		return nil, m.FailExisting
	}

	var out []string
	for _, name := range names {
		if _, ok := m.categories[name]; ok {
			out = append(out, name)
		}
	}
	return out, nil
}

func (m *MemStore) AppendImportLog(_ context.Context, entry core.ImportLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAppendLog != nil {
		return m.FailAppendLog
	}
	m.logs = append(m.logs, entry)
	return nil
}

func (m *MemStore) ListImportLogs(_ context.Context, limit int) ([]core.ImportLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailListLogs != nil {
		return nil, m.FailListLogs
	}

	out := make([]core.ImportLogEntry, 0, min(limit, len(m.logs)))
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.logs[i])
	}
	return out, nil
}

// SeedCategories inserts categories directly, bypassing failure injection.
func (m *MemStore) SeedCategories(records ...core.CategoryRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		m.categories[rec.Name] = rec
	}
}

// Category returns a stored category by name.
func (m *MemStore) Category(name string) (core.CategoryRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.categories[name]
	return rec, ok
}

// CategoryNames returns all stored category names, sorted.
func (m *MemStore) CategoryNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.categories))
	for name := range m.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PlaceCount returns the number of stored places.
func (m *MemStore) PlaceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.places)
}

// Logs returns a copy of the import log in append order.
func (m *MemStore) Logs() []core.ImportLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.ImportLogEntry(nil), m.logs...)
}
