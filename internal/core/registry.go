package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// KindInfo contains the per-kind settings the pipeline and transport need.
type KindInfo struct {
	Kind    Kind     // "category", "place"
	Table   string   // Target table, also recorded as import_logs.table_name
	Label   string   // Display name: "Categories"
	Columns []string // Header columns understood by the validator

	// RowErrorMessage is the message attached to every invalid row.
	RowErrorMessage string

	// UnsupportedFormatMessage and FailureMessage are the error bodies
	// returned by the HTTP layer for 415 and 500 responses.
	UnsupportedFormatMessage string
	FailureMessage           string

	// RejectWhenNoValidRows makes the HTTP layer answer 422 when every row
	// failed validation.
	RejectWhenNoValidRows bool
}

// ValidateFunc turns one raw row into a typed record or a row error.
type ValidateFunc func(raw RawRow) (any, *RowError)

// ResolveFunc creates records referenced by valid rows before they are written.
// It returns the number of referenced records it created.
type ResolveFunc func(ctx context.Context, store Store, records []any) (int, error)

// WriteFunc inserts valid records and returns how many rows were written.
type WriteFunc func(ctx context.Context, store Store, records []any) (int64, error)

// KindDefinition contains everything needed to import one entity kind.
type KindDefinition struct {
	Info     KindInfo
	Validate ValidateFunc
	Resolve  ResolveFunc // Optional
	Write    WriteFunc
}

var (
	registry   = make(map[Kind]KindDefinition)
	registryMu sync.RWMutex
)

// Register adds a kind definition to the registry.
// Panics if the kind is already registered or the definition is incomplete.
func Register(def KindDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Kind]; exists {
		panic(fmt.Sprintf("import kind already registered: %s", def.Info.Kind))
	}
	if def.Validate == nil || def.Write == nil {
		panic(fmt.Sprintf("import kind %s needs Validate and Write", def.Info.Kind))
	}

	registry[def.Info.Kind] = def
}

// Get returns a kind definition.
// Returns false if not found.
func Get(kind Kind) (KindDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[kind]
	return def, ok
}

// All returns all registered definitions sorted by kind.
func All() []KindDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]KindDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Kind < result[j].Info.Kind
	})

	return result
}

// KindCount returns the number of registered kinds.
func KindCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}
