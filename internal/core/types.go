package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind identifies which entity an import file describes.
type Kind string

const (
	KindCategory Kind = "category"
	KindPlace    Kind = "place"
)

// RawRow is one decoded record from an uploaded file.
type RawRow struct {
	Number int               // 1-based position in the source file (header is 1)
	Values map[string]string // lower-cased column name -> trimmed value
}

// Get returns the trimmed value for a column, or "" when the column is absent.
func (r RawRow) Get(column string) string {
	return r.Values[column]
}

// Has reports whether the row carried the column at all.
func (r RawRow) Has(column string) bool {
	_, ok := r.Values[column]
	return ok
}

// RowError describes a single row that failed validation.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`

	// Violations lists the failed rules for server-side logging only.
	Violations []FieldViolation `json:"-"`
}

// CategoryRecord is a validated category row. Name is the natural key.
type CategoryRecord struct {
	Name  string `validate:"required"`
	Icon  string `validate:"required"`
	Color string `validate:"required,colorhex"`
}

// PlaceRecord is a validated place row. Category references CategoryRecord.Name.
type PlaceRecord struct {
	Name        string `validate:"required"`
	Description string
	Website     string
	Category    string `validate:"required"`
	Image       string
	Address     string `validate:"required"`
	Phone       string
	Latitude    float64
	Longitude   float64
}

// Report is the outcome of one import run.
type Report struct {
	Inserted          int        `json:"inserted"`
	Skipped           int        `json:"skipped"`
	CategoriesCreated int        `json:"categoriesCreated,omitempty"`
	Errors            []RowError `json:"errors"`
}

// ImportTypeManual is the import_type recorded for uploads made by an operator.
const ImportTypeManual = "manual"

// ImportLogEntry is one persisted audit record. Entries are append-only.
type ImportLogEntry struct {
	ID           uuid.UUID `json:"id"`
	TableName    string    `json:"table_name"`
	FileName     string    `json:"file_name"`
	SuccessCount int       `json:"success_count"`
	ErrorCount   int       `json:"error_count"`
	ImportType   string    `json:"import_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store is the storage collaborator used by the import pipeline.
//
// Insert methods must be conflict-safe: rows colliding with an existing
// natural key are skipped, never overwritten, and the returned count is the
// number of rows actually written.
type Store interface {
	InsertCategories(ctx context.Context, records []CategoryRecord) (int64, error)
	InsertPlaces(ctx context.Context, records []PlaceRecord) (int64, error)
	ExistingCategoryNames(ctx context.Context, names []string) ([]string, error)
	AppendImportLog(ctx context.Context, entry ImportLogEntry) error
	ListImportLogs(ctx context.Context, limit int) ([]ImportLogEntry, error)
}

// Phase is a state of the import state machine.
type Phase string

const (
	PhaseReceived           Phase = "received"
	PhaseDecoded            Phase = "decoded"
	PhaseValidated          Phase = "validated"
	PhaseReferencesResolved Phase = "references_resolved"
	PhaseWritten            Phase = "written"
	PhaseAudited            Phase = "audited"
	PhaseCompleted          Phase = "completed"
	PhaseRejected           Phase = "rejected"
	PhaseAborted            Phase = "aborted"
)
