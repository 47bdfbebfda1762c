package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFile is returned when the upload carries no bytes.
	ErrMissingFile = errors.New("no file provided")

	// ErrUnsupportedFormat is returned when the file extension is neither .csv nor .xlsx.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrMalformedFile is returned when a .csv or .xlsx payload cannot be parsed.
	ErrMalformedFile = errors.New("invalid file contents")

	// ErrUnknownKind is returned when no definition is registered for a kind.
	ErrUnknownKind = errors.New("unknown import kind")
)

// InputError rejects a run before anything is decoded or written.
// No audit entry is recorded for it.
type InputError struct {
	Kind Kind
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s import rejected: %v", e.Kind, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// StorageError aborts the write step of a run.
type StorageError struct {
	Op  string // "resolve references", "write categories", ...
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsInputError reports whether err rejected the run before it started.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// IsStorageError reports whether err aborted the run during the write step.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
