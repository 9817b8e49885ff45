package types

import (
	"errors"
	"fmt"
)

// Store lifecycle errors.
var (
	ErrDetached        = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Resolution errors. Every failure to map a path or a column onto the schema
// surfaces as one of these rather than as a raw engine error.
var (
	ErrUnknownPath          = errors.New("unknown path")
	ErrUnsupportedOperation = errors.New("operation not supported on path")
	ErrNoTable              = errors.New("no such table")
	ErrUnknownColumn        = errors.New("unknown column")
	ErrAmbiguousColumn      = errors.New("ambiguous column")
	ErrUnsafeFragment       = errors.New("unsafe selection fragment")
)

// Data errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrConflict    = errors.New("constraint conflict")
	ErrInvalidData = errors.New("invalid entity data")
)

// Schema and engine errors.
var (
	ErrUnsupportedVersion = errors.New("unsupported schema version")
	ErrMigration          = errors.New("schema migration failed")
	ErrEngine             = errors.New("storage engine failure")
)

// EngineError wraps a failure reported by the storage engine for one
// operation. It matches ErrEngine with errors.Is.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() []error { return []error{ErrEngine, e.Err} }

// BatchError reports the operation that aborted a batch. Index is the
// position of the failing operation; no operation of the batch was applied.
type BatchError struct {
	Index int
	Op    OperationKind
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch operation %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// MigrationError reports the upgrade step that failed. The database keeps
// the version it had before the upgrade started.
type MigrationError struct {
	Version int
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migrating to version %d: %v", e.Version, e.Err)
}

func (e *MigrationError) Unwrap() []error { return []error{ErrMigration, e.Err} }
