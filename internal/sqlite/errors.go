package sqlite

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/showstore/internal/selection"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// storeErrors already carry their meaning and pass through classify.
var storeErrors = []error{
	types.ErrDetached,
	types.ErrUnknownPath,
	types.ErrUnsupportedOperation,
	types.ErrNoTable,
	types.ErrUnknownColumn,
	types.ErrAmbiguousColumn,
	types.ErrUnsafeFragment,
	types.ErrNotFound,
	types.ErrConflict,
	types.ErrInvalidData,
	types.ErrEngine,
	types.ErrMigration,
	types.ErrUnsupportedVersion,
	selection.ErrConsumed,
}

// classify maps an error from the engine to the store's error vocabulary.
// Constraint violations become ErrConflict, or ErrInvalidData for NOT NULL
// and CHECK failures; anything else the engine reports is an EngineError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, s := range storeErrors {
		if errors.Is(err, s) {
			return err
		}
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL, sqlite3.SQLITE_CONSTRAINT_CHECK:
			return fmt.Errorf("%s: %w: %v", op, types.ErrInvalidData, err)
		}
		if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			return fmt.Errorf("%s: %w: %v", op, types.ErrConflict, err)
		}
	}
	return &types.EngineError{Op: op, Err: err}
}
