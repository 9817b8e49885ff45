// Package sqlite provides the public constructor for the SQLite show store
// while keeping the implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/showstore/internal/sqlite"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// NewBackend creates a detached SQLite store. Call Attach with a Config
// before use.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".showstore-db",
//	})
//	defer store.Detach()
func NewBackend() types.Store {
	return sqlite.NewBackend()
}
