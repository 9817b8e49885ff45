package types

import "context"

// Writer is the transactional surface of the store: the writes plus the
// reads a read-modify-write needs. Inside Store.Transaction the same
// methods join the surrounding transaction instead of opening their own,
// and reads see the transaction's uncommitted writes.
type Writer interface {
	// Query returns the rows a path resolves to.
	Query(path string, opts QueryOptions) ([]Row, error)

	// Get returns the single row an item path resolves to, or ErrNotFound.
	Get(path string) (Row, error)

	// Insert adds one row to the table behind a collection path and returns
	// its row id.
	Insert(path string, values Values) (int64, error)

	// Update changes the rows a path resolves to, narrowed by selection.
	// It returns the number of rows changed.
	Update(path string, values Values, selection string, args ...any) (int64, error)

	// Delete removes the rows a path resolves to, narrowed by selection.
	Delete(path string, selection string, args ...any) (int64, error)

	// ApplyBatch applies ops in order as one unit. Either every operation
	// takes effect or none does; the returned error is a *BatchError naming
	// the failing operation.
	ApplyBatch(ops []Operation) ([]Result, error)
}

// Store is the resource-addressed storage API for the show catalog.
type Store interface {
	Writer

	// Attach records the configuration. The database is opened and
	// migrated on first use.
	Attach(config Config) error

	// Detach releases backend resources. After Detach every operation
	// returns ErrDetached.
	Detach() error

	// BulkInsert inserts rows into one collection path in a single
	// transaction. Rows that violate a constraint are skipped; the count of
	// inserted rows is returned.
	BulkInsert(path string, rows []Values) (int, error)

	// Transaction runs fn inside one transaction. Writes made through w
	// commit together when fn returns nil and roll back otherwise. While fn
	// runs, data calls on the store itself join the same transaction; calls
	// that need exclusive access, such as Export or Detach, return
	// ErrUnsupportedOperation. A nested Transaction joins too, and its
	// failure rolls back the outer one.
	Transaction(fn func(w Writer) error) error

	// Search runs a prefix full-text search over episode titles and
	// overviews. Engine failures yield an empty result, not an error.
	Search(term string, opts SearchOptions) ([]SearchHit, error)

	// RebuildSearchIndex drops, recreates and repopulates the full-text
	// index.
	RebuildSearchIndex() error

	// RecountSeasons refreshes the episode counters of every season of a
	// show.
	RecountSeasons(showID int64, nowMs int64) error

	// Control performs a non-data action addressed by path, such as
	// "close".
	Control(path string) error

	// Version returns the schema version of the open database.
	Version() (int, error)

	// Subscribe delivers a Change for every path a committed write touched.
	// The channel closes when ctx is done or the store detaches.
	Subscribe(ctx context.Context) (<-chan Change, error)

	// Export writes every table as JSONL files into dir.
	Export(dir string) error

	// Import replaces the contents of every table with the JSONL files
	// found in dir.
	Import(dir string) error
}

// QueryOptions narrows and orders a Query.
type QueryOptions struct {
	// Projection lists the columns to return. Nil returns every column the
	// path exposes.
	Projection []string

	// Selection is a parameterized WHERE fragment; Args are bound to its
	// placeholders.
	Selection string
	Args      []any

	// SortOrder is an ORDER BY fragment. Empty uses the path default.
	SortOrder string

	// Limit caps the number of rows when positive.
	Limit int
}

// OperationKind identifies a batch operation.
type OperationKind string

// Batch operation kinds.
const (
	OpInsert OperationKind = "insert"
	OpUpdate OperationKind = "update"
	OpDelete OperationKind = "delete"
)

// Operation is one step of a batch.
type Operation struct {
	Kind      OperationKind `json:"op" yaml:"op"`
	Path      string        `json:"path" yaml:"path"`
	Values    Values        `json:"values,omitempty" yaml:"values,omitempty"`
	Selection string        `json:"selection,omitempty" yaml:"selection,omitempty"`
	Args      []any         `json:"args,omitempty" yaml:"args,omitempty"`

	// BackRefs sets a column to the row id produced by an earlier insert of
	// the same batch, given by its index.
	BackRefs map[string]int `json:"backrefs,omitempty" yaml:"backrefs,omitempty"`
}

// Result is the outcome of one batch operation. Inserts report the new row
// id; updates and deletes report the affected row count.
type Result struct {
	ID    int64 `json:"id,omitempty"`
	Count int64 `json:"count"`
}

// SearchOptions narrows a full-text search.
type SearchOptions struct {
	ShowID int64
	Limit  int
}

// SearchHit is one episode matching a full-text search.
type SearchHit struct {
	EpisodeID      int64  `json:"episode_id"`
	ShowID         int64  `json:"show_id"`
	Title          string `json:"title"`
	Snippet        string `json:"snippet"`
	Season         int    `json:"season"`
	Number         int    `json:"number"`
	Watched        int    `json:"watched"`
	ShowTitle      string `json:"show_title"`
	ShowPoster     string `json:"show_poster"`
	FirstReleaseMs int64  `json:"first_release_ms"`
}

// Change announces that data behind Path changed.
type Change struct {
	Path string `json:"path"`
}
