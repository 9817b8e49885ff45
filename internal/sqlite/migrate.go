package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/showstore/internal/metrics"
	"github.com/mesh-intelligence/showstore/internal/schema"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// execQuerier is satisfied by *sql.DB and *sql.Tx.
type execQuerier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// step upgrades the schema to version. Every step is idempotent: applying
// it to a database that already has its changes leaves the database as it
// was.
type step struct {
	version int
	name    string
	apply   func(tx *sql.Tx) error
}

// migrate brings db to schema.CurrentVersion in one transaction. An empty
// database gets the current schema and seed data directly.
func migrate(db *sql.DB, logger zerolog.Logger) (from, to int, err error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, 0, classify("begin migration", err)
	}
	defer tx.Rollback()

	from, err = userVersion(tx)
	if err != nil {
		return 0, 0, err
	}
	to = schema.CurrentVersion

	switch {
	case from == to:
		return from, to, nil
	case from == 0:
		empty, err := isEmpty(tx)
		if err != nil {
			return 0, 0, err
		}
		if !empty {
			return 0, 0, fmt.Errorf("%w: unversioned database with tables", types.ErrUnsupportedVersion)
		}
		if err := createCurrent(tx); err != nil {
			return 0, 0, &types.MigrationError{Version: to, Err: err}
		}
		if err := seed(tx); err != nil {
			return 0, 0, &types.MigrationError{Version: to, Err: err}
		}
		logger.Info().Int("version", to).Msg("created schema")
	case from < schema.MinUpgradeVersion || from > to:
		return 0, 0, fmt.Errorf("%w: %d (supported %d to %d)", types.ErrUnsupportedVersion, from, schema.MinUpgradeVersion, to)
	default:
		if err := upgrade(tx, from, to, logger); err != nil {
			return 0, 0, err
		}
	}

	if err := setUserVersion(tx, to); err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, classify("commit migration", err)
	}
	return from, to, nil
}

// Upgrade applies the steps after from up to and including to on db in
// one transaction and stamps to as the schema version.
func Upgrade(db *sql.DB, from, to int) error {
	if from < schema.MinUpgradeVersion || to > schema.CurrentVersion || from > to {
		return fmt.Errorf("%w: upgrade %d to %d", types.ErrUnsupportedVersion, from, to)
	}
	tx, err := db.Begin()
	if err != nil {
		return classify("begin migration", err)
	}
	defer tx.Rollback()

	if err := upgrade(tx, from, to, zerolog.Nop()); err != nil {
		return err
	}
	if err := setUserVersion(tx, to); err != nil {
		return err
	}
	return classify("commit migration", tx.Commit())
}

func upgrade(tx *sql.Tx, from, to int, logger zerolog.Logger) error {
	for _, s := range steps {
		if s.version <= from || s.version > to {
			continue
		}
		if err := s.apply(tx); err != nil {
			return &types.MigrationError{Version: s.version, Err: err}
		}
		metrics.RecordMigration(s.version)
		logger.Debug().Int("version", s.version).Str("step", s.name).Msg("applied upgrade step")
	}
	logger.Info().Int("from", from).Int("to", to).Msg("upgraded schema")
	return nil
}

func createCurrent(tx *sql.Tx) error {
	for _, stmt := range schema.CreateStatements() {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

func userVersion(q execQuerier) (int, error) {
	var v int
	if err := q.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, classify("reading schema version", err)
	}
	return v, nil
}

func setUserVersion(q execQuerier, v int) error {
	if _, err := q.Exec(fmt.Sprintf("PRAGMA user_version = %d", v)); err != nil {
		return classify("writing schema version", err)
	}
	return nil
}

func isEmpty(q execQuerier) (bool, error) {
	var n int
	err := q.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'").Scan(&n)
	if err != nil {
		return false, classify("inspecting schema", err)
	}
	return n == 0, nil
}

func tableExists(q execQuerier, name string) (bool, error) {
	var n int
	err := q.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	return n > 0, err
}

func columnExists(q execQuerier, table, column string) (bool, error) {
	var n int
	err := q.QueryRow("SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column).Scan(&n)
	return n > 0, err
}

// addColumns adds the registry definition of each missing column.
func addColumns(tx *sql.Tx, table string, columns ...string) error {
	tbl, ok := schema.Lookup(table)
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrNoTable, table)
	}
	for _, name := range columns {
		col, ok := tbl.Column(name)
		if !ok {
			return fmt.Errorf("%w: %s.%s", types.ErrUnknownColumn, table, name)
		}
		exists, err := columnExists(tx, table, name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := tx.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, col.Definition())); err != nil {
			return fmt.Errorf("adding %s.%s: %w", table, name, err)
		}
	}
	return nil
}

// createTable creates a registry table if it is missing.
func createTable(tx *sql.Tx, name string) error {
	tbl, ok := schema.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrNoTable, name)
	}
	if _, err := tx.Exec(tbl.CreateSQL()); err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	return nil
}

// createIndexes creates the registry indexes whose uniqueness matches
// unique.
func createIndexes(unique bool) func(*sql.Tx) error {
	return func(tx *sql.Tx) error {
		for _, idx := range schema.Indexes() {
			if idx.Unique != unique {
				continue
			}
			if unique {
				if err := checkUnique(tx, idx); err != nil {
					return err
				}
			}
			if _, err := tx.Exec(idx.CreateSQL()); err != nil {
				return fmt.Errorf("creating index %s: %w", idx.Name, err)
			}
		}
		return nil
	}
}

// checkUnique reports the first value that appears more than once among
// the rows a unique index would cover.
func checkUnique(q execQuerier, idx schema.Index) error {
	cols := strings.Join(idx.Columns, ", ")
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s", cols, idx.Table)
	if idx.Where != "" {
		query += " WHERE " + idx.Where
	}
	query += fmt.Sprintf(" GROUP BY %s HAVING COUNT(*) > 1 LIMIT 1", cols)

	rows, err := q.Query(query)
	if err != nil {
		return fmt.Errorf("checking %s: %w", idx.Name, err)
	}
	defer rows.Close()
	if !rows.Next() {
		return rows.Err()
	}
	dest := make([]any, len(idx.Columns)+1)
	for i := range dest {
		dest[i] = new(any)
	}
	if err := rows.Scan(dest...); err != nil {
		return fmt.Errorf("checking %s: %w", idx.Name, err)
	}
	return fmt.Errorf("%s.%s value %v is shared by %v rows: %w",
		idx.Table, cols, *dest[0].(*any), *dest[len(dest)-1].(*any), types.ErrConflict)
}

// recreateSearch drops the search index and its triggers, creates them
// with tokenizer, and repopulates the index from episodes.
func recreateSearch(q execQuerier, tokenizer string) error {
	stmts := append(schema.SearchDropStatements(), schema.SearchCreateStatements(tokenizer)...)
	stmts = append(stmts, schema.SearchRebuildStatement())
	for _, stmt := range stmts {
		if _, err := q.Exec(stmt); err != nil {
			return fmt.Errorf("rebuilding search index: %w", err)
		}
	}
	return nil
}
