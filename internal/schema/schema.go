// Package schema is the registry of the current database layout: every
// table, its columns with types and constraints, its conflict policy, the
// secondary indexes and the full-text search index. Fresh databases are
// created from it, migrations add missing columns from it, and the
// selection builder resolves column names against it.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// CurrentVersion is the schema version this registry describes.
const CurrentVersion = 49

// MinUpgradeVersion is the oldest version the migration engine can upgrade.
const MinUpgradeVersion = 17

// ColumnType is a SQLite column affinity.
type ColumnType string

// Column affinities.
const (
	Integer ColumnType = "INTEGER"
	Text    ColumnType = "TEXT"
	Real    ColumnType = "REAL"
	Blob    ColumnType = "BLOB"
)

// Conflict is the policy applied when an insert violates the table's
// natural key.
type Conflict int

const (
	// ConflictAbort rejects the insert; the store reports ErrConflict.
	ConflictAbort Conflict = iota
	// ConflictReplace deletes the existing row and inserts the new one.
	ConflictReplace
)

func (c Conflict) String() string {
	if c == ConflictReplace {
		return "REPLACE"
	}
	return "ABORT"
}

// Column describes one column.
type Column struct {
	Name       string
	Type       ColumnType
	Constraint string
}

// Definition renders the column for CREATE TABLE and ALTER TABLE ADD COLUMN.
func (c Column) Definition() string {
	if c.Constraint == "" {
		return c.Name + " " + string(c.Type)
	}
	return c.Name + " " + string(c.Type) + " " + c.Constraint
}

// Table describes one table.
type Table struct {
	Name     string
	Columns  []Column
	Conflict Conflict

	// Key lists the columns of the natural key. With ConflictReplace the
	// key is declared UNIQUE ON CONFLICT REPLACE.
	Key []string
}

// Column returns the named column.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// CreateSQL renders CREATE TABLE IF NOT EXISTS for the table.
func (t Table) CreateSQL() string {
	parts := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		parts = append(parts, c.Definition())
	}
	if len(t.Key) > 0 {
		parts = append(parts, fmt.Sprintf("UNIQUE (%s) ON CONFLICT %s", strings.Join(t.Key, ", "), t.Conflict))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)", t.Name, strings.Join(parts, ",\n    "))
}

// Index is a secondary index. A unique index with a Where clause is a
// partial index: only rows matching it take part in the uniqueness check.
type Index struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
	Where   string
}

// CreateSQL renders CREATE INDEX IF NOT EXISTS for the index.
func (i Index) CreateSQL() string {
	kind := "INDEX"
	if i.Unique {
		kind = "UNIQUE INDEX"
	}
	stmt := fmt.Sprintf("CREATE %s IF NOT EXISTS %s ON %s (%s)", kind, i.Name, i.Table, strings.Join(i.Columns, ", "))
	if i.Where != "" {
		stmt += " WHERE " + i.Where
	}
	return stmt
}

var byName map[string]Table

func init() {
	byName = make(map[string]Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}
}

// Tables returns every data table in creation order.
func Tables() []Table {
	out := make([]Table, len(tables))
	copy(out, tables)
	return out
}

// Lookup returns the named table.
func Lookup(name string) (Table, bool) {
	t, ok := byName[name]
	return t, ok
}

// Columns returns the column names of a table. It is the catalog the
// selection builder resolves bare identifiers against.
func Columns(table string) ([]string, bool) {
	t, ok := byName[table]
	if !ok {
		return nil, false
	}
	return t.ColumnNames(), true
}

// Indexes returns the secondary indexes.
func Indexes() []Index {
	out := make([]Index, len(indexes))
	copy(out, indexes)
	return out
}

// CreateStatements returns the DDL that builds the current schema on an
// empty database: tables, indexes, then the search index and its triggers.
func CreateStatements() []string {
	var stmts []string
	for _, t := range tables {
		stmts = append(stmts, t.CreateSQL())
	}
	for _, i := range indexes {
		stmts = append(stmts, i.CreateSQL())
	}
	stmts = append(stmts, SearchCreateStatements(SearchTokenizer)...)
	return stmts
}

// TableNames returns the registered table names sorted alphabetically.
func TableNames() []string {
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
