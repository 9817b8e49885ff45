// Package selection builds SELECT, UPDATE and DELETE statements from a
// table or join description, a projection, and caller-supplied WHERE and
// ORDER BY fragments. Column names are resolved against the schema
// registry: mapped columns are rewritten to their qualified expression,
// columns present in more than one source must be mapped, and fragments
// are rejected when they could carry a second statement.
//
// A Builder is used for exactly one statement.
package selection

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/showstore/internal/schema"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// ErrConsumed is returned when a Builder is executed a second time.
var ErrConsumed = errors.New("selection builder already used")

// Querier runs a query. *sql.DB and *sql.Tx satisfy it.
type Querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// Execer runs a statement. *sql.DB and *sql.Tx satisfy it.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

type source struct {
	name    string
	expr    string
	args    []any
	join    string
	on      string
	columns []string
}

type mapping struct {
	expr string
	args []any
}

// Builder accumulates the parts of one statement.
type Builder struct {
	sources  []source
	mapped   map[string]mapping
	computed []string
	where    []string
	args     []any
	limit    int
	err      error
	used     bool
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{mapped: make(map[string]mapping)}
}

// Table sets a registered table as the primary source.
func (b *Builder) Table(name string) *Builder {
	cols, ok := schema.Columns(name)
	if !ok {
		b.fail(fmt.Errorf("%w: %s", types.ErrNoTable, name))
		return b
	}
	return b.addSource(source{name: name, columns: cols})
}

// From sets a subselect aliased as alias as the primary source. columns
// lists what the subselect exposes.
func (b *Builder) From(alias, expr string, columns []string, args ...any) *Builder {
	if !isIdent(alias) {
		b.fail(fmt.Errorf("%w: alias %q", types.ErrUnsafeFragment, alias))
		return b
	}
	return b.addSource(source{name: alias, expr: expr, args: args, columns: columns})
}

// Join adds an inner join with a registered table.
func (b *Builder) Join(name, on string) *Builder {
	return b.joinTable("JOIN", name, on)
}

// LeftJoin adds a left outer join with a registered table.
func (b *Builder) LeftJoin(name, on string) *Builder {
	return b.joinTable("LEFT JOIN", name, on)
}

// LeftJoinSelect adds a left outer join with a subselect.
func (b *Builder) LeftJoinSelect(alias, expr string, columns []string, on string, args ...any) *Builder {
	if len(b.sources) == 0 {
		b.fail(fmt.Errorf("%w: join without primary source", types.ErrNoTable))
		return b
	}
	if !isIdent(alias) {
		b.fail(fmt.Errorf("%w: alias %q", types.ErrUnsafeFragment, alias))
		return b
	}
	return b.addSource(source{name: alias, expr: expr, args: args, join: "LEFT JOIN", on: on, columns: columns})
}

func (b *Builder) joinTable(kind, name, on string) *Builder {
	if len(b.sources) == 0 {
		b.fail(fmt.Errorf("%w: join without primary source", types.ErrNoTable))
		return b
	}
	cols, ok := schema.Columns(name)
	if !ok {
		b.fail(fmt.Errorf("%w: %s", types.ErrNoTable, name))
		return b
	}
	return b.addSource(source{name: name, join: kind, on: on, columns: cols})
}

func (b *Builder) addSource(s source) *Builder {
	for _, existing := range b.sources {
		if existing.name == s.name {
			b.fail(fmt.Errorf("%w: source %s added twice", types.ErrAmbiguousColumn, s.name))
			return b
		}
	}
	b.sources = append(b.sources, s)
	return b
}

// MapToTable resolves column to table.column wherever it appears.
func (b *Builder) MapToTable(column, table string) *Builder {
	src := b.source(table)
	if src == nil {
		b.fail(fmt.Errorf("%w: %s is not a source", types.ErrNoTable, table))
		return b
	}
	if !contains(src.columns, column) {
		b.fail(fmt.Errorf("%w: %s.%s", types.ErrUnknownColumn, table, column))
		return b
	}
	b.mapped[column] = mapping{expr: table + "." + column}
	return b
}

// MapToTables maps every column of table to that table. Call it for the
// primary table of a join so the joined side never shadows it.
func (b *Builder) MapToTables(table string) *Builder {
	src := b.source(table)
	if src == nil {
		b.fail(fmt.Errorf("%w: %s is not a source", types.ErrNoTable, table))
		return b
	}
	for _, c := range src.columns {
		b.mapped[c] = mapping{expr: table + "." + c}
	}
	return b
}

// MapExpr exposes expr under alias. Args bind placeholders in expr and come
// before the WHERE arguments.
func (b *Builder) MapExpr(alias, expr string, args ...any) *Builder {
	if !isIdent(alias) {
		b.fail(fmt.Errorf("%w: alias %q", types.ErrUnsafeFragment, alias))
		return b
	}
	if _, ok := b.mapped[alias]; !ok && b.owners(alias) == nil {
		b.computed = append(b.computed, alias)
	}
	b.mapped[alias] = mapping{expr: expr, args: args}
	return b
}

// Where ANDs a fragment into the WHERE clause. Empty fragments are ignored.
func (b *Builder) Where(fragment string, args ...any) *Builder {
	if strings.TrimSpace(fragment) == "" {
		return b
	}
	b.where = append(b.where, fragment)
	b.args = append(b.args, args...)
	return b
}

// Limit caps the number of rows a query returns.
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// Err returns the first construction error.
func (b *Builder) Err() error { return b.err }

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) source(name string) *source {
	for i := range b.sources {
		if b.sources[i].name == name {
			return &b.sources[i]
		}
	}
	return nil
}

// owners returns the sources exposing column.
func (b *Builder) owners(column string) []string {
	var out []string
	lc := strings.ToLower(column)
	for _, s := range b.sources {
		if contains(s.columns, lc) {
			out = append(out, s.name)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
