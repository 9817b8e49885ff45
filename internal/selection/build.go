package selection

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/showstore/pkg/types"
)

// BuildQuery renders the SELECT statement. A nil projection selects every
// column the sources expose plus every computed column.
func (b *Builder) BuildQuery(projection []string, sortOrder string) (string, []any, error) {
	if err := b.ready(); err != nil {
		return "", nil, err
	}

	cols, projArgs, err := b.projection(projection)
	if err != nil {
		return "", nil, err
	}
	from, fromArgs := b.fromClause()
	where, err := b.whereClause()
	if err != nil {
		return "", nil, err
	}

	var q strings.Builder
	q.WriteString("SELECT ")
	q.WriteString(strings.Join(cols, ", "))
	q.WriteString(" FROM ")
	q.WriteString(from)
	q.WriteString(where)
	if strings.TrimSpace(sortOrder) != "" {
		order, err := b.rewrite(sortOrder)
		if err != nil {
			return "", nil, err
		}
		q.WriteString(" ORDER BY ")
		q.WriteString(order)
	}
	if b.limit > 0 {
		fmt.Fprintf(&q, " LIMIT %d", b.limit)
	}

	args := make([]any, 0, len(projArgs)+len(fromArgs)+len(b.args))
	args = append(args, projArgs...)
	args = append(args, fromArgs...)
	args = append(args, b.args...)
	return q.String(), args, nil
}

// BuildUpdate renders an UPDATE of the primary table. Joins and subselects
// cannot be updated.
func (b *Builder) BuildUpdate(values types.Values) (string, []any, error) {
	table, err := b.mutableTable()
	if err != nil {
		return "", nil, err
	}
	if len(values) == 0 {
		return "", nil, fmt.Errorf("update %s with no values: %w", table.name, types.ErrInvalidData)
	}

	cols := values.Columns()
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(b.args))
	for i, c := range cols {
		if !contains(table.columns, c) {
			return "", nil, fmt.Errorf("%w: %s.%s", types.ErrUnknownColumn, table.name, c)
		}
		sets[i] = c + " = ?"
		args = append(args, values[c])
	}
	where, err := b.whereClause()
	if err != nil {
		return "", nil, err
	}
	args = append(args, b.args...)
	return fmt.Sprintf("UPDATE %s SET %s%s", table.name, strings.Join(sets, ", "), where), args, nil
}

// BuildDelete renders a DELETE from the primary table.
func (b *Builder) BuildDelete() (string, []any, error) {
	table, err := b.mutableTable()
	if err != nil {
		return "", nil, err
	}
	where, err := b.whereClause()
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + table.name + where, append([]any(nil), b.args...), nil
}

// Query builds and runs the SELECT. Nothing reaches q when the statement
// does not validate.
func (b *Builder) Query(q Querier, projection []string, sortOrder string) (*sql.Rows, error) {
	if b.used {
		return nil, ErrConsumed
	}
	stmt, args, err := b.BuildQuery(projection, sortOrder)
	if err != nil {
		return nil, err
	}
	b.used = true
	return q.Query(stmt, args...)
}

// Update builds and runs the UPDATE and returns the affected row count.
func (b *Builder) Update(e Execer, values types.Values) (int64, error) {
	if b.used {
		return 0, ErrConsumed
	}
	stmt, args, err := b.BuildUpdate(values)
	if err != nil {
		return 0, err
	}
	b.used = true
	res, err := e.Exec(stmt, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete builds and runs the DELETE and returns the affected row count.
func (b *Builder) Delete(e Execer) (int64, error) {
	if b.used {
		return 0, ErrConsumed
	}
	stmt, args, err := b.BuildDelete()
	if err != nil {
		return 0, err
	}
	b.used = true
	res, err := e.Exec(stmt, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Target returns the table an UPDATE or DELETE of this selection writes
// to.
func (b *Builder) Target() (string, error) {
	table, err := b.mutableTable()
	if err != nil {
		return "", err
	}
	return table.name, nil
}

// Columns returns the names a nil projection would produce.
func (b *Builder) Columns() ([]string, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return b.expand()
}

func (b *Builder) ready() error {
	if b.err != nil {
		return b.err
	}
	if len(b.sources) == 0 {
		return fmt.Errorf("%w: no source", types.ErrNoTable)
	}
	return nil
}

func (b *Builder) mutableTable() (*source, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if len(b.sources) != 1 || b.sources[0].expr != "" {
		return nil, fmt.Errorf("%w: write to a joined selection", types.ErrUnsupportedOperation)
	}
	return &b.sources[0], nil
}

func (b *Builder) projection(projection []string) ([]string, []any, error) {
	if projection == nil {
		cols, err := b.expand()
		if err != nil {
			return nil, nil, err
		}
		return b.renderAll(cols)
	}

	var out []string
	var args []any
	for _, p := range projection {
		p = strings.TrimSpace(p)
		switch {
		case strings.EqualFold(strings.ReplaceAll(p, " ", ""), "count(*)") || p == types.ColumnCount:
			out = append(out, "COUNT(*) AS "+types.ColumnCount)
			continue
		case p == "*":
			cols, err := b.expand()
			if err != nil {
				return nil, nil, err
			}
			rendered, a, err := b.renderAll(cols)
			if err != nil {
				return nil, nil, err
			}
			out = append(out, rendered...)
			args = append(args, a...)
			continue
		case !isIdent(p):
			return nil, nil, fmt.Errorf("%w: %q", types.ErrUnknownColumn, p)
		}
		col, a, err := b.renderColumn(strings.ToLower(p))
		if err != nil {
			return nil, nil, err
		}
		out = append(out, col)
		args = append(args, a...)
	}
	if len(out) == 0 {
		return nil, nil, fmt.Errorf("%w: empty projection", types.ErrUnknownColumn)
	}
	return out, args, nil
}

func (b *Builder) renderAll(cols []string) ([]string, []any, error) {
	out := make([]string, 0, len(cols))
	var args []any
	for _, c := range cols {
		col, a, err := b.renderColumn(c)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, col)
		args = append(args, a...)
	}
	return out, args, nil
}

func (b *Builder) renderColumn(name string) (string, []any, error) {
	if m, ok := b.mapped[name]; ok {
		return m.expr + " AS " + name, m.args, nil
	}
	owners := b.owners(name)
	switch len(owners) {
	case 0:
		return "", nil, fmt.Errorf("%w: %s", types.ErrUnknownColumn, name)
	case 1:
		if len(b.sources) > 1 {
			return owners[0] + "." + name + " AS " + name, nil, nil
		}
		return name, nil, nil
	default:
		return "", nil, fmt.Errorf("%w: %s is in %s", types.ErrAmbiguousColumn, name, strings.Join(owners, ", "))
	}
}

// expand lists every exposed column once, in source order, followed by the
// computed columns. It fails on a column two sources share unless mapped.
func (b *Builder) expand() ([]string, error) {
	seen := make(map[string]bool)
	var cols []string
	for _, s := range b.sources {
		for _, c := range s.columns {
			if seen[c] {
				continue
			}
			seen[c] = true
			if _, ok := b.mapped[c]; !ok && len(b.owners(c)) > 1 {
				return nil, fmt.Errorf("%w: %s", types.ErrAmbiguousColumn, c)
			}
			cols = append(cols, c)
		}
	}
	for _, c := range b.computed {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	return cols, nil
}

func (b *Builder) fromClause() (string, []any) {
	var f strings.Builder
	var args []any
	for i, s := range b.sources {
		if i > 0 {
			f.WriteString(" ")
			f.WriteString(s.join)
			f.WriteString(" ")
		}
		if s.expr != "" {
			f.WriteString("(")
			f.WriteString(s.expr)
			f.WriteString(") AS ")
			f.WriteString(s.name)
			args = append(args, s.args...)
		} else {
			f.WriteString(s.name)
		}
		if i > 0 && s.on != "" {
			f.WriteString(" ON ")
			f.WriteString(s.on)
		}
	}
	return f.String(), args
}

func (b *Builder) whereClause() (string, error) {
	if len(b.where) == 0 {
		return "", nil
	}
	parts := make([]string, len(b.where))
	for i, w := range b.where {
		r, err := b.rewrite(w)
		if err != nil {
			return "", err
		}
		parts[i] = "(" + r + ")"
	}
	return " WHERE " + strings.Join(parts, " AND "), nil
}
