package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/showstore/internal/dispatch"
	"github.com/mesh-intelligence/showstore/internal/selection"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// Query returns the rows path resolves to.
func (b *Backend) Query(path string, opts types.QueryOptions) (rows []types.Row, err error) {
	if t := b.joined(); t != nil {
		return t.Query(path, opts)
	}
	start := time.Now()
	defer func() { b.observe("query", path, start, err) }()

	b.mu.RLock()
	defer b.mu.RUnlock()

	m, err := b.match(path)
	if err != nil {
		return nil, err
	}
	db, err := b.handle()
	if err != nil {
		return nil, err
	}
	return queryMatch(db, m, opts)
}

// Get returns the single row an item path resolves to.
func (b *Backend) Get(path string) (row types.Row, err error) {
	if t := b.joined(); t != nil {
		return t.Get(path)
	}
	start := time.Now()
	defer func() { b.observe("get", path, start, err) }()

	b.mu.RLock()
	defer b.mu.RUnlock()

	m, err := b.match(path)
	if err != nil {
		return nil, err
	}
	db, err := b.handle()
	if err != nil {
		return nil, err
	}
	return getMatch(db, m)
}

// Query reads inside the transaction and sees its uncommitted writes.
func (t *Tx) Query(path string, opts types.QueryOptions) ([]types.Row, error) {
	m, err := t.b.match(path)
	if err != nil {
		return nil, err
	}
	return queryMatch(t.tx, m, opts)
}

// Get reads one item inside the transaction.
func (t *Tx) Get(path string) (types.Row, error) {
	m, err := t.b.match(path)
	if err != nil {
		return nil, err
	}
	return getMatch(t.tx, m)
}

func getMatch(q selection.Querier, m dispatch.Match) (types.Row, error) {
	if m.Route.Kind != dispatch.KindItem {
		return nil, fmt.Errorf("%w: get on %s path %s", types.ErrUnsupportedOperation, m.Route.Kind, m.Path)
	}
	rows, err := queryMatch(q, m, types.QueryOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", m.Path, types.ErrNotFound)
	}
	return rows[0], nil
}

func queryMatch(q selection.Querier, m dispatch.Match, opts types.QueryOptions) ([]types.Row, error) {
	sel, err := m.Selection()
	if err != nil {
		return nil, err
	}
	sel.Where(opts.Selection, opts.Args...)
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	sort := opts.SortOrder
	if sort == "" {
		sort = m.Route.DefaultSort
	}

	rows, err := sel.Query(q, opts.Projection, sort)
	if err != nil {
		return nil, classify("query "+m.Path, err)
	}
	defer rows.Close()

	out, err := scanRows(rows)
	if err != nil {
		return nil, classify("query "+m.Path, err)
	}
	return out, nil
}

// scanRows reads every row into a column-keyed map.
func scanRows(rows *sql.Rows) ([]types.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := []types.Row{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r := make(types.Row, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				vals[i] = append([]byte(nil), b...)
			}
			r[c] = vals[i]
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
