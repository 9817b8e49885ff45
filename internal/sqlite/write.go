package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/showstore/internal/dispatch"
	"github.com/mesh-intelligence/showstore/internal/schema"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// Tx is the transactional surface. Its methods join the transaction
// instead of opening their own, so calls compose: a batch applied through a
// Tx becomes part of the surrounding transaction.
type Tx struct {
	b       *Backend
	tx      *sql.Tx
	changes *changeSet

	mu sync.Mutex
	// failed holds the first nested failure. A failed batch or nested
	// transaction rolls back the whole transaction even if the caller
	// swallows the error.
	failed error
}

var _ types.Writer = (*Tx)(nil)

func (t *Tx) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failed == nil {
		t.failed = err
	}
}

func (t *Tx) failure() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// changeSet collects the distinct paths a transaction touched, in first
// touch order.
type changeSet struct {
	mu    sync.Mutex
	seen  map[string]bool
	paths []string
}

func newChangeSet() *changeSet { return &changeSet{seen: make(map[string]bool)} }

func (c *changeSet) add(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[path] {
		return
	}
	c.seen[path] = true
	c.paths = append(c.paths, path)
}

// Transaction runs fn in one transaction; see types.Store. Inside fn the
// backend is in a transaction in progress: its data calls join the
// transaction through joined.
func (b *Backend) Transaction(fn func(w types.Writer) error) (err error) {
	if t := b.joined(); t != nil {
		if err := fn(t); err != nil {
			t.fail(err)
			return err
		}
		return nil
	}

	start := time.Now()
	defer func() { b.observe("transaction", "", start, err) }()

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transact(func(t *Tx) error {
		b.active.Store(t)
		defer b.active.Store(nil)
		return fn(t)
	})
}

// joined returns the transaction whose Transaction callback is running,
// or nil.
func (b *Backend) joined() *Tx { return b.active.Load() }

// exclusive fails op when it is issued from inside a Transaction callback,
// where it would wait on the lock the transaction holds.
func (b *Backend) exclusive(op string) error {
	if b.joined() != nil {
		return fmt.Errorf("%w: %s inside a transaction", types.ErrUnsupportedOperation, op)
	}
	return nil
}

// transact begins a transaction, runs fn, and commits when fn and every
// nested batch succeeded. Changes are published after the commit. The
// caller holds mu for writing.
func (b *Backend) transact(fn func(t *Tx) error) error {
	db, err := b.handle()
	if err != nil {
		return err
	}
	sqlTx, err := db.Begin()
	if err != nil {
		return classify("begin", err)
	}
	t := &Tx{b: b, tx: sqlTx, changes: newChangeSet()}

	if err := fn(t); err != nil {
		sqlTx.Rollback()
		return err
	}
	if err := t.failure(); err != nil {
		sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return classify("commit", err)
	}
	b.publish(t.changes)
	return nil
}

func (b *Backend) publish(c *changeSet) {
	if len(c.paths) == 0 || b.notifier == nil {
		return
	}
	b.notifier.Notify(c.paths...)
}

// Insert adds one row; see types.Writer.
func (b *Backend) Insert(path string, values types.Values) (id int64, err error) {
	if t := b.joined(); t != nil {
		return t.Insert(path, values)
	}
	start := time.Now()
	defer func() { b.observe("insert", path, start, err) }()

	b.mu.Lock()
	defer b.mu.Unlock()
	err = b.transact(func(t *Tx) error {
		var ierr error
		id, ierr = t.Insert(path, values)
		return ierr
	})
	return id, err
}

// Update changes rows; see types.Writer.
func (b *Backend) Update(path string, values types.Values, selection string, args ...any) (n int64, err error) {
	if t := b.joined(); t != nil {
		return t.Update(path, values, selection, args...)
	}
	start := time.Now()
	defer func() { b.observe("update", path, start, err) }()

	b.mu.Lock()
	defer b.mu.Unlock()
	err = b.transact(func(t *Tx) error {
		var uerr error
		n, uerr = t.Update(path, values, selection, args...)
		return uerr
	})
	return n, err
}

// Delete removes rows; see types.Writer.
func (b *Backend) Delete(path string, selection string, args ...any) (n int64, err error) {
	if t := b.joined(); t != nil {
		return t.Delete(path, selection, args...)
	}
	start := time.Now()
	defer func() { b.observe("delete", path, start, err) }()

	b.mu.Lock()
	defer b.mu.Unlock()
	err = b.transact(func(t *Tx) error {
		var derr error
		n, derr = t.Delete(path, selection, args...)
		return derr
	})
	return n, err
}

// BulkInsert inserts rows in one transaction, skipping rows that violate a
// constraint or fail validation.
func (b *Backend) BulkInsert(path string, rows []types.Values) (n int, err error) {
	if t := b.joined(); t != nil {
		return t.bulkInsert(path, rows)
	}
	start := time.Now()
	defer func() { b.observe("bulk_insert", path, start, err) }()

	b.mu.Lock()
	defer b.mu.Unlock()
	err = b.transact(func(t *Tx) error {
		var berr error
		n, berr = t.bulkInsert(path, rows)
		return berr
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (t *Tx) bulkInsert(path string, rows []types.Values) (int, error) {
	m, err := t.b.match(path)
	if err != nil {
		return 0, err
	}
	n := 0
	for i, values := range rows {
		if _, err := t.insert(m, values); err != nil {
			if errors.Is(err, types.ErrConflict) || errors.Is(err, types.ErrInvalidData) {
				t.b.logger.Warn().Err(err).Str("path", path).Int("row", i).Msg("skipping row")
				continue
			}
			return 0, err
		}
		n++
	}
	if n > 0 {
		t.changes.add(m.Path)
	}
	return n, nil
}

// Insert adds one row inside the transaction.
func (t *Tx) Insert(path string, values types.Values) (int64, error) {
	m, err := t.b.match(path)
	if err != nil {
		return 0, err
	}
	id, err := t.insert(m, values)
	if err != nil {
		return 0, err
	}
	t.changes.add(m.Path)
	return id, nil
}

// Update changes rows inside the transaction.
func (t *Tx) Update(path string, values types.Values, selection string, args ...any) (int64, error) {
	m, err := t.b.match(path)
	if err != nil {
		return 0, err
	}
	sel, err := m.Selection()
	if err != nil {
		return 0, err
	}
	target, err := sel.Target()
	if err != nil {
		return 0, err
	}
	vals, err := normalizeValues(values)
	if err != nil {
		return 0, err
	}
	if err := t.checkUpdate(m, target, vals, selection, args); err != nil {
		return 0, err
	}
	n, err := sel.Where(selection, args...).Update(t.tx, vals)
	if err != nil {
		return 0, classify("update "+m.Path, err)
	}
	if n > 0 && target == types.TableListItems {
		if _, err := t.tx.Exec(rekeyListItems); err != nil {
			return 0, classify("update "+m.Path, err)
		}
	}
	if n > 0 {
		t.changes.add(m.Path)
	}
	return n, nil
}

// rekeyListItems rederives the composite key of list items whose ref, type
// or list changed. A key that now collides replaces the older item.
const rekeyListItems = `UPDATE listitems
	SET list_item_id = item_ref_id || '-' || item_type || '-' || list_id
	WHERE list_item_id IS NOT item_ref_id || '-' || item_type || '-' || list_id`

// checkUpdate rejects updates that would leave a row breaking its table's
// identity rules: a show may carry only one external id, and a list item's
// key is derived, never written.
func (t *Tx) checkUpdate(m dispatch.Match, target string, vals types.Values, selection string, args []any) error {
	r := types.Row(vals)
	switch target {
	case types.TableShows:
		for _, pair := range [][2]string{{types.ShowTmdbID, types.ShowTvdbID}, {types.ShowTvdbID, types.ShowTmdbID}} {
			set, other := pair[0], pair[1]
			if _, ok := vals[set]; !ok || r.IsNull(set) {
				continue
			}
			if _, ok := vals[other]; ok {
				if !r.IsNull(other) {
					return fmt.Errorf("show has both tmdb and tvdb ids: %w", types.ErrInvalidData)
				}
				continue
			}
			clash, err := t.anyRow(m, selection, args, other+" IS NOT NULL")
			if err != nil {
				return err
			}
			if clash {
				return fmt.Errorf("setting %s on a show with %s: %w", set, other, types.ErrInvalidData)
			}
		}
	case types.TableListItems:
		if _, ok := vals[types.ListItemItemID]; ok {
			return fmt.Errorf("%s is derived from ref, type and list: %w", types.ListItemItemID, types.ErrInvalidData)
		}
		if _, ok := vals[types.ListItemType]; ok && !types.ValidItemType(r.Int(types.ListItemType)) {
			return fmt.Errorf("list item type %v: %w", vals[types.ListItemType], types.ErrInvalidData)
		}
		for _, c := range []string{types.ListItemRefID, types.ListItemListID} {
			if _, ok := vals[c]; ok && r.String(c) == "" {
				return fmt.Errorf("list item needs %s: %w", c, types.ErrInvalidData)
			}
		}
	}
	return nil
}

// anyRow reports whether a row of m, narrowed by selection and extra,
// exists.
func (t *Tx) anyRow(m dispatch.Match, selection string, args []any, extra string) (bool, error) {
	sel, err := m.Selection()
	if err != nil {
		return false, err
	}
	rows, err := sel.Where(selection, args...).Where(extra).Query(t.tx, []string{types.ColumnID}, "")
	if err != nil {
		return false, classify("check "+m.Path, err)
	}
	defer rows.Close()
	found := rows.Next()
	return found, rows.Err()
}

// Delete removes rows inside the transaction.
func (t *Tx) Delete(path string, selection string, args ...any) (int64, error) {
	m, err := t.b.match(path)
	if err != nil {
		return 0, err
	}
	sel, err := m.Selection()
	if err != nil {
		return 0, err
	}
	n, err := sel.Where(selection, args...).Delete(t.tx)
	if err != nil {
		return 0, classify("delete "+m.Path, err)
	}
	if n > 0 {
		t.changes.add(m.Path)
	}
	return n, nil
}

func (t *Tx) insert(m dispatch.Match, values types.Values) (int64, error) {
	if m.Route.Kind != dispatch.KindCollection || m.Route.Table == "" {
		return 0, fmt.Errorf("%w: insert into %s", types.ErrUnsupportedOperation, m.Path)
	}
	tbl, ok := schema.Lookup(m.Route.Table)
	if !ok {
		return 0, fmt.Errorf("%w: %s", types.ErrNoTable, m.Route.Table)
	}
	vals, err := t.b.prepareInsert(tbl, values)
	if err != nil {
		return 0, err
	}

	cols := vals.Columns()
	args := make([]any, len(cols))
	for i, c := range cols {
		if _, ok := tbl.Column(c); !ok {
			return 0, fmt.Errorf("%w: %s.%s", types.ErrUnknownColumn, tbl.Name, c)
		}
		args[i] = vals[c]
	}

	stmt := "INSERT INTO " + tbl.Name + " DEFAULT VALUES"
	if len(cols) > 0 {
		stmt = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			tbl.Name, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	}
	res, err := t.tx.Exec(stmt, args...)
	if err != nil {
		return 0, classify("insert into "+tbl.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify("insert into "+tbl.Name, err)
	}
	return id, nil
}

// prepareInsert normalizes values and fills in what the store derives:
// sort titles, list ids, list item keys and timestamps.
func (b *Backend) prepareInsert(tbl schema.Table, values types.Values) (types.Values, error) {
	v, err := normalizeValues(values)
	if err != nil {
		return nil, err
	}
	r := types.Row(v)
	nowMs := b.now().UnixMilli()

	switch tbl.Name {
	case types.TableShows:
		if !r.IsNull(types.ShowTmdbID) && !r.IsNull(types.ShowTvdbID) {
			return nil, fmt.Errorf("show has both tmdb and tvdb ids: %w", types.ErrInvalidData)
		}
		fillNoArticle(v, types.ShowTitle, types.ShowTitleNoArticle)
	case types.TableMovies:
		fillNoArticle(v, types.MovieTitle, types.MovieTitleNoArticle)
	case types.TableLists:
		if r.String(types.ListListID) == "" {
			v[types.ListListID] = newUUID()
		}
	case types.TableListItems:
		ref, list := r.String(types.ListItemRefID), r.String(types.ListItemListID)
		itemType := r.Int(types.ListItemType)
		if ref == "" || list == "" || !types.ValidItemType(itemType) {
			return nil, fmt.Errorf("list item needs ref id, list id and item type: %w", types.ErrInvalidData)
		}
		v[types.ListItemItemID] = types.ListItemKey(ref, itemType, list)
	case types.TableActivity:
		if r.IsNull(types.ActivityTimestampMs) {
			v[types.ActivityTimestampMs] = nowMs
		}
	case types.TableJobs:
		if r.IsNull(types.JobCreatedMs) {
			v[types.JobCreatedMs] = nowMs
		}
	}
	return v, nil
}

func fillNoArticle(v types.Values, titleCol, sortCol string) {
	if _, ok := v[sortCol]; ok {
		return
	}
	if title, ok := v[titleCol].(string); ok {
		v[sortCol] = types.TitleNoArticle(title)
	}
}

// normalizeValues converts Go values to the types the engine stores.
func normalizeValues(values types.Values) (types.Values, error) {
	out := make(types.Values, len(values))
	for k, val := range values {
		switch x := val.(type) {
		case nil, int64, float64, string, []byte:
			out[k] = x
		case bool:
			if x {
				out[k] = int64(1)
			} else {
				out[k] = int64(0)
			}
		case int:
			out[k] = int64(x)
		case int32:
			out[k] = int64(x)
		case uint32:
			out[k] = int64(x)
		case float32:
			out[k] = float64(x)
		case time.Time:
			out[k] = x.UnixMilli()
		case fmt.Stringer:
			out[k] = x.String()
		default:
			return nil, fmt.Errorf("column %s: unsupported value type %T: %w", k, val, types.ErrInvalidData)
		}
	}
	return out, nil
}

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
