package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mesh-intelligence/showstore/internal/schema"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// Import replaces the contents of every table that has a <table>.jsonl
// file in dir. Tables without a file are left as they are. The whole
// import is one transaction and the search index is rebuilt at the end.
// Unknown fields and malformed lines are ignored.
func (b *Backend) Import(dir string) (err error) {
	if err := b.exclusive("import"); err != nil {
		return err
	}
	start := time.Now()
	defer func() { b.observe("import", "", start, err) }()

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}
	if err := b.closeHandle(); err != nil {
		return classify("closing database", err)
	}

	return b.transact(func(t *Tx) error {
		for _, tbl := range schema.Tables() {
			records, err := readJSONL(jsonlFile(dir, tbl.Name))
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return err
			}
			if _, err := t.tx.Exec("DELETE FROM " + tbl.Name); err != nil {
				return classify("clearing "+tbl.Name, err)
			}
			n, err := insertRecords(t.tx, tbl, records)
			if err != nil {
				return fmt.Errorf("importing %s: %w", tbl.Name, err)
			}
			t.changes.add(tbl.Name)
			b.logger.Debug().Str("table", tbl.Name).Int("rows", n).Int("skipped", len(records)-n).Msg("imported")
		}
		if err := recreateSearch(t.tx, schema.SearchTokenizer); err != nil {
			return classify("rebuilding search index", err)
		}
		return nil
	})
}

// insertRecords inserts the registry columns present in each record. A
// record the engine rejects aborts the import.
func insertRecords(tx *sql.Tx, tbl schema.Table, records []json.RawMessage) (int, error) {
	n := 0
	for _, rec := range records {
		var obj map[string]any
		dec := json.NewDecoder(bytes.NewReader(rec))
		dec.UseNumber()
		if err := dec.Decode(&obj); err != nil {
			continue
		}

		var cols []string
		var args []any
		for _, c := range tbl.Columns {
			v, ok := obj[c.Name]
			if !ok {
				continue
			}
			val, err := columnValue(c, v)
			if err != nil {
				return n, err
			}
			cols = append(cols, c.Name)
			args = append(args, val)
		}
		if len(cols) == 0 {
			continue
		}

		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			tbl.Name, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
		if _, err := tx.Exec(query, args...); err != nil {
			return n, classify("inserting into "+tbl.Name, err)
		}
		n++
	}
	return n, nil
}

// columnValue converts a decoded JSON value into what the column stores.
// Blobs travel as base64 text, the way encoding []byte produces them.
func columnValue(c schema.Column, v any) (any, error) {
	switch x := v.(type) {
	case nil, bool:
		return x, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: column %s: %v", types.ErrInvalidData, c.Name, err)
		}
		return f, nil
	case string:
		if c.Type == schema.Blob {
			raw, err := base64.StdEncoding.DecodeString(x)
			if err != nil {
				return nil, fmt.Errorf("%w: column %s: %v", types.ErrInvalidData, c.Name, err)
			}
			return raw, nil
		}
		return x, nil
	default:
		return nil, fmt.Errorf("%w: column %s: unsupported value %T", types.ErrInvalidData, c.Name, v)
	}
}
