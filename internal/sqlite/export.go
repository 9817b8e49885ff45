package sqlite

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mesh-intelligence/showstore/internal/schema"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// Export writes every table to dir as <table>.jsonl, one row per line in
// _id order. Only registry columns are written.
func (b *Backend) Export(dir string) (err error) {
	if err := b.exclusive("export"); err != nil {
		return err
	}
	start := time.Now()
	defer func() { b.observe("export", "", start, err) }()

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	// Reopening checkpoints the write-ahead log into the database file.
	if err := b.closeHandle(); err != nil {
		return classify("closing database", err)
	}
	db, err := b.handle()
	if err != nil {
		return err
	}

	for _, tbl := range schema.Tables() {
		query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
			strings.Join(tbl.ColumnNames(), ", "), tbl.Name, types.ColumnID)
		rows, err := db.Query(query)
		if err != nil {
			return classify("exporting "+tbl.Name, err)
		}
		data, err := scanRows(rows)
		rows.Close()
		if err != nil {
			return classify("exporting "+tbl.Name, err)
		}

		records := make([]json.RawMessage, 0, len(data))
		for _, row := range data {
			rec, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("encoding %s row: %w", tbl.Name, err)
			}
			records = append(records, rec)
		}
		if err := writeJSONL(jsonlFile(dir, tbl.Name), records); err != nil {
			return fmt.Errorf("exporting %s: %w", tbl.Name, err)
		}
		b.logger.Debug().Str("table", tbl.Name).Int("rows", len(records)).Msg("exported")
	}
	return nil
}
