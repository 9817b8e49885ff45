package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/showstore/pkg/types"
)

// seed creates the default list when no list exists yet. A user who
// deletes every list does not get the default back until the database is
// recreated, since seeding only runs on create and on the lists upgrade.
func seed(tx *sql.Tx) error {
	_, err := tx.Exec(`INSERT INTO lists (list_id, name, sort_order)
		SELECT ?, ?, 0 WHERE NOT EXISTS (SELECT 1 FROM lists)`,
		types.DefaultListID, types.DefaultListName)
	if err != nil {
		return fmt.Errorf("seeding default list: %w", err)
	}
	return nil
}
