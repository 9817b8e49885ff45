package sqlite

import (
	"fmt"
	"time"

	"github.com/mesh-intelligence/showstore/pkg/types"
)

// Unaired episodes have a known release instant after now. Episodes with
// no release instant count towards noairdate_count only.
const recountSeasons = `UPDATE seasons SET
	total_count = (SELECT COUNT(*) FROM episodes e WHERE e.season_id = seasons._id),
	unaired_count = (SELECT COUNT(*) FROM episodes e WHERE e.season_id = seasons._id AND e.first_release_ms > ?),
	noairdate_count = (SELECT COUNT(*) FROM episodes e WHERE e.season_id = seasons._id AND e.first_release_ms = -1)
WHERE show_id = ?`

// RecountSeasons recomputes the episode counters of every season of
// showID. nowMs decides which episodes are still unaired; zero means the
// backend clock.
func (b *Backend) RecountSeasons(showID int64, nowMs int64) (err error) {
	if nowMs == 0 {
		nowMs = b.now().UnixMilli()
	}
	if t := b.joined(); t != nil {
		return t.recountSeasons(showID, nowMs)
	}
	start := time.Now()
	defer func() { b.observe("recount", seasonsOfShow(showID), start, err) }()

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.transact(func(t *Tx) error { return t.recountSeasons(showID, nowMs) })
}

func (t *Tx) recountSeasons(showID, nowMs int64) error {
	res, err := t.tx.Exec(recountSeasons, nowMs, showID)
	if err != nil {
		return classify("recounting seasons", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		t.changes.add(seasonsOfShow(showID))
	}
	return nil
}

func seasonsOfShow(showID int64) string {
	return fmt.Sprintf("%s/ofshow/%d", types.TableSeasons, showID)
}
