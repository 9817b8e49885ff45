package sqlite

import (
	"strings"
	"time"

	"github.com/mesh-intelligence/showstore/internal/metrics"
	"github.com/mesh-intelligence/showstore/internal/schema"
	"github.com/mesh-intelligence/showstore/internal/selection"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

const searchQuery = `SELECT e._id, COALESCE(e.show_id, 0), COALESCE(e.title, ''),
	snippet(episode_search, -1, '<b>', '</b>', '…', 16),
	e.season_number, e.number, e.watched,
	COALESCE(s.title, ''), COALESCE(s.poster, ''), e.first_release_ms
FROM episode_search
JOIN episodes e ON e._id = episode_search.rowid
LEFT JOIN shows s ON s._id = e.show_id
WHERE episode_search MATCH ?`

// matchExpression turns free text into a prefix query: every word must
// occur, each as a prefix. Double quotes are removed so user input can
// never change the query syntax.
func matchExpression(term string) string {
	words := strings.Fields(strings.ReplaceAll(term, `"`, ""))
	for i, w := range words {
		words[i] = `"` + w + `"*`
	}
	return strings.Join(words, " ")
}

// Search returns episodes whose title or overview match term, best match
// first. Engine failures while searching are logged and yield no hits.
func (b *Backend) Search(term string, opts types.SearchOptions) (hits []types.SearchHit, err error) {
	if t := b.joined(); t != nil {
		return b.search(t.tx, term, opts), nil
	}
	start := time.Now()
	defer func() { b.observe("search", "", start, err) }()

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	if matchExpression(term) == "" {
		return []types.SearchHit{}, nil
	}
	db, err := b.handle()
	if err != nil {
		return nil, err
	}
	return b.search(db, term, opts), nil
}

func (b *Backend) search(q selection.Querier, term string, opts types.SearchOptions) []types.SearchHit {
	expr := matchExpression(term)
	if expr == "" {
		return []types.SearchHit{}
	}
	query := searchQuery
	args := []any{expr}
	if opts.ShowID > 0 {
		query += " AND e.show_id = ?"
		args = append(args, opts.ShowID)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = b.config.SearchLimit
	}
	query += " ORDER BY rank LIMIT ?"
	args = append(args, limit)

	hits, err := searchEpisodes(q, query, args)
	if err != nil {
		metrics.SearchFailures.Inc()
		b.logger.Warn().Err(err).Str("term", term).Msg("search failed")
		return []types.SearchHit{}
	}
	return hits
}

func searchEpisodes(q selection.Querier, query string, args []any) ([]types.SearchHit, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hits := []types.SearchHit{}
	for rows.Next() {
		var h types.SearchHit
		err := rows.Scan(&h.EpisodeID, &h.ShowID, &h.Title, &h.Snippet,
			&h.Season, &h.Number, &h.Watched, &h.ShowTitle, &h.ShowPoster, &h.FirstReleaseMs)
		if err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// RebuildSearchIndex drops and recreates the episode search index and
// repopulates it from the episodes table.
func (b *Backend) RebuildSearchIndex() (err error) {
	if err := b.exclusive("reindex"); err != nil {
		return err
	}
	start := time.Now()
	defer func() { b.observe("reindex", "", start, err) }()

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.transact(func(t *Tx) error {
		if err := recreateSearch(t.tx, schema.SearchTokenizer); err != nil {
			return classify("rebuilding search index", err)
		}
		if _, err := t.tx.Exec(schema.SearchOptimizeStatement()); err != nil {
			return classify("optimizing search index", err)
		}
		return nil
	})
}
